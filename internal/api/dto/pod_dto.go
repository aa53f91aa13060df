package dto

import (
	"time"

	"github.com/spec-kit/pod-tracker/internal/domain"
)

// MilestoneInput is one milestone assignment in a create or patch payload.
type MilestoneInput struct {
	Date          *time.Time `json:"date"`
	NotApplicable bool       `json:"not_applicable"`
}

// CreatePodRequest payload.
type CreatePodRequest struct {
	PodCode          string                    `json:"pod_code"`
	Status           *domain.PodStatus         `json:"status"`
	SubStatus        *domain.PodSubStatus      `json:"sub_status"`
	Category         domain.PodCategory        `json:"category"`
	WorkableDate     *time.Time                `json:"workable_date"`
	SlaDeadline      *time.Time                `json:"sla_deadline"`
	AssignedIdentity string                    `json:"assigned_identity"`
	Milestones       map[string]MilestoneInput `json:"milestones"`
}

// UpdatePodRequest payload; absent fields are left untouched.
type UpdatePodRequest struct {
	Status           *domain.PodStatus         `json:"status"`
	SubStatus        *domain.PodSubStatus      `json:"sub_status"`
	Category         *domain.PodCategory       `json:"category"`
	WorkableDate     *time.Time                `json:"workable_date"`
	SlaDeadline      *time.Time                `json:"sla_deadline"`
	AssignedIdentity *string                   `json:"assigned_identity"`
	Milestones       map[string]MilestoneInput `json:"milestones"`
}

// PodResponse is the full pod representation.
type PodResponse struct {
	ID               string                    `json:"id"`
	PodCode          string                    `json:"pod_code"`
	Status           domain.PodStatus          `json:"status"`
	SubStatus        domain.PodSubStatus       `json:"sub_status"`
	Category         domain.PodCategory        `json:"category"`
	WorkableDate     *time.Time                `json:"workable_date"`
	SlaDeadline      *time.Time                `json:"sla_deadline"`
	AssignedIdentity string                    `json:"assigned_identity"`
	CreatedByID      *string                   `json:"created_by_id"`
	Milestones       map[string]MilestoneInput `json:"milestones"`
	Archived         bool                      `json:"archived"`
	CreatedAt        time.Time                 `json:"created_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
}

// IntervalResponse is one reconstructed timeline span.
type IntervalResponse struct {
	Track         domain.LedgerTrack    `json:"track"`
	Value         string                `json:"value"`
	Start         time.Time             `json:"start"`
	End           time.Time             `json:"end"`
	Open          bool                  `json:"open"`
	Duration      string                `json:"duration"`
	PreviousValue string                `json:"previous_value,omitempty"`
	ActorID       *string               `json:"actor_id,omitempty"`
	Origin        domain.IntervalOrigin `json:"origin"`
}

// TimelineResponse groups intervals per track.
type TimelineResponse struct {
	StatusTrack    []IntervalResponse `json:"status_track"`
	SubStatusTrack []IntervalResponse `json:"sub_status_track"`
}

// LedgerEntryResponse is one raw ledger row.
type LedgerEntryResponse struct {
	ID                string               `json:"id"`
	Track             domain.LedgerTrack   `json:"track"`
	NewStatus         *domain.PodStatus    `json:"new_status,omitempty"`
	NewSubStatus      *domain.PodSubStatus `json:"new_sub_status,omitempty"`
	PreviousStatus    *domain.PodStatus    `json:"previous_status,omitempty"`
	PreviousSubStatus *domain.PodSubStatus `json:"previous_sub_status,omitempty"`
	ActorID           *string              `json:"actor_id,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
}

// CreateIssueRequest payload.
type CreateIssueRequest struct {
	Title string `json:"title"`
}

// IssueResponse representation.
type IssueResponse struct {
	ID        string             `json:"id"`
	PodID     string             `json:"pod_id"`
	Title     string             `json:"title"`
	Status    domain.IssueStatus `json:"status"`
	CreatorID *string            `json:"creator_id,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}
