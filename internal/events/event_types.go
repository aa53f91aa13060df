package events

import (
	"time"

	"github.com/spec-kit/pod-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventPodCreated       EventType = "pod_created"
	EventPodStatusChanged EventType = "pod_status_changed"
	EventPodAssigned      EventType = "pod_assigned"
	EventPodArchived      EventType = "pod_archived"
	EventPodRestored      EventType = "pod_restored"
	EventIdentityMerged   EventType = "identity_merged"
	EventSlaReminder      EventType = "sla_reminder"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	PodID     string      `json:"pod_id,omitempty"`
	ActorID   *string     `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// PodCreatedPayload payload.
type PodCreatedPayload struct {
	PodCode  string             `json:"pod_code"`
	Category domain.PodCategory `json:"category"`
}

// PodStatusChangedPayload payload.
type PodStatusChangedPayload struct {
	OldStatus    domain.PodStatus    `json:"old_status"`
	NewStatus    domain.PodStatus    `json:"new_status"`
	OldSubStatus domain.PodSubStatus `json:"old_sub_status"`
	NewSubStatus domain.PodSubStatus `json:"new_sub_status"`
}

// PodAssignedPayload payload.
type PodAssignedPayload struct {
	AssignedIdentity string `json:"assigned_identity"`
}

// IdentityMergedPayload payload.
type IdentityMergedPayload struct {
	SurvivorID string   `json:"survivor_id"`
	MergedIDs  []string `json:"merged_ids"`
}

// SlaReminderPayload payload.
type SlaReminderPayload struct {
	PodCode      string    `json:"pod_code"`
	Deadline     time.Time `json:"deadline"`
	BusinessDays int       `json:"business_days"`
}
