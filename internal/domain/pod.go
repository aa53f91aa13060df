package domain

import "time"

// PodStatus enumerates lifecycle states for deployment units.
type PodStatus string

const (
	PodStatusInitial            PodStatus = "INITIAL"
	PodStatusEngineering        PodStatus = "ENGINEERING"
	PodStatusEngineeringHold    PodStatus = "ENGINEERING_HOLD"
	PodStatusDataManagement     PodStatus = "DATA_MANAGEMENT"
	PodStatusDataManagementHold PodStatus = "DATA_MANAGEMENT_HOLD"
	PodStatusSubmission         PodStatus = "SUBMISSION"
	PodStatusSubmissionRework   PodStatus = "SUBMISSION_REWORK"
	PodStatusOnHold             PodStatus = "ON_HOLD"
	PodStatusCancelled          PodStatus = "CANCELLED"
	PodStatusComplete           PodStatus = "COMPLETE"
)

// PodSubStatus refines the status within each workflow phase.
type PodSubStatus string

const (
	SubStatusNotStarted          PodSubStatus = "NOT_STARTED"
	SubStatusKickoffScheduled    PodSubStatus = "KICKOFF_SCHEDULED"
	SubStatusDesignInProgress    PodSubStatus = "DESIGN_IN_PROGRESS"
	SubStatusDesignReview        PodSubStatus = "DESIGN_REVIEW"
	SubStatusDesignApproved      PodSubStatus = "DESIGN_APPROVED"
	SubStatusSurveyPending       PodSubStatus = "SURVEY_PENDING"
	SubStatusSurveyComplete      PodSubStatus = "SURVEY_COMPLETE"
	SubStatusAwaitingEquipment   PodSubStatus = "AWAITING_EQUIPMENT"
	SubStatusDataCollection      PodSubStatus = "DATA_COLLECTION"
	SubStatusDataValidation      PodSubStatus = "DATA_VALIDATION"
	SubStatusDataCorrections     PodSubStatus = "DATA_CORRECTIONS"
	SubStatusDataApproved        PodSubStatus = "DATA_APPROVED"
	SubStatusTicketDrafted       PodSubStatus = "TICKET_DRAFTED"
	SubStatusTicketSubmitted     PodSubStatus = "TICKET_SUBMITTED"
	SubStatusTicketInReview      PodSubStatus = "TICKET_IN_REVIEW"
	SubStatusTicketRejected      PodSubStatus = "TICKET_REJECTED"
	SubStatusTicketApproved      PodSubStatus = "TICKET_APPROVED"
	SubStatusAwaitingCustomer    PodSubStatus = "AWAITING_CUSTOMER"
	SubStatusAwaitingVendor      PodSubStatus = "AWAITING_VENDOR"
	SubStatusInstallScheduled    PodSubStatus = "INSTALL_SCHEDULED"
	SubStatusInstallComplete     PodSubStatus = "INSTALL_COMPLETE"
	SubStatusVerificationPending PodSubStatus = "VERIFICATION_PENDING"
	SubStatusVerified            PodSubStatus = "VERIFIED"
	SubStatusClosedOut           PodSubStatus = "CLOSED_OUT"
)

// PodCategory controls which SLA table row applies to a pod.
type PodCategory string

const (
	CategoryA PodCategory = "A"
	CategoryB PodCategory = "B"
	CategoryC PodCategory = "C"
)

// Milestone keys that feed the change notifier rule table.
const (
	MilestoneTicketSubmitted = "ticket_submitted"
	MilestoneCompletion      = "completion"
)

// Milestone is an optional dated checkpoint with a not-applicable override.
type Milestone struct {
	Date          *time.Time `json:"date,omitempty"`
	NotApplicable bool       `json:"not_applicable,omitempty"`
}

// Pod is the aggregate for a tracked deployment unit.
type Pod struct {
	ID               string
	PodCode          string
	Status           PodStatus
	SubStatus        PodSubStatus
	Category         PodCategory
	WorkableDate     *time.Time
	SlaDeadline      *time.Time
	AssignedIdentity string
	CreatedByID      *string
	Milestones       map[string]Milestone
	Archived         bool
	Deleted          bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// MilestoneDate returns the date recorded for a milestone key, nil when
// unset or flagged not-applicable.
func (p *Pod) MilestoneDate(key string) *time.Time {
	if p == nil || p.Milestones == nil {
		return nil
	}
	m, ok := p.Milestones[key]
	if !ok || m.NotApplicable {
		return nil
	}
	return m.Date
}
