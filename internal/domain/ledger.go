package domain

import "time"

// LedgerTrack identifies which versioned field a ledger entry belongs to.
type LedgerTrack string

const (
	TrackStatus    LedgerTrack = "STATUS"
	TrackSubStatus LedgerTrack = "SUB_STATUS"
)

// PodLedgerEntry is an immutable record of one status or sub-status change.
// Exactly one of NewStatus/NewSubStatus is populated per entry; two entries
// are written when both tracks change in the same mutation.
type PodLedgerEntry struct {
	ID                string
	PodID             string
	NewStatus         *PodStatus
	NewSubStatus      *PodSubStatus
	PreviousStatus    *PodStatus
	PreviousSubStatus *PodSubStatus
	ActorID           *string
	CreatedAt         time.Time
}

// Track reports which track the entry versions.
func (e *PodLedgerEntry) Track() LedgerTrack {
	if e.NewSubStatus != nil {
		return TrackSubStatus
	}
	return TrackStatus
}

// TransitionState captures the status pair of a pod at one point in time.
// A zero-valued state (both fields nil) means "no previous value", used for
// the very first recording of a newly created pod.
type TransitionState struct {
	Status    *PodStatus
	SubStatus *PodSubStatus
}

// StateOf snapshots a pod's live status pair.
func StateOf(p *Pod) TransitionState {
	if p == nil {
		return TransitionState{}
	}
	status := p.Status
	sub := p.SubStatus
	return TransitionState{Status: &status, SubStatus: &sub}
}
