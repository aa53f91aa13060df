package domain

import "time"

// IntervalOrigin marks whether an interval came from a ledger row or was
// synthesized for the period before the first recorded change.
type IntervalOrigin string

const (
	IntervalSynthesized IntervalOrigin = "SYNTHESIZED"
	IntervalFromLedger  IntervalOrigin = "LEDGER"
)

// Interval is one reconstructed span of a pod's timeline. Intervals on a
// track are contiguous and non-overlapping; at most the last one is open.
type Interval struct {
	Track         LedgerTrack
	Value         string
	Start         time.Time
	End           time.Time
	Open          bool
	Duration      string
	PreviousValue string
	ActorID       *string
	Origin        IntervalOrigin
}

// Timeline groups reconstructed intervals per track.
type Timeline struct {
	StatusTrack    []Interval
	SubStatusTrack []Interval
}
