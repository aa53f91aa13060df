package domain

import "time"

// IdentityMergeAudit records one absorbed identity per merge operation.
type IdentityMergeAudit struct {
	ID            string
	MergedID      string
	SurvivorID    string
	MergedBy      *string
	PodsRepointed int
	CreatedAt     time.Time
}

// MergeFailure describes one identity that could not be merged.
type MergeFailure struct {
	IdentityID string
	Reason     string
}

// MergeResult reports the outcome of a merge request. Merges are a batch
// of independent per-identity transactions, so a result may carry both
// merged and failed ids.
type MergeResult struct {
	SurvivorID string
	MergedIDs  []string
	Failed     []MergeFailure
}
