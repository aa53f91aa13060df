package domain

import "time"

// IssueStatus enumerates issue states.
type IssueStatus string

const (
	IssueStatusOpen     IssueStatus = "OPEN"
	IssueStatusResolved IssueStatus = "RESOLVED"
)

// Issue is a problem report attached to a pod.
type Issue struct {
	ID        string
	PodID     string
	Title     string
	Status    IssueStatus
	CreatorID *string
	CreatedAt time.Time
}
