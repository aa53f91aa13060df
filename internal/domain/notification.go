package domain

import "time"

// Notification is a feed entry for one recipient. Only the read flag is
// ever mutated, and only by the owning recipient.
type Notification struct {
	ID          string
	RecipientID string
	Message     string
	PodID       *string
	IssueID     *string
	ActorID     *string
	Read        bool
	CreatedAt   time.Time
}
