package dto

import "time"

// NotificationResponse is one feed entry.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	PodID     *string   `json:"pod_id,omitempty"`
	IssueID   *string   `json:"issue_id,omitempty"`
	ActorID   *string   `json:"actor_id,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// UnreadCountResponse carries the cached unread counter.
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}
