package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/pod-tracker/internal/domain"
)

// NotificationRepository stores recipient feed entries.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, recipientID string) error
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	RepointActor(ctx context.Context, oldID, newID string) error
	RepointRecipient(ctx context.Context, oldID, newID string) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository instantiates the repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	const query = `
        INSERT INTO notifications (recipient_id, message, pod_id, issue_id, actor_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		notification.RecipientID,
		notification.Message,
		notification.PodID,
		notification.IssueID,
		notification.ActorID,
	).Scan(&notification.ID, &notification.CreatedAt)
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	query := `
        SELECT id, recipient_id, message, pod_id, issue_id, actor_id, read_flag, created_at
        FROM notifications WHERE recipient_id=$1`
	if unreadOnly {
		query += ` AND read_flag = FALSE`
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := querier(ctx, r.pool).Query(ctx, query, recipientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.RecipientID,
			&n.Message,
			&n.PodID,
			&n.IssueID,
			&n.ActorID,
			&n.Read,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

// MarkRead flips the read flag; only the owning recipient may do so.
func (r *notificationRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	const query = `UPDATE notifications SET read_flag = TRUE WHERE id=$1 AND recipient_id=$2`
	cmd, err := querier(ctx, r.pool).Exec(ctx, query, id, recipientID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM notifications WHERE recipient_id=$1 AND read_flag = FALSE`
	var count int64
	if err := querier(ctx, r.pool).QueryRow(ctx, query, recipientID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *notificationRepository) RepointActor(ctx context.Context, oldID, newID string) error {
	const query = `UPDATE notifications SET actor_id=$1 WHERE actor_id=$2`
	_, err := querier(ctx, r.pool).Exec(ctx, query, newID, oldID)
	return err
}

func (r *notificationRepository) RepointRecipient(ctx context.Context, oldID, newID string) error {
	const query = `UPDATE notifications SET recipient_id=$1 WHERE recipient_id=$2`
	_, err := querier(ctx, r.pool).Exec(ctx, query, newID, oldID)
	return err
}
