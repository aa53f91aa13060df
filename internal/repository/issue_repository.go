package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/pod-tracker/internal/domain"
)

// IssueRepository stores pod issues.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	ListByPod(ctx context.Context, podID string) ([]domain.Issue, error)
	RepointCreator(ctx context.Context, oldID, newID string) error
}

type issueRepository struct {
	pool *pgxpool.Pool
}

// NewIssueRepository builds repository.
func NewIssueRepository(pool *pgxpool.Pool) IssueRepository {
	return &issueRepository{pool: pool}
}

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (pod_id, title, status, creator_id)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		issue.PodID,
		issue.Title,
		issue.Status,
		issue.CreatorID,
	).Scan(&issue.ID, &issue.CreatedAt)
}

func (r *issueRepository) ListByPod(ctx context.Context, podID string) ([]domain.Issue, error) {
	const query = `
        SELECT id, pod_id, title, status, creator_id, created_at
        FROM issues WHERE pod_id=$1 ORDER BY created_at DESC`
	rows, err := querier(ctx, r.pool).Query(ctx, query, podID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Issue
	for rows.Next() {
		var issue domain.Issue
		if err := rows.Scan(
			&issue.ID,
			&issue.PodID,
			&issue.Title,
			&issue.Status,
			&issue.CreatorID,
			&issue.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, issue)
	}
	return result, rows.Err()
}

func (r *issueRepository) RepointCreator(ctx context.Context, oldID, newID string) error {
	const query = `UPDATE issues SET creator_id=$1 WHERE creator_id=$2`
	_, err := querier(ctx, r.pool).Exec(ctx, query, newID, oldID)
	return err
}
