package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/pod-tracker/internal/domain"
)

// MergeAuditRepository records one audit row per absorbed identity.
type MergeAuditRepository interface {
	Create(ctx context.Context, audit *domain.IdentityMergeAudit) error
	ListBySurvivor(ctx context.Context, survivorID string) ([]domain.IdentityMergeAudit, error)
}

type mergeAuditRepository struct {
	pool *pgxpool.Pool
}

// NewMergeAuditRepository builds repository.
func NewMergeAuditRepository(pool *pgxpool.Pool) MergeAuditRepository {
	return &mergeAuditRepository{pool: pool}
}

func (r *mergeAuditRepository) Create(ctx context.Context, audit *domain.IdentityMergeAudit) error {
	const query = `
        INSERT INTO identity_merge_audit (merged_id, survivor_id, merged_by, pods_repointed)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		audit.MergedID,
		audit.SurvivorID,
		audit.MergedBy,
		audit.PodsRepointed,
	).Scan(&audit.ID, &audit.CreatedAt)
}

func (r *mergeAuditRepository) ListBySurvivor(ctx context.Context, survivorID string) ([]domain.IdentityMergeAudit, error) {
	const query = `
        SELECT id, merged_id, survivor_id, merged_by, pods_repointed, created_at
        FROM identity_merge_audit WHERE survivor_id=$1 ORDER BY created_at DESC`
	rows, err := querier(ctx, r.pool).Query(ctx, query, survivorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.IdentityMergeAudit
	for rows.Next() {
		var audit domain.IdentityMergeAudit
		if err := rows.Scan(
			&audit.ID,
			&audit.MergedID,
			&audit.SurvivorID,
			&audit.MergedBy,
			&audit.PodsRepointed,
			&audit.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, audit)
	}
	return result, rows.Err()
}
