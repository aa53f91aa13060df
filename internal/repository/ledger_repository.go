package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/pod-tracker/internal/domain"
)

// LedgerRepository stores immutable transition entries. Entries are only
// ever appended; the actor repoint during identity merges is the single
// sanctioned mutation.
type LedgerRepository interface {
	Append(ctx context.Context, entry *domain.PodLedgerEntry) error
	ListByPod(ctx context.Context, podID string) ([]domain.PodLedgerEntry, error)
	RepointActor(ctx context.Context, oldID, newID string) error
}

type ledgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository builds repository.
func NewLedgerRepository(pool *pgxpool.Pool) LedgerRepository {
	return &ledgerRepository{pool: pool}
}

func (r *ledgerRepository) Append(ctx context.Context, entry *domain.PodLedgerEntry) error {
	const query = `
        INSERT INTO pod_ledger (pod_id, new_status, new_sub_status, previous_status, previous_sub_status, actor_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		entry.PodID,
		entry.NewStatus,
		entry.NewSubStatus,
		entry.PreviousStatus,
		entry.PreviousSubStatus,
		entry.ActorID,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *ledgerRepository) ListByPod(ctx context.Context, podID string) ([]domain.PodLedgerEntry, error) {
	const query = `
        SELECT id, pod_id, new_status, new_sub_status, previous_status, previous_sub_status, actor_id, created_at
        FROM pod_ledger WHERE pod_id=$1 ORDER BY created_at ASC`
	rows, err := querier(ctx, r.pool).Query(ctx, query, podID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PodLedgerEntry
	for rows.Next() {
		var entry domain.PodLedgerEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.PodID,
			&entry.NewStatus,
			&entry.NewSubStatus,
			&entry.PreviousStatus,
			&entry.PreviousSubStatus,
			&entry.ActorID,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *ledgerRepository) RepointActor(ctx context.Context, oldID, newID string) error {
	const query = `UPDATE pod_ledger SET actor_id=$1 WHERE actor_id=$2`
	_, err := querier(ctx, r.pool).Exec(ctx, query, newID, oldID)
	return err
}
