package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/pod-tracker/internal/domain"
)

// PodFilter captures listing parameters.
type PodFilter struct {
	Statuses         []domain.PodStatus
	Categories       []domain.PodCategory
	AssignedIdentity *string
	Archived         *bool
	SearchTerm       *string
	CreatedFrom      *time.Time
	CreatedTo        *time.Time
	Limit            int
	Offset           int
}

// PodRepository encapsulates pod persistence.
type PodRepository interface {
	Create(ctx context.Context, pod *domain.Pod) error
	Update(ctx context.Context, pod *domain.Pod) error
	GetByID(ctx context.Context, id string) (*domain.Pod, error)
	GetByCode(ctx context.Context, code string) (*domain.Pod, error)
	ListWithFilter(ctx context.Context, filter PodFilter) ([]domain.Pod, error)
	ListDueWithin(ctx context.Context, deadline time.Time) ([]domain.Pod, error)
	RepointAssignee(ctx context.Context, identifiers []string, newAssignee string) (int64, error)
	RepointAssigneeFold(ctx context.Context, identifiers []string, newAssignee string) (int64, error)
	RepointCreator(ctx context.Context, oldID, newID string) error
}

type podRepository struct {
	pool *pgxpool.Pool
}

// NewPodRepository instantiates the repository.
func NewPodRepository(pool *pgxpool.Pool) PodRepository {
	return &podRepository{pool: pool}
}

const podColumns = `id, pod_code, status, sub_status, category, workable_date, sla_deadline,
               assigned_identity, created_by_id, milestones, archived_flag, deleted_flag,
               created_at, updated_at`

func (r *podRepository) Create(ctx context.Context, pod *domain.Pod) error {
	const query = `
        INSERT INTO pods (pod_code, status, sub_status, category, workable_date, sla_deadline,
                          assigned_identity, created_by_id, milestones)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	if pod.Milestones == nil {
		pod.Milestones = map[string]domain.Milestone{}
	}
	return querier(ctx, r.pool).QueryRow(ctx, query,
		pod.PodCode,
		pod.Status,
		pod.SubStatus,
		pod.Category,
		pod.WorkableDate,
		pod.SlaDeadline,
		pod.AssignedIdentity,
		pod.CreatedByID,
		pod.Milestones,
	).Scan(&pod.ID, &pod.CreatedAt, &pod.UpdatedAt)
}

func (r *podRepository) Update(ctx context.Context, pod *domain.Pod) error {
	const query = `
        UPDATE pods SET status=$1, sub_status=$2, category=$3, workable_date=$4, sla_deadline=$5,
            assigned_identity=$6, milestones=$7, archived_flag=$8, deleted_flag=$9, updated_at=NOW()
        WHERE id=$10`
	cmd, err := querier(ctx, r.pool).Exec(ctx, query,
		pod.Status,
		pod.SubStatus,
		pod.Category,
		pod.WorkableDate,
		pod.SlaDeadline,
		pod.AssignedIdentity,
		pod.Milestones,
		pod.Archived,
		pod.Deleted,
		pod.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *podRepository) GetByID(ctx context.Context, id string) (*domain.Pod, error) {
	query := `SELECT ` + podColumns + ` FROM pods WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *podRepository) GetByCode(ctx context.Context, code string) (*domain.Pod, error) {
	query := `SELECT ` + podColumns + ` FROM pods WHERE pod_code=$1`
	return r.fetchSingle(ctx, query, code)
}

func (r *podRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Pod, error) {
	var pod domain.Pod
	if err := scanPod(querier(ctx, r.pool).QueryRow(ctx, query, arg), &pod); err != nil {
		return nil, err
	}
	return &pod, nil
}

func (r *podRepository) ListWithFilter(ctx context.Context, filter PodFilter) ([]domain.Pod, error) {
	base := `SELECT ` + podColumns + ` FROM pods`
	clauses := []string{"deleted_flag = FALSE"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Categories) > 0 {
		placeholders := make([]string, len(filter.Categories))
		for i, category := range filter.Categories {
			args = append(args, category)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("category IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.AssignedIdentity != nil {
		args = append(args, *filter.AssignedIdentity)
		clauses = append(clauses, fmt.Sprintf("assigned_identity=$%d", len(args)))
	}
	if filter.Archived != nil {
		args = append(args, *filter.Archived)
		clauses = append(clauses, fmt.Sprintf("archived_flag=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(pod_code) LIKE %s OR LOWER(assigned_identity) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := querier(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPods(rows)
}

// ListDueWithin returns active, assigned pods whose deadline falls on or
// before the given date. The reminder sweep refines the result with
// business-day arithmetic in memory.
func (r *podRepository) ListDueWithin(ctx context.Context, deadline time.Time) ([]domain.Pod, error) {
	query := `SELECT ` + podColumns + ` FROM pods
        WHERE archived_flag = FALSE AND deleted_flag = FALSE
          AND sla_deadline IS NOT NULL AND sla_deadline <= $1
          AND assigned_identity <> ''
        ORDER BY sla_deadline ASC`
	rows, err := querier(ctx, r.pool).Query(ctx, query, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPods(rows)
}

func (r *podRepository) RepointAssignee(ctx context.Context, identifiers []string, newAssignee string) (int64, error) {
	if len(identifiers) == 0 {
		return 0, nil
	}
	const query = `UPDATE pods SET assigned_identity=$1, updated_at=NOW() WHERE assigned_identity = ANY($2)`
	cmd, err := querier(ctx, r.pool).Exec(ctx, query, newAssignee, identifiers)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// RepointAssigneeFold catches casing drift from bulk imports: rows whose
// assignee matches an identifier only case-insensitively and is not already
// the survivor's name.
func (r *podRepository) RepointAssigneeFold(ctx context.Context, identifiers []string, newAssignee string) (int64, error) {
	if len(identifiers) == 0 {
		return 0, nil
	}
	lowered := make([]string, 0, len(identifiers))
	for _, ident := range identifiers {
		lowered = append(lowered, strings.ToLower(ident))
	}
	const query = `UPDATE pods SET assigned_identity=$1, updated_at=NOW()
        WHERE LOWER(assigned_identity) = ANY($2) AND assigned_identity <> $1`
	cmd, err := querier(ctx, r.pool).Exec(ctx, query, newAssignee, lowered)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *podRepository) RepointCreator(ctx context.Context, oldID, newID string) error {
	const query = `UPDATE pods SET created_by_id=$1 WHERE created_by_id=$2`
	_, err := querier(ctx, r.pool).Exec(ctx, query, newID, oldID)
	return err
}

func scanPod(row pgx.Row, pod *domain.Pod) error {
	return row.Scan(
		&pod.ID,
		&pod.PodCode,
		&pod.Status,
		&pod.SubStatus,
		&pod.Category,
		&pod.WorkableDate,
		&pod.SlaDeadline,
		&pod.AssignedIdentity,
		&pod.CreatedByID,
		&pod.Milestones,
		&pod.Archived,
		&pod.Deleted,
		&pod.CreatedAt,
		&pod.UpdatedAt,
	)
}

func scanPods(rows pgx.Rows) ([]domain.Pod, error) {
	var result []domain.Pod
	for rows.Next() {
		var pod domain.Pod
		if err := scanPod(rows, &pod); err != nil {
			return nil, err
		}
		result = append(result, pod)
	}
	return result, rows.Err()
}
