package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/pod-tracker/internal/domain"
)

// IdentityFilter defines query params for identity listing.
type IdentityFilter struct {
	Role           *domain.IdentityRole
	IncludeMerged  bool
	RegisteredOnly bool
	Limit          int
	Offset         int
}

// IdentityRepository handles persistence for identities.
type IdentityRepository interface {
	Create(ctx context.Context, identity *domain.Identity) error
	Update(ctx context.Context, identity *domain.Identity) error
	GetByID(ctx context.Context, id string) (*domain.Identity, error)
	GetByEmail(ctx context.Context, email string) (*domain.Identity, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Identity, error)
	FindByNameOrEmail(ctx context.Context, values []string) ([]domain.Identity, error)
	List(ctx context.Context, filter IdentityFilter) ([]domain.Identity, error)
	ListByRole(ctx context.Context, role domain.IdentityRole) ([]domain.Identity, error)
	SetMergedInto(ctx context.Context, id, survivorID string) error
}

type identityRepository struct {
	pool *pgxpool.Pool
}

// NewIdentityRepository instantiates the repository.
func NewIdentityRepository(pool *pgxpool.Pool) IdentityRepository {
	return &identityRepository{pool: pool}
}

const identityColumns = `id, name, email, password_hash, role, merged_into, created_at, updated_at`

func (r *identityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	const query = `
        INSERT INTO identities (name, email, password_hash, role)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		identity.Name,
		identity.Email,
		identity.PasswordHash,
		identity.Role,
	).Scan(&identity.ID, &identity.CreatedAt, &identity.UpdatedAt)
}

func (r *identityRepository) Update(ctx context.Context, identity *domain.Identity) error {
	const query = `
        UPDATE identities SET name=$1, email=$2, password_hash=$3, role=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := querier(ctx, r.pool).Exec(ctx, query,
		identity.Name,
		identity.Email,
		identity.PasswordHash,
		identity.Role,
		identity.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *identityRepository) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *identityRepository) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *identityRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Identity, error) {
	var identity domain.Identity
	if err := scanIdentity(querier(ctx, r.pool).QueryRow(ctx, query, arg), &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (r *identityRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Identity, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + identityColumns + ` FROM identities WHERE id = ANY($1)`
	rows, err := querier(ctx, r.pool).Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIdentities(rows)
}

// FindByNameOrEmail matches live identities whose name or email equals one
// of the given values. Tombstoned identities are excluded: callers resolve
// them through the merge chain before this lookup.
func (r *identityRepository) FindByNameOrEmail(ctx context.Context, values []string) ([]domain.Identity, error) {
	if len(values) == 0 {
		return nil, nil
	}
	query := `SELECT ` + identityColumns + ` FROM identities
        WHERE merged_into IS NULL AND (name = ANY($1) OR email = ANY($1))`
	rows, err := querier(ctx, r.pool).Query(ctx, query, values)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIdentities(rows)
}

func (r *identityRepository) List(ctx context.Context, filter IdentityFilter) ([]domain.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities`
	args := []any{}
	clauses := []string{}

	if !filter.IncludeMerged {
		clauses = append(clauses, "merged_into IS NULL")
	}
	if filter.RegisteredOnly {
		clauses = append(clauses, "email IS NOT NULL")
	}
	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY created_at DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := querier(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIdentities(rows)
}

func (r *identityRepository) ListByRole(ctx context.Context, role domain.IdentityRole) ([]domain.Identity, error) {
	return r.List(ctx, IdentityFilter{Role: &role, Limit: 1000})
}

// SetMergedInto tombstones an identity. Refuses to re-tombstone: merges are
// terminal for the merged side.
func (r *identityRepository) SetMergedInto(ctx context.Context, id, survivorID string) error {
	const query = `UPDATE identities SET merged_into=$1, updated_at=NOW() WHERE id=$2 AND merged_into IS NULL`
	cmd, err := querier(ctx, r.pool).Exec(ctx, query, survivorID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanIdentity(row pgx.Row, identity *domain.Identity) error {
	return row.Scan(
		&identity.ID,
		&identity.Name,
		&identity.Email,
		&identity.PasswordHash,
		&identity.Role,
		&identity.MergedInto,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
}

func scanIdentities(rows pgx.Rows) ([]domain.Identity, error) {
	var result []domain.Identity
	for rows.Next() {
		var identity domain.Identity
		if err := scanIdentity(rows, &identity); err != nil {
			return nil, err
		}
		result = append(result, identity)
	}
	return result, rows.Err()
}
