package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/pod-tracker/internal/domain"
	"github.com/spec-kit/pod-tracker/internal/repository"
	apperrors "github.com/spec-kit/pod-tracker/pkg/util/errorutil"
)

// IdentityService resolves free-text identifiers to identities and manages
// imported (name-only) profiles.
type IdentityService struct {
	identities repository.IdentityRepository
}

// NewIdentityService constructs the service.
func NewIdentityService(identities repository.IdentityRepository) *IdentityService {
	return &IdentityService{identities: identities}
}

// Resolve maps a free-text identifier (email or display name) to a live
// identity. Tombstoned profiles never resolve. Returns nil without error
// when nothing matches.
func (s *IdentityService) Resolve(ctx context.Context, value string) (*domain.Identity, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	matches, err := s.identities.FindByNameOrEmail(ctx, []string{value})
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

// ResolveID loads an identity by id, following the merge chain so that a
// tombstoned id resolves to its survivor. The chain has depth 1 by
// construction.
func (s *IdentityService) ResolveID(ctx context.Context, id string) (*domain.Identity, error) {
	identity, err := s.identities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("identity", map[string]any{"identity_id": id})
		}
		return nil, err
	}
	if identity.Tombstoned() {
		return s.identities.GetByID(ctx, *identity.MergedInto)
	}
	return identity, nil
}

// EnsureAssignee resolves an assignment value, creating an imported
// name-only profile the first time an unrecognized engineer name appears.
func (s *IdentityService) EnsureAssignee(ctx context.Context, value string) (*domain.Identity, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	identity, err := s.Resolve(ctx, value)
	if err != nil {
		return nil, err
	}
	if identity != nil {
		return identity, nil
	}
	imported := &domain.Identity{
		Name: value,
		Role: domain.RoleMember,
	}
	if err := s.identities.Create(ctx, imported); err != nil {
		return nil, err
	}
	return imported, nil
}

// ListByRole returns live identities holding the given role.
func (s *IdentityService) ListByRole(ctx context.Context, role domain.IdentityRole) ([]domain.Identity, error) {
	return s.identities.ListByRole(ctx, role)
}

// List returns live identities with optional filters.
func (s *IdentityService) List(ctx context.Context, filter repository.IdentityFilter) ([]domain.Identity, error) {
	return s.identities.List(ctx, filter)
}
