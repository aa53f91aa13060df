package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/pod-tracker/internal/auth"
	"github.com/spec-kit/pod-tracker/internal/config"
	"github.com/spec-kit/pod-tracker/internal/domain"
	"github.com/spec-kit/pod-tracker/internal/repository"
	apperrors "github.com/spec-kit/pod-tracker/pkg/util/errorutil"
)

// AuthService coordinates registration and login flows for registered
// identities.
type AuthService struct {
	identities repository.IdentityRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, identities repository.IdentityRepository) *AuthService {
	return &AuthService{
		identities: identities,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// TokenManager exposes the JWT manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Register creates a registered identity. When an imported name-only
// profile already exists under the same name, registration upgrades it in
// place instead of creating a duplicate ripe for a later merge.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.Identity, string, time.Time, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if _, err := s.identities.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	identity := s.findImportedByName(ctx, name)
	if identity != nil {
		identity.Email = &email
		identity.PasswordHash = &hash
		if err := s.identities.Update(ctx, identity); err != nil {
			return nil, "", time.Time{}, apperrors.MapError(err)
		}
	} else {
		identity = &domain.Identity{
			Name:         strings.TrimSpace(name),
			Email:        &email,
			PasswordHash: &hash,
			Role:         domain.RoleMember,
		}
		if err := s.identities.Create(ctx, identity); err != nil {
			return nil, "", time.Time{}, apperrors.MapError(err)
		}
	}

	token, exp, err := s.tokenMgr.GenerateToken(identity.ID, identity.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return identity, token, exp, nil
}

// Login authenticates a registered identity.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Identity, string, time.Time, error) {
	identity, err := s.identities.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if identity.Tombstoned() {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("identity merged")
	}
	if identity.PasswordHash == nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(*identity.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(identity.ID, identity.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return identity, token, exp, nil
}

func (s *AuthService) findImportedByName(ctx context.Context, name string) *domain.Identity {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	matches, err := s.identities.FindByNameOrEmail(ctx, []string{name})
	if err != nil {
		return nil
	}
	for i := range matches {
		if !matches[i].Registered() {
			return &matches[i]
		}
	}
	return nil
}
