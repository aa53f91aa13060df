package dto

import (
	"time"

	"github.com/spec-kit/pod-tracker/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Identity  IdentityResponse `json:"identity"`
}

// IdentityResponse representation.
type IdentityResponse struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Email      *string             `json:"email,omitempty"`
	Role       domain.IdentityRole `json:"role"`
	Registered bool                `json:"registered"`
	MergedInto *string             `json:"merged_into,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}

// MergeIdentitiesRequest payload. SurvivorID must be one of IdentityIDs.
type MergeIdentitiesRequest struct {
	IdentityIDs []string `json:"identity_ids"`
	SurvivorID  string   `json:"survivor_id"`
}

// MergeFailureResponse describes one identity that could not be absorbed.
type MergeFailureResponse struct {
	IdentityID string `json:"identity_id"`
	Reason     string `json:"reason"`
}

// MergeResultResponse reports a merge outcome, including partial success.
type MergeResultResponse struct {
	SurvivorID string                 `json:"survivor_id"`
	MergedIDs  []string               `json:"merged_ids"`
	Failed     []MergeFailureResponse `json:"failed,omitempty"`
}
