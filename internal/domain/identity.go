package domain

import (
	"strings"
	"time"
)

// IdentityRole enumerates notification and administration roles.
type IdentityRole string

const (
	RoleMember   IdentityRole = "MEMBER"
	RolePriority IdentityRole = "PRIORITY"
	RoleAdmin    IdentityRole = "ADMIN"
)

// Identity is an actor/recipient record. A registered identity carries an
// email and credentials; an imported identity is name-only, created the
// first time an unrecognized engineer name appears in bulk data. MergedInto
// marks a tombstone: the identity is retained for referential history but
// excluded from all future resolution.
type Identity struct {
	ID           string
	Name         string
	Email        *string
	PasswordHash *string
	Role         IdentityRole
	MergedInto   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Registered reports whether the identity has an email profile.
func (i *Identity) Registered() bool {
	return i != nil && i.Email != nil && strings.TrimSpace(*i.Email) != ""
}

// Tombstoned reports whether the identity has been merged away.
func (i *Identity) Tombstoned() bool {
	return i != nil && i.MergedInto != nil
}

// IdentityKeySet is the set of textual identifiers that may reference an
// identity in free-text fields: its name, its email, and its id.
type IdentityKeySet map[string]struct{}

// KeySet builds the identifier set for the identity.
func (i *Identity) KeySet() IdentityKeySet {
	keys := IdentityKeySet{}
	if i == nil {
		return keys
	}
	if name := strings.TrimSpace(i.Name); name != "" {
		keys[name] = struct{}{}
	}
	if i.Email != nil {
		if email := strings.TrimSpace(*i.Email); email != "" {
			keys[email] = struct{}{}
		}
	}
	if i.ID != "" {
		keys[i.ID] = struct{}{}
	}
	return keys
}

// Contains reports whether value is one of the set's identifiers.
func (ks IdentityKeySet) Contains(value string) bool {
	_, ok := ks[value]
	return ok
}

// ContainsFold reports whether value matches any identifier ignoring case.
func (ks IdentityKeySet) ContainsFold(value string) bool {
	for key := range ks {
		if strings.EqualFold(key, value) {
			return true
		}
	}
	return false
}

// Values returns the identifiers as a slice for query parameters.
func (ks IdentityKeySet) Values() []string {
	values := make([]string, 0, len(ks))
	for key := range ks {
		values = append(values, key)
	}
	return values
}
