// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

package auth

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Role identifies the portal area a user belongs to.
type Role string

// Portal roles. RoleGraduate is a legacy synonym for RoleAlumni that still
// exists in stored records; Normalize resolves it.
const (
	RoleAdmin     Role = "admin"
	RoleStudent   Role = "student"
	RoleAlumni    Role = "alumni"
	RoleRecruiter Role = "recruiter"
	RoleGraduate  Role = "graduate"
)

// ParseRole validates a role string against the closed enumeration.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleStudent, RoleAlumni, RoleRecruiter, RoleGraduate:
		return Role(s), nil
	}
	return "", oops.Code("AUTH_INVALID_ROLE").With("role", s).Errorf("unknown role %q", s)
}

// Normalize maps the legacy graduate role to alumni. All other roles are
// returned unchanged. Stored records keep their original role verbatim;
// normalization happens only where authorization decisions are made.
func (r Role) Normalize() Role {
	if r == RoleGraduate {
		return RoleAlumni
	}
	return r
}

// Valid reports whether the role is a member of the enumeration.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string { return string(r) }

// Password policy from the registration flow.
const MinPasswordLength = 6

// emailRegex is deliberately loose: one @ with non-empty local part and a
// dotted domain, matching what the registration endpoint has always accepted.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User represents a portal account. A single table holds every role; the
// role column discriminates. Username is the optional login alias, which
// legacy data may have stored under either of two columns (see Repository).
type User struct {
	ID             ulid.ULID
	Email          string
	Username       string // optional alias; empty when never set
	Name           string
	Role           Role
	Credential     string // bcrypt hash or legacy plain text
	StudentID      *string
	GraduationYear *int
	Company        *string
	Position       *string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Alias returns the user's display alias: the stored username when present,
// otherwise the local part of the email.
func (u *User) Alias() string {
	if u.Username != "" {
		return u.Username
	}
	return EmailLocalPart(u.Email)
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
// Email comparison is case-insensitive everywhere.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailLocalPart returns the substring before the first @, or the whole
// string when no @ is present.
func EmailLocalPart(email string) string {
	if i := strings.Index(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}

// ValidateEmail checks the address shape used by registration.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return oops.Code("AUTH_INVALID_EMAIL").With("email", email).Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword checks the minimum password length for new credentials.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return oops.Code("AUTH_WEAK_PASSWORD").
			With("min", MinPasswordLength).
			Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// Repository manages user persistence.
//
// Lookup methods return ErrNotFound (wrapped) when no record matches; a
// missing record is an expected miss, never an infrastructure error.
type Repository interface {
	// Create stores a new user. The store assigns ID and timestamps if the
	// caller left them zero.
	Create(ctx context.Context, user *User) error

	// FindByID retrieves a user by ID.
	FindByID(ctx context.Context, id ulid.ULID) (*User, error)

	// FindByEmail retrieves a user by email. The input is normalized to
	// lowercase before comparison.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByUsername retrieves a user by login alias. Implementations must
	// match the alias against both historical columns, exact case and
	// lowercased.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByEmailOrUsername retrieves a user matching the term against the
	// email column or either alias column, same normalization as above.
	FindByEmailOrUsername(ctx context.Context, term string) (*User, error)

	// List returns all users.
	List(ctx context.Context) ([]*User, error)

	// ListByRole returns all users with the given stored role.
	ListByRole(ctx context.Context, role Role) ([]*User, error)

	// Update rewrites the record identified by user.Email.
	Update(ctx context.Context, user *User) error

	// UpdateCredential rewrites only the stored credential for a user.
	UpdateCredential(ctx context.Context, id ulid.ULID, credential string) error

	// Delete removes the user with the given email.
	Delete(ctx context.Context, email string) error
}
