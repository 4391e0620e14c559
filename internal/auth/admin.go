// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"
)

// SafeUser is a user record with the credential stripped, as returned by
// administrative listings.
type SafeUser struct {
	ID             string    `json:"id"`
	Username       string    `json:"username,omitempty"`
	Name           string    `json:"name"`
	Role           Role      `json:"role"`
	Email          string    `json:"email"`
	StudentID      *string   `json:"studentId,omitempty"`
	GraduationYear *int      `json:"graduationYear,omitempty"`
	Company        *string   `json:"company,omitempty"`
	Position       *string   `json:"position,omitempty"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Safe strips the credential from a user record.
func (u *User) Safe() SafeUser {
	return SafeUser{
		ID:             u.ID.String(),
		Username:       u.Username,
		Name:           u.Name,
		Role:           u.Role,
		Email:          u.Email,
		StudentID:      u.StudentID,
		GraduationYear: u.GraduationYear,
		Company:        u.Company,
		Position:       u.Position,
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// UserUpdate carries the mutable fields of an administrative update. Nil
// fields are left unchanged. A password update is re-hashed before storage.
type UserUpdate struct {
	Username *string `json:"username,omitempty"`
	Name     *string `json:"name,omitempty"`
	Role     *Role   `json:"role,omitempty"`
	Password *string `json:"password,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// AdminService implements the admin user-management console operations.
// Authorization (admin-only) is enforced by the web layer.
type AdminService struct {
	users    Repository
	verifier Verifier
}

// NewAdminService creates a new AdminService.
func NewAdminService(users Repository, verifier Verifier) (*AdminService, error) {
	if users == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("users repository is required")
	}
	if verifier == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("password verifier is required")
	}
	return &AdminService{users: users, verifier: verifier}, nil
}

// ListUsers returns all users with credentials stripped.
func (s *AdminService) ListUsers(ctx context.Context) ([]SafeUser, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, oops.Code("ADMIN_LIST_FAILED").Wrap(err)
	}
	safe := make([]SafeUser, 0, len(users))
	for _, u := range users {
		safe = append(safe, u.Safe())
	}
	return safe, nil
}

// GetUser returns one user by login alias, credential stripped.
func (s *AdminService) GetUser(ctx context.Context, username string) (SafeUser, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return SafeUser{}, oops.Code("ADMIN_USER_NOT_FOUND").
				With("username", username).
				Wrap(err)
		}
		return SafeUser{}, oops.Code("ADMIN_GET_FAILED").With("username", username).Wrap(err)
	}
	return user.Safe(), nil
}

// CreateUser creates an account administratively. Unlike self-registration
// any role is allowed, but the alias must not already be taken.
func (s *AdminService) CreateUser(ctx context.Context, username, password, name string, role Role, email string) (SafeUser, error) {
	if username == "" || password == "" || name == "" || role == "" {
		return SafeUser{}, oops.Code("AUTH_MISSING_INPUT").
			Errorf("username, password, name and role are required")
	}
	if !role.Valid() {
		return SafeUser{}, oops.Code("AUTH_INVALID_ROLE").
			With("role", role.String()).
			Errorf("unknown role %q", role)
	}

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return SafeUser{}, oops.Code("AUTH_USER_EXISTS").
			With("username", username).
			Errorf("user already exists")
	} else if !errors.Is(err, ErrNotFound) {
		return SafeUser{}, oops.Code("ADMIN_CREATE_FAILED").With("username", username).Wrap(err)
	}

	credential, err := s.verifier.Hash(password)
	if err != nil {
		return SafeUser{}, oops.Code("ADMIN_CREATE_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user := &User{
		Email:      NormalizeEmail(email),
		Username:   username,
		Name:       name,
		Role:       role,
		Credential: credential,
		IsActive:   true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return SafeUser{}, err
	}
	return user.Safe(), nil
}

// UpdateUser applies a partial update to the user with the given alias.
func (s *AdminService) UpdateUser(ctx context.Context, username string, update UserUpdate) error {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("ADMIN_USER_NOT_FOUND").With("username", username).Wrap(err)
		}
		return oops.Code("ADMIN_UPDATE_FAILED").With("username", username).Wrap(err)
	}

	if update.Username != nil {
		user.Username = *update.Username
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Role != nil {
		if !update.Role.Valid() {
			return oops.Code("AUTH_INVALID_ROLE").
				With("role", update.Role.String()).
				Errorf("unknown role %q", *update.Role)
		}
		user.Role = *update.Role
	}
	if update.IsActive != nil {
		user.IsActive = *update.IsActive
	}
	if update.Password != nil {
		credential, hashErr := s.verifier.Hash(*update.Password)
		if hashErr != nil {
			return oops.Code("ADMIN_UPDATE_FAILED").
				With("operation", "hash password").
				Wrap(hashErr)
		}
		user.Credential = credential
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("ADMIN_USER_NOT_FOUND").With("username", username).Wrap(err)
		}
		return oops.Code("ADMIN_UPDATE_FAILED").With("username", username).Wrap(err)
	}
	return nil
}

// DeleteUser removes the user with the given alias.
func (s *AdminService) DeleteUser(ctx context.Context, username string) error {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("ADMIN_USER_NOT_FOUND").With("username", username).Wrap(err)
		}
		return oops.Code("ADMIN_DELETE_FAILED").With("username", username).Wrap(err)
	}
	if err := s.users.Delete(ctx, user.Email); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("ADMIN_USER_NOT_FOUND").With("username", username).Wrap(err)
		}
		return oops.Code("ADMIN_DELETE_FAILED").With("username", username).Wrap(err)
	}
	return nil
}
