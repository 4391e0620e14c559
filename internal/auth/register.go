// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

package auth

import (
	"context"
	"strconv"
	"strings"

	"github.com/samber/oops"
)

// Registration is the self-service sign-up input. Role-specific fields are
// required only for their role.
type Registration struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           Role   `json:"role"`
	StudentID      string `json:"studentId,omitempty"`
	GraduationYear string `json:"graduationYear,omitempty"`
	Company        string `json:"company,omitempty"`
	Position       string `json:"position,omitempty"`
}

// RegistrationService creates portal accounts. New credentials are always
// stored hashed; only legacy records carry plain text.
type RegistrationService struct {
	users    Repository
	verifier Verifier
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(users Repository, verifier Verifier) (*RegistrationService, error) {
	if users == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("users repository is required")
	}
	if verifier == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("password verifier is required")
	}
	return &RegistrationService{users: users, verifier: verifier}, nil
}

// Register validates the input, hashes the password and creates the user.
// A duplicate email fails with AUTH_USER_EXISTS.
func (s *RegistrationService) Register(ctx context.Context, reg Registration) (*User, error) {
	if err := s.validate(&reg); err != nil {
		return nil, err
	}

	credential, err := s.verifier.Hash(reg.Password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user := &User{
		Email:      NormalizeEmail(reg.Email),
		Name:       reg.Name,
		Role:       reg.Role,
		Credential: credential,
		IsActive:   true,
	}

	switch reg.Role {
	case RoleStudent:
		studentID := reg.StudentID
		user.StudentID = &studentID
	case RoleAlumni:
		year, convErr := strconv.Atoi(reg.GraduationYear)
		if convErr != nil {
			return nil, oops.Code("AUTH_INVALID_INPUT").
				With("graduationYear", reg.GraduationYear).
				Errorf("graduation year must be a number")
		}
		user.GraduationYear = &year
	case RoleRecruiter:
		company, position := reg.Company, reg.Position
		user.Company = &company
		user.Position = &position
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *RegistrationService) validate(reg *Registration) error {
	reg.Name = strings.TrimSpace(reg.Name)
	if reg.Name == "" || reg.Email == "" || reg.Password == "" || reg.Role == "" {
		return oops.Code("AUTH_MISSING_INPUT").
			Errorf("name, email, password and role are required")
	}
	if err := ValidateEmail(reg.Email); err != nil {
		return err
	}
	if err := ValidatePassword(reg.Password); err != nil {
		return err
	}

	switch reg.Role {
	case RoleStudent:
		if reg.StudentID == "" {
			return oops.Code("AUTH_MISSING_INPUT").Errorf("student ID is required for student registration")
		}
	case RoleAlumni:
		if reg.GraduationYear == "" {
			return oops.Code("AUTH_MISSING_INPUT").Errorf("graduation year is required for alumni registration")
		}
	case RoleRecruiter:
		if reg.Company == "" || reg.Position == "" {
			return oops.Code("AUTH_MISSING_INPUT").Errorf("company and position are required for recruiter registration")
		}
	default:
		// admin and graduate accounts are created administratively only
		return oops.Code("AUTH_INVALID_ROLE").
			With("role", reg.Role.String()).
			Errorf("role %q cannot self-register", reg.Role)
	}
	return nil
}
