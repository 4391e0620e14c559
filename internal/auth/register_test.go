// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracuout/portal/internal/auth"
	"github.com/bracuout/portal/internal/auth/authtest"
	"github.com/bracuout/portal/pkg/errutil"
)

func newRegistrationService(t *testing.T) (*auth.RegistrationService, *authtest.UserRepo) {
	t.Helper()
	users := authtest.NewUserRepo()
	svc, err := auth.NewRegistrationService(users, auth.NewBcryptVerifier())
	require.NoError(t, err)
	return svc, users
}

func studentRegistration() auth.Registration {
	return auth.Registration{
		Name:      "Jane Doe",
		Email:     "Jane@BRACU.ac.bd",
		Password:  "password123",
		Role:      auth.RoleStudent,
		StudentID: "20101234",
	}
}

func TestRegistrationService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("student", func(t *testing.T) {
		svc, _ := newRegistrationService(t)

		user, err := svc.Register(ctx, studentRegistration())
		require.NoError(t, err)

		assert.Equal(t, "jane@bracu.ac.bd", user.Email)
		assert.Equal(t, auth.RoleStudent, user.Role)
		require.NotNil(t, user.StudentID)
		assert.Equal(t, "20101234", *user.StudentID)
		assert.True(t, user.IsActive)
		// Never stored in plain text.
		assert.True(t, auth.IsHashed(user.Credential))
		assert.NotEqual(t, "password123", user.Credential)
	})

	t.Run("alumni with graduation year", func(t *testing.T) {
		svc, _ := newRegistrationService(t)

		user, err := svc.Register(ctx, auth.Registration{
			Name:           "Old Grad",
			Email:          "grad@bracu.ac.bd",
			Password:       "password123",
			Role:           auth.RoleAlumni,
			GraduationYear: "2019",
		})
		require.NoError(t, err)
		require.NotNil(t, user.GraduationYear)
		assert.Equal(t, 2019, *user.GraduationYear)
	})

	t.Run("alumni with non-numeric graduation year", func(t *testing.T) {
		svc, _ := newRegistrationService(t)

		_, err := svc.Register(ctx, auth.Registration{
			Name:           "Old Grad",
			Email:          "grad@bracu.ac.bd",
			Password:       "password123",
			Role:           auth.RoleAlumni,
			GraduationYear: "twenty-nineteen",
		})
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_INPUT")
	})

	t.Run("recruiter", func(t *testing.T) {
		svc, _ := newRegistrationService(t)

		user, err := svc.Register(ctx, auth.Registration{
			Name:     "Rick Ruiter",
			Email:    "rick@corp.example.com",
			Password: "password123",
			Role:     auth.RoleRecruiter,
			Company:  "Corp",
			Position: "Talent Lead",
		})
		require.NoError(t, err)
		require.NotNil(t, user.Company)
		assert.Equal(t, "Corp", *user.Company)
		require.NotNil(t, user.Position)
		assert.Equal(t, "Talent Lead", *user.Position)
	})

	t.Run("missing base fields", func(t *testing.T) {
		svc, _ := newRegistrationService(t)

		reg := studentRegistration()
		reg.Email = ""
		_, err := svc.Register(ctx, reg)
		errutil.AssertErrorCode(t, err, "AUTH_MISSING_INPUT")
	})

	t.Run("missing role-specific field", func(t *testing.T) {
		svc, _ := newRegistrationService(t)

		reg := studentRegistration()
		reg.StudentID = ""
		_, err := svc.Register(ctx, reg)
		errutil.AssertErrorCode(t, err, "AUTH_MISSING_INPUT")
	})

	t.Run("bad email shape", func(t *testing.T) {
		svc, _ := newRegistrationService(t)

		reg := studentRegistration()
		reg.Email = "not-an-email"
		_, err := svc.Register(ctx, reg)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_EMAIL")
	})

	t.Run("password below minimum length", func(t *testing.T) {
		svc, _ := newRegistrationService(t)

		reg := studentRegistration()
		reg.Password = "12345"
		_, err := svc.Register(ctx, reg)
		errutil.AssertErrorCode(t, err, "AUTH_WEAK_PASSWORD")
	})

	t.Run("admin cannot self-register", func(t *testing.T) {
		svc, _ := newRegistrationService(t)

		reg := studentRegistration()
		reg.Role = auth.RoleAdmin
		_, err := svc.Register(ctx, reg)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_ROLE")
	})

	t.Run("graduate cannot self-register", func(t *testing.T) {
		svc, _ := newRegistrationService(t)

		reg := studentRegistration()
		reg.Role = auth.RoleGraduate
		_, err := svc.Register(ctx, reg)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_ROLE")
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, _ := newRegistrationService(t)

		_, err := svc.Register(ctx, studentRegistration())
		require.NoError(t, err)

		reg := studentRegistration()
		reg.Email = "JANE@bracu.ac.bd" // differs only in case
		_, err = svc.Register(ctx, reg)
		errutil.AssertErrorCode(t, err, "AUTH_USER_EXISTS")
	})
}
