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

func newAdminService(t *testing.T) (*auth.AdminService, *authtest.UserRepo) {
	t.Helper()
	users := authtest.NewUserRepo()
	svc, err := auth.NewAdminService(users, auth.NewBcryptVerifier())
	require.NoError(t, err)
	return svc, users
}

func TestAdminService_ListUsers(t *testing.T) {
	ctx := context.Background()
	svc, users := newAdminService(t)
	users.Seed(
		&auth.User{Email: "a@bracu.ac.bd", Username: "a", Role: auth.RoleStudent, Credential: "secret-a"},
		&auth.User{Email: "b@bracu.ac.bd", Username: "b", Role: auth.RoleAdmin, Credential: "secret-b"},
	)

	listed, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	emails := []string{listed[0].Email, listed[1].Email}
	assert.ElementsMatch(t, []string{"a@bracu.ac.bd", "b@bracu.ac.bd"}, emails)
}

func TestAdminService_GetUser(t *testing.T) {
	ctx := context.Background()
	svc, users := newAdminService(t)
	users.Seed(&auth.User{Email: "a@bracu.ac.bd", Username: "jdoe", Name: "Jane", Role: auth.RoleStudent})

	t.Run("found", func(t *testing.T) {
		user, err := svc.GetUser(ctx, "jdoe")
		require.NoError(t, err)
		assert.Equal(t, "Jane", user.Name)
	})

	t.Run("case-insensitive alias", func(t *testing.T) {
		user, err := svc.GetUser(ctx, "JDOE")
		require.NoError(t, err)
		assert.Equal(t, "Jane", user.Name)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := svc.GetUser(ctx, "nobody")
		errutil.AssertErrorCode(t, err, "ADMIN_USER_NOT_FOUND")
	})
}

func TestAdminService_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("creates any role", func(t *testing.T) {
		svc, _ := newAdminService(t)

		user, err := svc.CreateUser(ctx, "boss", "password123", "The Boss", auth.RoleAdmin, "boss@bracu.ac.bd")
		require.NoError(t, err)
		assert.Equal(t, auth.RoleAdmin, user.Role)
		assert.Equal(t, "boss", user.Username)

		got, err := svc.GetUser(ctx, "boss")
		require.NoError(t, err)
		assert.Equal(t, "boss@bracu.ac.bd", got.Email)
	})

	t.Run("duplicate alias", func(t *testing.T) {
		svc, users := newAdminService(t)
		users.Seed(&auth.User{Email: "a@bracu.ac.bd", Username: "jdoe", Role: auth.RoleStudent})

		_, err := svc.CreateUser(ctx, "jdoe", "password123", "Other", auth.RoleStudent, "b@bracu.ac.bd")
		errutil.AssertErrorCode(t, err, "AUTH_USER_EXISTS")
	})

	t.Run("missing input", func(t *testing.T) {
		svc, _ := newAdminService(t)
		_, err := svc.CreateUser(ctx, "", "password123", "Name", auth.RoleStudent, "x@bracu.ac.bd")
		errutil.AssertErrorCode(t, err, "AUTH_MISSING_INPUT")
	})

	t.Run("invalid role", func(t *testing.T) {
		svc, _ := newAdminService(t)
		_, err := svc.CreateUser(ctx, "x", "password123", "Name", auth.Role("faculty"), "x@bracu.ac.bd")
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_ROLE")
	})
}

func TestAdminService_UpdateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update", func(t *testing.T) {
		svc, users := newAdminService(t)
		users.Seed(&auth.User{
			Email: "a@bracu.ac.bd", Username: "jdoe", Name: "Jane",
			Role: auth.RoleStudent, Credential: "plain", IsActive: true,
		})

		newName := "Jane D."
		newRole := auth.RoleAlumni
		require.NoError(t, svc.UpdateUser(ctx, "jdoe", auth.UserUpdate{
			Name: &newName,
			Role: &newRole,
		}))

		got, err := users.FindByEmail(ctx, "a@bracu.ac.bd")
		require.NoError(t, err)
		assert.Equal(t, "Jane D.", got.Name)
		assert.Equal(t, auth.RoleAlumni, got.Role)
		assert.Equal(t, "jdoe", got.Username) // untouched
		assert.Equal(t, "plain", got.Credential)
	})

	t.Run("password update is re-hashed", func(t *testing.T) {
		svc, users := newAdminService(t)
		users.Seed(&auth.User{
			Email: "a@bracu.ac.bd", Username: "jdoe", Role: auth.RoleStudent, Credential: "plain",
		})

		newPassword := "newpassword"
		require.NoError(t, svc.UpdateUser(ctx, "jdoe", auth.UserUpdate{Password: &newPassword}))

		got, err := users.FindByEmail(ctx, "a@bracu.ac.bd")
		require.NoError(t, err)
		assert.True(t, auth.IsHashed(got.Credential))
		assert.True(t, auth.NewBcryptVerifier().Verify("newpassword", got.Credential))
	})

	t.Run("invalid role rejected", func(t *testing.T) {
		svc, users := newAdminService(t)
		users.Seed(&auth.User{Email: "a@bracu.ac.bd", Username: "jdoe", Role: auth.RoleStudent})

		bad := auth.Role("faculty")
		err := svc.UpdateUser(ctx, "jdoe", auth.UserUpdate{Role: &bad})
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_ROLE")
	})

	t.Run("missing user", func(t *testing.T) {
		svc, _ := newAdminService(t)
		name := "X"
		err := svc.UpdateUser(ctx, "nobody", auth.UserUpdate{Name: &name})
		errutil.AssertErrorCode(t, err, "ADMIN_USER_NOT_FOUND")
	})
}

func TestAdminService_DeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes by alias, keyed on email", func(t *testing.T) {
		svc, users := newAdminService(t)
		users.Seed(&auth.User{Email: "a@bracu.ac.bd", Username: "jdoe", Role: auth.RoleStudent})

		require.NoError(t, svc.DeleteUser(ctx, "jdoe"))

		_, err := users.FindByEmail(ctx, "a@bracu.ac.bd")
		require.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("missing user", func(t *testing.T) {
		svc, _ := newAdminService(t)
		err := svc.DeleteUser(ctx, "nobody")
		errutil.AssertErrorCode(t, err, "ADMIN_USER_NOT_FOUND")
	})
}
