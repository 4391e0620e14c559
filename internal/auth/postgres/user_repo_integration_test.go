// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracuout/portal/internal/auth"
	"github.com/bracuout/portal/internal/auth/postgres"
)

// insertLegacyUser writes a row the way old imports did: the alias lives in
// user_name, username stays NULL.
func insertLegacyUser(t *testing.T, email, legacyAlias, role string) ulid.ULID {
	t.Helper()
	ctx := context.Background()
	id := ulid.Make()

	_, err := testPool.Exec(ctx, `
		INSERT INTO users (id, email, user_name, name, role, password, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, NOW(), NOW())
	`, id.String(), email, legacyAlias, "Legacy User", role, "plaintextpw")
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = testPool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id.String())
	})
	return id
}

func createUser(t *testing.T, repo *postgres.UserRepository, email, username, role string) *auth.User {
	t.Helper()
	ctx := context.Background()
	user := &auth.User{
		Email:      email,
		Username:   username,
		Name:       "Test User",
		Role:       auth.Role(role),
		Credential: "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW",
		IsActive:   true,
	}
	require.NoError(t, repo.Create(ctx, user))
	t.Cleanup(func() {
		_, _ = testPool.Exec(ctx, `DELETE FROM users WHERE id = $1`, user.ID.String())
	})
	return user
}

func TestUserRepository_Integration_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewUserRepository(testPool)

	user := createUser(t, repo, "jane@bracu.ac.bd", "jdoe", "student")

	t.Run("find by id", func(t *testing.T) {
		got, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, got.Email)
	})

	t.Run("find by email is case-insensitive", func(t *testing.T) {
		got, err := repo.FindByEmail(ctx, "JANE@BRACU.AC.BD")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("duplicate email conflicts regardless of case", func(t *testing.T) {
		err := repo.Create(ctx, &auth.User{
			Email: "Jane@bracu.ac.bd", Name: "Dup", Role: auth.RoleStudent,
		})
		require.Error(t, err)
	})
}

func TestUserRepository_Integration_LegacyAliasColumn(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewUserRepository(testPool)

	id := insertLegacyUser(t, "legacy@bracu.ac.bd", "old_alias", "graduate")

	t.Run("find by username reads legacy column", func(t *testing.T) {
		got, err := repo.FindByUsername(ctx, "OLD_ALIAS")
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, "old_alias", got.Username)
		assert.Equal(t, auth.RoleGraduate, got.Role)
	})

	t.Run("combined lookup prefers email match", func(t *testing.T) {
		// A second user whose current-column alias equals the legacy
		// user's email local part must not shadow the email match.
		createUser(t, repo, "other@bracu.ac.bd", "legacy", "student")

		got, err := repo.FindByEmailOrUsername(ctx, "legacy@bracu.ac.bd")
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
	})
}

func TestUserRepository_Integration_AliasCaseCollision(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewUserRepository(testPool)

	// Legacy imports allowed the same alias with different casing, with the
	// other alias column NULL on both rows.
	upper := createUser(t, repo, "upper@bracu.ac.bd", "Tanvir", "alumni")
	lower := createUser(t, repo, "lower@bracu.ac.bd", "tanvir", "student")

	t.Run("exact case wins within a column", func(t *testing.T) {
		got, err := repo.FindByUsername(ctx, "tanvir")
		require.NoError(t, err)
		assert.Equal(t, lower.ID, got.ID)

		got, err = repo.FindByUsername(ctx, "Tanvir")
		require.NoError(t, err)
		assert.Equal(t, upper.ID, got.ID)
	})

	t.Run("exact case wins across columns", func(t *testing.T) {
		legacyID := insertLegacyUser(t, "legacy-case@bracu.ac.bd", "Rahim", "graduate")
		createUser(t, repo, "current-case@bracu.ac.bd", "rahim", "student")

		got, err := repo.FindByUsername(ctx, "Rahim")
		require.NoError(t, err)
		assert.Equal(t, legacyID, got.ID)
	})
}

func TestUserRepository_Integration_UpdateCredential(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewUserRepository(testPool)

	id := insertLegacyUser(t, "migrate-me@bracu.ac.bd", "migrate_me", "student")

	require.NoError(t, repo.UpdateCredential(ctx, id, "$2a$12$somebcryptreplacement000000000000000000000000000000"))

	got, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, auth.IsHashed(got.Credential))
}

func TestSessionRepository_Integration_Lifecycle(t *testing.T) {
	ctx := context.Background()
	users := postgres.NewUserRepository(testPool)
	sessions := postgres.NewSessionRepository(testPool)

	user := createUser(t, users, "session-user@bracu.ac.bd", "sess", "student")

	_, hash, err := auth.GenerateSessionToken()
	require.NoError(t, err)

	session, err := auth.NewWebSession(user.ID, hash, "Mozilla/5.0", "10.0.0.1",
		time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, sessions.Create(ctx, session))

	t.Cleanup(func() {
		_, _ = testPool.Exec(ctx, `DELETE FROM web_sessions WHERE id = $1`, session.ID.String())
	})

	got, err := sessions.GetByTokenHash(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)

	require.NoError(t, sessions.UpdateLastSeen(ctx, session.ID, time.Now()))

	require.NoError(t, sessions.Delete(ctx, session.ID))
	_, err = sessions.GetByTokenHash(ctx, hash)
	require.ErrorIs(t, err, auth.ErrNotFound)
}

func TestSessionRepository_Integration_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	users := postgres.NewUserRepository(testPool)
	sessions := postgres.NewSessionRepository(testPool)

	user := createUser(t, users, "expired-user@bracu.ac.bd", "expired", "student")

	_, hash, err := auth.GenerateSessionToken()
	require.NoError(t, err)
	session, err := auth.NewWebSession(user.ID, hash, "", "", time.Now().Add(time.Hour))
	require.NoError(t, err)
	session.ExpiresAt = time.Now().Add(-time.Hour)
	require.NoError(t, sessions.Create(ctx, session))

	n, err := sessions.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))

	_, err = sessions.GetByTokenHash(ctx, hash)
	require.ErrorIs(t, err, auth.ErrNotFound)
}
