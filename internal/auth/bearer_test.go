// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracuout/portal/internal/auth"
	"github.com/bracuout/portal/pkg/errutil"
)

func testIdentity() auth.Identity {
	return auth.Identity{
		ID:       "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Name:     "Jane Doe",
		Username: "jdoe",
		Role:     auth.RoleStudent,
		Email:    "jane@bracu.ac.bd",
	}
}

func TestNewBearerIssuer(t *testing.T) {
	t.Run("empty secret rejected", func(t *testing.T) {
		_, err := auth.NewBearerIssuer("", time.Hour)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_DEPS")
	})

	t.Run("non-positive expiry defaults", func(t *testing.T) {
		issuer, err := auth.NewBearerIssuer("secret", 0)
		require.NoError(t, err)
		require.NotNil(t, issuer)
	})
}

func TestBearerIssuer_RoundTrip(t *testing.T) {
	issuer, err := auth.NewBearerIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue(testIdentity())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, "01ARZ3NDEKTSV4RRFFQ69G5FAV", claims.UserID)
	assert.Equal(t, "jdoe", claims.Username)
	assert.Equal(t, "jane@bracu.ac.bd", claims.Email)
	assert.Equal(t, auth.RoleStudent, claims.Role)
	assert.Equal(t, auth.BearerTokenIssuer, claims.Issuer)
}

func TestBearerIssuer_Verify(t *testing.T) {
	issuer, err := auth.NewBearerIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	t.Run("garbage token", func(t *testing.T) {
		_, err := issuer.Verify("not.a.jwt")
		errutil.AssertErrorCode(t, err, "AUTH_TOKEN_INVALID")
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := auth.NewBearerIssuer("other-secret", time.Hour)
		require.NoError(t, err)

		token, err := other.Issue(testIdentity())
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		errutil.AssertErrorCode(t, err, "AUTH_TOKEN_INVALID")
	})

	t.Run("expired token", func(t *testing.T) {
		short, err := auth.NewBearerIssuer("test-secret", time.Millisecond)
		require.NoError(t, err)

		token, err := short.Issue(testIdentity())
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)

		_, err = issuer.Verify(token)
		errutil.AssertErrorCode(t, err, "AUTH_TOKEN_INVALID")
	})
}
