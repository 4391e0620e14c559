// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

package errutil

import (
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertErrorCode fails the test unless err is a coded error carrying the
// given code (AUTH_USER_EXISTS, CONFIG_INVALID and friends).
func AssertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "want a coded error, got %T: %v", err, err)
	assert.Equal(t, code, oopsErr.Code(), "wrong error code")
}

// AssertErrorContext fails the test unless err is a coded error whose
// structured context holds the given key/value pair.
func AssertErrorContext(t *testing.T, err error, key string, value any) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "want a coded error, got %T: %v", err, err)
	ctx := oopsErr.Context()
	require.Contains(t, ctx, key, "error context is missing key %q", key)
	assert.Equal(t, value, ctx[key], "wrong value for context key %q", key)
}
