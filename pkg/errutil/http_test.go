// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

package errutil_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"

	"github.com/bracuout/portal/pkg/errutil"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing input", oops.Code("AUTH_MISSING_INPUT").Errorf("no password"), http.StatusBadRequest},
		{"invalid credentials", oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("denied"), http.StatusUnauthorized},
		{"expired session", oops.Code("SESSION_EXPIRED").Errorf("expired"), http.StatusUnauthorized},
		{"duplicate user", oops.Code("AUTH_USER_EXISTS").Errorf("taken"), http.StatusConflict},
		{"user not found", oops.Code("ADMIN_USER_NOT_FOUND").Errorf("missing"), http.StatusNotFound},
		{"unmapped code", oops.Code("STORE_CONNECT_FAILED").Errorf("boom"), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errutil.HTTPStatus(tt.err))
		})
	}
}
