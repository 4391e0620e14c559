// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

package errutil

import "net/http"

// codeStatus maps error codes to HTTP statuses. Codes without a mapping
// report an internal error; expected failures all carry explicit codes.
var codeStatus = map[string]int{
	"AUTH_MISSING_INPUT":       http.StatusBadRequest,
	"AUTH_INVALID_INPUT":       http.StatusBadRequest,
	"AUTH_INVALID_EMAIL":       http.StatusBadRequest,
	"AUTH_WEAK_PASSWORD":       http.StatusBadRequest,
	"AUTH_INVALID_ROLE":        http.StatusBadRequest,
	"AUTH_INVALID_CREDENTIALS": http.StatusUnauthorized,
	"AUTH_TOKEN_INVALID":       http.StatusUnauthorized,
	"SESSION_TOKEN_EMPTY":      http.StatusUnauthorized,
	"SESSION_INVALID":          http.StatusUnauthorized,
	"SESSION_EXPIRED":          http.StatusUnauthorized,
	"SESSION_NOT_FOUND":        http.StatusUnauthorized,
	"AUTH_USER_EXISTS":         http.StatusConflict,
	"ADMIN_USER_NOT_FOUND":     http.StatusNotFound,
	"USER_NOT_FOUND":           http.StatusNotFound,
}

// HTTPStatus returns the response status for an error.
func HTTPStatus(err error) int {
	if status, ok := codeStatus[Code(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}
