// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/samber/oops"

	"github.com/bracuout/portal/internal/auth"
)

// currentIdentity resolves the caller from the session cookie or, for API
// clients, from an Authorization bearer token. The bool reports whether a
// caller was resolved; resolution failures are treated as anonymous.
func (h *Handler) currentIdentity(r *http.Request) (auth.Identity, bool) {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		_, identity, err := h.auth.ValidateSession(r.Context(), cookie.Value)
		if err == nil {
			return identity, true
		}
	}

	if token := bearerToken(r); token != "" {
		claims, err := h.bearer.Verify(token)
		if err == nil {
			return auth.Identity{
				ID:       claims.UserID,
				Name:     claims.Username,
				Username: claims.Username,
				Role:     claims.Role,
				Email:    claims.Email,
			}, true
		}
	}

	return auth.Identity{}, false
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// requireAdmin guards admin API routes. Unauthenticated callers get 401,
// authenticated non-admins get 403.
func (h *Handler) requireAdmin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := h.currentIdentity(r)
		if !ok {
			h.writeError(w, oops.Code("SESSION_INVALID").Errorf("authentication required"))
			return
		}
		if identity.Role != auth.RoleAdmin {
			h.writeJSON(w, http.StatusForbidden, map[string]string{
				"code":    "ACCESS_DENIED",
				"message": "admin access required",
			})
			return
		}
		next(w, r)
	})
}

// gatePages applies the route authorization table to page requests.
// Denials answer with a 303 redirect, matching browser form navigation.
func (h *Handler) gatePages(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.gate.Matches(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		var role auth.Role
		if identity, ok := h.currentIdentity(r); ok {
			role = identity.Role
		}

		decision := h.gate.Check(role, r.URL.Path)
		if !decision.Allowed {
			h.metrics.RecordGateDecision("deny")
			http.Redirect(w, r, decision.Redirect, http.StatusSeeOther)
			return
		}
		h.metrics.RecordGateDecision("allow")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	return sr.ResponseWriter.Write(b)
}

// instrument counts requests by path group and response status.
func (h *Handler) instrument(next http.Handler) http.Handler {
	if h.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		group := "page"
		if strings.HasPrefix(r.URL.Path, "/api/") {
			group = "api"
		}
		h.metrics.RequestsTotal.WithLabelValues(group, strconv.Itoa(rec.status)).Inc()
	})
}
