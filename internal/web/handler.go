// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

// Package web serves the portal HTTP API and enforces the route
// authorization gate on page requests.
package web

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/samber/oops"

	"github.com/bracuout/portal/internal/access"
	"github.com/bracuout/portal/internal/auth"
	"github.com/bracuout/portal/internal/observability"
)

// SessionCookie is the name of the web session cookie.
const SessionCookie = "portal_session"

// Handler serves the portal's HTTP routes.
type Handler struct {
	auth     *auth.Service
	register *auth.RegistrationService
	admin    *auth.AdminService
	bearer   *auth.BearerIssuer
	gate     *access.Gate
	metrics  *observability.Metrics
	logger   *slog.Logger

	sessionExpiry time.Duration
	secureCookies bool
	pages         http.Handler
}

// Options configures optional Handler behavior.
type Options struct {
	// Metrics records login and gate counters; nil disables recording.
	Metrics *observability.Metrics
	// Logger defaults to slog.Default.
	Logger *slog.Logger
	// SessionExpiry bounds the session cookie lifetime; defaults to
	// auth.SessionTokenExpiry.
	SessionExpiry time.Duration
	// SecureCookies marks session cookies Secure; enable behind TLS.
	SecureCookies bool
	// Pages serves page requests that pass the gate. The default writes a
	// minimal placeholder so the gate is exercisable without a frontend.
	Pages http.Handler
}

// NewHandler creates the portal HTTP handler.
func NewHandler(authSvc *auth.Service, register *auth.RegistrationService, admin *auth.AdminService, bearer *auth.BearerIssuer, gate *access.Gate, opts Options) (*Handler, error) {
	if authSvc == nil {
		return nil, oops.Code("WEB_INVALID_DEPS").Errorf("auth service is required")
	}
	if register == nil {
		return nil, oops.Code("WEB_INVALID_DEPS").Errorf("registration service is required")
	}
	if admin == nil {
		return nil, oops.Code("WEB_INVALID_DEPS").Errorf("admin service is required")
	}
	if bearer == nil {
		return nil, oops.Code("WEB_INVALID_DEPS").Errorf("bearer issuer is required")
	}
	if gate == nil {
		return nil, oops.Code("WEB_INVALID_DEPS").Errorf("gate is required")
	}

	h := &Handler{
		auth:          authSvc,
		register:      register,
		admin:         admin,
		bearer:        bearer,
		gate:          gate,
		metrics:       opts.Metrics,
		logger:        opts.Logger,
		sessionExpiry: opts.SessionExpiry,
		secureCookies: opts.SecureCookies,
		pages:         opts.Pages,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.sessionExpiry <= 0 {
		h.sessionExpiry = auth.SessionTokenExpiry
	}
	if h.pages == nil {
		h.pages = http.HandlerFunc(defaultPage)
	}
	return h, nil
}

// Routes returns the portal's HTTP routing table.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", h.handleLogout)
	mux.HandleFunc("GET /api/auth/session", h.handleSession)
	mux.HandleFunc("POST /api/auth/bearer-token", h.handleBearerToken)
	mux.HandleFunc("POST /api/register", h.handleRegister)

	mux.Handle("GET /api/admin/users", h.requireAdmin(h.handleAdminList))
	mux.Handle("POST /api/admin/users", h.requireAdmin(h.handleAdminCreate))
	mux.Handle("GET /api/admin/users/{username}", h.requireAdmin(h.handleAdminGet))
	mux.Handle("PUT /api/admin/users/{username}", h.requireAdmin(h.handleAdminUpdate))
	mux.Handle("DELETE /api/admin/users/{username}", h.requireAdmin(h.handleAdminDelete))

	// Everything else is a page request subject to the gate.
	mux.Handle("/", h.gatePages(h.pages))

	return h.instrument(mux)
}

func defaultPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte("<!doctype html><title>BRACU-out</title><p>" + r.URL.Path + "</p>"))
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
