// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

package web

import (
	"net/http"
	"time"

	"github.com/samber/oops"

	"github.com/bracuout/portal/internal/auth"
)

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := decodeJSON(r, &creds); err != nil {
		h.writeError(w, err)
		return
	}

	identity, session, token, err := h.auth.Login(r.Context(), creds, r.UserAgent(), clientAddr(r))
	if err != nil {
		h.metrics.RecordLogin("failure")
		h.writeError(w, err)
		return
	}

	h.metrics.RecordLogin("success")
	h.setSessionCookie(w, token, session.ExpiresAt)
	h.writeJSON(w, http.StatusOK, map[string]any{"user": identity})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		session, _, err := h.auth.ValidateSession(r.Context(), cookie.Value)
		if err == nil {
			if err := h.auth.Logout(r.Context(), session.ID); err != nil {
				h.logger.Warn("failed to delete session", "error", err)
			}
		}
	}

	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		h.writeError(w, oops.Code("SESSION_INVALID").Errorf("no active session"))
		return
	}

	_, identity, err := h.auth.ValidateSession(r.Context(), cookie.Value)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"user": identity})
}

func (h *Handler) handleBearerToken(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.currentIdentity(r)
	if !ok {
		h.writeError(w, oops.Code("SESSION_INVALID").Errorf("authentication required"))
		return
	}

	token, err := h.bearer.Issue(identity)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg auth.Registration
	if err := decodeJSON(r, &reg); err != nil {
		h.writeError(w, err)
		return
	}

	user, err := h.register.Register(r.Context(), reg)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{"user": user.Safe()})
}
