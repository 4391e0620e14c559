// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

package web

import (
	"net/http"

	"github.com/bracuout/portal/internal/auth"
)

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Email    string `json:"email"`
}

func (h *Handler) handleAdminList(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.ListUsers(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *Handler) handleAdminCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	role, err := auth.ParseRole(req.Role)
	if err != nil {
		h.writeError(w, err)
		return
	}

	user, err := h.admin.CreateUser(r.Context(), req.Username, req.Password, req.Name, role, req.Email)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

func (h *Handler) handleAdminGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.admin.GetUser(r.Context(), r.PathValue("username"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *Handler) handleAdminUpdate(w http.ResponseWriter, r *http.Request) {
	var update auth.UserUpdate
	if err := decodeJSON(r, &update); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.admin.UpdateUser(r.Context(), r.PathValue("username"), update); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAdminDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteUser(r.Context(), r.PathValue("username")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
