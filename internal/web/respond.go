// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

package web

import (
	"encoding/json"
	"net/http"

	"github.com/samber/oops"

	"github.com/bracuout/portal/pkg/errutil"
)

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to encode response", "error", err)
	}
}

// writeError maps an error's code to an HTTP status and responds with a
// JSON body carrying the code and a message safe to show to clients.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := errutil.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		errutil.LogError(h.logger, "request failed", err)
	}

	body := map[string]string{"message": clientMessage(err, status)}
	if code := errutil.Code(err); code != "" {
		body["code"] = code
	}

	h.writeJSON(w, status, body)
}

// clientMessage keeps internal error detail out of responses.
func clientMessage(err error, status int) string {
	if status >= http.StatusInternalServerError {
		return "internal server error"
	}
	if oopsErr, ok := oops.AsOops(err); ok {
		return oopsErr.Error()
	}
	return err.Error()
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return oops.Code("AUTH_INVALID_INPUT").Wrapf(err, "invalid request body")
	}
	return nil
}
