// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ManuGH/dvrguide/internal/control/read"
	"github.com/ManuGH/dvrguide/internal/log"
	"github.com/ManuGH/dvrguide/internal/snapshot"
)

// problem is the body of every error response.
type problem struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeProblem writes an error body carrying the request id.
func writeProblem(w http.ResponseWriter, r *http.Request, code int, msg string) {
	writeJSON(w, code, problem{Error: msg, RequestID: log.RequestIDFromContext(r.Context())})
}

// writeReadError maps read layer failures onto status codes. Unexpected
// errors are logged and reported without detail.
func (s *Server) writeReadError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, read.ErrRuleNotFound):
		writeProblem(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, snapshot.ErrNotLoaded):
		writeProblem(w, r, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, r.Context().Err()):
		// Client went away; nobody reads the body.
		writeProblem(w, r, http.StatusServiceUnavailable, "request canceled")
	default:
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "api.read_failed").
			Str("op", op).
			Msg("read failed")
		writeProblem(w, r, http.StatusInternalServerError, "internal server error")
	}
}
