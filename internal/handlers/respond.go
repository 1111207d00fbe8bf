// Package handlers implements the HTTP endpoints: file upload and
// processing under /api/v1/data, and indexing, search and answer under
// /api/v1/nlp. Every response is a JSON envelope carrying a signal string.
package handlers

import (
	"encoding/json"
	"net/http"

	"docrag/internal/apperr"
	"docrag/internal/contextutil"
)

// envelope is the response body shape shared by all endpoints.
type envelope map[string]any

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger := contextutil.LoggerFromContext(r.Context())
		logger.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

// writeError maps a taxonomy error to its HTTP status and signal.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "request failed", "error", err)
	writeJSON(w, r, apperr.StatusFor(err), envelope{"signal": apperr.SignalFor(err)})
}

// writeSignal writes an envelope with the given signal and extra fields.
func writeSignal(w http.ResponseWriter, r *http.Request, status int, signal apperr.Signal, extra envelope) {
	body := envelope{"signal": signal}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, r, status, body)
}
