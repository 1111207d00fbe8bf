package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"docrag/internal/contextutil"
	"docrag/internal/vectorstore"
)

// HealthHandler reports the availability of the service's dependencies.
type HealthHandler struct {
	db                 *sql.DB
	vectorStore        vectorstore.VectorStore
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(db *sql.DB, vectorStore vectorstore.VectorStore) *HealthHandler {
	return &HealthHandler{
		db:                 db,
		vectorStore:        vectorStore,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse is the health check response body.
type HealthResponse struct {
	// Overall health status: "healthy" or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// List of issues (only present if status is unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP runs the dependency checks and reports 200 or 503.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string

	if err := h.db.PingContext(checkCtx); err != nil {
		logger.WarnContext(ctx, "database health check failed", "error", err)
		checks["database"] = "error"
		issues = append(issues, "database_unavailable")
	} else {
		checks["database"] = "ok"
	}

	if _, err := h.vectorStore.ListCollections(checkCtx); err != nil {
		logger.WarnContext(ctx, "vector store health check failed", "error", err)
		checks["vector_store"] = "error"
		issues = append(issues, "vector_store_unavailable")
	} else {
		checks["vector_store"] = "ok"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if len(issues) > 0 {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.ErrorContext(ctx, "failed to encode health response", "error", err)
	}
}
