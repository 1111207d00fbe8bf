package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"docrag/internal/apperr"
	"docrag/internal/contextutil"
	"docrag/internal/rag"
	"docrag/internal/storage"
)

// NLPHandler handles indexing, semantic search and answer endpoints.
type NLPHandler struct {
	projects storage.ProjectStore
	indexer  *rag.Indexer
	engine   *rag.Engine
}

// NewNLPHandler creates an NLPHandler.
func NewNLPHandler(projects storage.ProjectStore, indexer *rag.Indexer, engine *rag.Engine) *NLPHandler {
	return &NLPHandler{
		projects: projects,
		indexer:  indexer,
		engine:   engine,
	}
}

// PushRequest is the body of POST /api/v1/nlp/index/push/{project_id}.
type PushRequest struct {
	DoReset int `json:"do_reset"`
}

// SearchRequest is the body of the search and answer endpoints.
type SearchRequest struct {
	Text  string `json:"text"`
	Limit int    `json:"limit"`
}

func (h *NLPHandler) project(w http.ResponseWriter, r *http.Request) (*storage.Project, bool) {
	projectID := chi.URLParam(r, "projectID")
	if err := storage.ValidateProjectID(projectID); err != nil {
		writeError(w, r, err)
		return nil, false
	}
	project, err := h.projects.GetOrCreate(r.Context(), projectID)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return project, true
}

// IndexPush embeds and indexes all of the project's chunks.
func (h *NLPHandler) IndexPush(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	project, ok := h.project(w, r)
	if !ok {
		return
	}

	var req PushRequest
	if r.Body != nil {
		// An empty body means no reset.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	inserted, err := h.indexer.Push(ctx, project, req.DoReset == 1)
	if err != nil {
		logger := contextutil.LoggerFromContext(ctx)
		logger.ErrorContext(ctx, "index push failed",
			"project_id", project.ProjectID, "inserted_before_failure", inserted, "error", err)
		writeSignal(w, r, apperr.StatusFor(err), apperr.SignalVectorInsertError, envelope{
			"inserted_items_count": inserted,
		})
		return
	}

	writeSignal(w, r, http.StatusOK, apperr.SignalVectorInsertSuccess, envelope{
		"inserted_items_count": inserted,
	})
}

// IndexInfo returns the project's vector collection info.
func (h *NLPHandler) IndexInfo(w http.ResponseWriter, r *http.Request) {
	project, ok := h.project(w, r)
	if !ok {
		return
	}

	info, err := h.engine.CollectionInfo(r.Context(), project.ProjectID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSignal(w, r, http.StatusOK, apperr.SignalCollectionRetrieved, envelope{
		"collection_info": info,
	})
}

// Search performs a semantic search over the project's indexed chunks.
func (h *NLPHandler) Search(w http.ResponseWriter, r *http.Request) {
	project, ok := h.project(w, r)
	if !ok {
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeSignal(w, r, http.StatusBadRequest, apperr.SignalVectorSearchError, nil)
		return
	}

	results, err := h.engine.Search(r.Context(), project.ProjectID, req.Text, req.Limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(results) == 0 {
		writeSignal(w, r, http.StatusBadRequest, apperr.SignalVectorSearchError, nil)
		return
	}

	writeSignal(w, r, http.StatusOK, apperr.SignalVectorSearchSuccess, envelope{
		"results": results,
	})
}

// Answer runs retrieval-augmented generation over the project's chunks.
func (h *NLPHandler) Answer(w http.ResponseWriter, r *http.Request) {
	project, ok := h.project(w, r)
	if !ok {
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeSignal(w, r, http.StatusBadRequest, apperr.SignalRAGAnswerError, nil)
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = rag.DefaultAnswerLimit
	}

	answer, fullPrompt, chatHistory, err := h.engine.Answer(r.Context(), project.ProjectID, req.Text, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if answer == "" {
		writeSignal(w, r, http.StatusBadRequest, apperr.SignalNoAnswer, nil)
		return
	}

	writeSignal(w, r, http.StatusOK, apperr.SignalRAGAnswerSuccess, envelope{
		"answer":       answer,
		"full_prompt":  fullPrompt,
		"chat_history": chatHistory,
	})
}
