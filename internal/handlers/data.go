package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"docrag/internal/apperr"
	"docrag/internal/contextutil"
	"docrag/internal/ingest"
	"docrag/internal/objectstore"
	"docrag/internal/storage"
)

// DataHandlerOptions carries the tunables for upload and processing.
type DataHandlerOptions struct {
	Policy           ingest.UploadPolicy
	DefaultChunkSize int
	DefaultOverlap   int
	InsertBatchSize  int
}

// DataHandler handles file upload and processing endpoints.
type DataHandler struct {
	projects  storage.ProjectStore
	assets    storage.AssetStore
	chunks    storage.ChunkStore
	objects   objectstore.ObjectStore
	processor *ingest.Processor
	opts      DataHandlerOptions
}

// NewDataHandler creates a DataHandler.
func NewDataHandler(projects storage.ProjectStore, assets storage.AssetStore, chunks storage.ChunkStore, objects objectstore.ObjectStore, opts DataHandlerOptions) *DataHandler {
	if opts.DefaultChunkSize <= 0 {
		opts.DefaultChunkSize = 100
	}
	if opts.DefaultOverlap < 0 {
		opts.DefaultOverlap = 20
	}
	return &DataHandler{
		projects:  projects,
		assets:    assets,
		chunks:    chunks,
		objects:   objects,
		processor: ingest.NewProcessor(assets, objects),
		opts:      opts,
	}
}

// ProcessRequest is the body of POST /api/v1/data/process/{project_id}.
type ProcessRequest struct {
	FileID      string `json:"file_id"`
	ChunkSize   int    `json:"chunk_size"`
	OverlapSize int    `json:"overlap_size"`
	DoReset     int    `json:"do_reset"`
}

// Upload accepts a multipart file, stores it and records the asset.
func (h *DataHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	projectID := chi.URLParam(r, "projectID")
	if err := storage.ValidateProjectID(projectID); err != nil {
		writeError(w, r, err)
		return
	}

	project, err := h.projects.GetOrCreate(ctx, projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeSignal(w, r, http.StatusBadRequest, apperr.SignalFileUploadFailed, nil)
		return
	}
	defer func() {
		_ = file.Close()
	}()

	if err := h.opts.Policy.Validate(header.Filename, header.Size); err != nil {
		writeSignal(w, r, http.StatusBadRequest, uploadSignal(err), nil)
		return
	}

	fileID := ingest.UniqueFileName(header.Filename)
	if err := h.objects.Upload(ctx, project.ProjectID, fileID, file, header.Size); err != nil {
		logger.ErrorContext(ctx, "upload failed", "project_id", projectID, "file", header.Filename, "error", err)
		writeSignal(w, r, http.StatusBadRequest, apperr.SignalFileUploadFailed, nil)
		return
	}

	_, err = h.assets.Create(ctx, &storage.Asset{
		ProjectID: project.ID,
		Type:      storage.AssetTypeFile,
		Name:      fileID,
		Size:      header.Size,
		Config:    map[string]any{"original_name": header.Filename},
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.InfoContext(ctx, "file uploaded", "project_id", projectID, "file_id", fileID, "size", header.Size)
	writeSignal(w, r, http.StatusOK, apperr.SignalFileUploadSuccess, envelope{"file_id": fileID})
}

// Process chunks uploaded files and persists the chunks, optionally
// deleting the project's existing chunks first. An empty file_id processes
// every file asset the project has.
func (h *DataHandler) Process(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	projectID := chi.URLParam(r, "projectID")
	if err := storage.ValidateProjectID(projectID); err != nil {
		writeError(w, r, err)
		return
	}

	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeSignal(w, r, http.StatusBadRequest, apperr.SignalProcessingFailed, nil)
		return
	}
	if req.ChunkSize <= 0 {
		req.ChunkSize = h.opts.DefaultChunkSize
	}
	if req.OverlapSize <= 0 {
		req.OverlapSize = h.opts.DefaultOverlap
	}

	project, err := h.projects.GetOrCreate(ctx, projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	fileIDs := []string{req.FileID}
	if req.FileID == "" {
		assets, err := h.assets.ListByProject(ctx, project.ID, storage.AssetTypeFile)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if len(assets) == 0 {
			writeSignal(w, r, http.StatusBadRequest, apperr.SignalNoFiles, nil)
			return
		}
		fileIDs = fileIDs[:0]
		for _, asset := range assets {
			fileIDs = append(fileIDs, asset.Name)
		}
	}

	var chunks []storage.DataChunk
	for _, fileID := range fileIDs {
		fileChunks, err := h.processor.Process(ctx, project, fileID, req.ChunkSize, req.OverlapSize)
		if err != nil {
			if errors.Is(err, ingest.ErrFileTypeNotSupported) {
				writeSignal(w, r, http.StatusBadRequest, apperr.SignalFileTypeNotSupported, nil)
				return
			}
			writeError(w, r, err)
			return
		}
		chunks = append(chunks, fileChunks...)
	}
	if len(chunks) == 0 {
		writeSignal(w, r, http.StatusBadRequest, apperr.SignalProcessingFailed, nil)
		return
	}

	var deleted int64
	if req.DoReset == 1 {
		deleted, err = h.chunks.DeleteByProject(ctx, project.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		logger.InfoContext(ctx, "chunks deleted", "project_id", projectID, "deleted", deleted)
	}

	inserted, err := h.chunks.InsertMany(ctx, chunks, h.opts.InsertBatchSize)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.InfoContext(ctx, "files processed",
		"project_id", projectID, "files", len(fileIDs), "inserted", inserted, "deleted", deleted)
	writeSignal(w, r, http.StatusOK, apperr.SignalProcessingSuccess, envelope{
		"inserted_chunks": inserted,
		"deleted_chunks":  deleted,
	})
}

// uploadSignal distinguishes the two upload validation failures.
func uploadSignal(err error) apperr.Signal {
	switch {
	case errors.Is(err, ingest.ErrFileSizeExceeded):
		return apperr.SignalFileSizeExceeded
	case errors.Is(err, ingest.ErrFileTypeNotSupported):
		return apperr.SignalFileTypeNotSupported
	default:
		return apperr.SignalFileUploadFailed
	}
}
