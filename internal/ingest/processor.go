package ingest

import (
	"context"
	"io"

	"docrag/internal/apperr"
	"docrag/internal/chunker"
	"docrag/internal/contextutil"
	"docrag/internal/objectstore"
	"docrag/internal/storage"
)

// Processor turns a stored asset into chunk records ready for persistence.
type Processor struct {
	assets  storage.AssetStore
	objects objectstore.ObjectStore
	loader  *Loader
}

// NewProcessor creates a Processor.
func NewProcessor(assets storage.AssetStore, objects objectstore.ObjectStore) *Processor {
	return &Processor{
		assets:  assets,
		objects: objects,
		loader:  NewLoader(),
	}
}

// Process downloads the named asset, extracts its text and splits it into
// chunks. The returned chunks carry the project and asset ids and 1-based
// orders but are not persisted; the caller decides what to do with them.
func (p *Processor) Process(ctx context.Context, project *storage.Project, fileID string, chunkSize, overlap int) ([]storage.DataChunk, error) {
	asset, err := p.assets.GetByName(ctx, project.ID, fileID)
	if err != nil {
		return nil, err
	}

	r, err := p.objects.Download(ctx, project.ProjectID, asset.Name)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = r.Close()
	}()

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrObjectStore, "failed to read object: %v", err)
	}

	segments, err := p.loader.Extract(asset.Name, content)
	if err != nil {
		return nil, err
	}

	splitter, err := chunker.New(chunkSize, overlap)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrValidation, err)
	}
	pieces := splitter.Split(segments)

	chunks := make([]storage.DataChunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = storage.DataChunk{
			ProjectID: project.ID,
			AssetID:   asset.ID,
			Text:      piece.Text,
			Metadata:  piece.Metadata,
			Order:     piece.Order,
		}
	}

	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "processed file",
		"project_id", project.ProjectID, "file_id", fileID, "chunks", len(chunks))
	return chunks, nil
}
