package storage

import (
	"context"
	"database/sql"
	"encoding/json"

	"docrag/internal/apperr"
)

// DefaultInsertBatchSize bounds the size of one chunk insert statement.
const DefaultInsertBatchSize = 2

// ChunkStore defines the interface for chunk storage operations.
type ChunkStore interface {
	// InsertMany inserts chunks in fixed-size batches and returns the total
	// number inserted.
	InsertMany(ctx context.Context, chunks []DataChunk, batchSize int) (int, error)
	// DeleteByProject removes all of a project's chunks and returns the
	// number removed.
	DeleteByProject(ctx context.Context, projectID int64) (int64, error)
	// PageByProject returns one page of a project's chunks. Page numbering
	// is 1-based; an exhausted page range yields an empty slice, not an
	// error.
	PageByProject(ctx context.Context, projectID int64, pageNo, pageSize int) ([]DataChunk, error)
	// GetByID returns a chunk or apperr.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*DataChunk, error)
}

// ChunkRepo provides methods for chunk operations backed by SQLite.
// It implements the ChunkStore interface.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// InsertMany inserts chunks in transactions of batchSize rows to bound
// statement size. A non-positive batchSize falls back to the default.
func (r *ChunkRepo) InsertMany(ctx context.Context, chunks []DataChunk, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = DefaultInsertBatchSize
	}

	inserted := 0
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		if err := r.insertBatch(ctx, chunks[start:end]); err != nil {
			return inserted, err
		}
		inserted += end - start
	}

	return inserted, nil
}

func (r *ChunkRepo) insertBatch(ctx context.Context, batch []DataChunk) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrapf(apperr.ErrStorage, "failed to begin transaction: %v", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO chunks (project_id, asset_id, chunk_text, chunk_metadata, chunk_order) VALUES (?, ?, ?, ?, ?)",
	)
	if err != nil {
		return apperr.Wrapf(apperr.ErrStorage, "failed to prepare insert: %v", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for i := range batch {
		metadataJSON, err := marshalJSONMap(batch[i].Metadata)
		if err != nil {
			return apperr.Wrapf(apperr.ErrStorage, "failed to encode chunk metadata: %v", err)
		}
		if _, err := stmt.ExecContext(ctx, batch[i].ProjectID, batch[i].AssetID, batch[i].Text, metadataJSON, batch[i].Order); err != nil {
			return apperr.Wrapf(apperr.ErrStorage, "failed to insert chunk: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.Wrapf(apperr.ErrStorage, "failed to commit chunk batch: %v", err)
	}
	return nil
}

// DeleteByProject removes all chunks owned by the project. This is the
// reset path before re-processing.
func (r *ChunkRepo) DeleteByProject(ctx context.Context, projectID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM chunks WHERE project_id = ?", projectID)
	if err != nil {
		return 0, apperr.Wrapf(apperr.ErrStorage, "failed to delete chunks by project: %v", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Wrapf(apperr.ErrStorage, "failed to count deleted chunks: %v", err)
	}
	return deleted, nil
}

// PageByProject returns chunks in insertion order. The indexing loop
// depends on the empty-slice contract for termination.
func (r *ChunkRepo) PageByProject(ctx context.Context, projectID int64, pageNo, pageSize int) ([]DataChunk, error) {
	if pageNo < 1 {
		return nil, apperr.Wrapf(apperr.ErrValidation, "page number must be >= 1, got %d", pageNo)
	}
	if pageSize < 1 {
		return nil, apperr.Wrapf(apperr.ErrValidation, "page size must be >= 1, got %d", pageSize)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, project_id, asset_id, chunk_text, chunk_metadata, chunk_order FROM chunks WHERE project_id = ? ORDER BY id LIMIT ? OFFSET ?",
		projectID, pageSize, (pageNo-1)*pageSize,
	)
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrStorage, "failed to query chunk page: %v", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	chunks := []DataChunk{}
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrapf(apperr.ErrStorage, "row iteration error: %v", err)
	}

	return chunks, nil
}

// GetByID gets a chunk by its database id.
func (r *ChunkRepo) GetByID(ctx context.Context, id int64) (*DataChunk, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, project_id, asset_id, chunk_text, chunk_metadata, chunk_order FROM chunks WHERE id = ?",
		id,
	)

	chunk, err := scanChunk(row)
	if err == sql.ErrNoRows {
		return nil, apperr.Wrapf(apperr.ErrNotFound, "chunk %d", id)
	}
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

func scanChunk(row rowScanner) (*DataChunk, error) {
	var (
		chunk        DataChunk
		metadataJSON sql.NullString
	)
	err := row.Scan(&chunk.ID, &chunk.ProjectID, &chunk.AssetID, &chunk.Text, &metadataJSON, &chunk.Order)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrStorage, "failed to scan chunk: %v", err)
	}

	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &chunk.Metadata); err != nil {
			return nil, apperr.Wrapf(apperr.ErrStorage, "failed to decode chunk metadata: %v", err)
		}
	}
	return &chunk, nil
}
