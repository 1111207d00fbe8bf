package rag

import (
	"context"
	"sync"

	"docrag/internal/apperr"
	"docrag/internal/contextutil"
	"docrag/internal/llm"
	"docrag/internal/storage"
	"docrag/internal/vectorstore"
)

// Indexer pushes a project's stored chunks into its vector collection.
type Indexer struct {
	chunks          storage.ChunkStore
	provider        llm.Provider
	store           vectorstore.VectorStore
	pageSize        int
	insertBatchSize int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewIndexer creates an Indexer. pageSize controls how many chunks are read
// from storage per iteration and insertBatchSize how many points go to the
// vector store per upsert.
func NewIndexer(chunks storage.ChunkStore, provider llm.Provider, store vectorstore.VectorStore, pageSize, insertBatchSize int) *Indexer {
	if pageSize <= 0 {
		pageSize = 50
	}
	if insertBatchSize <= 0 {
		insertBatchSize = 50
	}
	return &Indexer{
		chunks:          chunks,
		provider:        provider,
		store:           store,
		pageSize:        pageSize,
		insertBatchSize: insertBatchSize,
		locks:           make(map[string]*sync.Mutex),
	}
}

// projectLock returns the mutex serializing indexing runs for one project.
func (ix *Indexer) projectLock(projectID string) *sync.Mutex {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	lock, ok := ix.locks[projectID]
	if !ok {
		lock = &sync.Mutex{}
		ix.locks[projectID] = lock
	}
	return lock
}

// Push embeds and indexes every chunk of the project, paging through
// storage. The collection is created, or dropped and recreated when doReset
// is set, once before the first page. Record ids are assigned sequentially
// from 0 across the whole run, so a second run without reset overwrites the
// ids it reuses; such runs are logged. Returns the number of chunks
// inserted, which is the partial count when an error aborts the run.
func (ix *Indexer) Push(ctx context.Context, project *storage.Project, doReset bool) (int, error) {
	lock := ix.projectLock(project.ProjectID)
	lock.Lock()
	defer lock.Unlock()

	logger := contextutil.LoggerFromContext(ctx)
	collection := CollectionName(project.ProjectID)

	if !doReset {
		if info, err := ix.store.GetCollectionInfo(ctx, collection); err == nil && info.PointsCount > 0 {
			logger.WarnContext(ctx, "indexing without reset reuses record ids and overwrites existing points",
				"project_id", project.ProjectID, "collection", collection, "existing_points", info.PointsCount)
		}
	}

	if _, err := ix.store.CreateCollection(ctx, collection, ix.provider.EmbeddingSize(), doReset); err != nil {
		return 0, apperr.Wrap(apperr.ErrIndexing, err)
	}

	inserted := 0
	nextID := uint64(0)
	for pageNo := 1; ; pageNo++ {
		page, err := ix.chunks.PageByProject(ctx, project.ID, pageNo, ix.pageSize)
		if err != nil {
			return inserted, apperr.Wrap(apperr.ErrIndexing, err)
		}
		if len(page) == 0 {
			break
		}

		texts := make([]string, len(page))
		metadatas := make([]map[string]any, len(page))
		vectors := make([][]float32, len(page))
		ids := make([]uint64, len(page))
		for i, chunk := range page {
			texts[i] = chunk.Text
			metadatas[i] = chunk.Metadata
			ids[i] = nextID
			nextID++

			vector, err := ix.provider.EmbedText(ctx, chunk.Text, llm.DocTypeDocument)
			if err != nil {
				return inserted, apperr.Wrap(apperr.ErrIndexing, err)
			}
			vectors[i] = vector
		}

		if err := ix.store.InsertMany(ctx, collection, texts, vectors, metadatas, ids, ix.insertBatchSize); err != nil {
			return inserted, apperr.Wrap(apperr.ErrIndexing, err)
		}
		inserted += len(page)

		logger.InfoContext(ctx, "indexed page",
			"project_id", project.ProjectID, "page", pageNo, "chunks", len(page), "total", inserted)
	}

	return inserted, nil
}
