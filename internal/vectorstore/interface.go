// Package vectorstore abstracts the vector database used for semantic
// retrieval. Collections hold fixed-size embedding vectors with a text
// payload; records are addressed by numeric ids assigned by the caller.
package vectorstore

import "context"

// Distance metrics supported by the stores.
const (
	DistanceCosine = "cosine"
	DistanceDot    = "dot"
)

// RetrievedDocument is a single search hit.
type RetrievedDocument struct {
	Text  string  `json:"text"`
	Score float32 `json:"score"`
}

// CollectionInfo describes a collection's configuration and size.
type CollectionInfo struct {
	Name        string `json:"name"`
	VectorSize  int    `json:"vector_size"`
	PointsCount int    `json:"points_count"`
	Status      string `json:"status"`
}

// VectorStore defines the operations the retrieval pipeline needs from a
// vector database.
type VectorStore interface {
	// Connect establishes the connection to the backing store.
	Connect(ctx context.Context) error

	// Disconnect releases the connection.
	Disconnect() error

	// CollectionExists reports whether the named collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)

	// ListCollections returns the names of all collections.
	ListCollections(ctx context.Context) ([]string, error)

	// GetCollectionInfo returns configuration and point count for a
	// collection.
	GetCollectionInfo(ctx context.Context, collection string) (*CollectionInfo, error)

	// DeleteCollection removes a collection. Deleting a collection that
	// does not exist is not an error.
	DeleteCollection(ctx context.Context, collection string) error

	// CreateCollection creates a collection with the given vector size.
	// When doReset is set an existing collection is dropped first. The
	// return value reports whether a new collection was created.
	CreateCollection(ctx context.Context, collection string, embeddingSize int, doReset bool) (bool, error)

	// InsertOne stores a single record.
	InsertOne(ctx context.Context, collection, text string, vector []float32, metadata map[string]any, recordID uint64) error

	// InsertMany stores records in batches of batchSize. The texts,
	// vectors, metadatas and recordIDs slices are parallel. A failure
	// mid-run leaves the batches inserted before it in place; there is
	// no rollback, and the error names the offset of the failed batch.
	InsertMany(ctx context.Context, collection string, texts []string, vectors [][]float32, metadatas []map[string]any, recordIDs []uint64, batchSize int) error

	// SearchByVector returns up to limit documents nearest to the query
	// vector, best first.
	SearchByVector(ctx context.Context, collection string, vector []float32, limit int) ([]RetrievedDocument, error)
}
