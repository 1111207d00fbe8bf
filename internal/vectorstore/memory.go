package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"docrag/internal/apperr"
)

type memoryRecord struct {
	id     uint64
	text   string
	vector []float32
	meta   map[string]any
}

type memoryCollection struct {
	vectorSize int
	records    map[uint64]memoryRecord
}

// MemoryStore is an in-process VectorStore used for tests and for running
// without a vector database.
type MemoryStore struct {
	mu          sync.RWMutex
	distance    string
	collections map[string]*memoryCollection
}

// NewMemoryStore creates an empty in-memory vector store.
func NewMemoryStore(distance string) (*MemoryStore, error) {
	switch distance {
	case DistanceCosine, DistanceDot, "":
		if distance == "" {
			distance = DistanceCosine
		}
	default:
		return nil, apperr.Wrapf(apperr.ErrValidation, "unsupported distance method %q", distance)
	}
	return &MemoryStore{
		distance:    distance,
		collections: make(map[string]*memoryCollection),
	}, nil
}

func (s *MemoryStore) Connect(_ context.Context) error { return nil }

func (s *MemoryStore) Disconnect() error { return nil }

func (s *MemoryStore) CollectionExists(_ context.Context, collection string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[collection]
	return ok, nil
}

func (s *MemoryStore) ListCollections(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) GetCollectionInfo(_ context.Context, collection string) (*CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.collections[collection]
	if !ok {
		return nil, apperr.Wrapf(apperr.ErrNotFound, "collection %q does not exist", collection)
	}
	return &CollectionInfo{
		Name:        collection,
		VectorSize:  col.vectorSize,
		PointsCount: len(col.records),
		Status:      "green",
	}, nil
}

func (s *MemoryStore) DeleteCollection(_ context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, collection)
	return nil
}

func (s *MemoryStore) CreateCollection(_ context.Context, collection string, embeddingSize int, doReset bool) (bool, error) {
	if embeddingSize <= 0 {
		return false, apperr.Wrapf(apperr.ErrValidation, "embedding size must be greater than 0")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if doReset {
		delete(s.collections, collection)
	}
	if _, ok := s.collections[collection]; ok {
		return false, nil
	}
	s.collections[collection] = &memoryCollection{
		vectorSize: embeddingSize,
		records:    make(map[uint64]memoryRecord),
	}
	return true, nil
}

func (s *MemoryStore) InsertOne(ctx context.Context, collection, text string, vector []float32, metadata map[string]any, recordID uint64) error {
	return s.InsertMany(ctx, collection, []string{text}, [][]float32{vector}, []map[string]any{metadata}, []uint64{recordID}, 1)
}

func (s *MemoryStore) InsertMany(_ context.Context, collection string, texts []string, vectors [][]float32, metadatas []map[string]any, recordIDs []uint64, _ int) error {
	if len(texts) != len(vectors) || len(texts) != len(recordIDs) {
		return apperr.Wrapf(apperr.ErrValidation, "texts, vectors and record ids must have equal lengths")
	}
	if metadatas != nil && len(metadatas) != len(texts) {
		return apperr.Wrapf(apperr.ErrValidation, "metadatas length %d does not match texts length %d", len(metadatas), len(texts))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[collection]
	if !ok {
		return apperr.Wrapf(apperr.ErrNotFound, "collection %q does not exist", collection)
	}

	for i := range texts {
		if len(vectors[i]) != col.vectorSize {
			return apperr.Wrapf(apperr.ErrValidation, "vector has size %d, collection expects %d", len(vectors[i]), col.vectorSize)
		}
		var meta map[string]any
		if metadatas != nil {
			meta = metadatas[i]
		}
		col.records[recordIDs[i]] = memoryRecord{
			id:     recordIDs[i],
			text:   texts[i],
			vector: vectors[i],
			meta:   meta,
		}
	}
	return nil
}

func (s *MemoryStore) SearchByVector(_ context.Context, collection string, vector []float32, limit int) ([]RetrievedDocument, error) {
	if limit <= 0 {
		return nil, apperr.Wrapf(apperr.ErrValidation, "limit must be greater than 0")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[collection]
	if !ok {
		return nil, apperr.Wrapf(apperr.ErrNotFound, "collection %q does not exist", collection)
	}

	results := make([]RetrievedDocument, 0, len(col.records))
	for _, rec := range col.records {
		results = append(results, RetrievedDocument{
			Text:  rec.text,
			Score: s.score(vector, rec.vector),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *MemoryStore) score(a, b []float32) float32 {
	dot := float64(0)
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	if s.distance == DistanceDot {
		return float32(dot)
	}

	var na, nb float64
	for i := range a {
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
