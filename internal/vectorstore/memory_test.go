package vectorstore

import (
	"context"
	"errors"
	"testing"

	"docrag/internal/apperr"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	store, err := NewMemoryStore(DistanceCosine)
	if err != nil {
		t.Fatalf("NewMemoryStore() error = %v", err)
	}
	return store
}

func TestMemoryStore_CollectionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	exists, err := store.CollectionExists(ctx, "collection_proj1")
	if err != nil {
		t.Fatalf("CollectionExists() error = %v", err)
	}
	if exists {
		t.Error("CollectionExists() = true for fresh store")
	}

	created, err := store.CreateCollection(ctx, "collection_proj1", 3, false)
	if err != nil {
		t.Fatalf("CreateCollection() error = %v", err)
	}
	if !created {
		t.Error("CreateCollection() = false, want true for new collection")
	}

	// A second create without reset keeps the existing collection.
	created, err = store.CreateCollection(ctx, "collection_proj1", 3, false)
	if err != nil {
		t.Fatalf("CreateCollection() second call error = %v", err)
	}
	if created {
		t.Error("CreateCollection() = true for existing collection without reset")
	}

	names, err := store.ListCollections(ctx)
	if err != nil {
		t.Fatalf("ListCollections() error = %v", err)
	}
	if len(names) != 1 || names[0] != "collection_proj1" {
		t.Errorf("ListCollections() = %v, want [collection_proj1]", names)
	}

	info, err := store.GetCollectionInfo(ctx, "collection_proj1")
	if err != nil {
		t.Fatalf("GetCollectionInfo() error = %v", err)
	}
	if info.VectorSize != 3 || info.PointsCount != 0 {
		t.Errorf("GetCollectionInfo() = %+v, want size 3 and 0 points", info)
	}

	if err := store.DeleteCollection(ctx, "collection_proj1"); err != nil {
		t.Fatalf("DeleteCollection() error = %v", err)
	}
	if _, err := store.GetCollectionInfo(ctx, "collection_proj1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetCollectionInfo() after delete error = %v, want ErrNotFound", err)
	}

	// Deleting a missing collection is not an error.
	if err := store.DeleteCollection(ctx, "collection_proj1"); err != nil {
		t.Errorf("DeleteCollection() on missing collection error = %v", err)
	}
}

func TestMemoryStore_CreateCollection_Reset(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.CreateCollection(ctx, "c", 2, false); err != nil {
		t.Fatalf("CreateCollection() error = %v", err)
	}
	if err := store.InsertOne(ctx, "c", "old record", []float32{1, 0}, nil, 0); err != nil {
		t.Fatalf("InsertOne() error = %v", err)
	}

	created, err := store.CreateCollection(ctx, "c", 2, true)
	if err != nil {
		t.Fatalf("CreateCollection() with reset error = %v", err)
	}
	if !created {
		t.Error("CreateCollection() with reset = false, want true")
	}

	info, err := store.GetCollectionInfo(ctx, "c")
	if err != nil {
		t.Fatalf("GetCollectionInfo() error = %v", err)
	}
	if info.PointsCount != 0 {
		t.Errorf("PointsCount = %d after reset, want 0", info.PointsCount)
	}
}

func TestMemoryStore_InsertMany_Validation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	if _, err := store.CreateCollection(ctx, "c", 2, false); err != nil {
		t.Fatalf("CreateCollection() error = %v", err)
	}

	tests := []struct {
		name    string
		texts   []string
		vectors [][]float32
		ids     []uint64
	}{
		{
			name:    "length mismatch",
			texts:   []string{"a", "b"},
			vectors: [][]float32{{1, 0}},
			ids:     []uint64{0, 1},
		},
		{
			name:    "wrong vector size",
			texts:   []string{"a"},
			vectors: [][]float32{{1, 0, 0}},
			ids:     []uint64{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.InsertMany(ctx, "c", tt.texts, tt.vectors, nil, tt.ids, 10)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("InsertMany() error = %v, want ErrValidation", err)
			}
		})
	}

	err := store.InsertMany(ctx, "missing", []string{"a"}, [][]float32{{1, 0}}, nil, []uint64{0}, 10)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("InsertMany() into missing collection error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_InsertMany_PartialOnFailure(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	if _, err := store.CreateCollection(ctx, "c", 2, false); err != nil {
		t.Fatalf("CreateCollection() error = %v", err)
	}

	// The second vector has the wrong size; the first record must survive.
	err := store.InsertMany(ctx, "c",
		[]string{"good", "bad"},
		[][]float32{{1, 0}, {1, 0, 0}},
		nil, []uint64{0, 1}, 10)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("InsertMany() error = %v, want ErrValidation", err)
	}

	info, err := store.GetCollectionInfo(ctx, "c")
	if err != nil {
		t.Fatalf("GetCollectionInfo() error = %v", err)
	}
	if info.PointsCount != 1 {
		t.Errorf("PointsCount = %d after partial insert, want 1", info.PointsCount)
	}
}

func TestMemoryStore_SearchByVector(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	if _, err := store.CreateCollection(ctx, "c", 2, false); err != nil {
		t.Fatalf("CreateCollection() error = %v", err)
	}

	texts := []string{"east", "north", "west"}
	vectors := [][]float32{{1, 0}, {0, 1}, {-1, 0}}
	ids := []uint64{0, 1, 2}
	if err := store.InsertMany(ctx, "c", texts, vectors, nil, ids, 2); err != nil {
		t.Fatalf("InsertMany() error = %v", err)
	}

	results, err := store.SearchByVector(ctx, "c", []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("SearchByVector() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("SearchByVector() returned %d results, want 2", len(results))
	}
	if results[0].Text != "east" {
		t.Errorf("best match = %q, want %q", results[0].Text, "east")
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("results not ordered by score: %v", results)
	}

	if _, err := store.SearchByVector(ctx, "c", []float32{1, 0}, 0); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("SearchByVector() with limit 0 error = %v, want ErrValidation", err)
	}
}

func TestMemoryStore_InsertOne_Overwrite(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	if _, err := store.CreateCollection(ctx, "c", 2, false); err != nil {
		t.Fatalf("CreateCollection() error = %v", err)
	}

	if err := store.InsertOne(ctx, "c", "first", []float32{1, 0}, nil, 7); err != nil {
		t.Fatalf("InsertOne() error = %v", err)
	}
	if err := store.InsertOne(ctx, "c", "second", []float32{0, 1}, map[string]any{"k": "v"}, 7); err != nil {
		t.Fatalf("InsertOne() overwrite error = %v", err)
	}

	info, err := store.GetCollectionInfo(ctx, "c")
	if err != nil {
		t.Fatalf("GetCollectionInfo() error = %v", err)
	}
	if info.PointsCount != 1 {
		t.Errorf("PointsCount = %d after id reuse, want 1", info.PointsCount)
	}
}

func TestNewStore_Factory(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		wantErr bool
	}{
		{name: "memory", backend: "MEMORY"},
		{name: "qdrant", backend: "QDRANT"},
		{name: "lowercase accepted", backend: "memory"},
		{name: "unknown backend", backend: "PINEBOARD", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(tt.backend, "http://localhost:6333", DistanceCosine)
			if tt.wantErr {
				if !errors.Is(err, apperr.ErrValidation) {
					t.Errorf("NewStore() error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewStore() error = %v", err)
			}
			if store == nil {
				t.Fatal("NewStore() returned nil store")
			}
		})
	}
}
