package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"docrag/internal/apperr"
	"docrag/internal/contextutil"
)

// QdrantStore implements VectorStore using Qdrant over gRPC.
type QdrantStore struct {
	host     string
	port     int
	distance qdrant.Distance
	client   *qdrant.Client
}

// NewQdrantStore creates a Qdrant vector store client.
// urlStr should be in the format "http://host:port" (e.g., "http://localhost:6333").
// The gRPC port (typically 6334) will be derived from the HTTP port.
func NewQdrantStore(urlStr, distance string) (*QdrantStore, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	// Extract port from URL, default to 6333 for HTTP
	port := 6334 // Default gRPC port
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err == nil {
			// gRPC port is typically HTTP port + 1
			port = httpPort + 1
		}
	}

	dist, err := parseDistance(distance)
	if err != nil {
		return nil, err
	}

	return &QdrantStore{
		host:     host,
		port:     port,
		distance: dist,
	}, nil
}

func parseDistance(distance string) (qdrant.Distance, error) {
	switch distance {
	case DistanceCosine, "":
		return qdrant.Distance_Cosine, nil
	case DistanceDot:
		return qdrant.Distance_Dot, nil
	default:
		return qdrant.Distance_UnknownDistance, apperr.Wrapf(apperr.ErrValidation, "unsupported distance method %q", distance)
	}
}

// Connect establishes the gRPC connection.
func (s *QdrantStore) Connect(ctx context.Context) error {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: s.host,
		Port: s.port,
	})
	if err != nil {
		return fmt.Errorf("failed to create Qdrant client: %w", err)
	}
	s.client = client

	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "connected to qdrant", "host", s.host, "port", s.port)
	return nil
}

// Disconnect closes the gRPC connection.
func (s *QdrantStore) Disconnect() error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

// CollectionExists checks if a collection exists.
func (s *QdrantStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	return exists, nil
}

// ListCollections returns the names of all collections.
func (s *QdrantStore) ListCollections(ctx context.Context) ([]string, error) {
	names, err := s.client.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return names, nil
}

// GetCollectionInfo returns configuration and point count for a collection.
func (s *QdrantStore) GetCollectionInfo(ctx context.Context, collection string) (*CollectionInfo, error) {
	exists, err := s.CollectionExists(ctx, collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.Wrapf(apperr.ErrNotFound, "collection %q does not exist", collection)
	}

	info, err := s.client.GetCollectionInfo(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection info: %w", err)
	}

	var vectorSize int
	if config := info.Config; config != nil && config.Params != nil {
		if vectorsConfig := config.Params.GetVectorsConfig(); vectorsConfig != nil {
			if params := vectorsConfig.GetParams(); params != nil {
				vectorSize = int(params.Size)
			}
		}
	}

	var pointsCount int
	if info.PointsCount != nil {
		pointsCount = int(*info.PointsCount)
	}

	status := "unknown"
	if info.Status != 0 {
		status = info.Status.String()
	}

	return &CollectionInfo{
		Name:        collection,
		VectorSize:  vectorSize,
		PointsCount: pointsCount,
		Status:      status,
	}, nil
}

// DeleteCollection removes a collection if it exists.
func (s *QdrantStore) DeleteCollection(ctx context.Context, collection string) error {
	exists, err := s.CollectionExists(ctx, collection)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "deleting collection", "collection", collection)

	if err := s.client.DeleteCollection(ctx, collection); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return nil
}

// CreateCollection creates a collection, optionally dropping an existing one
// first. Returns true if a new collection was created.
func (s *QdrantStore) CreateCollection(ctx context.Context, collection string, embeddingSize int, doReset bool) (bool, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if doReset {
		if err := s.DeleteCollection(ctx, collection); err != nil {
			return false, err
		}
	}

	exists, err := s.CollectionExists(ctx, collection)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	logger.InfoContext(ctx, "creating collection", "collection", collection, "vector_size", embeddingSize)
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(embeddingSize),
			Distance: s.distance,
		}),
	})
	if err != nil {
		return false, fmt.Errorf("failed to create collection: %w", err)
	}
	return true, nil
}

// InsertOne stores a single record.
func (s *QdrantStore) InsertOne(ctx context.Context, collection, text string, vector []float32, metadata map[string]any, recordID uint64) error {
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         []*qdrant.PointStruct{s.buildPoint(text, vector, metadata, recordID)},
	})
	if err != nil {
		return fmt.Errorf("failed to insert point: %w", err)
	}
	return nil
}

// InsertMany stores records in batches of batchSize.
func (s *QdrantStore) InsertMany(ctx context.Context, collection string, texts []string, vectors [][]float32, metadatas []map[string]any, recordIDs []uint64, batchSize int) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(texts) != len(vectors) || len(texts) != len(recordIDs) {
		return apperr.Wrapf(apperr.ErrValidation, "texts, vectors and record ids must have equal lengths")
	}
	if metadatas != nil && len(metadatas) != len(texts) {
		return apperr.Wrapf(apperr.ErrValidation, "metadatas length %d does not match texts length %d", len(metadatas), len(texts))
	}
	if batchSize <= 0 {
		batchSize = 50
	}

	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		points := make([]*qdrant.PointStruct, 0, end-start)
		for i := start; i < end; i++ {
			var meta map[string]any
			if metadatas != nil {
				meta = metadatas[i]
			}
			points = append(points, s.buildPoint(texts[i], vectors[i], meta, recordIDs[i]))
		}

		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: collection,
			Points:         points,
		})
		if err != nil {
			logger.ErrorContext(ctx, "failed to insert batch",
				"collection", collection, "batch_start", start, "batch_size", end-start, "error", err)
			return fmt.Errorf("failed to insert batch starting at %d: %w", start, err)
		}
	}

	logger.InfoContext(ctx, "inserted points", "collection", collection, "count", len(texts))
	return nil
}

// SearchByVector returns up to limit documents nearest to the query vector.
// A missing collection yields apperr.ErrNotFound.
func (s *QdrantStore) SearchByVector(ctx context.Context, collection string, vector []float32, limit int) ([]RetrievedDocument, error) {
	if limit <= 0 {
		return nil, apperr.Wrapf(apperr.ErrValidation, "limit must be greater than 0")
	}

	exists, err := s.CollectionExists(ctx, collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.Wrapf(apperr.ErrNotFound, "collection %q does not exist", collection)
	}

	lim := uint64(limit)
	scoredPoints, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &lim,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	results := make([]RetrievedDocument, 0, len(scoredPoints))
	for _, point := range scoredPoints {
		text := ""
		if point.Payload != nil {
			if v, ok := point.Payload["text"]; ok {
				text = v.GetStringValue()
			}
		}
		results = append(results, RetrievedDocument{
			Text:  text,
			Score: point.Score,
		})
	}
	return results, nil
}

func (s *QdrantStore) buildPoint(text string, vector []float32, metadata map[string]any, recordID uint64) *qdrant.PointStruct {
	payload := map[string]any{"text": text}
	if len(metadata) > 0 {
		payload["metadata"] = metadata
	}
	return &qdrant.PointStruct{
		Id:      qdrant.NewIDNum(recordID),
		Vectors: qdrant.NewVectors(vector...),
		Payload: qdrant.NewValueMap(payload),
	}
}
