package vectorstore

import (
	"strings"

	"docrag/internal/apperr"
)

// Supported backend names for the store factory.
const (
	BackendQdrant = "QDRANT"
	BackendMemory = "MEMORY"
)

// NewStore creates the vector store selected by backend name.
func NewStore(backend, url, distance string) (VectorStore, error) {
	switch strings.ToUpper(backend) {
	case BackendQdrant:
		return NewQdrantStore(url, distance)
	case BackendMemory:
		return NewMemoryStore(distance)
	default:
		return nil, apperr.Wrapf(apperr.ErrValidation, "unsupported vector DB backend %q", backend)
	}
}
