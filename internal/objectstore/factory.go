package objectstore

import (
	"context"
	"strings"

	"docrag/internal/apperr"
)

// FactoryOptions selects and configures an object store backend.
type FactoryOptions struct {
	Backend       string
	FileStorePath string
	Minio         MinioOptions
}

// NewStore creates the object store selected by backend name.
func NewStore(ctx context.Context, opts FactoryOptions) (ObjectStore, error) {
	switch strings.ToUpper(opts.Backend) {
	case BackendFS, "":
		return NewFSStore(opts.FileStorePath)
	case BackendMinio:
		return NewMinioStore(ctx, opts.Minio)
	default:
		return nil, apperr.Wrapf(apperr.ErrValidation, "unsupported object store backend %q", opts.Backend)
	}
}
