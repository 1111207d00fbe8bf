// Package objectstore persists uploaded source files. Objects are keyed by
// project id and asset name; the filesystem backend is the default and a
// MinIO backend is available for shared deployments.
package objectstore

import (
	"context"
	"io"
	"strings"

	"docrag/internal/apperr"
)

// Supported backend names for the store factory.
const (
	BackendFS    = "FS"
	BackendMinio = "MINIO"
)

// ObjectStore reads and writes uploaded files.
type ObjectStore interface {
	// Upload stores the object under projectID/assetName, replacing any
	// existing object with the same key.
	Upload(ctx context.Context, projectID, assetName string, r io.Reader, size int64) error

	// Download opens the object for reading. The caller closes the
	// returned reader. A missing object yields apperr.ErrNotFound.
	Download(ctx context.Context, projectID, assetName string) (io.ReadCloser, error)
}

// validateKey rejects names that could escape the project prefix.
func validateKey(projectID, assetName string) error {
	if projectID == "" || assetName == "" {
		return apperr.Wrapf(apperr.ErrValidation, "project id and asset name are required")
	}
	for _, part := range []string{projectID, assetName} {
		if strings.Contains(part, "/") || strings.Contains(part, "\\") || strings.Contains(part, "..") {
			return apperr.Wrapf(apperr.ErrValidation, "invalid object key component %q", part)
		}
	}
	return nil
}
