package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"docrag/internal/apperr"
)

// FSStore stores objects as files under a base directory, one subdirectory
// per project.
type FSStore struct {
	baseDir string
}

// NewFSStore creates a filesystem-backed store rooted at baseDir.
func NewFSStore(baseDir string) (*FSStore, error) {
	if baseDir == "" {
		return nil, apperr.Wrapf(apperr.ErrValidation, "file store path is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create file store directory: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

func (s *FSStore) objectPath(projectID, assetName string) string {
	return filepath.Join(s.baseDir, projectID, assetName)
}

// Upload writes the object to disk, creating the project directory on first
// use.
func (s *FSStore) Upload(_ context.Context, projectID, assetName string, r io.Reader, _ int64) error {
	if err := validateKey(projectID, assetName); err != nil {
		return err
	}

	dir := filepath.Join(s.baseDir, projectID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.Wrapf(apperr.ErrObjectStore, "failed to create project directory: %v", err)
	}

	f, err := os.Create(s.objectPath(projectID, assetName))
	if err != nil {
		return apperr.Wrapf(apperr.ErrObjectStore, "failed to create object file: %v", err)
	}
	defer func() {
		_ = f.Close()
	}()

	if _, err := io.Copy(f, r); err != nil {
		return apperr.Wrapf(apperr.ErrObjectStore, "failed to write object file: %v", err)
	}
	return nil
}

// Download opens the stored object.
func (s *FSStore) Download(_ context.Context, projectID, assetName string) (io.ReadCloser, error) {
	if err := validateKey(projectID, assetName); err != nil {
		return nil, err
	}

	f, err := os.Open(s.objectPath(projectID, assetName))
	if os.IsNotExist(err) {
		return nil, apperr.Wrapf(apperr.ErrNotFound, "object %s/%s", projectID, assetName)
	}
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrObjectStore, "failed to open object file: %v", err)
	}
	return f, nil
}
