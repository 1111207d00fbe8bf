// Package ingest turns uploaded source files into stored chunks: upload
// validation, text extraction, and chunking.
package ingest

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"docrag/internal/apperr"
)

// Upload validation failures, distinguished so callers can report the exact
// reason to the client.
var (
	ErrFileTypeNotSupported = fmt.Errorf("%w: file type is not supported", apperr.ErrValidation)
	ErrFileSizeExceeded     = fmt.Errorf("%w: file size exceeds the limit", apperr.ErrValidation)
)

var unsafeFileChars = regexp.MustCompile(`[^\w.]`)

// UploadPolicy validates incoming files before they are stored.
type UploadPolicy struct {
	// AllowedExtensions lists acceptable extensions including the dot,
	// e.g. ".txt".
	AllowedExtensions []string
	// MaxSizeBytes caps the upload size; zero means no cap.
	MaxSizeBytes int64
}

// Validate checks the file name extension and size against the policy.
func (p UploadPolicy) Validate(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	allowed := false
	for _, e := range p.AllowedExtensions {
		if ext == strings.ToLower(e) {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %q", ErrFileTypeNotSupported, ext)
	}
	if p.MaxSizeBytes > 0 && size > p.MaxSizeBytes {
		return fmt.Errorf("%w: %d bytes", ErrFileSizeExceeded, size)
	}
	return nil
}

// CleanFileName strips whitespace and characters outside [A-Za-z0-9_.]
// from the original name.
func CleanFileName(orig string) string {
	cleaned := strings.TrimSpace(orig)
	cleaned = strings.ReplaceAll(cleaned, " ", "_")
	return unsafeFileChars.ReplaceAllString(cleaned, "")
}

// UniqueFileName prefixes the cleaned original name with a random key so
// that repeated uploads of the same file never collide in the object store.
func UniqueFileName(orig string) string {
	key := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return key + "_" + CleanFileName(orig)
}
