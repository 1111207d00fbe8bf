// Package apperr defines the error taxonomy shared by all components and
// the machine-readable signal strings surfaced in API responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation is returned when request input fails validation before any
	// external call is made.
	ErrValidation = errors.New("validation error")
	// ErrProjectID is returned for a malformed project identifier. It is a
	// validation error that carries its own response signal.
	ErrProjectID = fmt.Errorf("invalid project id: %w", ErrValidation)
	// ErrStorage is returned on document-store I/O failure.
	ErrStorage = errors.New("storage error")
	// ErrObjectStore is returned when an object-store upload or download fails.
	ErrObjectStore = errors.New("object store error")
	// ErrEmbedding is returned on provider misconfiguration or an empty/failed
	// embedding response.
	ErrEmbedding = errors.New("embedding error")
	// ErrGeneration is returned on provider misconfiguration or an empty/failed
	// generation response.
	ErrGeneration = errors.New("generation error")
	// ErrIndexing is returned when a vector-index create or insert fails.
	ErrIndexing = errors.New("indexing error")
	// ErrRetrieval is returned when the query embedding fails.
	ErrRetrieval = errors.New("retrieval error")
	// ErrNotFound is returned when a referenced asset or chunk is absent.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateAsset is returned when an asset with the same name already
	// exists in the project.
	ErrDuplicateAsset = errors.New("duplicate asset")
)

// Signal identifies an API outcome in the response envelope.
type Signal string

const (
	SignalFileTypeNotSupported Signal = "file type is not supported."
	SignalFileSizeExceeded     Signal = "file size is larger than expected."
	SignalFileUploadFailed     Signal = "file uploaded failed."
	SignalFileUploadSuccess    Signal = "file uploaded successfully."
	SignalFileDownloadFailed   Signal = "file downloaded failed."
	SignalFileValidated        Signal = "file validated successfully."
	SignalProcessingFailed     Signal = "processing failed."
	SignalProcessingSuccess    Signal = "processing succeeded."
	SignalChunksDeleted        Signal = "chunks have been deleted."
	SignalNoFiles              Signal = "files are not exist"
	SignalFileIDError          Signal = "no file exist with this id."
	SignalProjectIDInvalid     Signal = "project id must be alphanumeric."
	SignalProjectNotFound      Signal = "project not found."
	SignalVectorInsertError    Signal = "inserting into vector db failed."
	SignalVectorInsertSuccess  Signal = "inserting into vector db succeeded."
	SignalCollectionRetrieved  Signal = "vector db collection retrieved."
	SignalVectorSearchError    Signal = "vector db search failed."
	SignalVectorSearchSuccess  Signal = "vector db search succeeded."
	SignalRAGAnswerError       Signal = "rag answer failed."
	SignalRAGAnswerSuccess     Signal = "rag answer succeeded."
	SignalNoAnswer             Signal = "no answer found."
	SignalStorageError         Signal = "storage operation failed."
	SignalInvalidRequest       Signal = "invalid request parameters."
)

// Wrap attaches a taxonomy error to an underlying cause.
func Wrap(kind error, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// Wrapf attaches a taxonomy error to a formatted message.
func Wrapf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// SignalFor maps a taxonomy error to the signal string reported to callers.
func SignalFor(err error) Signal {
	switch {
	case errors.Is(err, ErrProjectID):
		return SignalProjectIDInvalid
	case errors.Is(err, ErrValidation):
		return SignalInvalidRequest
	case errors.Is(err, ErrDuplicateAsset):
		return SignalFileUploadFailed
	case errors.Is(err, ErrObjectStore):
		return SignalFileDownloadFailed
	case errors.Is(err, ErrEmbedding), errors.Is(err, ErrRetrieval):
		return SignalVectorSearchError
	case errors.Is(err, ErrGeneration):
		return SignalRAGAnswerError
	case errors.Is(err, ErrIndexing):
		return SignalVectorInsertError
	case errors.Is(err, ErrNotFound):
		return SignalFileIDError
	case errors.Is(err, ErrStorage):
		return SignalStorageError
	default:
		return SignalProcessingFailed
	}
}

// StatusFor maps a taxonomy error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrDuplicateAsset):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmbedding), errors.Is(err, ErrGeneration):
		return http.StatusBadGateway
	case errors.Is(err, ErrIndexing), errors.Is(err, ErrRetrieval):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
