package apperr

import (
	"errors"
	"net/http"
	"testing"
)

func TestSignalFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Signal
	}{
		{name: "project id error", err: Wrapf(ErrProjectID, "project id %q", "bad id"), want: SignalProjectIDInvalid},
		{name: "other validation error", err: Wrapf(ErrValidation, "search text is required"), want: SignalInvalidRequest},
		{name: "duplicate asset", err: Wrapf(ErrDuplicateAsset, "name taken"), want: SignalFileUploadFailed},
		{name: "object store", err: Wrapf(ErrObjectStore, "read failed"), want: SignalFileDownloadFailed},
		{name: "retrieval", err: Wrap(ErrRetrieval, errors.New("backend down")), want: SignalVectorSearchError},
		{name: "generation", err: Wrap(ErrGeneration, errors.New("backend down")), want: SignalRAGAnswerError},
		{name: "indexing", err: Wrapf(ErrIndexing, "insert failed"), want: SignalVectorInsertError},
		{name: "not found", err: Wrapf(ErrNotFound, "no such asset"), want: SignalFileIDError},
		{name: "storage", err: Wrapf(ErrStorage, "db locked"), want: SignalStorageError},
		{name: "unclassified", err: errors.New("boom"), want: SignalProcessingFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SignalFor(tt.err); got != tt.want {
				t.Errorf("SignalFor(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "project id error", err: Wrapf(ErrProjectID, "bad id"), want: http.StatusBadRequest},
		{name: "validation", err: Wrapf(ErrValidation, "bad input"), want: http.StatusBadRequest},
		{name: "not found", err: Wrapf(ErrNotFound, "absent"), want: http.StatusNotFound},
		{name: "generation", err: Wrap(ErrGeneration, errors.New("down")), want: http.StatusBadGateway},
		{name: "retrieval", err: Wrap(ErrRetrieval, errors.New("down")), want: http.StatusServiceUnavailable},
		{name: "unclassified", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusFor(tt.err); got != tt.want {
				t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrProjectIDIsValidation(t *testing.T) {
	err := Wrapf(ErrProjectID, "bad id")
	if !errors.Is(err, ErrValidation) {
		t.Error("project id errors should satisfy errors.Is(err, ErrValidation)")
	}
}
