package model

import "errors"

var (
	// ErrNotFound is the soft miss: the query was well-formed but matched
	// nothing. Callers translate it to found=false, not an error response.
	ErrNotFound = errors.New("not found")

	// ErrUnknownSource marks a source name outside the fixed catalog.
	ErrUnknownSource = errors.New("unknown source")
)

// Provider error codes carried to the dispatcher boundary.
const (
	CodeEmbeddingFailed = "EMBEDDING_FAILED"
	CodeDatastoreError  = "DATASTORE_ERROR"
)

// ProviderError is a typed failure from an external collaborator (embedding
// service or datastore). The engine performs no retry; Retryable is a hint
// for the calling agent.
type ProviderError struct {
	Code      string
	Message   string
	Retryable bool
	Cause     error
}

func (e *ProviderError) Error() string {
	if e == nil {
		return ""
	}
	return e.Code + ": " + e.Message
}

func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}
