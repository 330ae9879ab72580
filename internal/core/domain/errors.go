package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoSourceFiles indicates the knowledge directory holds no source files
	ErrNoSourceFiles = errors.New("no source files found")

	// ErrServiceUnavailable indicates a remote AI service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Store operation names carried by StoreError.
const (
	StoreOpInsert = "insert"
	StoreOpQuery  = "query"
	StoreOpDelete = "delete"
)

// EmbeddingError wraps a failed call to the embedding service: a non-2xx
// response, a network failure, or a malformed response body.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return "embedding service: " + e.Err.Error()
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// StoreError wraps a failed knowledge store operation. Op is one of the
// StoreOp constants.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return "knowledge store " + e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

// RetrievalError wraps an embedding or store failure surfaced during a
// retrieval. The retriever never swallows these; the caller decides whether
// to degrade or fail.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return "retrieval: " + e.Err.Error()
}

func (e *RetrievalError) Unwrap() error { return e.Err }
