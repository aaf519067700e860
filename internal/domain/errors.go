package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrCardNotFound signals a missing card.
	ErrCardNotFound = errors.New("card not found")
	// ErrInvalidRequest signals a malformed API request (bad limit, offset or threshold).
	ErrInvalidRequest = errors.New("invalid request")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure. Retryable.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrStoreUnavailable signals that the corpus store is unreachable. Retryable.
	ErrStoreUnavailable = errors.New("store unavailable")
)
