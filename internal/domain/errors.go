package domain

import "errors"

var (
	// ErrPostNotFound signals a missing post.
	ErrPostNotFound = errors.New("post not found")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrBatchMismatch signals an embedding batch response that does not
	// line up with the request (count, order, or dimension).
	ErrBatchMismatch = errors.New("embedding batch mismatch")
	// ErrRateLimited signals a provider rate limit (HTTP 429) on the
	// embedding call.
	ErrRateLimited = errors.New("rate limited")
)
