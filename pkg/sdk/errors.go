package askrank

import "github.com/campusfeed/askrank/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrPostNotFound           = domain.ErrPostNotFound
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrBatchMismatch          = domain.ErrBatchMismatch
	ErrRateLimited            = domain.ErrRateLimited
)
