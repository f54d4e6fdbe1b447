package rank

import (
	"context"

	"github.com/campusfeed/askrank/internal/domain"
	"github.com/campusfeed/askrank/internal/domain/post"
)

// CorpusLoader fetches the full post collection as of call time. The
// snapshot is read-only; the engine truncates it to the sample cap before
// embedding, so the loader need not support server-side limiting.
type CorpusLoader interface {
	LoadCorpus(ctx context.Context) ([]post.Post, error)
}

// Embedder vectorizes a batch of texts in one provider call.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
