// Package rank implements the semantic+lexical ranking engine behind the
// "Ask AI" feature: one corpus snapshot, one batched embedding call, a
// fixed-weight blend of cosine similarity and lexical overlap, and an
// explanation payload per hit.
package rank

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/campusfeed/askrank/internal/domain"
	"github.com/campusfeed/askrank/internal/domain/rank/result"
	"github.com/campusfeed/askrank/internal/domain/score"
	"github.com/campusfeed/askrank/internal/domain/text"
	"github.com/campusfeed/askrank/internal/logger"
)

// Policy defaults. Fixed constants in the product, exposed via config rather
// than tuned at runtime.
const (
	DefaultSampleCap      = 600
	DefaultResultCap      = 20
	DefaultSemanticWeight = 0.75
	DefaultLexicalWeight  = 0.25

	// maxOverlapTerms caps the explanation's overlap list.
	maxOverlapTerms = 6
)

// Service orchestrates one ranking call: load → embed batch → score →
// sort → truncate → explain. It holds no mutable state between calls.
type Service struct {
	corpus CorpusLoader
	embed  Embedder

	sampleCap      int
	resultCap      int
	semanticWeight float64
	lexicalWeight  float64
}

// New creates a ranking engine with default caps and blend weights.
func New(corpus CorpusLoader, embed Embedder) *Service {
	return &Service{
		corpus:         corpus,
		embed:          embed,
		sampleCap:      DefaultSampleCap,
		resultCap:      DefaultResultCap,
		semanticWeight: DefaultSemanticWeight,
		lexicalWeight:  DefaultLexicalWeight,
	}
}

// WithLimits overrides the corpus sample cap and result cap. Non-positive
// values keep the defaults.
func (s *Service) WithLimits(sampleCap, resultCap int) *Service {
	if sampleCap > 0 {
		s.sampleCap = sampleCap
	}
	if resultCap > 0 {
		s.resultCap = resultCap
	}
	return s
}

// WithWeights overrides the blend weights. Both must be positive to apply.
func (s *Service) WithWeights(semantic, lexical float64) *Service {
	if semantic > 0 && lexical > 0 {
		s.semanticWeight = semantic
		s.lexicalWeight = lexical
	}
	return s
}

// Rank scores the corpus against query and returns at most resultCap hits,
// sorted by descending blended score.
//
// An empty or whitespace-only query returns an empty list without any I/O:
// the caller contract is "don't invoke with empty input", and an empty
// success is the cheapest safe answer when it happens anyway. An empty
// corpus likewise short-circuits before the embedding call. Provider
// failures propagate; there is no retry and no lexical-only fallback.
func (s *Service) Rank(ctx context.Context, query string) ([]result.Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	posts, err := s.corpus.LoadCorpus(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	if len(posts) == 0 {
		return nil, nil
	}

	// Truncation happens before embedding so the batch stays bounded.
	if len(posts) > s.sampleCap {
		posts = posts[:s.sampleCap]
	}

	texts := make([]string, len(posts))
	batch := make([]string, 0, len(posts)+1)
	batch = append(batch, query)
	for i := range posts {
		texts[i] = posts[i].CompositeText()
		batch = append(batch, texts[i])
	}

	embRes, err := s.embed.BatchEmbed(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("embed batch: %w", err)
	}
	if len(embRes.Embeddings) != len(batch) {
		return nil, fmt.Errorf("%w: sent %d texts, got %d vectors",
			domain.ErrBatchMismatch, len(batch), len(embRes.Embeddings))
	}

	queryVec := embRes.Embeddings[0]
	docVecs := embRes.Embeddings[1:]
	queryTokens := tokenSet(query)

	results := make([]result.Result, len(posts))
	for i := range posts {
		p := &posts[i]
		sem := score.Cosine(queryVec, docVecs[i])
		lex := score.Lexical(query, texts[i])

		results[i] = result.New(
			p.ID(), p.Title(), p.Subtitle(), p.ImageURL(), p.LikedCount(),
			"/p/"+p.ID(),
			s.semanticWeight*sem+s.lexicalWeight*lex,
			result.Why{
				Semantic: round3(sem),
				Lexical:  round3(lex),
				Overlap:  overlapTerms(queryTokens, texts[i]),
			},
		)
	}

	// Stable sort keeps corpus order on exact float ties.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score() > results[j].Score()
	})

	if len(results) > s.resultCap {
		results = results[:s.resultCap]
	}

	logger.FromContext(ctx).Debug("ranked corpus",
		zap.Int("sampled", len(posts)),
		zap.Int("returned", len(results)),
		zap.Int("embed_tokens", embRes.TotalTokens),
	)

	return results, nil
}

// tokenSet collapses a query into its distinct tokens.
func tokenSet(query string) map[string]struct{} {
	tokens := text.Tokenize(query)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// overlapTerms lists the query tokens found in the composite text, in order
// of first appearance, deduplicated, capped at maxOverlapTerms.
func overlapTerms(queryTokens map[string]struct{}, composite string) []string {
	var overlap []string
	seen := make(map[string]struct{})
	for _, t := range text.Tokenize(composite) {
		if _, ok := queryTokens[t]; !ok {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		overlap = append(overlap, t)
		if len(overlap) == maxOverlapTerms {
			break
		}
	}
	return overlap
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
