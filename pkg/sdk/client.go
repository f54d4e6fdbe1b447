package askrank

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campusfeed/askrank/internal/db"
	dbRedis "github.com/campusfeed/askrank/internal/db/redis"
	"github.com/campusfeed/askrank/internal/domain"
	domjpost "github.com/campusfeed/askrank/internal/domain/post"
	"github.com/campusfeed/askrank/internal/domain/rank/result"
	postsrepo "github.com/campusfeed/askrank/internal/repository/posts"
	openaiEmb "github.com/campusfeed/askrank/internal/transport/openai"
	rankuc "github.com/campusfeed/askrank/internal/usecase/rank"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "askrank:"
	defaultModel            = "text-embedding-3-small"
)

// Internal interfaces so tests can swap the wiring.
type rankUseCase interface {
	Rank(ctx context.Context, query string) ([]result.Result, error)
}

type postGetter interface {
	Get(ctx context.Context, id string) (domjpost.Post, error)
}

// Client is the askrank SDK entry point: the ranking engine embedded as a
// library, connected to the post store and embedding provider directly.
type Client struct {
	store   db.Store
	rankSvc rankUseCase
	posts   postGetter
}

// New creates an askrank Client and connects to the post store.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix: defaultKeyPrefix,
		model:     defaultModel,
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("askrank: post store address required (use WithRedis)")
	}
	// A base URL without a key is a keyless local endpoint, which is fine.
	if cfg.embedder == nil && cfg.apiKey == "" && cfg.baseURL == "" {
		return nil, errors.New("askrank: embedding provider required (use WithOpenAI or WithEmbedder)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
		DB:       cfg.db,
	})
	if err != nil {
		return nil, fmt.Errorf("askrank: create post store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("askrank: post store not ready: %w", err)
	}

	embedder := cfg.embedder
	if embedder == nil {
		embedder = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.apiKey,
			BaseURL:    cfg.baseURL,
			Model:      cfg.model,
			Dimensions: cfg.dimensions,
			Provider:   "openai",
			Logger:     cfg.logger,
		})
	}
	if cfg.queryInstruction != "" {
		embedder = domain.NewInstructionEmbedder(embedder, cfg.queryInstruction)
	}

	repo := postsrepo.New(store, cfg.keyPrefix)
	svc := rankuc.New(repo, embedder).
		WithLimits(cfg.sampleCap, cfg.resultCap).
		WithWeights(cfg.semanticWeight, cfg.lexicalWeight)

	return &Client{store: store, rankSvc: svc, posts: repo}, nil
}

// Ask ranks the post corpus against query. An empty or whitespace query
// returns an empty list without touching the store or the provider.
func (c *Client) Ask(ctx context.Context, query string) ([]Result, error) {
	hits, err := c.rankSvc.Rank(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("askrank: rank: %w", err)
	}
	out := make([]Result, len(hits))
	for i := range hits {
		out[i] = resultFromDomain(&hits[i])
	}
	return out, nil
}

// GetPost fetches one post for a detail view.
func (c *Client) GetPost(ctx context.Context, id string) (Post, error) {
	p, err := c.posts.Get(ctx, id)
	if err != nil {
		return Post{}, fmt.Errorf("askrank: get post: %w", err)
	}
	return postFromDomain(&p), nil
}

// Ping checks post store connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("askrank: ping: %w", err)
	}
	return nil
}

// Close releases the store connection.
func (c *Client) Close() {
	c.store.Close()
}
