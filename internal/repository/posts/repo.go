// Package posts adapts the Redis JSON document store into the ranking
// engine's corpus loader. The store is externally owned; this repository
// only ever reads it.
package posts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/campusfeed/askrank/internal/db"
	"github.com/campusfeed/askrank/internal/domain"
	"github.com/campusfeed/askrank/internal/domain/post"
)

// store is the consumer interface for post snapshots (ISP).
type store interface {
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/rank.CorpusLoader over the post store.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a post repository. keyPrefix namespaces the post keys,
// e.g. "askrank:" yields keys like "askrank:post:<id>".
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// LoadCorpus returns a snapshot of every stored post. Keys are sorted
// before fetching so the corpus order is stable across calls (SCAN order is
// not), which keeps sample truncation deterministic. Payloads that cannot
// be decoded at all are dropped; partially filled documents hydrate with
// empty-field defaults.
func (r *Repo) LoadCorpus(ctx context.Context) ([]post.Post, error) {
	keys, err := r.store.Scan(ctx, r.postKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan posts: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)

	raws, err := r.store.JSONGetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch posts: %w", err)
	}

	corpus := make([]post.Post, 0, len(raws))
	for i, raw := range raws {
		if raw == nil {
			continue
		}
		p, perr := parsePost(r.idFromKey(keys[i]), raw)
		if perr != nil {
			continue
		}
		corpus = append(corpus, p)
	}
	return corpus, nil
}

// Get returns a single post by ID, for the detail view.
func (r *Repo) Get(ctx context.Context, id string) (post.Post, error) {
	raw, err := r.store.JSONGet(ctx, r.postKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return post.Post{}, domain.ErrPostNotFound
		}
		return post.Post{}, fmt.Errorf("json.get %s: %w", r.postKey(id), err)
	}
	p, err := parsePost(id, raw)
	if err != nil {
		return post.Post{}, fmt.Errorf("parse post %s: %w", id, err)
	}
	return p, nil
}

func (r *Repo) postKey(id string) string {
	return r.keyPrefix + "post:" + id
}

func (r *Repo) idFromKey(key string) string {
	return strings.TrimPrefix(key, r.keyPrefix+"post:")
}
