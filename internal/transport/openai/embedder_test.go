package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/campusfeed/askrank/internal/domain"
	"github.com/campusfeed/askrank/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

type embeddingItem struct {
	Object    string    `json:"object"`
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

type embeddingResponse struct {
	Object string          `json:"object"`
	Data   []embeddingItem `json:"data"`
	Model  string          `json:"model"`
	Usage  struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// newTestEmbedder spins up a stub embeddings endpoint returning the given
// items and wires an Embedder at it.
func newTestEmbedder(t *testing.T, handler http.HandlerFunc) (*Embedder, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	emb := NewEmbedder(&Config{
		APIKey:   "test-key",
		BaseURL:  srv.URL + "/v1",
		Model:    "text-embedding-3-small",
		Provider: "openai",
		Logger:   zap.NewNop(),
	})
	return emb, srv
}

func respondWith(t *testing.T, items []embeddingItem, promptTokens, totalTokens int) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		resp := embeddingResponse{Object: "list", Data: items, Model: "text-embedding-3-small"}
		resp.Usage.PromptTokens = promptTokens
		resp.Usage.TotalTokens = totalTokens
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}
}

func TestBatchEmbed_RealignsOutOfOrderVectors(t *testing.T) {
	emb, _ := newTestEmbedder(t, respondWith(t, []embeddingItem{
		{Object: "embedding", Index: 1, Embedding: []float32{0, 1, 0}},
		{Object: "embedding", Index: 0, Embedding: []float32{1, 0, 0}},
		{Object: "embedding", Index: 2, Embedding: []float32{0, 0, 1}},
	}, 9, 9))

	res, err := emb.BatchEmbed(context.Background(), []string{"query", "doc a", "doc b"})
	if err != nil {
		t.Fatalf("BatchEmbed error: %v", err)
	}
	if len(res.Embeddings) != 3 {
		t.Fatalf("got %d vectors, want 3", len(res.Embeddings))
	}
	if res.Embeddings[0][0] != 1 || res.Embeddings[1][1] != 1 || res.Embeddings[2][2] != 1 {
		t.Errorf("vectors not realigned by index: %v", res.Embeddings)
	}
	if res.TotalTokens != 9 || res.PromptTokens != 9 {
		t.Errorf("usage = %d/%d, want 9/9", res.PromptTokens, res.TotalTokens)
	}
}

func TestBatchEmbed_CountMismatch(t *testing.T) {
	emb, _ := newTestEmbedder(t, respondWith(t, []embeddingItem{
		{Object: "embedding", Index: 0, Embedding: []float32{1, 0}},
	}, 0, 0))

	_, err := emb.BatchEmbed(context.Background(), []string{"query", "doc"})
	if !errors.Is(err, domain.ErrBatchMismatch) {
		t.Fatalf("err = %v, want ErrBatchMismatch", err)
	}
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("err = %v, want ErrEmbeddingProviderError wrapping", err)
	}
}

func TestBatchEmbed_DuplicateIndex(t *testing.T) {
	emb, _ := newTestEmbedder(t, respondWith(t, []embeddingItem{
		{Object: "embedding", Index: 0, Embedding: []float32{1, 0}},
		{Object: "embedding", Index: 0, Embedding: []float32{0, 1}},
	}, 0, 0))

	_, err := emb.BatchEmbed(context.Background(), []string{"query", "doc"})
	if !errors.Is(err, domain.ErrBatchMismatch) {
		t.Fatalf("err = %v, want ErrBatchMismatch", err)
	}
}

func TestBatchEmbed_DimensionMismatch(t *testing.T) {
	emb, _ := newTestEmbedder(t, respondWith(t, []embeddingItem{
		{Object: "embedding", Index: 0, Embedding: []float32{1, 0, 0}},
		{Object: "embedding", Index: 1, Embedding: []float32{0, 1}},
	}, 0, 0))

	_, err := emb.BatchEmbed(context.Background(), []string{"query", "doc"})
	if !errors.Is(err, domain.ErrBatchMismatch) {
		t.Fatalf("err = %v, want ErrBatchMismatch", err)
	}
}

func TestBatchEmbed_APIErrorMapsToProviderError(t *testing.T) {
	emb, _ := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream overloaded","type":"server_error"}}`))
	})

	_, err := emb.BatchEmbed(context.Background(), []string{"query"})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("err = %v, want ErrEmbeddingProviderError", err)
	}
}

func TestBatchEmbed_RateLimitMapsToRateLimited(t *testing.T) {
	emb, _ := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit exceeded","type":"tokens"}}`))
	})

	_, err := emb.BatchEmbed(context.Background(), []string{"query"})
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	// Must not also match the provider sentinel, or the transport would map
	// it to 502 instead of 429.
	if errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("err = %v, matches ErrEmbeddingProviderError too", err)
	}
}

func TestBatchEmbed_EmptyBatch(t *testing.T) {
	called := false
	emb, _ := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := emb.BatchEmbed(context.Background(), nil)
	if !errors.Is(err, domain.ErrBatchMismatch) {
		t.Fatalf("err = %v, want ErrBatchMismatch", err)
	}
	if called {
		t.Error("provider called for an empty batch")
	}
}

func TestBatchEmbed_SendsAllTextsInOneRequest(t *testing.T) {
	var gotInput []string
	requests := 0
	emb, _ := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		var req struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotInput = req.Input
		respondWith(t, []embeddingItem{
			{Object: "embedding", Index: 0, Embedding: []float32{1}},
			{Object: "embedding", Index: 1, Embedding: []float32{1}},
			{Object: "embedding", Index: 2, Embedding: []float32{1}},
		}, 0, 0)(w, r)
	})

	texts := []string{"query", "doc a", "doc b"}
	if _, err := emb.BatchEmbed(context.Background(), texts); err != nil {
		t.Fatalf("BatchEmbed error: %v", err)
	}
	if requests != 1 {
		t.Fatalf("provider hit %d times, want 1", requests)
	}
	if len(gotInput) != 3 || gotInput[0] != "query" || gotInput[2] != "doc b" {
		t.Errorf("request input = %v, want %v", gotInput, texts)
	}
}
