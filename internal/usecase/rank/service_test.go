package rank

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/campusfeed/askrank/internal/domain"
	"github.com/campusfeed/askrank/internal/domain/post"
)

type mockCorpus struct {
	posts []post.Post
	err   error
	calls int
}

func (m *mockCorpus) LoadCorpus(_ context.Context) ([]post.Post, error) {
	m.calls++
	return m.posts, m.err
}

type mockEmbedder struct {
	vectors  [][]float32
	err      error
	calls    int
	gotBatch []string
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.calls++
	m.gotBatch = texts
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	return domain.BatchEmbeddingResult{Embeddings: m.vectors, TotalTokens: 42}, nil
}

func titledPost(id, title string) post.Post {
	return post.Reconstruct(id, title, "", nil, "", "", "", 0, post.EventDate{}, "", "")
}

// zeroVecs returns n zero vectors, which pin every cosine score to 0 so
// tests can isolate the lexical signal.
func zeroVecs(n int) [][]float32 {
	vecs := make([][]float32, n)
	for i := range vecs {
		vecs[i] = []float32{0, 0}
	}
	return vecs
}

func TestRank_EmptyQueryShortCircuits(t *testing.T) {
	for _, query := range []string{"", "   ", "\t\n "} {
		corpus := &mockCorpus{posts: []post.Post{titledPost("a", "pizza")}}
		embed := &mockEmbedder{}
		svc := New(corpus, embed)

		results, err := svc.Rank(context.Background(), query)
		if err != nil {
			t.Fatalf("Rank(%q) error: %v", query, err)
		}
		if len(results) != 0 {
			t.Errorf("Rank(%q) returned %d results, want 0", query, len(results))
		}
		if corpus.calls != 0 || embed.calls != 0 {
			t.Errorf("Rank(%q) did I/O: corpus=%d embed=%d calls", query, corpus.calls, embed.calls)
		}
	}
}

func TestRank_EmptyCorpusShortCircuits(t *testing.T) {
	corpus := &mockCorpus{}
	embed := &mockEmbedder{}
	svc := New(corpus, embed)

	results, err := svc.Rank(context.Background(), "pizza")
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
	if embed.calls != 0 {
		t.Errorf("embedder called %d times on empty corpus, want 0", embed.calls)
	}
}

func TestRank_BatchIsQueryThenComposites(t *testing.T) {
	posts := []post.Post{titledPost("a", "Free Pizza Night"), titledPost("b", "Career Fair")}
	corpus := &mockCorpus{posts: posts}
	embed := &mockEmbedder{vectors: zeroVecs(3)}
	svc := New(corpus, embed)

	if _, err := svc.Rank(context.Background(), "free pizza"); err != nil {
		t.Fatalf("Rank error: %v", err)
	}
	if len(embed.gotBatch) != 3 {
		t.Fatalf("batch size = %d, want 3", len(embed.gotBatch))
	}
	if embed.gotBatch[0] != "free pizza" {
		t.Errorf("batch[0] = %q, want the query", embed.gotBatch[0])
	}
	if want := posts[0].CompositeText(); embed.gotBatch[1] != want {
		t.Errorf("batch[1] = %q, want %q", embed.gotBatch[1], want)
	}
	if want := posts[1].CompositeText(); embed.gotBatch[2] != want {
		t.Errorf("batch[2] = %q, want %q", embed.gotBatch[2], want)
	}
}

func TestRank_SampleCapBoundsTheBatch(t *testing.T) {
	posts := make([]post.Post, 5)
	for i := range posts {
		posts[i] = titledPost(string(rune('a'+i)), "event")
	}
	corpus := &mockCorpus{posts: posts}
	embed := &mockEmbedder{vectors: zeroVecs(4)}
	svc := New(corpus, embed).WithLimits(3, 10)

	results, err := svc.Rank(context.Background(), "event")
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}
	if len(embed.gotBatch) != 4 {
		t.Errorf("batch size = %d, want 4 (query + 3 sampled)", len(embed.gotBatch))
	}
	if len(results) != 3 {
		t.Errorf("got %d results, want 3", len(results))
	}
}

func TestRank_ResultCapTruncatesAfterSort(t *testing.T) {
	corpus := &mockCorpus{posts: []post.Post{
		titledPost("a", "study group"),
		titledPost("b", "pizza pizza pizza"),
		titledPost("c", "career fair"),
	}}
	embed := &mockEmbedder{vectors: zeroVecs(4)}
	svc := New(corpus, embed).WithLimits(0, 1)

	results, err := svc.Rank(context.Background(), "pizza")
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].ID() != "b" {
		t.Errorf("survivor = %q, want the top-scored post %q", results[0].ID(), "b")
	}
}

func TestRank_SortedDescendingTiesKeepCorpusOrder(t *testing.T) {
	corpus := &mockCorpus{posts: []post.Post{
		titledPost("first", "robotics"),
		titledPost("second", "robotics"),
		titledPost("third", "robotics club meetup"),
	}}
	// Identical vectors for the two ties, a weaker one for the third.
	embed := &mockEmbedder{vectors: [][]float32{
		{1, 0},
		{1, 0},
		{1, 0},
		{0, 1},
	}}
	svc := New(corpus, embed)

	results, err := svc.Rank(context.Background(), "robotics")
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score() > results[i-1].Score() {
			t.Fatalf("results not sorted: score[%d]=%v > score[%d]=%v",
				i, results[i].Score(), i-1, results[i-1].Score())
		}
	}
	if results[0].ID() != "first" || results[1].ID() != "second" {
		t.Errorf("tie order = %q,%q, want corpus order first,second",
			results[0].ID(), results[1].ID())
	}
}

func TestRank_VectorsPairWithTheirPosts(t *testing.T) {
	posts := []post.Post{titledPost("a", "chess"), titledPost("b", "swimming")}
	query := "anything"

	run := func(docA, docB []float32) string {
		corpus := &mockCorpus{posts: posts}
		embed := &mockEmbedder{vectors: [][]float32{{1, 0}, docA, docB}}
		results, err := New(corpus, embed).Rank(context.Background(), query)
		if err != nil {
			t.Fatalf("Rank error: %v", err)
		}
		return results[0].ID()
	}

	if got := run([]float32{1, 0}, []float32{0, 1}); got != "a" {
		t.Errorf("winner = %q, want a", got)
	}
	// Swapping the document vectors must swap the winner.
	if got := run([]float32{0, 1}, []float32{1, 0}); got != "b" {
		t.Errorf("winner after swap = %q, want b", got)
	}
}

func TestRank_CountMismatchIsAnError(t *testing.T) {
	corpus := &mockCorpus{posts: []post.Post{titledPost("a", "x"), titledPost("b", "y")}}
	embed := &mockEmbedder{vectors: zeroVecs(2)} // 3 expected
	svc := New(corpus, embed)

	results, err := svc.Rank(context.Background(), "q")
	if !errors.Is(err, domain.ErrBatchMismatch) {
		t.Fatalf("err = %v, want ErrBatchMismatch", err)
	}
	if results != nil {
		t.Errorf("got partial results on mismatch: %v", results)
	}
}

func TestRank_ProviderErrorPropagates(t *testing.T) {
	corpus := &mockCorpus{posts: []post.Post{titledPost("a", "x")}}
	embed := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	svc := New(corpus, embed)

	results, err := svc.Rank(context.Background(), "q")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("err = %v, want ErrEmbeddingProviderError", err)
	}
	if results != nil {
		t.Errorf("got partial results on provider failure: %v", results)
	}
}

func TestRank_CorpusErrorPropagates(t *testing.T) {
	loadErr := errors.New("connection refused")
	corpus := &mockCorpus{err: loadErr}
	embed := &mockEmbedder{}
	svc := New(corpus, embed)

	if _, err := svc.Rank(context.Background(), "q"); !errors.Is(err, loadErr) {
		t.Fatalf("err = %v, want wrapped %v", err, loadErr)
	}
	if embed.calls != 0 {
		t.Errorf("embedder called after corpus failure")
	}
}

func TestRank_PizzaScenario(t *testing.T) {
	pizza := post.Reconstruct(
		"pz", "Free Pizza Night", "grab a slice with the club", []string{"food"},
		"MLK Center", "events", "https://img.example/pz.jpg", 12, post.EventDate{}, "", "",
	)
	fair := titledPost("cf", "Career Fair")
	corpus := &mockCorpus{posts: []post.Post{fair, pizza}}
	embed := &mockEmbedder{vectors: [][]float32{
		{1, 0},      // query
		{0.1, 0.99}, // career fair: semantically far
		{0.95, 0.1}, // pizza night: semantically close
	}}
	svc := New(corpus, embed)

	results, err := svc.Rank(context.Background(), "free pizza tonight")
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	top := results[0]
	if top.ID() != "pz" {
		t.Fatalf("top result = %q, want pz", top.ID())
	}
	if top.Href() != "/p/pz" {
		t.Errorf("Href = %q, want /p/pz", top.Href())
	}
	if top.Subtitle() != "MLK Center" {
		t.Errorf("Subtitle = %q, want %q", top.Subtitle(), "MLK Center")
	}
	if top.LikedCount() != 12 {
		t.Errorf("LikedCount = %d, want 12", top.LikedCount())
	}

	overlap := top.Why().Overlap
	want := []string{"free", "pizza"}
	if len(overlap) != len(want) {
		t.Fatalf("overlap = %v, want %v", overlap, want)
	}
	for i := range want {
		if overlap[i] != want[i] {
			t.Fatalf("overlap = %v, want %v", overlap, want)
		}
	}
	if got := results[1].Why().Overlap; len(got) != 0 {
		t.Errorf("career fair overlap = %v, want empty", got)
	}
}

func TestRank_OverlapCappedAndDeduped(t *testing.T) {
	p := titledPost("a", "one two one three four five six seven eight two")
	corpus := &mockCorpus{posts: []post.Post{p}}
	embed := &mockEmbedder{vectors: zeroVecs(2)}
	svc := New(corpus, embed)

	results, err := svc.Rank(context.Background(),
		"one two three four five six seven eight")
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}
	overlap := results[0].Why().Overlap
	want := []string{"one", "two", "three", "four", "five", "six"}
	if len(overlap) != len(want) {
		t.Fatalf("overlap = %v, want %v", overlap, want)
	}
	for i := range want {
		if overlap[i] != want[i] {
			t.Fatalf("overlap = %v, want %v (first appearance order, deduped)", overlap, want)
		}
	}
}

func TestRank_BlendAndRounding(t *testing.T) {
	p := titledPost("a", "pizza")
	corpus := &mockCorpus{posts: []post.Post{p}}
	// cos([1,1],[1,0]) = 1/sqrt(2), not a multiple of 0.001.
	embed := &mockEmbedder{vectors: [][]float32{{1, 1}, {1, 0}}}
	svc := New(corpus, embed)

	results, err := svc.Rank(context.Background(), "pizza")
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}
	r := results[0]

	sem := 1 / math.Sqrt2
	// Composite "pizza •  •  •  • " tokenizes to one term, one hit.
	lex := 1 / math.Log2(3)

	if got, want := r.Why().Semantic, math.Round(sem*1000)/1000; got != want {
		t.Errorf("Why.Semantic = %v, want %v (3 decimals)", got, want)
	}
	if got, want := r.Why().Lexical, math.Round(lex*1000)/1000; got != want {
		t.Errorf("Why.Lexical = %v, want %v (3 decimals)", got, want)
	}
	if got, want := r.Score(), 0.75*sem+0.25*lex; math.Abs(got-want) > 1e-6 {
		t.Errorf("Score = %v, want unrounded blend %v", got, want)
	}
}

func TestRank_CustomWeights(t *testing.T) {
	corpus := &mockCorpus{posts: []post.Post{titledPost("a", "pizza")}}
	embed := &mockEmbedder{vectors: [][]float32{{1, 0}, {1, 0}}}
	svc := New(corpus, embed).WithWeights(0.5, 0.5)

	results, err := svc.Rank(context.Background(), "concert")
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}
	// sem = 1, lex = 0 under the custom blend.
	if got := results[0].Score(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Score = %v, want 0.5", got)
	}
}
