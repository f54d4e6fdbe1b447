// Package chi exposes the ranking core over HTTP: one ask endpoint, a post
// detail endpoint, and health/metrics plumbing.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/campusfeed/askrank/internal/domain"
	"github.com/campusfeed/askrank/internal/domain/post"
	"github.com/campusfeed/askrank/internal/domain/rank/result"
	"github.com/campusfeed/askrank/internal/metrics"
	healthuc "github.com/campusfeed/askrank/internal/usecase/health"
)

// Error codes returned in JSON error bodies.
const (
	codeBadRequest    = "bad_request"
	codePostNotFound  = "post_not_found"
	codeProviderError = "embedding_provider_error"
	codeRateLimited   = "rate_limited"
	codeInternalError = "internal_error"
)

// Ranker runs one ranking call.
type Ranker interface {
	Rank(ctx context.Context, query string) ([]result.Result, error)
}

// PostGetter fetches a single post for the detail view.
type PostGetter interface {
	Get(ctx context.Context, id string) (post.Post, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	ranker        Ranker
	posts         PostGetter
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(ranker Ranker, posts PostGetter, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		ranker: ranker,
		posts:  posts,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrPostNotFound, http.StatusNotFound, codePostNotFound),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrBatchMismatch, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
	}
	return s
}

// Routes registers all endpoints on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/ask", s.Ask)
	r.Get("/v1/posts/{id}", s.GetPost)
	r.Get("/healthz", s.Healthz)
	r.Get("/readyz", s.Readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// askRequest is the POST /v1/ask payload.
type askRequest struct {
	Query string `json:"query"`
}

// whyDTO is the explanation payload of one hit.
type whyDTO struct {
	Semantic float64  `json:"semantic"`
	Lexical  float64  `json:"lexical"`
	Overlap  []string `json:"overlap"`
}

// resultDTO is one ranked hit on the wire.
type resultDTO struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Subtitle   string  `json:"subtitle,omitempty"`
	ImageURL   *string `json:"image_url"`
	LikedCount int     `json:"liked_count"`
	Href       string  `json:"href"`
	Why        whyDTO  `json:"why"`
}

// askResponse is the POST /v1/ask response.
type askResponse struct {
	Results []resultDTO `json:"results"`
	Count   int         `json:"count"`
}

// postDTO is the detail view payload.
type postDTO struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Tags        []string       `json:"tags,omitempty"`
	Location    string         `json:"location,omitempty"`
	Category    string         `json:"category,omitempty"`
	ImageURL    *string        `json:"image_url"`
	LikedCount  int            `json:"liked_count"`
	EventDate   post.EventDate `json:"event_date"`
	AuthorName  string         `json:"author_name,omitempty"`
	OrgName     string         `json:"org_name,omitempty"`
}

// Ask handles POST /v1/ask. An empty or whitespace query is not an error:
// it returns an empty result list, matching the engine's short-circuit.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	start := time.Now()
	results, err := s.ranker.Rank(r.Context(), req.Query)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		s.handleDomainError(w, err)
		return
	}

	metrics.SearchRequestsTotal.WithLabelValues("success").Inc()
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	metrics.SearchResultsCount.Observe(float64(len(results)))

	dtos := make([]resultDTO, len(results))
	for i := range results {
		dtos[i] = resultToDTO(&results[i])
	}
	writeJSON(w, http.StatusOK, askResponse{Results: dtos, Count: len(dtos)})
}

// GetPost handles GET /v1/posts/{id}.
func (s *Server) GetPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "post id is required")
		return
	}

	p, err := s.posts.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, postToDTO(&p))
}

// Healthz handles GET /healthz (liveness).
func (s *Server) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz handles GET /readyz (readiness: store + provider).
func (s *Server) Readyz(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

func resultToDTO(res *result.Result) resultDTO {
	why := res.Why()
	overlap := why.Overlap
	if overlap == nil {
		overlap = []string{}
	}
	return resultDTO{
		ID:         res.ID(),
		Title:      res.Title(),
		Subtitle:   res.Subtitle(),
		ImageURL:   nullableString(res.ImageURL()),
		LikedCount: res.LikedCount(),
		Href:       res.Href(),
		Why: whyDTO{
			Semantic: why.Semantic,
			Lexical:  why.Lexical,
			Overlap:  overlap,
		},
	}
}

func postToDTO(p *post.Post) postDTO {
	return postDTO{
		ID:          p.ID(),
		Title:       p.Title(),
		Description: p.Description(),
		Tags:        p.Tags(),
		Location:    p.Location(),
		Category:    p.Category(),
		ImageURL:    nullableString(p.ImageURL()),
		LikedCount:  p.LikedCount(),
		EventDate:   p.EventDate(),
		AuthorName:  p.AuthorName(),
		OrgName:     p.OrgName(),
	}
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrPostNotFound,
		domain.ErrEmbeddingProviderError,
		domain.ErrBatchMismatch,
		domain.ErrRateLimited,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
