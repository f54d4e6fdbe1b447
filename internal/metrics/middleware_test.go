package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_CountsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/v1/posts/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/v1/posts/{id}", "200"))

	for _, id := range []string{"a", "b"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/posts/"+id, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
	}

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/v1/posts/{id}", "200"))
	if after-before != 2 {
		t.Errorf("counter delta = %v, want 2 (both ids under one route pattern)", after-before)
	}
}

func TestMiddleware_RecordsErrorStatus(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/boom", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/boom", "502"))

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/boom", "502"))
	if after-before != 1 {
		t.Errorf("counter delta = %v, want 1", after-before)
	}
}

func TestStatusWriter_DefaultsTo200OnWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &statusWriter{ResponseWriter: rec, status: http.StatusOK}

	if _, err := w.Write([]byte("ok")); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if w.status != http.StatusOK {
		t.Errorf("status = %d, want 200", w.status)
	}
	// A late explicit WriteHeader must not override the recorded status.
	w.WriteHeader(http.StatusInternalServerError)
	if w.status != http.StatusOK {
		t.Errorf("status = %d, want 200 after late WriteHeader", w.status)
	}
}
