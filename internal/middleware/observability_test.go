package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/kiwari-pos/storefront/internal/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(zap.New(core)))
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("hi")) })
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("log entries: got %d, want 2", len(entries))
	}
	if got := entries[0].ContextMap()["status"]; got != int64(200) {
		t.Errorf("status field: got %v, want 200", got)
	}
	if got := entries[0].ContextMap()["bytes"]; got != int64(2) {
		t.Errorf("bytes field: got %v, want 2", got)
	}
	if entries[1].Level != zap.ErrorLevel {
		t.Errorf("5xx level: got %v, want error", entries[1].Level)
	}
}

func TestMetrics_RecordsRoutePattern(t *testing.T) {
	m := middleware.NewMetrics()
	r := chi.NewRouter()
	r.Use(m.Instrument)
	r.Get("/api/orders/{id}", func(w http.ResponseWriter, r *http.Request) {})
	r.Handle("/metrics", m.Handler())

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/orders/"+id, nil))
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rr.Body)

	want := `storefront_http_requests_total{method="GET",route="/api/orders/{id}",status="200"} 2`
	if !strings.Contains(string(body), want) {
		t.Fatalf("metrics output missing %q", want)
	}
}
