package httpadapter_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	httpadapter "github.com/stoalabs/ratebot/internal/adapters/http"
	"github.com/stoalabs/ratebot/internal/metrics"
)

func TestHealthz(t *testing.T) {
	srv := httpadapter.NewServer(prometheus.NewRegistry())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.TurnsTotal.WithLabelValues("ok").Inc()

	srv := httpadapter.NewServer(reg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ratebot_turns_total") {
		t.Fatalf("expected turn counter in metrics output, got:\n%s", w.Body.String())
	}
}
