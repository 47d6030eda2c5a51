package httpadapter_test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/dose-rate-exporter/internal/adapter/httpadapter"
	"github.com/couchcryptid/dose-rate-exporter/internal/observability"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func newTestServer(readyErr error) *httpadapter.Server {
	reg := observability.NewRegistry()
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "dose_rate", Help: "test"}, []string{"site", "lat", "lon"})
	reg.MustRegister(gauge)
	gauge.WithLabelValues("Helsinki", "60.17", "24.94").Set(0.08)

	return httpadapter.NewServer(":0", reg, &mockReadiness{err: readyErr}, 0, slog.Default())
}

func serve(srv *httpadapter.Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := serve(newTestServer(nil), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := serve(newTestServer(nil), http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := serve(newTestServer(fmt.Errorf("no dataset has been ingested yet")), http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(newTestServer(nil), http.MethodGet, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `dose_rate{lat="60.17",lon="24.94",site="Helsinki"} 0.08`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestUnknownPathReturns404(t *testing.T) {
	for _, path := range []string{"/", "/dose_rates", "/metrics/extra"} {
		rec := serve(newTestServer(nil), http.MethodGet, path)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}
