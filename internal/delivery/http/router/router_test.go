package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/ishtml5-service/internal/delivery/http/handler"
	"github.com/user/ishtml5-service/internal/entity"
	"github.com/user/ishtml5-service/pkg/metrics"
)

type fixedResolver bool

func (f fixedResolver) Resolve(context.Context, entity.ValidURL) (bool, error) {
	return bool(f), nil
}

func newTestRouter(t *testing.T) (http.Handler, *metrics.Metrics) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	h := handler.NewHandler(fixedResolver(true), "memory", nil, zap.NewNop())
	return New(h, m, reg, zap.NewNop()), m
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func TestRouter_Routes(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
	}{
		{name: "get_ishtml5", method: http.MethodGet, target: "/api/ishtml5?url=https://example.com", status: http.StatusOK},
		{name: "post_ishtml5", method: http.MethodPost, target: "/api/ishtml5", body: `{"url":"https://example.com"}`, status: http.StatusOK},
		{name: "missing_url", method: http.MethodGet, target: "/api/ishtml5", status: http.StatusBadRequest},
		{name: "health", method: http.MethodGet, target: "/api/health", status: http.StatusOK},
		{name: "metrics", method: http.MethodGet, target: "/metrics", status: http.StatusOK},
		{name: "method_not_allowed", method: http.MethodDelete, target: "/api/ishtml5", status: http.StatusMethodNotAllowed},
		{name: "unknown_path", method: http.MethodGet, target: "/nope", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(r, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRouter_IsHTML5Body(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(r, http.MethodGet, "/api/ishtml5?url=https://example.com", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestRouter_MetricsLabelledByRoutePattern(t *testing.T) {
	r, m := newTestRouter(t)

	do(r, http.MethodGet, "/api/ishtml5?url=https://a.example", "")
	do(r, http.MethodGet, "/api/ishtml5?url=https://b.example", "")
	do(r, http.MethodGet, "/nope", "")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/ishtml5", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")))
}

func TestRouter_MetricsEndpointExposesCollectors(t *testing.T) {
	r, _ := newTestRouter(t)

	do(r, http.MethodGet, "/api/health", "")
	rec := do(r, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/api/health",status="200"} 1`)
}
