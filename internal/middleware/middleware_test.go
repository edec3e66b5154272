package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/radiusdt/campaign-insights/internal/config"
	"github.com/radiusdt/campaign-insights/internal/metrics"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestAuthMiddleware(t *testing.T) {
	auth := NewAuthMiddleware(config.AuthConfig{
		Enabled:   true,
		MasterKey: "s3cret",
		SkipPaths: []string{"/health", "/metrics"},
	}, zap.NewNop()).Handler(ok)

	tests := []struct {
		name   string
		path   string
		header map[string]string
		want   int
	}{
		{"skipped path", "/health", nil, http.StatusOK},
		{"missing key", "/v1/kpis", nil, http.StatusUnauthorized},
		{"wrong key", "/v1/kpis", map[string]string{AuthHeaderName: "nope"}, http.StatusUnauthorized},
		{"header key", "/v1/kpis", map[string]string{AuthHeaderName: "s3cret"}, http.StatusOK},
		{"bearer key", "/v1/kpis", map[string]string{"Authorization": "Bearer s3cret"}, http.StatusOK},
		{"prefix is not a skip", "/healthz", nil, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			auth.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := NewRecoveryMiddleware(zap.NewNop()).Handler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("handler bug")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestLoggingMiddlewareSetsRequestID(t *testing.T) {
	var seen string
	h := NewLoggingMiddleware(zap.NewNop()).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rec.Header().Get(RequestIDHeader) != seen {
		t.Errorf("request id = %q, header = %q", seen, rec.Header().Get(RequestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "given-id")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "given-id" {
		t.Errorf("request id = %q, want given-id", seen)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	m := metrics.NewMetrics("mw_test", prometheus.NewRegistry())
	rl := NewRateLimitMiddleware(config.RateLimitConfig{
		Enabled:         true,
		RPS:             0.001,
		Burst:           2,
		GenerativeRPS:   0.001,
		GenerativeBurst: 1,
	}, zap.NewNop(), m)
	h := rl.Handler(ok)

	do := func(method, path, ip string) int {
		req := httptest.NewRequest(method, path, nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if do(http.MethodGet, "/v1/kpis", "10.0.0.1") != http.StatusOK || do(http.MethodGet, "/v1/kpis", "10.0.0.1") != http.StatusOK {
		t.Fatal("burst should be allowed")
	}
	if do(http.MethodGet, "/v1/kpis", "10.0.0.1") != http.StatusTooManyRequests {
		t.Error("third request should be limited")
	}
	if do(http.MethodGet, "/v1/kpis", "10.0.0.2") != http.StatusOK {
		t.Error("other clients have their own bucket")
	}

	if do(http.MethodPost, "/v1/projects/p1/predict", "10.0.0.3") != http.StatusOK {
		t.Fatal("first generative request should pass")
	}
	if do(http.MethodPost, "/v1/projects/p1/analyze", "10.0.0.4") != http.StatusTooManyRequests {
		t.Error("generative bucket is shared across clients")
	}
	if got := testutil.ToFloat64(m.RateLimitHits.WithLabelValues("generative")); got != 1 {
		t.Errorf("generative hits = %v", got)
	}

	rl.CleanupIPLimiters()
	if do(http.MethodGet, "/v1/kpis", "10.0.0.1") != http.StatusOK {
		t.Error("cleanup should reset client buckets")
	}
}
