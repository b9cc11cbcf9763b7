package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votecheck/internal/platform/i18n"
	"votecheck/internal/ratelimit/metrics"
	"votecheck/internal/ratelimit/models"
	"votecheck/internal/ratelimit/store/bucket"
	"votecheck/pkg/platform/circuit"
	"votecheck/pkg/platform/middleware/metadata"
	"votecheck/pkg/testutil"
)

type failingStore struct {
	calls int
}

func (f *failingStore) Allow(context.Context, string, int, time.Duration) (*models.RateLimitResult, error) {
	f.calls++
	return nil, errors.New("redis: connection refused")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func serve(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/check", nil)
	req.RemoteAddr = ip + ":5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_AdmitsUpToLimitPerIP(t *testing.T) {
	m := New(bucket.New(), 2, time.Minute, discardLogger())
	h := metadata.ClientMetadata(m.RateLimit(okHandler()))

	first := serve(h, "203.0.113.1")
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, first.Header().Get("X-RateLimit-Reset"))

	assert.Equal(t, http.StatusNoContent, serve(h, "203.0.113.1").Code)

	denied := serve(h, "203.0.113.1")
	assert.Equal(t, http.StatusTooManyRequests, denied.Code)
	assert.Equal(t, "0", denied.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, denied.Header().Get("Retry-After"))

	var body models.RateLimitExceededResponse
	require.NoError(t, json.Unmarshal(denied.Body.Bytes(), &body))
	assert.Equal(t, "rate_limit_exceeded", body.Error)
	assert.Equal(t, "มีการเรียกใช้งานมากเกินไป กรุณาลองใหม่ภายหลัง", body.Message)
	assert.Positive(t, body.RetryAfter)

	// Another client has its own bucket.
	assert.Equal(t, http.StatusNoContent, serve(h, "203.0.113.2").Code)
}

func TestRateLimit_RotatingForwardedForSharesPeerBudget(t *testing.T) {
	m := New(bucket.New(), 2, time.Minute, discardLogger())
	h := metadata.ClientMetadata(m.RateLimit(okHandler()))

	allowed := 0
	for i := range 50 {
		req := httptest.NewRequest(http.MethodPost, "/api/check", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusNoContent {
			allowed++
		}
	}
	assert.Equal(t, 2, allowed)
}

func TestRateLimit_TrustedProxyKeysOnForwardedClient(t *testing.T) {
	resolver, err := metadata.NewResolver([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	m := New(bucket.New(), 1, time.Minute, discardLogger())
	h := resolver.Middleware(m.RateLimit(okHandler()))

	send := func(client string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/check", nil)
		req.RemoteAddr = "10.0.0.2:443"
		req.Header.Set("X-Forwarded-For", client)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, send("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("198.51.100.1"))
	assert.Equal(t, http.StatusNoContent, send("198.51.100.2"))
}

func TestRateLimit_LocalizedMessage(t *testing.T) {
	m := New(bucket.New(), 0, time.Minute, discardLogger())
	h := i18n.Middleware(m.RateLimit(okHandler()))

	req := httptest.NewRequest(http.MethodPost, "/api/check", nil)
	req.Header.Set("Accept-Language", "en")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	var body models.RateLimitExceededResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Too many requests, please try again later", body.Message)
}

func TestRateLimit_UsesClientIPFromContext(t *testing.T) {
	m := New(bucket.New(), 1, time.Minute, discardLogger())
	h := m.RateLimit(okHandler())

	req := func() *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/api/check", nil)
		return testutil.WithClientIP(r, "198.51.100.20")
	}
	assert.Equal(t, http.StatusNoContent, testutil.DoRequest(h, req()).Code)
	assert.Equal(t, http.StatusTooManyRequests, testutil.DoRequest(h, req()).Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	store := &failingStore{}
	m := New(store, 1, time.Minute, discardLogger(), WithDisabled(true))
	h := m.RateLimit(okHandler())

	for range 3 {
		assert.Equal(t, http.StatusNoContent, serve(h, "203.0.113.1").Code)
	}
	assert.Zero(t, store.calls)
}

func TestRateLimit_StoreErrorFailsOpen(t *testing.T) {
	mt := metrics.NewWithRegisterer(prometheus.NewRegistry())
	m := New(&failingStore{}, 1, time.Minute, discardLogger(), WithMetrics(mt))
	h := m.RateLimit(okHandler())

	rec := serve(h, "203.0.113.1")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(mt.StoreErrors))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(mt.Decisions.WithLabelValues("skipped")))
}

func TestRateLimit_FallbackAfterBreakerOpens(t *testing.T) {
	mt := metrics.NewWithRegisterer(prometheus.NewRegistry())
	m := New(&failingStore{}, 1, time.Minute, discardLogger(),
		WithFallback(bucket.New()),
		WithBreaker(circuit.New("test", circuit.WithFailureThreshold(2))),
		WithMetrics(mt),
	)
	h := m.RateLimit(okHandler())

	// Below the threshold the request is let through without a decision.
	first := serve(h, "203.0.113.1")
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Empty(t, first.Header().Get("X-RateLimit-Status"))

	// The breaker opens and the fallback starts enforcing.
	second := serve(h, "203.0.113.1")
	assert.Equal(t, http.StatusNoContent, second.Code)
	assert.Equal(t, "degraded", second.Header().Get("X-RateLimit-Status"))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(mt.FallbackActive))

	third := serve(h, "203.0.113.1")
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.Equal(t, "degraded", third.Header().Get("X-RateLimit-Status"))
}
