package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"votecheck/internal/platform/i18n"
	"votecheck/internal/ratelimit/metrics"
	"votecheck/internal/ratelimit/models"
	"votecheck/pkg/platform/circuit"
	"votecheck/pkg/platform/httputil"
	"votecheck/pkg/platform/middleware/metadata"
	"votecheck/pkg/platform/privacy"
	"votecheck/pkg/requestcontext"
)

// Store is a bucket store keyed by client.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

// Middleware applies a per-client-IP request budget to the handlers it wraps.
type Middleware struct {
	primary  Store
	fallback Store
	breaker  *circuit.Breaker
	limit    int
	window   time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
}

// Option configures a Middleware.
type Option func(*Middleware)

// WithDisabled disables rate limiting entirely.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// WithFallback serves decisions from fallback while the primary store keeps
// failing. Without a fallback, store errors let the request through.
func WithFallback(fallback Store) Option {
	return func(m *Middleware) {
		m.fallback = fallback
	}
}

// WithBreaker overrides the breaker guarding the primary store.
func WithBreaker(b *circuit.Breaker) Option {
	return func(m *Middleware) {
		if b != nil {
			m.breaker = b
		}
	}
}

// WithMetrics records decisions, store errors and fallback state.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

// New admits at most limit requests per window for each client IP.
func New(store Store, limit int, window time.Duration, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		primary: store,
		breaker: circuit.New("ratelimit"),
		limit:   limit,
		window:  window,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit admits or rejects each request with a 429 and sets X-RateLimit-* headers.
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		ip := requestcontext.ClientIP(ctx)
		if ip == "" {
			ip = metadata.RemoteIP(r)
		}

		result, degraded, err := m.check(ctx, models.NewIPRateLimitKey(ip))
		if err != nil {
			m.logger.ErrorContext(ctx, "failed to check IP rate limit", "error", err, "ip_prefix", privacy.AnonymizeIP(ip))
			m.metrics.IncrementDecision("skipped")
			next.ServeHTTP(w, r)
			return
		}

		// Add headers regardless of outcome
		addRateLimitHeaders(w, result)
		if degraded {
			w.Header().Set("X-RateLimit-Status", "degraded")
		}

		if !result.Allowed {
			m.metrics.IncrementDecision("denied")
			m.logger.InfoContext(ctx, "rate limit exceeded",
				"request_id", requestcontext.RequestID(ctx),
				"ip_prefix", privacy.AnonymizeIP(ip),
			)
			writeRateLimitExceeded(ctx, w, result)
			return
		}

		m.metrics.IncrementDecision("allowed")
		next.ServeHTTP(w, r)
	})
}

// check consults the primary store and, when one is configured, switches to
// the fallback while the breaker is open. The primary keeps being probed so
// the breaker can close again.
func (m *Middleware) check(ctx context.Context, key string) (*models.RateLimitResult, bool, error) {
	result, err := m.primary.Allow(ctx, key, m.limit, m.window)
	if m.fallback == nil {
		if err != nil {
			m.metrics.IncrementStoreErrors()
		}
		return result, false, err
	}

	if err != nil {
		m.metrics.IncrementStoreErrors()
		useFallback, change := m.breaker.RecordFailure()
		if change.Opened {
			m.logger.WarnContext(ctx, "rate limit store failing, using in-memory fallback", "error", err)
			m.metrics.SetFallbackActive(true)
		}
		if !useFallback {
			return nil, false, err
		}
		result, err = m.fallback.Allow(ctx, key, m.limit, m.window)
		return result, true, err
	}

	usePrimary, change := m.breaker.RecordSuccess()
	if change.Closed {
		m.logger.InfoContext(ctx, "rate limit store recovered")
		m.metrics.SetFallbackActive(false)
	}
	if usePrimary {
		return result, false, nil
	}
	result, err = m.fallback.Allow(ctx, key, m.limit, m.window)
	return result, true, err
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(ctx context.Context, w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.RateLimitExceededResponse{
		Error:      "rate_limit_exceeded",
		Message:    i18n.T(ctx, i18n.MsgRateLimited),
		RetryAfter: result.RetryAfter,
	})
}
