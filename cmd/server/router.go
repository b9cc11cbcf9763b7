package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"votecheck/internal/election/handler"
	"votecheck/internal/platform/i18n"
	platformmetrics "votecheck/internal/platform/metrics"
	"votecheck/pkg/platform/httputil"
	"votecheck/pkg/platform/middleware/metadata"
	"votecheck/pkg/platform/middleware/requestid"
	"votecheck/pkg/platform/middleware/requesttime"
)

// healthChecker is satisfied by the Redis client.
type healthChecker interface {
	Health(ctx context.Context) error
}

type healthResponse struct {
	Status string `json:"status"`
	Redis  string `json:"redis,omitempty"`
}

func newRouter(h *handler.Handler, redis healthChecker, m *platformmetrics.Metrics, clientIP *metadata.Resolver) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(clientIP.Middleware)
	r.Use(i18n.Middleware)
	r.Use(m.Middleware)

	r.Get("/health", healthHandler(redis))
	r.Handle("/metrics", promhttp.Handler())
	h.Register(r)
	return r
}

// healthHandler reports 503 when a configured Redis does not answer.
func healthHandler(redis healthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		if redis == nil {
			httputil.WriteJSON(w, http.StatusOK, resp)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := redis.Health(ctx); err != nil {
			resp.Status = "degraded"
			resp.Redis = "unreachable"
			httputil.WriteJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		resp.Redis = "ok"
		httputil.WriteJSON(w, http.StatusOK, resp)
	}
}
