package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"votecheck/internal/election/registry"
	"votecheck/internal/election/service"
	id "votecheck/pkg/domain"
	"votecheck/pkg/platform/httputil"
	"votecheck/pkg/platform/privacy"
	"votecheck/pkg/requestcontext"
)

// Service defines the interface for registry operations.
type Service interface {
	Lookup(ctx context.Context, source registry.Source, nationalID id.NationalID) service.SourceResult
	Check(ctx context.Context, nationalID id.NationalID) service.CheckResult
}

// Handler wires the lookup endpoints and the web form to the service.
type Handler struct {
	service       Service
	logger        *slog.Logger
	apiMiddleware []func(http.Handler) http.Handler
}

// New constructs a handler. apiMiddleware wraps only the /api routes.
func New(service Service, logger *slog.Logger, apiMiddleware ...func(http.Handler) http.Handler) *Handler {
	return &Handler{
		service:       service,
		logger:        logger,
		apiMiddleware: apiMiddleware,
	}
}

// Register mounts the form and the API endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.HandleIndex)
	r.Route("/api", func(r chi.Router) {
		r.Use(h.apiMiddleware...)
		r.Post("/election", h.HandleElection)
		r.Post("/election-pm", h.HandleReferendum)
		r.Post("/check", h.HandleCheck)
	})
}

// HandleElection handles POST /api/election requests.
func (h *Handler) HandleElection(w http.ResponseWriter, r *http.Request) {
	h.handleLookup(w, r, registry.SourceElection)
}

// HandleReferendum handles POST /api/election-pm requests.
func (h *Handler) HandleReferendum(w http.ResponseWriter, r *http.Request) {
	h.handleLookup(w, r, registry.SourceReferendum)
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request, source registry.Source) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := requestcontext.Now(ctx)

	req, ok := httputil.DecodeAndPrepare[LookupRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res := h.service.Lookup(ctx, source, req.ParsedNationalID())
	resp, status := FromSourceResult(ctx, res)

	h.logger.InfoContext(ctx, "lookup served",
		"request_id", requestID,
		"source", source,
		"national_id", privacy.MaskNationalID(req.ThaiID),
		"outcome", res.Outcome(),
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, status, resp)
}

// HandleCheck handles POST /api/check requests.
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := requestcontext.Now(ctx)

	req, ok := httputil.DecodeAndPrepare[LookupRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res := h.service.Check(ctx, req.ParsedNationalID())

	h.logger.InfoContext(ctx, "check served",
		"request_id", requestID,
		"national_id", privacy.MaskNationalID(req.ThaiID),
		"comparison", res.Comparison.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromCheckResult(ctx, res))
}
