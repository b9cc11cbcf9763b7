// Package service runs registry lookups and cross-checks the two registries.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"votecheck/internal/election/domain"
	"votecheck/internal/election/metrics"
	"votecheck/internal/election/registry"
	id "votecheck/pkg/domain"
	"votecheck/pkg/platform/privacy"
	"votecheck/pkg/platform/sentinel"
	"votecheck/pkg/requestcontext"
)

// Registry is the upstream lookup port implemented by *registry.Client.
type Registry interface {
	Source() registry.Source
	Lookup(ctx context.Context, nationalID id.NationalID) (registry.Payload, error)
}

// SourceResult is the outcome of querying one registry. Result is set only on
// success. Raw holds the upstream body whenever one was received, including
// the no-data case.
type SourceResult struct {
	Source registry.Source
	Result *domain.Result
	Raw    json.RawMessage
	Err    error
}

// Outcome classifies the result for metrics and HTTP mapping.
func (r SourceResult) Outcome() string {
	switch {
	case r.Err == nil:
		return metrics.OutcomeFound
	case errors.Is(r.Err, domain.ErrNoData):
		return metrics.OutcomeNoData
	case errors.Is(r.Err, sentinel.ErrUnavailable):
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeFailed
	}
}

// Comparison summarizes the cross-check.
type Comparison struct {
	Status     domain.ComparisonStatus
	EarlyVoted bool
}

// CheckResult holds both registry results and their comparison.
type CheckResult struct {
	Election   SourceResult
	Referendum SourceResult
	Comparison Comparison
}

// Service queries the registries.
type Service struct {
	election   Registry
	referendum Registry
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New creates a Service over the general-election and referendum registries.
func New(election, referendum Registry, opts ...Option) *Service {
	s := &Service{
		election:   election,
		referendum: referendum,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup queries one registry and normalizes its answer.
func (s *Service) Lookup(ctx context.Context, source registry.Source, nationalID id.NationalID) SourceResult {
	reg := s.registryFor(source)
	if reg == nil {
		return SourceResult{
			Source: source,
			Err:    fmt.Errorf("unknown registry %q: %w", source, sentinel.ErrNotFound),
		}
	}
	return s.lookup(ctx, reg, nationalID)
}

// Check queries both registries concurrently and compares the results. A
// failure on one side never cancels the other.
func (s *Service) Check(ctx context.Context, nationalID id.NationalID) CheckResult {
	start := time.Now()
	var result CheckResult

	var g errgroup.Group
	g.Go(func() error {
		result.Election = s.lookup(ctx, s.election, nationalID)
		return nil
	})
	g.Go(func() error {
		result.Referendum = s.lookup(ctx, s.referendum, nationalID)
		return nil
	})
	_ = g.Wait()

	result.Comparison = Comparison{
		Status:     domain.Compare(result.Election.Result, result.Referendum.Result),
		EarlyVoted: domain.AnyEarlyVoted(result.Election.Result, result.Referendum.Result),
	}

	s.metrics.IncrementComparison(string(result.Comparison.Status))
	s.metrics.ObserveCheckLatency(time.Since(start))
	s.logger.InfoContext(ctx, "registries compared",
		"request_id", requestcontext.RequestID(ctx),
		"national_id", privacy.MaskNationalID(nationalID.String()),
		"status", result.Comparison.Status,
		"early_voted", result.Comparison.EarlyVoted,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result
}

func (s *Service) registryFor(source registry.Source) Registry {
	for _, reg := range []Registry{s.election, s.referendum} {
		if reg != nil && reg.Source() == source {
			return reg
		}
	}
	return nil
}

func (s *Service) lookup(ctx context.Context, reg Registry, nationalID id.NationalID) SourceResult {
	source := reg.Source()
	res := SourceResult{Source: source}

	start := time.Now()
	payload, err := reg.Lookup(ctx, nationalID)
	s.metrics.ObserveLookupLatency(string(source), time.Since(start))

	if err == nil {
		res.Raw = payload.Body
		var normalized domain.Result
		normalized, err = domain.Normalize(payload.Response)
		if err == nil {
			res.Result = &normalized
		}
	}
	res.Err = err

	outcome := res.Outcome()
	s.metrics.IncrementLookupOutcome(string(source), outcome)

	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"source", source,
		"national_id", privacy.MaskNationalID(nationalID.String()),
		"outcome", outcome,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if outcome == metrics.OutcomeFailed {
		attrs = append(attrs,
			"category", registry.GetCategory(err),
			"retryable", registry.IsRetryable(err),
			"error", err,
		)
		s.logger.WarnContext(ctx, "registry lookup failed", attrs...)
	} else {
		s.logger.InfoContext(ctx, "registry lookup", attrs...)
	}
	return res
}
