package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"votecheck/internal/election/domain"
	id "votecheck/pkg/domain"
	"votecheck/pkg/platform/sentinel"
)

// Source names one upstream registry. The values double as the "source"
// field of API responses.
type Source string

const (
	// SourceElection is the general-election registry.
	SourceElection Source = "election"
	// SourceReferendum is the referendum registry.
	SourceReferendum Source = "election-pm"
)

const (
	idPlaceholder    = "{id}"
	maxResponseBytes = 1 << 20
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
)

var tracer = otel.Tracer("votecheck/internal/election/registry")

// Payload is an upstream response: the body verbatim, for diagnostics, and
// its decoded elements.
type Payload struct {
	Body     json.RawMessage
	Response domain.RawResponse
}

// Client queries one registry over HTTP.
type Client struct {
	source      Source
	urlTemplate string
	httpClient  *http.Client
	userAgent   string
	timeout     time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUserAgent overrides the User-Agent header sent upstream.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout bounds each lookup.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient builds a client for source. urlTemplate must contain "{id}"; an
// empty template yields a client whose lookups fail with sentinel.ErrUnavailable.
func NewClient(source Source, urlTemplate string, opts ...Option) *Client {
	c := &Client{
		source:      source,
		urlTemplate: urlTemplate,
		httpClient:  http.DefaultClient,
		userAgent:   defaultUserAgent,
		timeout:     defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Source returns the registry this client talks to.
func (c *Client) Source() Source {
	return c.source
}

// Configured reports whether the client has an endpoint.
func (c *Client) Configured() bool {
	return c.urlTemplate != ""
}

// Lookup fetches the registry record for nationalID.
func (c *Client) Lookup(ctx context.Context, nationalID id.NationalID) (Payload, error) {
	if !c.Configured() {
		return Payload{}, fmt.Errorf("registry %s: %w", c.source, sentinel.ErrUnavailable)
	}

	ctx, span := tracer.Start(ctx, "registry.Lookup",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("registry.source", string(c.source))),
	)
	defer span.End()

	payload, err := c.lookup(ctx, nationalID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(GetCategory(err)))
		return Payload{}, err
	}
	span.SetAttributes(attribute.Int("registry.elements", len(payload.Response)))
	return payload, nil
}

func (c *Client) lookup(ctx context.Context, nationalID id.NationalID) (Payload, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := strings.ReplaceAll(c.urlTemplate, idPlaceholder, url.PathEscape(nationalID.String()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Payload{}, NewProviderError(ErrorInternal, c.source, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Payload{}, c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Payload{}, c.transportError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		pe := NewProviderError(categoryForStatus(resp.StatusCode), c.source,
			fmt.Sprintf("registry returned %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)), nil)
		pe.StatusCode = resp.StatusCode
		return Payload{}, pe
	}

	decoded, err := domain.DecodeResponse(body)
	if err != nil {
		return Payload{}, NewProviderError(ErrorBadData, c.source, "decode response", err)
	}
	return Payload{Body: json.RawMessage(body), Response: decoded}, nil
}

func (c *Client) transportError(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return NewProviderError(ErrorTimeout, c.source, "registry timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return NewProviderError(ErrorInternal, c.source, "lookup canceled", err)
	}
	return NewProviderError(ErrorProviderOutage, c.source, "registry unreachable", err)
}
