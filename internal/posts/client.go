package posts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"finitefield.org/hanko-blog/internal/observability"
)

const (
	resourceListing = "listing"
	resourceDetail  = "detail"

	maxBodyBytes = 2 << 20
)

// Source is the read side of the blog API used by the page loaders.
type Source interface {
	ListPosts(ctx context.Context) ([]Summary, error)
	GetPost(ctx context.Context, id string) (Detail, error)
}

// Client provides read-only access to the blog API.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	metrics *observability.Metrics
	tracer  trace.Tracer
	group   singleflight.Group
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for upstream calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every upstream request. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithMetrics records request outcomes on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTracer overrides the tracer; the global provider is used otherwise.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// NewClient constructs a Client with the provided base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{},
		tracer:  otel.Tracer("finitefield.org/hanko-blog/internal/posts"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListPosts fetches the post collection. Items are numbered by their position, starting at 1.
func (c *Client) ListPosts(ctx context.Context) ([]Summary, error) {
	v, err, _ := c.group.Do(resourceListing, func() (any, error) {
		var items []Summary
		if err := c.get(ctx, resourceListing, "postagens/", &items); err != nil {
			return nil, err
		}
		// encoding/json leaves the slice nil only for a JSON null body.
		if items == nil {
			return nil, unusable(resourceListing, "null listing body")
		}
		for i := range items {
			items[i].ID = i + 1
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	shared := v.([]Summary)
	out := make([]Summary, len(shared))
	copy(out, shared)
	return out, nil
}

// GetPost fetches a single post by identifier.
func (c *Client) GetPost(ctx context.Context, id string) (Detail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Detail{}, fmt.Errorf("posts: empty post id: %w", ErrUnusable)
	}
	v, err, _ := c.group.Do(resourceDetail+":"+id, func() (any, error) {
		var d *Detail
		if err := c.get(ctx, resourceDetail, "postagem/"+url.PathEscape(id), &d); err != nil {
			return nil, err
		}
		if d == nil || (strings.TrimSpace(d.Title) == "" && strings.TrimSpace(d.Description) == "") {
			return nil, unusable(resourceDetail, "empty post body")
		}
		return *d, nil
	})
	if err != nil {
		return Detail{}, err
	}
	return v.(Detail), nil
}

func unusable(resource, reason string) error {
	return fmt.Errorf("posts: %s: %s: %w", resource, reason, ErrUnusable)
}

// get performs one GET against the API and decodes the JSON body into dst.
// The call is detached from the caller's cancellation because singleflight shares it across page loads.
func (c *Client) get(ctx context.Context, resource, path string, dst any) (err error) {
	ctx = context.WithoutCancel(ctx)
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ctx, span := c.tracer.Start(ctx, "posts."+resource, trace.WithSpanKind(trace.SpanKindClient))
	start := time.Now()
	outcome := observability.OutcomeOK
	defer func() {
		c.metrics.ObserveUpstream(resource, outcome, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	if c.baseURL == "" {
		outcome = observability.OutcomeTransport
		return errors.New("posts: base url not configured")
	}
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		outcome = observability.OutcomeTransport
		return fmt.Errorf("posts: join path %s: %w", resource, err)
	}
	span.SetAttributes(
		attribute.String("blog.resource", resource),
		attribute.String("url.full", endpoint),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		outcome = observability.OutcomeTransport
		return fmt.Errorf("posts: build request %s: %w", resource, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		outcome = observability.OutcomeTransport
		return fmt.Errorf("posts: %s request: %w", resource, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = observability.OutcomeStatus
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return &StatusError{Resource: resource, Code: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(dst); err != nil {
		outcome = observability.OutcomeUnusable
		return fmt.Errorf("posts: decode %s: %v: %w", resource, err, ErrUnusable)
	}
	return nil
}
