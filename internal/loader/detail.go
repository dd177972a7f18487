package loader

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"finitefield.org/hanko-blog/internal/posts"
)

const (
	pageDetail = "detail"

	// DefaultPostID is requested when the query string names no post.
	DefaultPostID = "1"
	// PostIDParam is the query parameter carrying the post identifier.
	PostIDParam = "postId"
)

// DetailSource fetches a single post.
type DetailSource interface {
	GetPost(ctx context.Context, id string) (posts.Detail, error)
}

// DetailRenderer fills the detail page targets.
type DetailRenderer interface {
	RenderDetail(d posts.Detail, fallback bool) error
}

// Detail loads one post once per page lifetime.
type Detail struct {
	src DetailSource
	settings
}

// NewDetail builds a detail loader backed by src.
func NewDetail(src DetailSource, opts ...Option) *Detail {
	return &Detail{src: src, settings: newSettings(opts)}
}

// RequestedID returns the postId query value, or DefaultPostID when it is absent or blank.
func RequestedID(q url.Values) string {
	return normalizeID(q.Get(PostIDParam))
}

func normalizeID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return DefaultPostID
	}
	return id
}

// Load fetches the post and renders it. On failure the fixed fallback post is rendered
// whatever id was requested. Repeated calls on the same Detail do nothing.
func (d *Detail) Load(ctx context.Context, id string, r DetailRenderer) error {
	if !d.guard.Enter() {
		d.logger.Debug("post already loaded, ignoring")
		return nil
	}
	id = normalizeID(id)
	logger := d.logger.With(zap.String("post_id", id))
	logger.Debug("loading post")

	post, fallback := d.fetch(ctx, logger, id)
	d.metrics.ObserveRender(pageDetail, fallback)
	if err := r.RenderDetail(post, fallback); err != nil {
		return fmt.Errorf("loader: render detail: %w", err)
	}
	logger.Debug("post rendered", zap.Bool("fallback", fallback))
	return nil
}

func (d *Detail) fetch(ctx context.Context, logger *zap.Logger, id string) (posts.Detail, bool) {
	if d.src == nil {
		logger.Warn("no detail source configured, rendering fallback post")
		return posts.FallbackDetail(), true
	}
	post, err := d.src.GetPost(ctx, id)
	if err != nil {
		logger.Warn("failed to load post, rendering fallback post", zap.Error(err))
		return posts.FallbackDetail(), true
	}
	return post, false
}
