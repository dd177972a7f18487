package loader

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"finitefield.org/hanko-blog/internal/posts"
)

const pageListing = "listing"

// ListingSource fetches the post collection.
type ListingSource interface {
	ListPosts(ctx context.Context) ([]posts.Summary, error)
}

// ListingRenderer draws summaries into the landing page container.
type ListingRenderer interface {
	RenderListing(items []posts.Summary, fallback bool) error
}

// Listing loads the landing page collection once per page lifetime.
type Listing struct {
	src ListingSource
	settings
}

// NewListing builds a listing loader backed by src.
func NewListing(src ListingSource, opts ...Option) *Listing {
	return &Listing{src: src, settings: newSettings(opts)}
}

// Load fetches the collection and renders it, or the fixed fallback when the fetch fails.
// Repeated calls on the same Listing do nothing.
func (l *Listing) Load(ctx context.Context, r ListingRenderer) error {
	if !l.guard.Enter() {
		l.logger.Debug("posts already loaded, ignoring")
		return nil
	}
	l.logger.Debug("loading posts")

	items, fallback := l.fetch(ctx)
	l.metrics.ObserveRender(pageListing, fallback)
	if err := r.RenderListing(items, fallback); err != nil {
		return fmt.Errorf("loader: render listing: %w", err)
	}
	l.logger.Debug("posts rendered", zap.Int("count", len(items)), zap.Bool("fallback", fallback))
	return nil
}

func (l *Listing) fetch(ctx context.Context) ([]posts.Summary, bool) {
	if l.src == nil {
		l.logger.Warn("no listing source configured, rendering fallback posts")
		return posts.Fallback(), true
	}
	items, err := l.src.ListPosts(ctx)
	if err != nil {
		l.logger.Warn("failed to load posts, rendering fallback posts", zap.Error(err))
		return posts.Fallback(), true
	}
	return posts.Truncate(items), false
}
