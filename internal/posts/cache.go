package posts

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

const listingCacheKey = "listing"

// CachedSource memoises successful upstream answers for a fixed TTL. Errors are never cached,
// so a failing API keeps producing fallback renders until it recovers.
type CachedSource struct {
	src   Source
	cache *cache.Cache
}

// NewCachedSource wraps src with an in-memory cache.
func NewCachedSource(src Source, ttl time.Duration) *CachedSource {
	return &CachedSource{
		src:   src,
		cache: cache.New(ttl, 2*ttl),
	}
}

// ListPosts returns the cached listing or fetches it from the wrapped source.
func (s *CachedSource) ListPosts(ctx context.Context) ([]Summary, error) {
	if v, ok := s.cache.Get(listingCacheKey); ok {
		items := v.([]Summary)
		out := make([]Summary, len(items))
		copy(out, items)
		return out, nil
	}
	items, err := s.src.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	stored := make([]Summary, len(items))
	copy(stored, items)
	s.cache.SetDefault(listingCacheKey, stored)
	return items, nil
}

// GetPost returns the cached post or fetches it from the wrapped source.
func (s *CachedSource) GetPost(ctx context.Context, id string) (Detail, error) {
	key := "detail:" + id
	if v, ok := s.cache.Get(key); ok {
		return v.(Detail), nil
	}
	d, err := s.src.GetPost(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	s.cache.SetDefault(key, d)
	return d, nil
}

// Flush drops every cached answer.
func (s *CachedSource) Flush() {
	s.cache.Flush()
}
