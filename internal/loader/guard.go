package loader

import "sync/atomic"

// Guard is a load-once flag owned by a single page lifetime.
type Guard struct {
	loaded atomic.Bool
}

// Enter reports whether the caller is the first to load. Every later call returns false.
func (g *Guard) Enter() bool {
	return g.loaded.CompareAndSwap(false, true)
}

// Loaded reports whether a load has already started.
func (g *Guard) Loaded() bool {
	return g.loaded.Load()
}
