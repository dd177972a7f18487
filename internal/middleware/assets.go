package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/patrickmn/go-cache"
)

const assetsCacheControl = "public, max-age=604800, stale-while-revalidate=86400"

// assetTag is a computed ETag and the file state it was computed from.
type assetTag struct {
	modTime time.Time
	size    int64
	etag    string
}

type assetHandler struct {
	root  http.FileSystem
	files http.Handler
	tags  *cache.Cache
}

// AssetsWithCache serves files under dir with Cache-Control, Vary and ETag handling.
// Request paths are expected relative to dir, so mount it behind http.StripPrefix.
// ETags are hashed on first request and rehashed when a file's size or mtime changes.
func AssetsWithCache(dir string) http.Handler {
	root := http.Dir(dir)
	return &assetHandler{
		root:  root,
		files: http.FileServer(root),
		tags:  cache.New(cache.NoExpiration, 0),
	}
}

func (h *assetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Vary", "Accept-Encoding")
	w.Header().Set("Cache-Control", assetsCacheControl)
	if et := h.etag(r.URL.Path); et != "" {
		w.Header().Set("ETag", et)
		if inm := r.Header.Get("If-None-Match"); inm != "" && inm == et {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	h.files.ServeHTTP(w, r)
}

// etag returns the weak ETag for name, or "" when it is missing or a directory.
func (h *assetHandler) etag(name string) string {
	name = path.Clean("/" + name)
	f, err := h.root.Open(name)
	if err != nil {
		return ""
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return ""
	}
	if v, ok := h.tags.Get(name); ok {
		if t := v.(assetTag); t.size == info.Size() && t.modTime.Equal(info.ModTime()) {
			return t.etag
		}
	}
	sum := sha256.New()
	if _, err := io.Copy(sum, f); err != nil {
		return ""
	}
	et := `W/"` + hex.EncodeToString(sum.Sum(nil)) + `"`
	h.tags.SetDefault(name, assetTag{modTime: info.ModTime(), size: info.Size(), etag: et})
	return et
}
