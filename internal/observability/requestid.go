package observability

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"
)

const maxRequestIDLength = 80

// RequestIDMiddleware assigns every request a ULID, or keeps a sane inbound X-Request-Id.
// The id is stored under chi's request id key so middleware.GetReqID keeps working.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := sanitizeString(strings.TrimSpace(r.Header.Get(middleware.RequestIDHeader)), maxRequestIDLength)
		if id == "" {
			id = ulid.Make().String()
		}
		w.Header().Set(middleware.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
