package middleware

import (
	"net/http"
)

// HTMX marks requests coming from htmx so handlers can answer with htmx response headers.
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is := r.Header.Get("HX-Request") == "true"
		ctx := WithHTMX(r.Context(), is)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Redirect navigates the client to target. htmx requests get an HX-Redirect header,
// everything else a 303 See Other.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	if IsHTMX(r.Context()) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
