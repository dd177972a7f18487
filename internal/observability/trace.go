package observability

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("finitefield.org/hanko-blog/internal/observability")

// TraceMiddleware starts a server span per request. Upstream client spans become its children.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "HTTP "+SanitizeMethod(r.Method), trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		span.SetAttributes(
			attribute.String("http.request.method", SanitizeMethod(r.Method)),
			attribute.String("url.path", SanitizeRoute(r.URL.Path)),
		)
		if id := middleware.GetReqID(ctx); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}

		recorder := newResponseRecorder(w)
		r = r.WithContext(ctx)
		next.ServeHTTP(recorder, r)

		status := recorder.Status()
		span.SetName("HTTP " + SanitizeMethod(r.Method) + " " + SanitizeRoute(routePattern(r)))
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	})
}
