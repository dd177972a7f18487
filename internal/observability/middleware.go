package observability

import (
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"finitefield.org/hanko-blog/internal/httpx"
	"finitefield.org/hanko-blog/internal/requestctx"
)

// InjectLoggerMiddleware stores the provided logger on the request context to make it accessible downstream.
func InjectLoggerMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestctx.WithLogger(r.Context(), logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLoggerMiddleware logs request start and completion with structured fields.
func RequestLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := requestctx.Logger(ctx).With(
			zap.String("request_id", middleware.GetReqID(ctx)),
			zap.String("method", SanitizeMethod(r.Method)),
			zap.String("path", SanitizeRoute(r.URL.Path)),
		)
		if ip := realIP(r); ip != "" {
			logger = logger.With(zap.String("remote_ip", ip))
		}
		if r.Header.Get("HX-Request") == "true" {
			logger = logger.With(zap.Bool("htmx", true))
		}

		r = r.WithContext(requestctx.WithLogger(ctx, logger))

		recorder := newResponseRecorder(w)
		start := time.Now()
		logger.Debug("request started")

		var panicked bool
		defer func() {
			status := recorder.Status()
			if panicked && status < http.StatusInternalServerError {
				status = http.StatusInternalServerError
			}
			fields := []zap.Field{
				zap.String("route", SanitizeRoute(routePattern(r))),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
				zap.Int64("bytes", recorder.BytesWritten()),
			}
			switch {
			case panicked || status >= http.StatusInternalServerError:
				logger.Error("request completed", fields...)
			case status >= http.StatusBadRequest:
				logger.Warn("request completed", fields...)
			default:
				logger.Info("request completed", fields...)
			}
		}()

		defer func() {
			if rec := recover(); rec != nil {
				panicked = true
				panic(rec)
			}
		}()

		next.ServeHTTP(recorder, r)
	})
}

// RecoveryMiddleware captures panics, logs the stack trace, and returns a JSON error response.
func RecoveryMiddleware(fallback *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					ctx := r.Context()
					logger := requestctx.Logger(ctx)
					if logger == requestctx.NoopLogger() && fallback != nil {
						logger = fallback
					}
					logger.Error("panic recovered",
						zap.Any("panic", rec),
						zap.ByteString("stack", debug.Stack()),
					)
					httpx.WriteError(ctx, w, httpx.NewError("internal_server_error", "internal server error", http.StatusInternalServerError))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func routePattern(r *http.Request) string {
	if ctx := chi.RouteContext(r.Context()); ctx != nil {
		if pattern := ctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	if r.URL != nil && r.URL.Path != "" {
		return r.URL.Path
	}
	return "/"
}

func realIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	return sanitizeString(addr, 64)
}

type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *responseRecorder) WriteHeader(status int) {
	if status < 100 {
		status = http.StatusOK
	}
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += int64(n)
	return n, err
}

func (r *responseRecorder) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

func (r *responseRecorder) BytesWritten() int64 {
	return r.bytes
}
