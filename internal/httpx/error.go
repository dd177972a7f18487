package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
)

// Error represents the JSON error envelope written by the web server.
type Error struct {
	Code      string
	Message   string
	Status    int
	RequestID string
	Details   map[string]any
}

// NewError constructs a new Error with the provided parameters.
func NewError(code, message string, status int) Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return Error{
		Code:    sanitize(code, 80),
		Message: sanitize(message, 512),
		Status:  status,
	}
}

// WithDetails attaches additional JSON-serialisable metadata.
func (e Error) WithDetails(details map[string]any) Error {
	if len(details) == 0 {
		return e
	}
	copyDetails := make(map[string]any, len(details))
	for k, v := range details {
		copyDetails[k] = v
	}
	e.Details = copyDetails
	return e
}

// Error implements the error interface so handlers can return it directly.
func (e Error) Error() string {
	return e.Code + ": " + e.Message
}

// WriteError writes the structured error as JSON to the provided response writer.
func WriteError(ctx context.Context, w http.ResponseWriter, err Error) {
	status := err.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	requestID := err.RequestID
	if requestID == "" {
		requestID = sanitize(middleware.GetReqID(ctx), 80)
	}

	payload := map[string]any{
		"error":   err.Code,
		"message": err.Message,
		"status":  status,
	}
	if requestID != "" {
		payload["request_id"] = requestID
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		payload["trace_id"] = sc.TraceID().String()
	}
	for k, v := range err.Details {
		payload[k] = v
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func sanitize(value string, limit int) string {
	if limit <= 0 {
		limit = 256
	}
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.TrimSpace(value)
	if len(value) > limit {
		value = value[:limit]
	}
	return value
}
