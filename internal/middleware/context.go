package middleware

import (
	"context"
)

// context keys are unexported to avoid collisions
type ctxKey string

const ctxKeyIsHTMX ctxKey = "is_htmx"

// WithHTMX marks request as HTMX
func WithHTMX(ctx context.Context, is bool) context.Context {
	return context.WithValue(ctx, ctxKeyIsHTMX, is)
}

// IsHTMX returns whether this is an htmx request
func IsHTMX(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKeyIsHTMX).(bool)
	return v
}
