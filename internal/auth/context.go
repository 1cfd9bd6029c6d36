package auth

import (
	"context"

	"github.com/isdelr/itemdesk-be/internal/models"
)

type contextKey string

// callerKey is the context key for the resolved caller.
const callerKey = contextKey("caller")

// WithCaller returns a copy of ctx carrying the caller.
func WithCaller(ctx context.Context, caller models.Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFromContext returns the caller attached by Authenticate.
func CallerFromContext(ctx context.Context) (models.Caller, bool) {
	caller, ok := ctx.Value(callerKey).(models.Caller)
	return caller, ok
}
