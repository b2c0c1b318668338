package tracing

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

// correlation ties log lines and spans of one catalog interaction together.
type correlation struct {
	traceID string
	session string
}

type correlationKey struct{}

func correlationFrom(ctx context.Context) correlation {
	if ctx == nil {
		return correlation{}
	}
	c, _ := ctx.Value(correlationKey{}).(correlation)
	return c
}

// TraceIDFromContext returns the trace id stored by the action middleware,
// or "" when there is none.
func TraceIDFromContext(ctx context.Context) string {
	return correlationFrom(ctx).traceID
}

// ContextWithTraceID stores traceID. An empty id leaves ctx unchanged.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		return ctx
	}
	c := correlationFrom(ctx)
	c.traceID = traceID
	return context.WithValue(ctx, correlationKey{}, c)
}

// SessionFromContext returns the catalog session the context belongs to.
func SessionFromContext(ctx context.Context) string {
	return correlationFrom(ctx).session
}

// ContextWithSession marks ctx as belonging to an open catalog session, so
// host actions triggered from it are tagged with the session id.
func ContextWithSession(ctx context.Context, session string) context.Context {
	if session == "" {
		return ctx
	}
	c := correlationFrom(ctx)
	c.session = session
	return context.WithValue(ctx, correlationKey{}, c)
}

// GenerateTraceID returns 32 random hex characters, the W3C trace id width.
func GenerateTraceID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
