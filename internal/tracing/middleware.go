package tracing

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/catalog/internal/host"
	"github.com/zjrosen/catalog/internal/log"
	"github.com/zjrosen/catalog/internal/templates"
)

// NewActionMiddleware creates host middleware that wraps every action in a
// span and stores the trace id in the context. A nil tracer still assigns
// trace ids so log lines of one action can be correlated.
func NewActionMiddleware(tracer trace.Tracer) host.Middleware {
	return func(next host.ActionFunc) host.ActionFunc {
		return func(ctx context.Context, name string, args ...any) (any, error) {
			if tracer == nil {
				if TraceIDFromContext(ctx) == "" {
					ctx = ContextWithTraceID(ctx, GenerateTraceID())
				}
				return next(ctx, name, args...)
			}

			ctx, span := tracer.Start(ctx, SpanPrefixAction+name,
				trace.WithSpanKind(trace.SpanKindInternal),
			)
			defer span.End()

			traceID := GenerateTraceID()
			if sc := span.SpanContext(); sc.HasTraceID() {
				traceID = sc.TraceID().String()
			}
			ctx = ContextWithTraceID(ctx, traceID)

			span.SetAttributes(
				attribute.String(AttrActionName, name),
				attribute.Int(AttrActionArgs, len(args)),
			)
			session := SessionFromContext(ctx)
			if session != "" {
				span.SetAttributes(attribute.String(AttrSessionID, session))
			}
			for _, arg := range args {
				if tmpl, ok := arg.(templates.ElementTemplate); ok {
					span.SetAttributes(attribute.String(AttrTemplateID, tmpl.ID))
				}
			}

			result, err := next(ctx, name, args...)

			switch {
			case errors.Is(err, host.ErrUnknownAction):
				span.AddEvent(EventActionRejected)
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			case err != nil:
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			default:
				if s, ok := result.(string); ok && name == host.ActionGetSelectedElementType {
					span.SetAttributes(attribute.String(AttrElementType, s))
				}
				span.SetStatus(codes.Ok, "")
			}

			log.Debug(log.CatTrace, "Action traced", "action", name, "trace", traceID, "session", session, "error", err != nil)
			return result, err
		}
	}
}

// StartCatalogSpan starts a span covering one catalog operation. The
// returned context carries session, so actions the operation triggers are
// tagged with it.
func StartCatalogSpan(ctx context.Context, tracer trace.Tracer, op, session string) (context.Context, trace.Span) {
	ctx = ContextWithSession(ctx, session)
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, fmt.Sprintf("%s%s", SpanPrefixCatalog, op),
		trace.WithAttributes(attribute.String(AttrSessionID, session)),
	)
}
