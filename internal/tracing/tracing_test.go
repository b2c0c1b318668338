package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/catalog/internal/config"
	"github.com/zjrosen/catalog/internal/host"
	"github.com/zjrosen/catalog/internal/templates"
	"github.com/zjrosen/catalog/internal/workspace"
)

func newRecorder() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	recorder := tracetest.NewSpanRecorder()
	return recorder, sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
}

func attrMap(attrs []attribute.KeyValue) map[string]any {
	out := make(map[string]any, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}

func okAction(result any) host.ActionFunc {
	return func(context.Context, string, ...any) (any, error) { return result, nil }
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.Defaults().Tracing)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "file", cfg.Exporter)
	assert.Equal(t, "catalog", cfg.ServiceName)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(Config{})
	require.NoError(t, err)
	require.False(t, provider.Enabled())

	_, span := provider.Tracer().Start(context.Background(), "span")
	span.End()
	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_Errors(t *testing.T) {
	_, err := NewProvider(Config{Enabled: true, Exporter: "file"})
	require.ErrorContains(t, err, "file_path required")

	_, err = NewProvider(Config{Enabled: true, Exporter: "zipkin"})
	require.ErrorContains(t, err, "unsupported exporter")
}

func TestNewProvider_FileExporterWritesSpans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces", "traces.jsonl")
	provider, err := NewProvider(Config{Enabled: true, Exporter: "file", FilePath: path})
	require.NoError(t, err)
	require.True(t, provider.Enabled())

	mw := NewActionMiddleware(provider.Tracer())
	_, err = mw(okAction("bpmn:ServiceTask"))(context.Background(), host.ActionGetSelectedElementType)
	require.NoError(t, err)
	require.NoError(t, provider.Shutdown(context.Background()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan(), "expected one span line")
	var record SpanRecord
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &record))
	assert.Equal(t, SpanPrefixAction+host.ActionGetSelectedElementType, record.Name)
	assert.Equal(t, "ok", record.Status)
	assert.Equal(t, host.ActionGetSelectedElementType, record.Action)
	assert.Equal(t, "bpmn:ServiceTask", record.ElementType)
	assert.EqualValues(t, 0, record.Attributes[AttrActionArgs])
	assert.NotContains(t, record.Attributes, AttrElementType)
	assert.Len(t, record.TraceID, 32)
}

func TestNewProvider_NoneExporter(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: true, Exporter: "none"})
	require.NoError(t, err)
	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestActionMiddleware_RecordsSpan(t *testing.T) {
	recorder, tp := newRecorder()
	mw := NewActionMiddleware(tp.Tracer("test"))

	var seenTraceID string
	next := func(ctx context.Context, _ string, _ ...any) (any, error) {
		seenTraceID = TraceIDFromContext(ctx)
		return nil, nil
	}
	tmpl := templates.ElementTemplate{ID: "http"}
	_, err := mw(next)(context.Background(), host.ActionApplyElementTemplate, tmpl)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, SpanPrefixAction+host.ActionApplyElementTemplate, span.Name())
	assert.Equal(t, codes.Ok, span.Status().Code)

	attrs := attrMap(span.Attributes())
	assert.Equal(t, host.ActionApplyElementTemplate, attrs[AttrActionName])
	assert.Equal(t, int64(1), attrs[AttrActionArgs])
	assert.Equal(t, "http", attrs[AttrTemplateID])
	assert.Equal(t, span.SpanContext().TraceID().String(), seenTraceID)
}

func TestActionMiddleware_RecordsErrors(t *testing.T) {
	recorder, tp := newRecorder()
	mw := NewActionMiddleware(tp.Tracer("test"))

	failing := func(context.Context, string, ...any) (any, error) { return nil, errors.New("boom") }
	_, err := mw(failing)(context.Background(), "whatever")
	require.Error(t, err)

	unknown := func(context.Context, string, ...any) (any, error) {
		return nil, host.ErrUnknownAction
	}
	_, err = mw(unknown)(context.Background(), "missing")
	require.ErrorIs(t, err, host.ErrUnknownAction)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "boom", spans[0].Status().Description)
	assert.Empty(t, eventNames(spans[0]))
	assert.Contains(t, eventNames(spans[1]), EventActionRejected)
}

func eventNames(span sdktrace.ReadOnlySpan) []string {
	var names []string
	for _, e := range span.Events() {
		if e.Name != "exception" {
			names = append(names, e.Name)
		}
	}
	return names
}

func TestActionMiddleware_NilTracerStillAssignsTraceID(t *testing.T) {
	mw := NewActionMiddleware(nil)

	var seen string
	next := func(ctx context.Context, _ string, _ ...any) (any, error) {
		seen = TraceIDFromContext(ctx)
		return "ok", nil
	}
	got, err := mw(next)(context.Background(), "ping")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Len(t, seen, 32)

	ctx := ContextWithTraceID(context.Background(), "existing")
	_, _ = mw(next)(ctx, "ping")
	assert.Equal(t, "existing", seen)
}

func TestActionMiddleware_InHostChain(t *testing.T) {
	recorder, tp := newRecorder()
	h := host.New(nil, newWorkspace())
	h.Use(NewActionMiddleware(tp.Tracer("test")), host.LoggingMiddleware())

	typ, err := h.TriggerAction(context.Background(), host.ActionGetSelectedElementType)
	require.NoError(t, err)
	assert.Equal(t, "bpmn:Task", typ)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "bpmn:Task", attrMap(spans[0].Attributes())[AttrElementType])
}

func TestStartCatalogSpan(t *testing.T) {
	recorder, tp := newRecorder()
	_, span := StartCatalogSpan(context.Background(), tp.Tracer("test"), "open", "session-1")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "catalog.open", spans[0].Name())
	assert.Equal(t, "session-1", attrMap(spans[0].Attributes())[AttrSessionID])

	ctx, noop := StartCatalogSpan(context.Background(), nil, "open", "s")
	assert.NotNil(t, ctx)
	noop.End()
}

func TestStartCatalogSpan_TagsActions(t *testing.T) {
	recorder, tp := newRecorder()
	tracer := tp.Tracer("test")
	mw := NewActionMiddleware(tracer)

	ctx, span := StartCatalogSpan(context.Background(), tracer, "apply", "session-7")
	assert.Equal(t, "session-7", SessionFromContext(ctx))
	_, err := mw(okAction(true))(ctx, host.ActionApplyElementTemplate, templates.ElementTemplate{ID: "http"})
	require.NoError(t, err)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	action := spans[0]
	assert.Equal(t, "session-7", attrMap(action.Attributes())[AttrSessionID])
	assert.Equal(t, spans[1].SpanContext().SpanID(), action.Parent().SpanID())
}

func TestSpanRecord_LiftsCatalogFields(t *testing.T) {
	recorder, tp := newRecorder()
	mw := NewActionMiddleware(tp.Tracer("test"))

	ctx := ContextWithSession(context.Background(), "s1")
	unknown := func(context.Context, string, ...any) (any, error) { return nil, host.ErrUnknownAction }
	_, _ = mw(unknown)(ctx, host.ActionApplyElementTemplate, templates.ElementTemplate{ID: "rest"})

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	r := NewSpanRecord(spans[0])
	assert.Equal(t, "s1", r.Session)
	assert.Equal(t, host.ActionApplyElementTemplate, r.Action)
	assert.Equal(t, "rest", r.TemplateID)
	assert.Equal(t, "error", r.Status)
	assert.NotEmpty(t, r.Error)
	assert.True(t, r.Rejected)
	assert.Empty(t, r.ParentID)
}

func TestFileExporter_ClosedAndShutdownTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.jsonl")
	exp, err := NewFileExporter(path)
	require.NoError(t, err)
	require.NoError(t, exp.Shutdown(context.Background()))
	require.NoError(t, exp.Shutdown(context.Background()))

	recorder, tp := newRecorder()
	_, span := tp.Tracer("test").Start(context.Background(), "x")
	span.End()
	err = exp.ExportSpans(context.Background(), recorder.Ended())
	require.ErrorIs(t, err, errExporterClosed)
}

func TestContextSession(t *testing.T) {
	assert.Equal(t, "", SessionFromContext(context.Background()))
	ctx := ContextWithTraceID(context.Background(), "abc")
	ctx = ContextWithSession(ctx, "s")
	assert.Equal(t, "abc", TraceIDFromContext(ctx))
	assert.Equal(t, "s", SessionFromContext(ctx))
	assert.Equal(t, ctx, ContextWithSession(ctx, ""))
}

func TestContextTraceID(t *testing.T) {
	assert.Equal(t, "", TraceIDFromContext(context.Background()))
	ctx := ContextWithTraceID(context.Background(), "")
	assert.Equal(t, "", TraceIDFromContext(ctx))
	ctx = ContextWithTraceID(ctx, "abc")
	assert.Equal(t, "abc", TraceIDFromContext(ctx))
	assert.NotEqual(t, GenerateTraceID(), GenerateTraceID())
}

func newWorkspace() *workspace.Workspace {
	return &workspace.Workspace{Tabs: []workspace.Tab{{
		Name:     "a.bpmn",
		Type:     workspace.TypeBPMN,
		Elements: []workspace.Element{{ID: "T1", Type: "bpmn:Task"}},
	}}}
}
