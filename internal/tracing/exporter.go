package tracing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var errExporterClosed = errors.New("trace exporter closed")

// FileExporter writes finished spans as JSON lines. It implements
// sdktrace.SpanExporter.
type FileExporter struct {
	mu  sync.Mutex
	out io.WriteCloser
	enc *json.Encoder
}

// NewFileExporter appends to path, creating it and its directory if needed.
func NewFileExporter(path string) (*FileExporter, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create trace directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) // #nosec G304 -- path is cleaned above
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	return newWriterExporter(f), nil
}

func newWriterExporter(w io.WriteCloser) *FileExporter {
	return &FileExporter{out: w, enc: json.NewEncoder(w)}
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *FileExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.out == nil {
		return errExporterClosed
	}
	for _, span := range spans {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.enc.Encode(NewSpanRecord(span)); err != nil {
			return fmt.Errorf("encode span %s: %w", span.Name(), err)
		}
	}
	return nil
}

// Shutdown implements sdktrace.SpanExporter. It is safe to call twice.
func (e *FileExporter) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.out == nil {
		return nil
	}
	err := e.out.Close()
	e.out, e.enc = nil, nil
	return err
}

// SpanRecord is one line of the trace file. The catalog attributes are
// lifted to top-level fields so a session can be followed with a plain grep.
type SpanRecord struct {
	TraceID     string         `json:"trace_id"`
	SpanID      string         `json:"span_id"`
	ParentID    string         `json:"parent_id,omitempty"`
	Name        string         `json:"name"`
	Session     string         `json:"session,omitempty"`
	Action      string         `json:"action,omitempty"`
	TemplateID  string         `json:"template_id,omitempty"`
	ElementType string         `json:"element_type,omitempty"`
	Start       time.Time      `json:"start"`
	DurationMs  float64        `json:"duration_ms"`
	Status      string         `json:"status"`
	Error       string         `json:"error,omitempty"`
	Rejected    bool           `json:"rejected,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

// lifted are the attributes SpanRecord carries as fields.
var lifted = map[attribute.Key]func(*SpanRecord, string){
	AttrSessionID:   func(r *SpanRecord, v string) { r.Session = v },
	AttrActionName:  func(r *SpanRecord, v string) { r.Action = v },
	AttrTemplateID:  func(r *SpanRecord, v string) { r.TemplateID = v },
	AttrElementType: func(r *SpanRecord, v string) { r.ElementType = v },
}

// NewSpanRecord flattens a finished span.
func NewSpanRecord(span sdktrace.ReadOnlySpan) SpanRecord {
	sc := span.SpanContext()
	r := SpanRecord{
		TraceID:    sc.TraceID().String(),
		SpanID:     sc.SpanID().String(),
		Name:       span.Name(),
		Start:      span.StartTime().UTC(),
		DurationMs: float64(span.EndTime().Sub(span.StartTime()).Microseconds()) / 1000,
		Status:     "unset",
	}
	if p := span.Parent(); p.IsValid() {
		r.ParentID = p.SpanID().String()
	}

	switch st := span.Status(); st.Code {
	case codes.Ok:
		r.Status = "ok"
	case codes.Error:
		r.Status = "error"
		r.Error = st.Description
	}

	for _, kv := range span.Attributes() {
		if set, ok := lifted[kv.Key]; ok && kv.Value.Type() == attribute.STRING {
			set(&r, kv.Value.AsString())
			continue
		}
		if r.Attributes == nil {
			r.Attributes = make(map[string]any)
		}
		r.Attributes[string(kv.Key)] = kv.Value.AsInterface()
	}
	for _, ev := range span.Events() {
		if ev.Name == EventActionRejected {
			r.Rejected = true
		}
	}
	return r
}
