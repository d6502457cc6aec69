package observability

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func testConfig() Config {
	return Config{
		ServiceName:    "training-input",
		ServiceVersion: "1.2.3",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		SampleRate:     1.0,
		Interval:       15 * time.Second,
	}
}

// newTestTracer installs an in-memory exporter as the global tracer provider
// for one test and returns it.
func newTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return exporter
}

func attrMap(kvs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{1.5, "AlwaysOnSampler"},
		{0.0, "AlwaysOffSampler"},
		{-1.0, "AlwaysOffSampler"},
	}
	for _, tc := range tests {
		if got := sampler(tc.rate).Description(); got != tc.want {
			t.Errorf("sampler(%v) = %q, want %q", tc.rate, got, tc.want)
		}
	}

	desc := sampler(0.25).Description()
	if !strings.Contains(desc, "ParentBased") || !strings.Contains(desc, "TraceIDRatioBased{0.25}") {
		t.Errorf("sampler(0.25) = %q, want parent-based ratio sampler", desc)
	}
}

func TestNewResource(t *testing.T) {
	res := newResource(testConfig())

	attrs := attrMap(res.Attributes())
	if got := attrs["service.name"].AsString(); got != "training-input" {
		t.Errorf("service.name = %q, want %q", got, "training-input")
	}
	if got := attrs["service.version"].AsString(); got != "1.2.3" {
		t.Errorf("service.version = %q, want %q", got, "1.2.3")
	}
	if got := attrs["deployment.environment"].AsString(); got != "development" {
		t.Errorf("deployment.environment = %q, want %q", got, "development")
	}
}

func TestInitTracer(t *testing.T) {
	prev := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	defer func() {
		otel.SetTracerProvider(prev)
		otel.SetTextMapPropagator(prevProp)
	}()

	tp, err := InitTracer(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("InitTracer: %v", err)
	}
	defer tp.Shutdown(context.Background())

	fields := otel.GetTextMapPropagator().Fields()
	if !slices.Contains(fields, "traceparent") || !slices.Contains(fields, "baggage") {
		t.Errorf("propagator fields = %v, want traceparent and baggage", fields)
	}
}

func TestInitMeter(t *testing.T) {
	prev := otel.GetMeterProvider()
	defer otel.SetMeterProvider(prev)

	mp, err := InitMeter(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("InitMeter: %v", err)
	}
	mp.Shutdown(context.Background())
}

func TestInitMeterDefaultInterval(t *testing.T) {
	prev := otel.GetMeterProvider()
	defer otel.SetMeterProvider(prev)

	cfg := testConfig()
	cfg.Insecure = false
	cfg.Interval = 0
	mp, err := InitMeter(context.Background(), cfg)
	if err != nil {
		t.Fatalf("InitMeter: %v", err)
	}
	mp.Shutdown(context.Background())
}

func TestNewMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := NewMetrics(meter)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	ctx := context.Background()
	metrics.RecordSessionStart(ctx, "training-input")
	metrics.RecordRecords(ctx, "training-input", "batch", 32)
	metrics.RecordTransformError(ctx, "training-input", "map")
	metrics.RecordSessionEnd(ctx, "training-input", "completed", 100*time.Millisecond)
}

func TestTracerNamed(t *testing.T) {
	if Tracer("named") == nil {
		t.Fatal("Tracer returned nil")
	}
}

func TestMeterNamed(t *testing.T) {
	if Meter("named") == nil {
		t.Fatal("Meter returned nil")
	}
}

func TestSessionSpan(t *testing.T) {
	exporter := newTestTracer(t)

	sc := NewSessionContext("training-input", "sess-1", nil)
	ctx, span := sc.StartSessionSpan(context.Background())
	sc.AddRecords(ctx, "batch", 8)
	sc.AddRecords(ctx, "output", 4)
	sc.AddTransformError(ctx, "map")
	sc.EndSession(ctx, span, "completed", nil)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	got := spans[0]
	if got.Name != SpanSession {
		t.Errorf("span name = %q, want %q", got.Name, SpanSession)
	}

	attrs := attrMap(got.Attributes)
	if v := attrs[AttrPipeline].AsString(); v != "training-input" {
		t.Errorf("%s = %q, want %q", AttrPipeline, v, "training-input")
	}
	if v := attrs[AttrSessionID].AsString(); v != "sess-1" {
		t.Errorf("%s = %q, want %q", AttrSessionID, v, "sess-1")
	}
	if v := attrs[AttrRecords].AsInt64(); v != 12 {
		t.Errorf("%s = %d, want 12", AttrRecords, v)
	}
	if v := attrs[AttrStatus].AsString(); v != "completed" {
		t.Errorf("%s = %q, want %q", AttrStatus, v, "completed")
	}
	if _, ok := attrs[AttrDurationMs]; !ok {
		t.Errorf("missing %s attribute", AttrDurationMs)
	}

	if len(got.Events) != 1 || got.Events[0].Name != "transform.error" {
		t.Fatalf("events = %+v, want one transform.error event", got.Events)
	}
	eattrs := attrMap(got.Events[0].Attributes)
	if v := eattrs[AttrStage].AsString(); v != "map" {
		t.Errorf("event %s = %q, want %q", AttrStage, v, "map")
	}
}

func TestSessionSpanError(t *testing.T) {
	exporter := newTestTracer(t)

	sc := NewSessionContext("training-input", "sess-2", nil)
	ctx, span := sc.StartSessionSpan(context.Background())
	sc.EndSession(ctx, span, "failed", fmt.Errorf("decode exploded"))

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	got := spans[0]

	attrs := attrMap(got.Attributes)
	if v := attrs[AttrStatus].AsString(); v != "failed" {
		t.Errorf("%s = %q, want %q", AttrStatus, v, "failed")
	}
	if v := attrs[AttrErrorMessage].AsString(); v != "decode exploded" {
		t.Errorf("%s = %q, want %q", AttrErrorMessage, v, "decode exploded")
	}

	found := false
	for _, ev := range got.Events {
		if ev.Name == "exception" {
			found = true
		}
	}
	if !found {
		t.Errorf("events = %+v, want an exception event", got.Events)
	}
}

func TestSessionSpanRecordsMetrics(t *testing.T) {
	newTestTracer(t)
	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := NewMetrics(meter)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	sc := NewSessionContext("training-input", "sess-3", metrics)
	ctx, span := sc.StartSessionSpan(context.Background())
	sc.AddRecords(ctx, "batch", 8)
	sc.AddTransformError(ctx, "map")
	sc.EndSession(ctx, span, "completed", nil)
}

func TestSessionContextNilMetrics(t *testing.T) {
	sc := NewSessionContext("training-input", "sess-4", nil)
	ctx := context.Background()

	ctx, span := sc.StartSessionSpan(ctx)
	sc.AddRecords(ctx, "batch", 8)
	sc.AddTransformError(ctx, "map")
	sc.EndSession(ctx, span, "completed", nil)
}

func TestNewSessionContext(t *testing.T) {
	sc := NewSessionContext("training-input", "sess-1", nil)

	if sc.Pipeline != "training-input" {
		t.Errorf("Pipeline = %q, want %q", sc.Pipeline, "training-input")
	}
	if sc.SessionID != "sess-1" {
		t.Errorf("SessionID = %q, want %q", sc.SessionID, "sess-1")
	}
	if sc.StartTime.IsZero() {
		t.Error("StartTime not set")
	}
}

func TestSessionContextFromContext(t *testing.T) {
	sc := NewSessionContext("training-input", "sess-1", nil)
	ctx := WithSessionContext(context.Background(), sc)

	got := SessionContextFromContext(ctx)
	if got == nil {
		t.Fatal("SessionContextFromContext returned nil")
	}
	if got.SessionID != sc.SessionID {
		t.Errorf("SessionID = %q, want %q", got.SessionID, sc.SessionID)
	}
}

func TestSessionContextFromContextNotSet(t *testing.T) {
	if got := SessionContextFromContext(context.Background()); got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestSessionContextDuration(t *testing.T) {
	sc := NewSessionContext("training-input", "sess-1", nil)
	sc.StartTime = time.Now().Add(-50 * time.Millisecond)

	d := sc.Duration()
	if d < 45*time.Millisecond || d > 500*time.Millisecond {
		t.Errorf("Duration() = %v, want around 50ms", d)
	}
}
