package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/datakit-go/datakit/logger"
)

// tracerName identifies spans started through StartSpan.
const tracerName = "github.com/datakit-go/datakit/observability"

// Config carries the service identity and OTLP export settings shared by the
// tracer and meter providers. One value configures both.
type Config struct {
	// ServiceName names the pipeline or host process.
	ServiceName string
	// ServiceVersion is reported on every span and metric.
	ServiceVersion string
	// Environment is the deployment environment (development, staging, production).
	Environment string
	// Endpoint is the OTLP HTTP collector address as host:port.
	Endpoint string
	// Insecure disables TLS toward the collector.
	Insecure bool
	// SampleRate is the head sampling ratio for root spans, 0 to 1.
	SampleRate float64
	// Interval is the metric export period. Zero keeps the SDK default.
	Interval time.Duration
}

// InitTracer starts an OTLP trace provider, installs it as the global
// provider, and wires W3C trace context propagation. The returned provider
// must be shut down on exit to flush batched spans.
func InitTracer(ctx context.Context, cfg Config) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(newResource(cfg)),
		sdktrace.WithSampler(sampler(cfg.SampleRate)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("tracer initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"sample_rate", cfg.SampleRate,
	))
	return tp, nil
}

// sampler maps the configured ratio onto an SDK sampler. Mid-range ratios
// apply to root spans only; child spans follow the parent decision.
func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
}

// newResource builds the resource shared by traces and metrics.
func newResource(cfg Config) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironment(cfg.Environment),
	)
}

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// StartSpan starts a span on the package tracer.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer(tracerName).Start(ctx, name, opts...)
}

// SpanSession is the span wrapping one full iteration pass.
const SpanSession = "dataset.session"

// Attribute keys used on session spans and their events.
const (
	AttrPipeline     = "pipeline.name"
	AttrSessionID    = "session.id"
	AttrStage        = "stage.name"
	AttrRecords      = "records.count"
	AttrDurationMs   = "duration_ms"
	AttrStatus       = "status"
	AttrErrorMessage = "error.message"
)
