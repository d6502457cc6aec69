package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/datakit-go/datakit/logger"
)

// InitMeter starts an OTLP metric provider with a periodic reader and
// installs it as the global provider. The returned provider must be shut
// down on exit to flush pending exports.
func InitMeter(ctx context.Context, cfg Config) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("metric exporter: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(newResource(cfg)),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds OpenTelemetry metric instruments for pipeline observability.
type Metrics struct {
	recordsTotal    metric.Int64Counter
	sessionsActive  metric.Int64UpDownCounter
	sessionDuration metric.Float64Histogram
	transformErrors metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	recordsTotal, err := meter.Int64Counter("dataset.records",
		metric.WithDescription("Total number of records produced by stage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dataset.records counter: %w", err)
	}

	sessionsActive, err := meter.Int64UpDownCounter("dataset.sessions.active",
		metric.WithDescription("Number of currently open iteration sessions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dataset.sessions.active gauge: %w", err)
	}

	sessionDuration, err := meter.Float64Histogram("dataset.session.duration",
		metric.WithDescription("Duration of iteration sessions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dataset.session.duration histogram: %w", err)
	}

	transformErrors, err := meter.Int64Counter("dataset.transform.errors",
		metric.WithDescription("Total transform errors by pipeline and stage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dataset.transform.errors counter: %w", err)
	}

	return &Metrics{
		recordsTotal:    recordsTotal,
		sessionsActive:  sessionsActive,
		sessionDuration: sessionDuration,
		transformErrors: transformErrors,
	}, nil
}

// RecordSessionStart increments the active session count.
func (m *Metrics) RecordSessionStart(ctx context.Context, pipeline string) {
	m.sessionsActive.Add(ctx, 1, metric.WithAttributes(
		attribute.String("pipeline", pipeline),
	))
}

// RecordSessionEnd decrements active sessions and records the session duration.
func (m *Metrics) RecordSessionEnd(ctx context.Context, pipeline, status string, duration time.Duration) {
	m.sessionsActive.Add(ctx, -1, metric.WithAttributes(
		attribute.String("pipeline", pipeline),
	))
	m.sessionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("pipeline", pipeline),
		attribute.String("status", status),
	))
}

// RecordRecords adds to the record count for a stage.
func (m *Metrics) RecordRecords(ctx context.Context, pipeline, stage string, count int64) {
	m.recordsTotal.Add(ctx, count, metric.WithAttributes(
		attribute.String("pipeline", pipeline),
		attribute.String("stage", stage),
	))
}

// RecordTransformError records a recoverable transform failure.
func (m *Metrics) RecordTransformError(ctx context.Context, pipeline, stage string) {
	m.transformErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("pipeline", pipeline),
		attribute.String("stage", stage),
	))
}
