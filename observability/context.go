package observability

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SessionContext holds observability state for one iteration session. It
// accumulates the record total across stages so the closing span carries it.
type SessionContext struct {
	Pipeline  string
	SessionID string
	StartTime time.Time
	Metrics   *Metrics

	records atomic.Int64
}

// NewSessionContext creates a new session context.
// If metrics is nil, metric recording is silently skipped.
func NewSessionContext(pipeline, sessionID string, metrics *Metrics) *SessionContext {
	return &SessionContext{
		Pipeline:  pipeline,
		SessionID: sessionID,
		StartTime: time.Now(),
		Metrics:   metrics,
	}
}

// sessionContextKey is the context key for SessionContext.
type sessionContextKey struct{}

// WithSessionContext stores a SessionContext in the context.
func WithSessionContext(ctx context.Context, sc *SessionContext) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sc)
}

// SessionContextFromContext retrieves the SessionContext from context, or nil.
func SessionContextFromContext(ctx context.Context) *SessionContext {
	if sc, ok := ctx.Value(sessionContextKey{}).(*SessionContext); ok {
		return sc
	}
	return nil
}

// StartSessionSpan starts a traced span and records the session start metric.
func (sc *SessionContext) StartSessionSpan(ctx context.Context) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, SpanSession)
	span.SetAttributes(
		attribute.String(AttrPipeline, sc.Pipeline),
		attribute.String(AttrSessionID, sc.SessionID),
	)

	if sc.Metrics != nil {
		sc.Metrics.RecordSessionStart(ctx, sc.Pipeline)
	}
	return ctx, span
}

// EndSession ends the span and records session-end metrics.
func (sc *SessionContext) EndSession(ctx context.Context, span trace.Span, status string, err error) {
	duration := time.Since(sc.StartTime)

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}

	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrRecords, sc.records.Load()),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	if sc.Metrics != nil {
		sc.Metrics.RecordSessionEnd(ctx, sc.Pipeline, status, duration)
	}
}

// AddRecords counts records produced by a stage toward the session total.
func (sc *SessionContext) AddRecords(ctx context.Context, stage string, count int64) {
	sc.records.Add(count)
	if sc.Metrics != nil {
		sc.Metrics.RecordRecords(ctx, sc.Pipeline, stage, count)
	}
}

// AddTransformError records a skipped transform failure for a stage, as a
// metric and as an event on the session span.
func (sc *SessionContext) AddTransformError(ctx context.Context, stage string) {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.AddEvent("transform.error", trace.WithAttributes(
			attribute.String(AttrStage, stage),
		))
	}
	if sc.Metrics != nil {
		sc.Metrics.RecordTransformError(ctx, sc.Pipeline, stage)
	}
}

// Duration returns the elapsed time since session start.
func (sc *SessionContext) Duration() time.Duration {
	return time.Since(sc.StartTime)
}
