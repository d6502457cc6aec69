package dataset

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/datakit-go/datakit/errors"
	"github.com/datakit-go/datakit/logger"
	"github.com/datakit-go/datakit/observability"
)

// Session end states.
const (
	statusCompleted = "completed"
	statusFailed    = "failed"
	statusAborted   = "aborted"
)

// session scopes one independent pass over a dataset graph. All mutable
// iteration state lives in the iterator tree built for it; the session owns
// the derived context that fences background work.
type session struct {
	id     string
	name   string
	ctx    context.Context
	cancel context.CancelFunc
	log    *logger.Logger
	obs    *observability.SessionContext
	span   trace.Span
	closed atomic.Bool
}

var (
	metricsOnce sync.Once
	metrics     *observability.Metrics
)

// sessionMetrics lazily builds the shared instrument set on the global
// meter provider. Without a configured provider the instruments are no-ops.
func sessionMetrics() *observability.Metrics {
	metricsOnce.Do(func() {
		m, err := observability.NewMetrics(observability.Meter("github.com/datakit-go/datakit/dataset"))
		if err == nil {
			metrics = m
		}
	})
	return metrics
}

func newSession(ctx context.Context, name string) *session {
	id := uuid.NewString()
	obs := observability.NewSessionContext(name, id, sessionMetrics())

	sctx, cancel := context.WithCancel(ctx)
	sctx = observability.WithSessionContext(sctx, obs)
	sctx, span := obs.StartSessionSpan(sctx)

	log := logger.GetGlobalLogger().WithComponent("dataset").WithFields(map[string]interface{}{
		logger.FieldSessionID: id,
		"pipeline":            name,
	})
	log.Debug("session started")

	return &session{
		id:     id,
		name:   name,
		ctx:    sctx,
		cancel: cancel,
		log:    log,
		obs:    obs,
		span:   span,
	}
}

// finish ends the session exactly once: cancels background work, ends the
// span, and records metrics.
func (s *session) finish(status string, err error, records int64) {
	if s.closed.Swap(true) {
		return
	}
	s.cancel()
	if records > 0 {
		s.obs.AddRecords(s.ctx, "output", records)
	}
	s.obs.EndSession(s.ctx, s.span, status, err)

	fields := map[string]interface{}{
		logger.FieldStatus:   status,
		logger.FieldRecords:  records,
		logger.FieldDuration: s.obs.Duration().Milliseconds(),
	}
	if err != nil {
		fields[logger.FieldError] = err.Error()
	}
	s.log.Debug("session finished", fields)
}

// noteTransformError records one skipped transform failure.
func (s *session) noteTransformError(stage string) {
	s.obs.AddTransformError(s.ctx, stage)
	s.log.Debug("transform error ignored", map[string]interface{}{
		logger.FieldStage: stage,
	})
}

// sessionIter is the root iterator handed to the consumer. It enforces the
// protocol at the surface: exhaustion is permanent, errors are sticky, and
// pulls after Close report a closed session.
type sessionIter struct {
	s    *session
	src  Iterator
	n    int64
	err  error
	done bool

	closeOnce sync.Once
	closeErr  error
}

func (it *sessionIter) Next(ctx context.Context) (Record, bool, error) {
	if it.err != nil {
		return nil, false, it.err
	}
	if it.done {
		return nil, false, nil
	}
	if it.s.closed.Load() {
		it.err = errors.SessionClosed()
		return nil, false, it.err
	}
	rec, ok, err := it.src.Next(ctx)
	if err != nil {
		it.err = err
		return nil, false, err
	}
	if !ok {
		it.done = true
		return nil, false, nil
	}
	it.n++
	return rec, true, nil
}

func (it *sessionIter) Close() error {
	it.closeOnce.Do(func() {
		it.closeErr = it.src.Close()
		status := statusCompleted
		var serr error
		switch {
		case it.err != nil:
			status, serr = statusFailed, it.err
		case !it.done:
			status = statusAborted
		}
		it.s.finish(status, serr, it.n)
	})
	return it.closeErr
}
