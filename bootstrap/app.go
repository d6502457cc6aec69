package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/datakit-go/datakit/logger"
	"github.com/datakit-go/datakit/observability"
	"github.com/datakit-go/datakit/util"
	"github.com/datakit-go/datakit/version"
)

// App hosts a pipeline process: validated config, logging, telemetry
// providers, and lifecycle hooks behind one uniform lifecycle. The type
// parameter C is the concrete config type; any struct embedding
// config.Runtime satisfies Config.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*trainConfig]) error {
//		// a.Cfg is *trainConfig, fully typed
//		return nil
//	})
//	err = app.RunTask(ctx, train)
type App[C Config] struct {
	Name    string
	Version string
	Cfg     C
	Logger  *logger.Logger

	// Metrics is non-nil after startup when telemetry is enabled.
	Metrics *observability.Metrics

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider

	gracefulTimeout time.Duration

	onConfigure []func(ctx context.Context, app *App[C]) error
	onStart     []Hook
	onReady     []Hook
	onStop      []Hook
}

// NewApp builds an App from a typed config: defaults are applied, the config
// is validated, and the config-derived logger is installed globally unless
// WithLogger overrides it.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	rt := cfg.GetRuntime()

	app := &App[C]{
		Name: rt.Name,
		// Build metadata backfills a version the config does not carry.
		Version:         util.Coalesce(rt.Version, version.Short()),
		Cfg:             cfg,
		gracefulTimeout: 15 * time.Second,
	}

	o := collectOptions(opts)
	if o.gracefulTimeout > 0 {
		app.gracefulTimeout = o.gracefulTimeout
	}
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		app.Logger = logger.New(&rt.Logging, rt.Name)
		logger.SetGlobalLogger(app.Logger)
	}
	return app, nil
}

// OnConfigure registers a callback for the configure phase. Pipelines and
// data sources belong here: telemetry is already up when callbacks run.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// Run starts the app and blocks until an interrupt or SIGTERM arrives or ctx
// is canceled, then shuts down gracefully. For long-running hosts; finite
// jobs use RunTask.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.Logger.Info("ready, waiting for shutdown signal")
	<-sctx.Done()
	if ctx.Err() != nil {
		a.Logger.Info("context canceled, shutting down")
	} else {
		a.Logger.Info("shutdown signal received")
	}

	return a.stop()
}

// RunTask runs one finite task under the full lifecycle: startup, the task
// with a signal-canceled context, then graceful shutdown. The task error
// takes precedence over shutdown errors. For training jobs, batch exports,
// and other one-shot processes.
//
//	app, _ := bootstrap.NewApp(&cfg)
//	err := app.RunTask(ctx, func(ctx context.Context) error {
//		return consume(ctx)
//	})
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	tctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	taskErr := task(tctx)
	if taskErr != nil && tctx.Err() != nil && ctx.Err() == nil {
		a.Logger.Info("task canceled by signal")
	}

	stopErr := a.stop()
	if taskErr != nil {
		return taskErr
	}
	return stopErr
}

// startup brings the app to ready: telemetry, on_start hooks, configure
// callbacks, on_ready hooks, in that order.
func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("starting", map[string]interface{}{
		"name":    a.Name,
		"version": a.Version,
	})

	if err := a.initTelemetry(ctx); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	if err := runHooks(ctx, "on_start", a.onStart); err != nil {
		return err
	}
	if err := a.configure(ctx); err != nil {
		return err
	}
	if err := runHooks(ctx, "on_ready", a.onReady); err != nil {
		return err
	}

	a.Logger.Info("startup complete", map[string]interface{}{
		"duration": time.Since(start).String(),
	})
	return nil
}

// initTelemetry starts the trace and metric providers when telemetry is
// enabled and builds the shared instrument set.
func (a *App[C]) initTelemetry(ctx context.Context) error {
	rt := a.Cfg.GetRuntime()
	if !rt.Telemetry.Enabled {
		a.Logger.Debug("telemetry disabled")
		return nil
	}

	tel := observability.Config{
		ServiceName:    rt.Name,
		ServiceVersion: rt.Version,
		Environment:    rt.Environment,
		Endpoint:       rt.Telemetry.Endpoint,
		Insecure:       rt.Telemetry.Insecure,
		SampleRate:     rt.Telemetry.SampleRate,
		Interval:       rt.Telemetry.Interval,
	}

	tp, err := observability.InitTracer(ctx, tel)
	if err != nil {
		return fmt.Errorf("start tracer: %w", err)
	}
	a.tracerProvider = tp

	mp, err := observability.InitMeter(ctx, tel)
	if err != nil {
		return fmt.Errorf("start meter: %w", err)
	}
	a.meterProvider = mp

	metrics, err := observability.NewMetrics(observability.Meter(rt.Name))
	if err != nil {
		return fmt.Errorf("create instruments: %w", err)
	}
	a.Metrics = metrics
	return nil
}

// configure runs the registered configure callbacks in registration order.
func (a *App[C]) configure(ctx context.Context) error {
	for i, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return fmt.Errorf("configure callback %d: %w", i, err)
		}
	}
	return nil
}

// Shutdown stops the app outside Run and RunTask, for callers managing their
// own lifecycle.
func (a *App[C]) Shutdown(ctx context.Context) error {
	return a.stop()
}

// stop runs on_stop hooks and flushes the telemetry providers within the
// graceful timeout. Every failure is reported; all are returned joined.
func (a *App[C]) stop() error {
	a.Logger.Info("shutting down", map[string]interface{}{
		"timeout": a.gracefulTimeout.String(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var errs []error
	if err := runHooks(ctx, "on_stop", a.onStop); err != nil {
		a.Logger.WithError(err).Error("stop hook failed")
		errs = append(errs, err)
	}
	if a.meterProvider != nil {
		if err := a.meterProvider.Shutdown(ctx); err != nil {
			a.Logger.WithError(err).Error("meter shutdown failed")
			errs = append(errs, err)
		}
	}
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			a.Logger.WithError(err).Error("tracer shutdown failed")
			errs = append(errs, err)
		}
	}

	a.Logger.Info("shutdown complete")
	return errors.Join(errs...)
}
