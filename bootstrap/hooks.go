package bootstrap

import (
	"context"
	"fmt"
)

// Hook is a lifecycle callback run during startup or shutdown. Hosts
// register hooks to set up and tear down infrastructure the bootstrap
// layer does not know about.
type Hook func(ctx context.Context) error

// OnStart registers hooks that run after telemetry is up, before the
// configure phase.
func (a *App[C]) OnStart(hooks ...Hook) {
	a.onStart = append(a.onStart, hooks...)
}

// OnReady registers hooks that run once configuration completes and
// the application is about to begin its work.
func (a *App[C]) OnReady(hooks ...Hook) {
	a.onReady = append(a.onReady, hooks...)
}

// OnStop registers hooks that run during graceful shutdown, before the
// telemetry providers flush. Close data sources and flush checkpoints
// here.
func (a *App[C]) OnStop(hooks ...Hook) {
	a.onStop = append(a.onStop, hooks...)
}

// runHooks executes hooks in registration order and stops at the first
// failure.
func runHooks(ctx context.Context, phase string, hooks []Hook) error {
	for i, hook := range hooks {
		if err := hook(ctx); err != nil {
			return fmt.Errorf("%s hook %d: %w", phase, i, err)
		}
	}
	return nil
}
