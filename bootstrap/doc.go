// Package bootstrap orchestrates application lifecycle for pipeline hosts.
//
// It provides typed configuration handling, telemetry startup, and
// startup/shutdown hooks for batch jobs and long-running services built
// around datasets.
//
// # Quick Start
//
//	var cfg TrainerConfig
//	if err := config.LoadConfig("trainer", &cfg); err != nil {
//	    log.Fatal(err)
//	}
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.RunTask(ctx, runEpochs); err != nil {
//	    log.Fatal(err)
//	}
//
// The bootstrap package handles config validation, logger and telemetry
// initialization, and graceful shutdown on OS signals.
package bootstrap
