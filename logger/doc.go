// Package logger provides structured logging for datakit components,
// built on zerolog.
//
// A Logger writes JSON or human-readable console output at a configured
// level. Components derive scoped loggers with WithComponent and
// WithFields; the Field constants keep output queryable by a single key
// set across the module.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//	  output: "stdout"
//
// # Usage
//
//	log := logger.New(&logger.Config{Level: "debug", Format: "json"}, "trainer")
//	log = log.WithComponent("dataset")
//	log.Info("session opened", logger.Fields(logger.FieldSessionID, id))
package logger
