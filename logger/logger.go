package logger

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is a leveled structured logger backed by zerolog. A Logger is
// immutable and safe for concurrent use; the With methods derive scoped
// loggers without touching the parent.
type Logger struct {
	zl zerolog.Logger
}

// New builds a Logger for the named service. A nil or partially filled
// cfg is completed with defaults and is not mutated. An unrecognized
// level falls back to info.
func New(cfg *Config, service string) *Logger {
	var c Config
	if cfg != nil {
		c = *cfg
	}
	c.ApplyDefaults()
	return newLogger(c, service, c.writer())
}

// NewDefault returns an info-level console Logger for the named service.
func NewDefault(service string) *Logger {
	return New(nil, service)
}

func newLogger(c Config, service string, w io.Writer) *Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(c.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zc := zerolog.New(w).Level(level).With().Timestamp()
	if service != "" {
		zc = zc.Str("service", service)
	}
	return &Logger{zl: zc.Logger()}
}

// WithComponent tags every event of the derived logger with a component
// name under the "component" key.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{zl: l.zl.With().Str(FieldComponent, name).Logger()}
}

// WithFields attaches the given fields to every event of the derived
// logger.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{zl: l.zl.With().Fields(fields).Logger()}
}

// WithError attaches err to every event of the derived logger.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{zl: l.zl.With().Err(err).Logger()}
}

// Debug logs msg at debug level with optional field maps.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.emit(l.zl.Debug(), msg, fields)
}

// Info logs msg at info level with optional field maps.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.emit(l.zl.Info(), msg, fields)
}

// Warn logs msg at warn level with optional field maps.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.emit(l.zl.Warn(), msg, fields)
}

// Error logs msg at error level with optional field maps.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.emit(l.zl.Error(), msg, fields)
}

func (l *Logger) emit(ev *zerolog.Event, msg string, fields []map[string]interface{}) {
	for _, m := range fields {
		ev = ev.Fields(m)
	}
	ev.Msg(msg)
}
