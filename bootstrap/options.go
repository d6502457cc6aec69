package bootstrap

import (
	"time"

	"github.com/datakit-go/datakit/logger"
)

// Option adjusts how NewApp assembles the application. Options are not
// generic, so one option value works with any config type.
type Option func(*options)

type options struct {
	logger          *logger.Logger
	gracefulTimeout time.Duration
}

func collectOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger supplies a prebuilt logger instead of one initialized from
// the config's logging section. The global logger is left untouched.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithGracefulTimeout bounds the shutdown flush. The default is 15
// seconds.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *options) { o.gracefulTimeout = d }
}
