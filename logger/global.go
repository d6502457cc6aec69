package logger

import "sync/atomic"

// global is the process-wide logger used by the package-level helpers
// and by components that are not handed a logger explicitly.
var global atomic.Pointer[Logger]

// SetGlobalLogger installs l as the process-wide logger. A nil l is
// ignored.
func SetGlobalLogger(l *Logger) {
	if l != nil {
		global.Store(l)
	}
}

// GetGlobalLogger returns the process-wide logger, installing a default
// console logger on first use.
func GetGlobalLogger() *Logger {
	if l := global.Load(); l != nil {
		return l
	}
	global.CompareAndSwap(nil, NewDefault("datakit"))
	return global.Load()
}

// Debug logs on the global logger.
func Debug(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Debug(msg, fields...)
}

// Info logs on the global logger.
func Info(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Info(msg, fields...)
}

// Warn logs on the global logger.
func Warn(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Warn(msg, fields...)
}

// Error logs on the global logger.
func Error(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Error(msg, fields...)
}
