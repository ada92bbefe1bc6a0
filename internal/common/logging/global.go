package logging

import (
	"github.com/sirupsen/logrus"
)

// The global logger. It logs through the logrus standard logger, so anything configured via
// Configure or ConfigureCliLogging applies here too.
var stdLogger = logrus.StandardLogger()

// ReplaceStdLogger replaces the global logger. Intended for tests and for callers that need a
// dedicated output; call it before any goroutine starts logging.
func ReplaceStdLogger(l *logrus.Logger) {
	stdLogger = l
}

// StdLogger returns the global logger.
func StdLogger() *logrus.Logger {
	return stdLogger
}

// AddHook adds h to the global logger. The returned func removes it again, leaving hooks added by
// others in place. h must be comparable; pointer hooks are.
func AddHook(h logrus.Hook) (remove func()) {
	logger := stdLogger
	logger.AddHook(h)
	return func() {
		// ReplaceHooks is the only locked way to read the hooks; lines logged in between skip them.
		hooks := logger.ReplaceHooks(make(logrus.LevelHooks))
		kept := make(logrus.LevelHooks)
		for level, levelHooks := range hooks {
			for _, other := range levelHooks {
				if other != h {
					kept[level] = append(kept[level], other)
				}
			}
		}
		logger.ReplaceHooks(kept)
	}
}

// Debug logs a message at level Debug.
func Debug(args ...any) {
	stdLogger.Debug(args...)
}

// Info logs a message at level Info.
func Info(args ...any) {
	stdLogger.Info(args...)
}

// Warn logs a message at level Warn.
func Warn(args ...any) {
	stdLogger.Warn(args...)
}

// Error logs a message at level Error.
func Error(args ...any) {
	stdLogger.Error(args...)
}

// Debugf logs a message at level Debug.
func Debugf(format string, args ...any) {
	stdLogger.Debugf(format, args...)
}

// Infof logs a message at level Info.
func Infof(format string, args ...any) {
	stdLogger.Infof(format, args...)
}

// Warnf logs a message at level Warn.
func Warnf(format string, args ...any) {
	stdLogger.Warnf(format, args...)
}

// Errorf logs a message at level Error.
func Errorf(format string, args ...any) {
	stdLogger.Errorf(format, args...)
}

// WithField returns an entry with the key-value pair added as a field.
func WithField(key string, value any) *logrus.Entry {
	return stdLogger.WithField(key, value)
}

// WithFields returns an entry with all key-value pairs in the map added as fields.
func WithFields(fields map[string]any) *logrus.Entry {
	return stdLogger.WithFields(fields)
}

// WithError returns an entry with the error added as a field.
func WithError(err error) *logrus.Entry {
	return stdLogger.WithError(err)
}
