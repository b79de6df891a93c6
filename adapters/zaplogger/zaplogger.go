// Package zaplogger adapts a zap logger to the session.Logger interface.
package zaplogger

import (
	"go.uber.org/zap"

	session "github.com/traf3li/go-session"
)

var _ session.Logger = (*Logger)(nil)

// Logger forwards session log lines to a zap SugaredLogger.
type Logger struct {
	sugar *zap.SugaredLogger
}

// New wraps l. A nil l falls back to zap's no-op logger.
func New(l *zap.Logger) *Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &Logger{sugar: l.Sugar()}
}

// Debug implements session.Logger.
func (l *Logger) Debug(format string, args ...any) {
	l.sugar.Debugf(format, args...)
}

// Info implements session.Logger.
func (l *Logger) Info(format string, args ...any) {
	l.sugar.Infof(format, args...)
}

// Error implements session.Logger.
func (l *Logger) Error(format string, args ...any) {
	l.sugar.Errorf(format, args...)
}
