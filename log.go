package qnet

import "go.uber.org/zap"

// logger is the package logger.  Construction is quiet by default; callers
// that want build-time visibility install their own logger with SetLogger.
var logger = zap.NewNop()

// SetLogger replaces the package logger.  Passing nil restores the no-op
// logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}
