package engine

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var defaultLogger atomic.Pointer[zap.Logger]

// Logger returns the logger used by contexts created without
// Config.Logger. It is a no-op logger until SetLogger is called.
func Logger() *zap.Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	return nopLogger
}

var nopLogger = zap.NewNop()

// SetLogger replaces the default logger. Existing contexts keep theirs.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = nopLogger
	}
	defaultLogger.Store(l)
}
