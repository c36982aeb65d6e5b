package vow

import "go.uber.org/zap"

// Logger is the ambient diagnostic sink a [Scheduler] uses to report a
// panic recovered during [Scheduler.Tick] (including the one the default
// unhandled-rejection hook raises) before rethrowing it. It is
// infrastructure, not a feature:
// the zero value, [noopLogger], is silent, so nothing about task semantics
// depends on a Logger being configured. A small structured, leveled
// interface (Debugw/Errorw, key-value pairs) in the style
// chaptersix-temporal's test suites favor for assertions, wrapping
// [go.uber.org/zap] — carried into the pack by kination-nautikus's go.mod,
// which pulls zap in for its controller-runtime logging adapter.
type Logger interface {
	Debugw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
}

type noopLogger struct{}

func (noopLogger) Debugw(string, ...any) {}
func (noopLogger) Errorw(string, ...any) {}

// ZapLogger adapts a [go.uber.org/zap.SugaredLogger] to [Logger].
type ZapLogger struct {
	S *zap.SugaredLogger
}

// NewZapLogger wraps l as a [Logger].
func NewZapLogger(l *zap.Logger) ZapLogger {
	return ZapLogger{S: l.Sugar()}
}

func (z ZapLogger) Debugw(msg string, keysAndValues ...any) {
	z.S.Debugw(msg, keysAndValues...)
}

func (z ZapLogger) Errorw(msg string, keysAndValues ...any) {
	z.S.Errorw(msg, keysAndValues...)
}
