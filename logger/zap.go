package logger

import (
	"go.uber.org/zap"

	"bptree"
)

// Zap forwards tree events to a zap logger. Key/value pairs become
// structured fields through zap's sugared API; a trailing key without a
// value is reported by zap itself.
type Zap struct {
	sugar *zap.SugaredLogger
}

// NewZap adapts logger. The sugared wrapper is built once here rather than
// on every event.
func NewZap(logger *zap.Logger) bptree.Logger {
	return &Zap{sugar: logger.Sugar()}
}

func (z *Zap) Error(msg string, args ...any) {
	z.sugar.Errorw(msg, args...)
}

func (z *Zap) Warn(msg string, args ...any) {
	z.sugar.Warnw(msg, args...)
}

// Info carries root split and collapse events with the new root id and
// height.
func (z *Zap) Info(msg string, args ...any) {
	z.sugar.Infow(msg, args...)
}
