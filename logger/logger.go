// Package logger provides adapters for popular logger libraries to work with bptree's Logger interface.
//
// The adapters allow you to use your existing logger with bptree without writing boilerplate.
// Note that the standard library's slog.Logger already implements bptree.Logger directly.
//
// Example with zap:
//
//	import (
//	    "bptree"
//	    "bptree/logger"
//	    "go.uber.org/zap"
//	)
//
//	func main() {
//	    zapLogger, _ := zap.NewProduction()
//
//	    tree, err := bptree.New(bptree.WithLogger(logger.NewZap(zapLogger)))
//	    if err != nil {
//	        panic(err)
//	    }
//	    tree.Insert(42)
//	}
package logger

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"bptree"
)

// Backend names accepted by New
const (
	BackendZap    = "zap"
	BackendLogrus = "logrus"
)

// New builds a bptree.Logger for the named backend at the given level
// ("info", "warn", "error"). The returned flush function must be called
// before exit.
func New(backend, level string) (bptree.Logger, func() error, error) {
	switch strings.ToLower(backend) {
	case "", BackendZap:
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, nil, fmt.Errorf("zap level %q: %w", level, err)
		}
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		z, err := cfg.Build()
		if err != nil {
			return nil, nil, err
		}
		return NewZap(z), z.Sync, nil
	case BackendLogrus:
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, nil, fmt.Errorf("logrus level %q: %w", level, err)
		}
		l := logrus.New()
		l.SetLevel(lvl)
		l.SetFormatter(&logrus.JSONFormatter{})
		return NewLogrus(l), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown log backend %q", backend)
	}
}
