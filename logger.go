package bptree

// Logger receives structural events from a Tree: root splits and root
// collapses at Info, failures reported by the tools built on it at Warn and
// Error. Arguments are alternating key/value pairs, so *slog.Logger
// satisfies it as is; package logger adapts zap and logrus.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
}

// DiscardLogger drops every event. It is what New uses unless WithLogger
// is given.
type DiscardLogger struct{}

func (DiscardLogger) Error(string, ...any) {}

func (DiscardLogger) Warn(string, ...any) {}

func (DiscardLogger) Info(string, ...any) {}
