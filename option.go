package bptree

import (
	"fmt"

	"bptree/internal/base"
)

const (
	// DefaultLeafCapacity is the nominal maximum number of keys per leaf.
	DefaultLeafCapacity = 64

	// DefaultInternalCapacity is the nominal maximum number of separators
	// per internal node.
	DefaultInternalCapacity = 64
)

// Options configures tree behavior.
//
// Capacities are nominal: a node splits once it holds
// ceil((capacity+1)/2) entries, so that value is the effective maximum fill.
type Options struct {
	leafCapacity     int
	internalCapacity int
	logger           Logger
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		leafCapacity:     DefaultLeafCapacity,
		internalCapacity: DefaultInternalCapacity,
		logger:           DiscardLogger{},
	}
}

// Option configures tree options using the functional options pattern.
type Option func(*Options)

// WithLeafCapacity sets the nominal capacity of leaf nodes.
func WithLeafCapacity(n int) Option {
	return func(opts *Options) {
		opts.leafCapacity = n
	}
}

// WithInternalCapacity sets the nominal capacity of internal nodes.
func WithInternalCapacity(n int) Option {
	return func(opts *Options) {
		opts.internalCapacity = n
	}
}

// WithLogger sets the logger used to report structural changes such as the
// root splitting or collapsing.
func WithLogger(l Logger) Option {
	return func(opts *Options) {
		if l == nil {
			l = DiscardLogger{}
		}
		opts.logger = l
	}
}

func (o Options) validate() error {
	if o.leafCapacity < base.MinCapacity {
		return fmt.Errorf("%w: leaf capacity %d, minimum %d", ErrInvalidCapacity, o.leafCapacity, base.MinCapacity)
	}
	if o.internalCapacity < base.MinCapacity {
		return fmt.Errorf("%w: internal capacity %d, minimum %d", ErrInvalidCapacity, o.internalCapacity, base.MinCapacity)
	}
	return nil
}
