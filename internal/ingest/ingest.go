// Package ingest bulk-loads keys from newline-delimited files into a tree.
//
// Each line holds one unsigned decimal integer. Zero values and blank lines
// are skipped, malformed lines are reported and never reach the tree.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrMalformed     = errors.New("malformed key")
	ErrMissingHeader = errors.New("missing key count header")
)

// checkEvery is how many lines are parsed between context checks
const checkEvery = 4096

// Inserter receives parsed keys. Both bptree.Tree and bptree.SyncTree
// satisfy it.
type Inserter interface {
	Insert(key uint64) bool
}

// LineError describes a line that could not be parsed.
type LineError struct {
	Line int    // 1-based line number
	Text string // Offending line, trimmed
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Result summarizes one ingestion run.
type Result struct {
	Lines      int    // Lines read, including blank and header lines
	Inserted   int    // Keys newly stored
	Duplicates int    // Keys already present
	Zeros      int    // Zero values skipped
	Count      uint64 // Header value when WithHeader is set
	Errors     []*LineError
}

type options struct {
	header bool
}

// Option configures ingestion
type Option func(*options)

// WithHeader treats the first non-blank line as the number of keys that
// follow rather than as a key.
func WithHeader() Option {
	return func(opts *options) {
		opts.header = true
	}
}

// File memory-maps path and ingests every line into dst.
func File(ctx context.Context, path string, dst Inserter, opts ...Option) (*Result, error) {
	data, release, err := mapFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", path, err)
	}
	defer func() { _ = release() }()

	return Bytes(ctx, data, dst, opts...)
}

// Bytes ingests newline-delimited keys held in data.
func Bytes(ctx context.Context, data []byte, dst Inserter, opts ...Option) (*Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	res := &Result{}
	needHeader := o.header

	for len(data) > 0 {
		var line []byte
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			line, data = data, nil
		}
		res.Lines++

		if res.Lines%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		v, err := strconv.ParseUint(string(line), 10, 64)
		if err != nil {
			res.Errors = append(res.Errors, &LineError{
				Line: res.Lines,
				Text: string(line),
				Err:  fmt.Errorf("%w: %w", ErrMalformed, err),
			})
			if needHeader {
				return res, fmt.Errorf("%w: %w", ErrMissingHeader, res.Errors[0])
			}
			continue
		}

		if needHeader {
			res.Count = v
			needHeader = false
			continue
		}

		if v == 0 {
			res.Zeros++
			continue
		}
		if dst.Insert(v) {
			res.Inserted++
		} else {
			res.Duplicates++
		}
	}

	if needHeader {
		return res, ErrMissingHeader
	}
	return res, nil
}

// Err joins the line errors, or returns nil when every line parsed.
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}
