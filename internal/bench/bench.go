// Package bench times bulk insert, point lookup and full in-order scan of
// the same key set across bptree and two baselines: google/btree and an
// in-memory SQLite table.
package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

var ErrMismatch = errors.New("baseline key count mismatch")

// Target is one index under measurement
type Target interface {
	Name() string
	// Insert loads keys, ignoring duplicates
	Insert(ctx context.Context, keys []uint64) error
	// LookUp probes every key and returns how many were found
	LookUp(ctx context.Context, keys []uint64) (int, error)
	// Scan visits every stored key in order and returns how many it saw
	Scan(ctx context.Context) (int, error)
	Close() error
}

// Result holds the timings of one target
type Result struct {
	Name   string
	Keys   int // Distinct keys stored
	Insert time.Duration
	LookUp time.Duration
	Scan   time.Duration
}

// Run measures every target on keys. Each target must end up holding the
// same number of distinct keys, otherwise Run fails with ErrMismatch.
// Targets are closed before Run returns.
func Run(ctx context.Context, keys []uint64, targets ...Target) ([]Result, error) {
	defer func() {
		for _, t := range targets {
			_ = t.Close()
		}
	}()

	distinct := countDistinct(keys)
	results := make([]Result, 0, len(targets))

	for _, t := range targets {
		res := Result{Name: t.Name()}

		start := time.Now()
		if err := t.Insert(ctx, keys); err != nil {
			return results, fmt.Errorf("%s insert: %w", t.Name(), err)
		}
		res.Insert = time.Since(start)

		start = time.Now()
		found, err := t.LookUp(ctx, keys)
		if err != nil {
			return results, fmt.Errorf("%s lookup: %w", t.Name(), err)
		}
		res.LookUp = time.Since(start)
		if found != len(keys) {
			return results, fmt.Errorf("%w: %s found %d of %d probes", ErrMismatch, t.Name(), found, len(keys))
		}

		start = time.Now()
		res.Keys, err = t.Scan(ctx)
		if err != nil {
			return results, fmt.Errorf("%s scan: %w", t.Name(), err)
		}
		res.Scan = time.Since(start)
		if res.Keys != distinct {
			return results, fmt.Errorf("%w: %s holds %d keys, want %d", ErrMismatch, t.Name(), res.Keys, distinct)
		}

		results = append(results, res)
	}

	return results, nil
}

// Report writes results as an aligned table
func Report(w io.Writer, results []Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "target\tkeys\tinsert\tlookup\tscan\tns/insert")
	for _, r := range results {
		perOp := int64(0)
		if r.Keys > 0 {
			perOp = r.Insert.Nanoseconds() / int64(r.Keys)
		}
		fmt.Fprintf(tw, "%s\t%d\t%v\t%v\t%v\t%d\n", r.Name, r.Keys, r.Insert, r.LookUp, r.Scan, perOp)
	}
	return tw.Flush()
}

func countDistinct(keys []uint64) int {
	seen := make(map[uint64]struct{}, len(keys))
	for _, k := range keys {
		seen[k] = struct{}{}
	}
	return len(seen)
}
