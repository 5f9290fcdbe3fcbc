package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"bptree"
	"bptree/internal/bench"
	"bptree/internal/config"
	"bptree/internal/dump"
	"bptree/internal/ingest"
	"bptree/internal/server"
	"bptree/internal/session"
)

// collector records every key handed to the tree, in file order
type collector struct {
	dst  ingest.Inserter
	keys []uint64
}

func (c *collector) Insert(key uint64) bool {
	c.keys = append(c.keys, key)
	if c.dst == nil {
		return true
	}
	return c.dst.Insert(key)
}

// selfTestReport mirrors the harness output: one 1/0 flag per check
type selfTestReport struct {
	Insert    int `json:"testInsert"`
	LookUp    int `json:"testLookUp"`
	LeafChain int `json:"testLeafChain"`
	Remove    int `json:"testRemove"`
	Verify    int `json:"testVerify"`
}

func flag01(ok bool) int {
	if ok {
		return 1
	}
	return 0
}

func selfTest(ctx context.Context, path string, opts []bptree.Option, stdout io.Writer) error {
	tree, err := bptree.New(opts...)
	if err != nil {
		return err
	}

	c := &collector{dst: tree}
	res, err := ingest.File(ctx, path, c, ingest.WithHeader())
	if err != nil {
		return err
	}

	report := selfTestReport{
		Insert:    flag01(res.Err() == nil && tree.Len() == res.Inserted),
		LookUp:    flag01(checkLookUp(tree, c.keys)),
		LeafChain: flag01(checkLeafChain(tree)),
	}
	report.Verify = flag01(tree.Verify() == nil)
	report.Remove = flag01(checkRemove(tree, c.keys))

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "\t")
	if err := enc.Encode(report); err != nil {
		return err
	}

	if report != (selfTestReport{1, 1, 1, 1, 1}) {
		return fmt.Errorf("self-test failed for %s", path)
	}
	return nil
}

// checkLookUp expects every ingested key to be found and the key after the
// largest one to be absent.
func checkLookUp(tree *bptree.Tree, keys []uint64) bool {
	var largest uint64
	for _, k := range keys {
		if !tree.LookUp(k).Valid {
			return false
		}
		largest = max(largest, k)
	}
	return largest == ^uint64(0) || !tree.LookUp(largest+1).Valid
}

// checkLeafChain walks the leaf chain and expects strictly ascending keys
// covering the whole tree.
func checkLeafChain(tree *bptree.Tree) bool {
	n := 0
	var prev uint64
	ok := true
	tree.Ascend(func(key uint64) bool {
		if n > 0 && key <= prev {
			ok = false
			return false
		}
		prev = key
		n++
		return true
	})
	return ok && n == tree.Len()
}

// checkRemove removes every other key, then the rest, verifying lookups
// and invariants along the way. The tree ends empty.
func checkRemove(tree *bptree.Tree, keys []uint64) bool {
	keys = distinct(keys)
	for pass := 0; pass < 2; pass++ {
		for i := pass; i < len(keys); i += 2 {
			if !tree.Remove(keys[i]) || tree.LookUp(keys[i]).Valid {
				return false
			}
		}
		if tree.Verify() != nil {
			return false
		}
		for i := pass + 1; i < len(keys); i += 2 {
			if !tree.LookUp(keys[i]).Valid {
				return false
			}
		}
	}
	return tree.Len() == 0 && tree.Height() == 1
}

// distinct drops repeated keys, keeping first occurrences in order
func distinct(keys []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(keys))
	out := make([]uint64, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

type fillReport struct {
	dump.Summary
	Lines      int    `json:"lines"`
	Inserted   int    `json:"inserted"`
	Duplicates int    `json:"duplicates"`
	Malformed  int    `json:"malformed"`
	Digest     string `json:"digest"`
}

func fill(ctx context.Context, path string, opts []bptree.Option, printTree bool, stdout io.Writer) error {
	tree, err := bptree.New(opts...)
	if err != nil {
		return err
	}

	res, err := ingest.File(ctx, path, tree)
	if err != nil {
		return err
	}
	if err := tree.Verify(); err != nil {
		return err
	}

	snap := tree.Snapshot()
	if printTree {
		if err := dump.Text(stdout, snap); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(fillReport{
		Summary:    dump.Summarize(snap),
		Lines:      res.Lines,
		Inserted:   res.Inserted,
		Duplicates: res.Duplicates,
		Malformed:  len(res.Errors),
		Digest:     fmt.Sprintf("%016x", tree.Digest()),
	})
}

func newSyncTree(cfg *config.Config, opts []bptree.Option) (*bptree.SyncTree, error) {
	tree, err := bptree.New(opts...)
	if err != nil {
		return nil, err
	}
	return bptree.NewSync(tree, bptree.WithLookupCache(cfg.Cache.Size))
}

func interactive(ctx context.Context, cfg *config.Config, opts []bptree.Option, log bptree.Logger, stdin io.Reader, stdout io.Writer) error {
	st, err := newSyncTree(cfg, opts)
	if err != nil {
		return err
	}
	err = session.New(st, log).Serve(ctx, stdin, stdout)
	if errors.Is(err, context.Canceled) {
		// Interrupted at the prompt
		return nil
	}
	return err
}

func listen(ctx context.Context, cfg *config.Config, opts []bptree.Option, log bptree.Logger) error {
	st, err := newSyncTree(cfg, opts)
	if err != nil {
		return err
	}
	return server.New(st, log).ListenAndServe(ctx, cfg.Server.Addr)
}

func benchmark(ctx context.Context, path string, opts []bptree.Option, stdout io.Writer) error {
	c := &collector{}
	res, err := ingest.File(ctx, path, c)
	if err != nil {
		return err
	}
	if err := res.Err(); err != nil {
		return err
	}

	tree, err := bench.NewTree(opts...)
	if err != nil {
		return err
	}
	sqlite, err := bench.NewSQLite(ctx)
	if err != nil {
		return err
	}

	results, err := bench.Run(ctx, c.keys, tree, bench.NewBTree(32), sqlite)
	if err != nil {
		return err
	}
	return bench.Report(stdout, results)
}
