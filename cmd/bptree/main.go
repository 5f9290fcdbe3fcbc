// Command bptree drives an in-memory B+ tree from files, stdin or TCP.
//
// Modes:
//
//	bptree -t <file>        self-test: ingest, lookup, leaf chain and remove checks
//	bptree -f <file>        ingest keys and print a structural summary
//	bptree -i               line protocol on stdin/stdout
//	bptree -listen <addr>   line protocol over TCP
//	bptree -bench <file>    compare against google/btree and SQLite
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"syscall"

	"bptree"
	"bptree/internal/config"
	"bptree/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	// After the first signal a second one terminates immediately
	context.AfterFunc(ctx, stop)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type flags struct {
	testFile    string
	fillFile    string
	interactive bool
	listen      string
	benchFile   string
	configPath  string
	leafCap     int
	internalCap int
	cacheSize   int
	logBackend  string
	logLevel    string
	print       bool
}

func parseFlags(args []string, stderr io.Writer) (*flags, error) {
	fs := flag.NewFlagSet("bptree", flag.ContinueOnError)
	fs.SetOutput(stderr)

	f := &flags{}
	fs.StringVar(&f.testFile, "t", "", "run the self-test on a key file whose first line is the key count")
	fs.StringVar(&f.fillFile, "f", "", "fill the tree from a key file, one key per line")
	fs.BoolVar(&f.interactive, "i", false, "serve the line protocol on stdin/stdout")
	fs.StringVar(&f.listen, "listen", "", "serve the line protocol over TCP on this address")
	fs.StringVar(&f.benchFile, "bench", "", "benchmark against google/btree and SQLite using a key file")
	fs.StringVar(&f.configPath, "config", "", "YAML config file")
	fs.IntVar(&f.leafCap, "leaf-cap", 0, "nominal leaf capacity (overrides config)")
	fs.IntVar(&f.internalCap, "internal-cap", 0, "nominal internal node capacity (overrides config)")
	fs.IntVar(&f.cacheSize, "cache", -1, "lookup cache entries, 0 disables (overrides config)")
	fs.StringVar(&f.logBackend, "log", "", "log backend: zap or logrus (overrides config)")
	fs.StringVar(&f.logLevel, "log-level", "", "log level (overrides config)")
	fs.BoolVar(&f.print, "print", false, "with -f, print the tree level by level")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if int64(f.cacheSize) > math.MaxUint32 {
		return nil, fmt.Errorf("-cache %d exceeds the maximum of %d entries", f.cacheSize, uint32(math.MaxUint32))
	}

	modes := 0
	for _, set := range []bool{f.testFile != "", f.fillFile != "", f.interactive, f.listen != "", f.benchFile != ""} {
		if set {
			modes++
		}
	}
	if modes != 1 {
		fs.Usage()
		return nil, errors.New("exactly one of -t, -f, -i, -listen, -bench is required")
	}
	return f, nil
}

// loadConfig reads the config file and applies flag overrides
func loadConfig(f *flags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if f.leafCap > 0 {
		cfg.Tree.LeafCapacity = f.leafCap
	}
	if f.internalCap > 0 {
		cfg.Tree.InternalCapacity = f.internalCap
	}
	if f.cacheSize >= 0 {
		cfg.Cache.Size = uint32(f.cacheSize)
	}
	if f.logBackend != "" {
		cfg.Log.Backend = f.logBackend
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.listen != "" {
		cfg.Server.Addr = f.listen
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	f, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	log, flush, err := logger.New(cfg.Log.Backend, cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer func() { _ = flush() }()

	opts := append(cfg.TreeOptions(), bptree.WithLogger(log))

	switch {
	case f.testFile != "":
		err = selfTest(ctx, f.testFile, opts, stdout)
	case f.fillFile != "":
		err = fill(ctx, f.fillFile, opts, f.print, stdout)
	case f.interactive:
		err = interactive(ctx, cfg, opts, log, stdin, stdout)
	case f.listen != "":
		err = listen(ctx, cfg, opts, log)
	case f.benchFile != "":
		err = benchmark(ctx, f.benchFile, opts, stdout)
	}

	if err != nil {
		log.Error("bptree failed", "error", err)
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
