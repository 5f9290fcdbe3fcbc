package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKeys(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keys.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

func sequence(from, to int) []string {
	var lines []string
	for i := from; i <= to; i++ {
		lines = append(lines, fmt.Sprint(i))
	}
	return lines
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	args = append([]string{"-log-level", "error"}, args...)
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestSelfTest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		keys []string
	}{
		{name: "ascending", keys: sequence(1, 200)},
		{name: "descending", keys: []string{"9", "8", "7", "6", "5", "4", "3", "2", "1"}},
		{name: "with_zero", keys: []string{"0", "5", "3", "1", "4", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeKeys(t, append([]string{fmt.Sprint(len(tt.keys))}, tt.keys...)...)

			code, out, errOut := runCLI(t, "", "-t", path, "-leaf-cap", "5", "-internal-cap", "3")
			require.Equal(t, 0, code, errOut)

			var report selfTestReport
			require.NoError(t, json.Unmarshal([]byte(out), &report))
			assert.Equal(t, selfTestReport{1, 1, 1, 1, 1}, report)
		})
	}
}

func TestSelfTestMalformed(t *testing.T) {
	t.Parallel()

	path := writeKeys(t, "3", "1", "two", "3")
	code, out, _ := runCLI(t, "", "-t", path)
	assert.Equal(t, 1, code)

	var report selfTestReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 0, report.Insert)
	assert.Equal(t, 1, report.LeafChain)
}

func TestFill(t *testing.T) {
	t.Parallel()

	path := writeKeys(t, sequence(1, 9)...)
	code, out, errOut := runCLI(t, "", "-f", path, "-leaf-cap", "5", "-internal-cap", "3", "-print")
	require.Equal(t, 0, code, errOut)

	assert.True(t, strings.HasPrefix(out, "<1>[0 | 4* | 2 | 7* | 3]\n<0>[1*2*3*] <2>[4*5*6*] <3>[7*8*9*]\n"), out)

	var report fillReport
	require.NoError(t, json.Unmarshal([]byte(out[strings.Index(out, "{"):]), &report))
	assert.Equal(t, 9, report.Inserted)
	assert.Equal(t, 2, report.Height)
	assert.Equal(t, 3, report.Leaves)
	assert.Len(t, report.Digest, 16)
}

func TestInteractive(t *testing.T) {
	t.Parallel()

	code, out, errOut := runCLI(t, "insert 4\ninsert 2\nlookup 4\nremove 4\nlookup 4\n", "-i")
	require.Equal(t, 0, code, errOut)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[2], `"found":true`)
	assert.Contains(t, lines[4], `"found":false`)
}

func TestBenchmarkMode(t *testing.T) {
	t.Parallel()

	path := writeKeys(t, sequence(1, 500)...)
	code, out, errOut := runCLI(t, "", "-bench", path)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "bptree")
	assert.Contains(t, out, "google/btree(32)")
	assert.Contains(t, out, "sqlite")
}

func TestFlagErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		code int
	}{
		{name: "no_mode", args: nil, code: 2},
		{name: "two_modes", args: []string{"-i", "-f", "x"}, code: 2},
		{name: "stray_arg", args: []string{"-i", "extra"}, code: 2},
		{name: "cache_too_large", args: []string{"-i", "-cache", "4294967296"}, code: 2},
		{name: "bad_capacity", args: []string{"-i", "-leaf-cap", "1"}, code: 1},
		{name: "missing_file", args: []string{"-f", "/nonexistent/keys.txt"}, code: 1},
		{name: "bad_log_backend", args: []string{"-i", "-log", "syslog"}, code: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCLI(t, "", tt.args...)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestInteractiveInterrupted(t *testing.T) {
	t.Parallel()

	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	var stdout, stderr bytes.Buffer
	done := make(chan int, 1)
	go func() {
		done <- run(ctx, []string{"-log-level", "error", "-i"}, pr, &stdout, &stderr)
	}()

	// No input arrives; the interrupt alone must end the session
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case code := <-done:
		assert.Equal(t, 0, code, stderr.String())
	case <-time.After(5 * time.Second):
		t.Fatal("interactive mode did not stop on interrupt")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bptree.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tree:\n  leaf_capacity: 16\ncache:\n  size: 10\n"), 0644))

	cfg, err := loadConfig(&flags{configPath: path, internalCap: 7, cacheSize: -1, listen: ":0"})
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Tree.LeafCapacity)
	assert.Equal(t, 7, cfg.Tree.InternalCapacity)
	assert.Equal(t, uint32(10), cfg.Cache.Size)
	assert.Equal(t, ":0", cfg.Server.Addr)
}
