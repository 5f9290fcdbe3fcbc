package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bptree"
)

func newTree(t *testing.T) *bptree.Tree {
	t.Helper()
	tree, err := bptree.New(bptree.WithLeafCapacity(5), bptree.WithInternalCapacity(3))
	require.NoError(t, err)
	return tree
}

func TestBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		opts       []Option
		inserted   int
		duplicates int
		zeros      int
		errors     int
		keys       []uint64
	}{
		{
			name:     "simple",
			input:    "3\n1\n2\n",
			inserted: 3,
			keys:     []uint64{1, 2, 3},
		},
		{
			name:     "no_trailing_newline",
			input:    "5\n4",
			inserted: 2,
			keys:     []uint64{4, 5},
		},
		{
			name:     "crlf_and_blank_lines",
			input:    "7\r\n\r\n\n8\r\n",
			inserted: 2,
			keys:     []uint64{7, 8},
		},
		{
			name:     "zero_skipped",
			input:    "0\n1\n0\n2\n",
			inserted: 2,
			zeros:    2,
			keys:     []uint64{1, 2},
		},
		{
			name:       "duplicates_counted",
			input:      "9\n9\n9\n",
			inserted:   1,
			duplicates: 2,
			keys:       []uint64{9},
		},
		{
			name:     "malformed_lines_reported",
			input:    "1\nabc\n-4\n2\n18446744073709551616\n",
			inserted: 2,
			errors:   3,
			keys:     []uint64{1, 2},
		},
		{
			name:     "header_skipped",
			input:    "3\n10\n20\n30\n",
			opts:     []Option{WithHeader()},
			inserted: 3,
			keys:     []uint64{10, 20, 30},
		},
		{
			name:  "empty",
			input: "",
			keys:  []uint64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := newTree(t)
			res, err := Bytes(context.Background(), []byte(tt.input), tree, tt.opts...)
			require.NoError(t, err)

			assert.Equal(t, tt.inserted, res.Inserted, "inserted")
			assert.Equal(t, tt.duplicates, res.Duplicates, "duplicates")
			assert.Equal(t, tt.zeros, res.Zeros, "zeros")
			assert.Len(t, res.Errors, tt.errors, "line errors")
			assert.Equal(t, tt.keys, tree.Keys())
			assert.NoError(t, tree.Verify())

			if tt.errors == 0 {
				assert.NoError(t, res.Err())
			} else {
				assert.ErrorIs(t, res.Err(), ErrMalformed)
			}
		})
	}
}

func TestBytesLineNumbers(t *testing.T) {
	t.Parallel()

	tree := newTree(t)
	res, err := Bytes(context.Background(), []byte("1\n\nx1\n"), tree)
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)

	lineErr := res.Errors[0]
	assert.Equal(t, 3, lineErr.Line)
	assert.Equal(t, "x1", lineErr.Text)
	assert.ErrorIs(t, lineErr, ErrMalformed)
	assert.Contains(t, lineErr.Error(), "line 3")
}

func TestBytesHeader(t *testing.T) {
	t.Parallel()

	t.Run("count_recorded", func(t *testing.T) {
		tree := newTree(t)
		res, err := Bytes(context.Background(), []byte("\n2\n5\n6\n"), tree, WithHeader())
		require.NoError(t, err)
		assert.Equal(t, uint64(2), res.Count)
		assert.Equal(t, 2, tree.Len())
	})

	t.Run("malformed_header", func(t *testing.T) {
		tree := newTree(t)
		_, err := Bytes(context.Background(), []byte("many\n1\n"), tree, WithHeader())
		assert.ErrorIs(t, err, ErrMissingHeader)
		assert.ErrorIs(t, err, ErrMalformed)
		assert.Equal(t, 0, tree.Len(), "tree must be untouched")
	})

	t.Run("empty_file", func(t *testing.T) {
		tree := newTree(t)
		_, err := Bytes(context.Background(), nil, tree, WithHeader())
		assert.ErrorIs(t, err, ErrMissingHeader)
	})
}

func TestBytesCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data := make([]byte, 0, checkEvery*3)
	for i := 0; i < checkEvery; i++ {
		data = append(data, '1', '\n')
	}

	tree := newTree(t)
	res, err := Bytes(ctx, data, tree)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, checkEvery, res.Lines)
}

func TestFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "keys.txt")
	require.NoError(t, os.WriteFile(path, []byte("9\n8\n7\n6\n5\n4\n3\n2\n1\n"), 0644))

	tree := newTree(t)
	res, err := File(context.Background(), path, tree)
	require.NoError(t, err)
	assert.Equal(t, 9, res.Inserted)
	assert.Equal(t, []uint64{1, 2, 3, 4, 5, 6, 7, 8, 9}, tree.Keys())
}

func TestFileEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	tree := newTree(t)
	res, err := File(context.Background(), path, tree)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Lines)
}

func TestFileMissing(t *testing.T) {
	t.Parallel()

	tree := newTree(t)
	_, err := File(context.Background(), filepath.Join(t.TempDir(), "nope"), tree)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
