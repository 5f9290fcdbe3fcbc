package bptree

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLoggerReceivesRootEvents(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	tree, err := New(WithLeafCapacity(2), WithInternalCapacity(2), WithLogger(log))
	require.NoError(t, err)
	for _, k := range keyRange(1, 3) {
		tree.Insert(k)
	}
	assert.Contains(t, buf.String(), `msg="root split"`)
	assert.Contains(t, buf.String(), "height=2")

	buf.Reset()
	for _, k := range keyRange(1, 3) {
		tree.Remove(k)
	}
	assert.Contains(t, buf.String(), `msg="root collapsed"`)
	assert.Contains(t, buf.String(), "height=1")
}
