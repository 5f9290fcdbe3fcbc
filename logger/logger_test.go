package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"bptree"
)

func TestZapAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewZap(zap.New(core))

	tree, err := bptree.New(bptree.WithLeafCapacity(2), bptree.WithInternalCapacity(2), bptree.WithLogger(log))
	require.NoError(t, err)
	for k := uint64(1); k <= 3; k++ {
		tree.Insert(k)
	}

	splits := logs.FilterMessage("root split").All()
	require.NotEmpty(t, splits)
	fields := splits[0].ContextMap()
	assert.Contains(t, fields, "root")
	assert.EqualValues(t, 2, fields["height"])

	log.Warn("warned", "key", 1)
	log.Error("failed", "key", 2)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestLogrusAdapter(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	log := NewLogrus(l)
	log.Info("root split", "root", uint64(4), "height", 3, "dangling")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "root split", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.EqualValues(t, 4, entry["root"])
	assert.EqualValues(t, 3, entry["height"])
	assert.NotContains(t, entry, "dangling")
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		level   string
		wantErr bool
	}{
		{name: "default_backend", backend: "", level: "info"},
		{name: "zap", backend: "zap", level: "warn"},
		{name: "logrus", backend: "LOGRUS", level: "error"},
		{name: "unknown_backend", backend: "syslog", level: "info", wantErr: true},
		{name: "bad_zap_level", backend: "zap", level: "loud", wantErr: true},
		{name: "bad_logrus_level", backend: "logrus", level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, flush, err := New(tt.backend, tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, log)
			assert.NotNil(t, flush)
		})
	}
}
