package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffingapi/internal/config"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	loc := time.FixedZone("UTC+7", 7*60*60)

	l := NewJSON(&buf, loc)
	l.WithField("component", "test").Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "test", entry["component"])

	ts, ok := entry["ts"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(ts, "+07:00"), "timestamp %q not rendered in location", ts)
}

func TestNew(t *testing.T) {
	t.Run("level parsing", func(t *testing.T) {
		l := New(config.LogConfig{Level: "debug"}, time.UTC)
		assert.Equal(t, logrus.DebugLevel, l.GetLevel())

		l = New(config.LogConfig{Level: "nonsense"}, time.UTC)
		assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	})

	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "api.log")
		l := New(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1}, time.UTC)
		assert.IsType(t, &lumberjack.Logger{}, l.Out)
	})
}
