package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"cropdetector/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_WritesLevelFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l, err := NewLogger(&config.Config{LogDirectory: dir})
	require.NoError(t, err)
	defer l.Close()

	l.Info("selected %s", "leaf.jpg")
	l.Warning("slow response")
	l.Error("connect: %v", "refused")

	info, err := os.ReadFile(filepath.Join(dir, "info.log"))
	require.NoError(t, err)
	assert.Contains(t, string(info), "selected leaf.jpg")

	errs, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errs), "connect: refused")
}

func TestCleanLogs_TruncatesFile(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLogger(&config.Config{LogDirectory: dir})
	require.NoError(t, err)
	defer l.Close()

	l.Warning("something")
	require.NoError(t, l.CleanLogs(LevelWarning))

	data, err := os.ReadFile(filepath.Join(dir, "warning.log"))
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestNew_WriterBacked(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.Info("hello %d", 1)

	assert.Contains(t, buf.String(), "INFO")
	assert.Contains(t, buf.String(), "hello 1")
	assert.Contains(t, buf.String(), "logger_test.go:")
	assert.NoError(t, l.CleanLogs(LevelInfo))
}

func TestSessionRef(t *testing.T) {
	id := "fb76ab38-2a5c-4f7e-9d3b-0c1e2f3a4b5c"

	ref := SessionRef(id)

	assert.Len(t, ref, 8)
	assert.NotContains(t, id, ref)
	assert.Equal(t, ref, SessionRef(id))
	assert.NotEqual(t, ref, SessionRef("another"))
	assert.Equal(t, "-", SessionRef(""))
}
