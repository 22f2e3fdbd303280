package logbuf

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandler_WritesPlainLines(t *testing.T) {
	b, err := New(10)
	require.NoError(t, err)

	logger := slog.New(NewHandler(b, slog.LevelInfo, false))
	logger.Debug("hidden")
	logger.Info("sample accepted", "key", "api")

	lines := b.Lines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "INF")
	assert.Contains(t, lines[0], "sample accepted")
	assert.Contains(t, lines[0], "key=api")
	assert.NotContains(t, lines[0], "\x1b[")
}

func TestFanout(t *testing.T) {
	b, err := New(10)
	require.NoError(t, err)
	var text bytes.Buffer

	logger := slog.New(Fanout(
		NewHandler(b, slog.LevelWarn, false),
		slog.NewTextHandler(&text, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)).With("component", "test")

	logger.Info("info only")
	logger.Warn("both")

	assert.Equal(t, 1, b.Len())
	assert.Contains(t, b.Lines()[0], "component=test")
	assert.Contains(t, text.String(), "info only")
	assert.Contains(t, text.String(), "both")
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLevel("loud")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
