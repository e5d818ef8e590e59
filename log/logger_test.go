package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelFromString(t *testing.T) {
	require.Equal(t, LevelDebug, LevelFromString("DEBUG"))
	require.Equal(t, LevelInfo, LevelFromString("info"))
	require.Equal(t, LevelWarn, LevelFromString("warning"))
	require.Equal(t, LevelError, LevelFromString(" error "))
	require.Equal(t, defaultLevel, LevelFromString("verbose"))
}

func TestCtx(t *testing.T) {
	null := NewNullLogger()
	ctx := WithLogger(context.Background(), null)
	require.Same(t, null, Ctx(ctx))
	require.NotNil(t, Ctx(context.Background()))
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, LevelInfo, true).With("loader", "json")

	logger.Debug("hidden")
	logger.Info("loaded documents", "count", 2)

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "loaded documents")
	require.Contains(t, out, "loader=json")
	require.Contains(t, out, "count=2")
}
