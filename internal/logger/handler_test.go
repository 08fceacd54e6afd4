package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrettyHandlerPlainOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}).WithoutColor())

	log.Debug("hidden")
	log.With("session_id", "abc").WithGroup("cart").Info("updated", "lines", 2, "error", errors.New("boom"))

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "INFO  updated")
	require.Contains(t, out, " session_id=abc")
	require.Contains(t, out, " cart.lines=2")
	require.Contains(t, out, " cart.error=boom")
	require.NotContains(t, out, "\033[")
}

func TestPrettyHandlerGroupsAndBoundAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil).WithoutColor())

	log.WithGroup("a").With("k", 1).WithGroup("b").Info("nested", "n", 2, slog.Group("req", "id", "r1", "path", "/api/cart"))

	out := buf.String()
	require.Contains(t, out, " a.k=1")
	require.NotContains(t, out, "a.a.k")
	require.NotContains(t, out, "a.b.k")
	require.Contains(t, out, " a.b.n=2")
	require.Contains(t, out, " a.b.req.id=r1")
	require.Contains(t, out, " a.b.req.path=/api/cart")
}

func TestPrettyHandlerColors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, nil)).Warn("careful")

	require.Contains(t, buf.String(), yellow+"WARN ")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	require.Equal(t, slog.LevelError, ParseLevel(" error "))
	require.Equal(t, slog.LevelInfo, ParseLevel(""))
}
