package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"trace", LevelTrace},
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestLevelFilterSplitsOutput(t *testing.T) {
	var low, high bytes.Buffer
	logger := slog.New(MultiHandler{hs: []slog.Handler{
		LevelFilter{pass: func(l slog.Level) bool { return l < slog.LevelError }, h: slog.NewTextHandler(&low, nil)},
		LevelFilter{pass: func(l slog.Level) bool { return l >= slog.LevelError }, h: slog.NewTextHandler(&high, nil)},
	}})

	logger.Info("processed", "target", "script")
	logger.Error("failed", "target", "server")

	assert.Contains(t, low.String(), "processed")
	assert.NotContains(t, low.String(), "failed")
	assert.Contains(t, high.String(), "failed")
	assert.NotContains(t, high.String(), "processed")
	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelInfo))
}

func TestNewHandlerFormats(t *testing.T) {
	var buf bytes.Buffer
	slog.New(newHandler(&buf, "json", nil)).Info("hello")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))

	buf.Reset()
	slog.New(newHandler(&buf, "text", nil)).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")

	// A non-file writer in auto mode falls back to text.
	buf.Reset()
	slog.New(newHandler(&buf, "auto", nil)).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestArtifactLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewArtifactLogger(&buf)
	l.Log("/tmp/home_page_copy.gen.go", []byte("package pages"))
	out := buf.String()
	assert.Contains(t, out, "==> /tmp/home_page_copy.gen.go (13 bytes)")
	assert.True(t, strings.HasSuffix(out, "package pages\n"))

	// nil writer is a no-op
	NewArtifactLogger(nil).Log("x", []byte("y"))
}
