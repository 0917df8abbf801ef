package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultWriter(t *testing.T) {
	cfg := Config{
		Level:  slog.LevelInfo,
		Format: "json",
	}

	logger := New(cfg)
	assert.NotNil(t, logger)
	assert.NotNil(t, logger.Logger)
}

func TestNew_CustomWriter(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{
		Level:  slog.LevelInfo,
		Format: "json",
		Writer: &buf,
	}

	logger := New(cfg)
	logger.Info("test message")

	assert.Contains(t, buf.String(), "test message")
	assert.Contains(t, buf.String(), "\"level\":\"INFO\"")
}

func TestNew_FormatAutoDetection(t *testing.T) {
	var buf bytes.Buffer

	// Production defaults to JSON.
	prod := New(Config{Environment: "production", Writer: &buf})
	prod.Info("prod message")
	assert.Contains(t, buf.String(), "\"msg\":\"prod message\"")

	// Development defaults to pretty (no JSON keys).
	buf.Reset()
	dev := New(Config{Environment: "development", Writer: &buf})
	dev.Info("dev message")
	assert.Contains(t, buf.String(), "dev message")
	assert.NotContains(t, buf.String(), "\"msg\"")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestPrettyHandler_Attributes(t *testing.T) {
	var buf bytes.Buffer
	handler := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	log := slog.New(handler)

	log.Info("created", "book_id", "book-123", "title", "The Hobbit")

	out := buf.String()
	assert.Contains(t, out, "created")
	assert.Contains(t, out, "book_id=book-123")
	assert.Contains(t, out, "title=The Hobbit")
}

func TestPrettyHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	handler := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	log := slog.New(handler).With("request_id", "req-1")

	log.Warn("slow query")

	out := buf.String()
	assert.Contains(t, out, "request_id=req-1")
	assert.Contains(t, out, "slow query")
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	handler := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})

	require.False(t, handler.Enabled(context.Background(), slog.LevelDebug))
	require.False(t, handler.Enabled(context.Background(), slog.LevelInfo))
	require.True(t, handler.Enabled(context.Background(), slog.LevelWarn))
	require.True(t, handler.Enabled(context.Background(), slog.LevelError))
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: "json", Writer: &buf})

	log.WithError(assert.AnError).Error("operation failed")

	assert.True(t, strings.Contains(buf.String(), "assert.AnError"))
}
