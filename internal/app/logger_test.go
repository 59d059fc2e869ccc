package app

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLoggerLevel(t *testing.T) {
	ctx := context.Background()

	info := NewLogger(&Config{LogLevel: "info"})
	assert.False(t, info.Enabled(ctx, slog.LevelDebug))
	assert.True(t, info.Enabled(ctx, slog.LevelInfo))

	debug := NewLogger(&Config{LogLevel: "debug"})
	assert.True(t, debug.Enabled(ctx, slog.LevelDebug))

	errOnly := NewLogger(&Config{LogLevel: "error"})
	assert.False(t, errOnly.Enabled(ctx, slog.LevelWarn))

	// Unknown levels fall back to info rather than going silent.
	fallback := NewLogger(&Config{LogLevel: "shouting"})
	assert.True(t, fallback.Enabled(ctx, slog.LevelInfo))
}

func TestNewLoggerHandlerSelection(t *testing.T) {
	pretty := NewLogger(&Config{LogFormat: "pretty"})
	assert.IsType(t, &slog.TextHandler{}, pretty.Handler())

	json := NewLogger(&Config{LogFormat: "json"})
	assert.IsType(t, &slog.JSONHandler{}, json.Handler())

	// Production emits JSON regardless of the format knob.
	prod := NewLogger(&Config{AppEnv: "production", LogFormat: "pretty"})
	assert.IsType(t, &slog.JSONHandler{}, prod.Handler())
}
