package mcp

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/felixgeelhaar/carecal/adapter/cli"
	"github.com/felixgeelhaar/carecal/pkg/config"
	"github.com/felixgeelhaar/mcp-go/middleware"
	"github.com/stretchr/testify/assert"
)

func TestServe_RequiresDependencies(t *testing.T) {
	ctx := context.Background()
	assert.EqualError(t, Serve(ctx, nil, &cli.App{}, nil), "config is required")
	assert.EqualError(t, Serve(ctx, &config.Config{}, nil, nil), "CLI app is required")
}

func TestMCPLogger_ForwardsFields(t *testing.T) {
	var buf bytes.Buffer
	l := mcpLogger{logger: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}

	l.Info("tool called", middleware.Field{Key: "tool", Value: "calendar.list"})
	l.Warn("slow", middleware.Field{Key: "ms", Value: 250})

	out := buf.String()
	assert.Contains(t, out, "tool=calendar.list")
	assert.Contains(t, out, "ms=250")
}

func TestFieldsToArgs(t *testing.T) {
	args := fieldsToArgs([]middleware.Field{{Key: "a", Value: 1}, {Key: "b", Value: "x"}})
	assert.Equal(t, []any{"a", 1, "b", "x"}, args)
	assert.Empty(t, fieldsToArgs(nil))
}
