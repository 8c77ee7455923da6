// ABOUTME: Tests for the colorized slog handler
// ABOUTME: Checks level filtering, group prefixes and attr rendering

package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/2389/booknotes/internal/config"
)

func TestColorHandler_GroupsAndAttrs(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })
	var buf bytes.Buffer
	logger := setupLogger(config.LoggingConfig{Level: "info", Format: "text"}, &buf)

	logger.Debug("hidden")
	logger.With("component", "store").WithGroup("db").With("path", "books.db").
		Info("opened", "conns", 1, slog.Group("pragma", "wal", true))

	line := strings.TrimSpace(buf.String())
	assert.NotContains(t, line, "hidden")
	assert.Contains(t, line, "INF opened")
	assert.Contains(t, line, " component=store db.path=books.db db.conns=1 db.pragma.wal=true")
}

func TestSetupLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(config.LoggingConfig{Level: "debug", Format: "json"}, &buf)

	logger.Debug("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}
