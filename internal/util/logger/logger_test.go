package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg := ParseConfig("core/service=debug, core/stability=warn ,error", "JSON")

	assert.Equal(t, slog.LevelError, cfg.DefaultLevel)
	assert.Equal(t, slog.LevelDebug, cfg.LevelFor("core/service"))
	assert.Equal(t, slog.LevelWarn, cfg.LevelFor("core/stability"))
	assert.Equal(t, slog.LevelError, cfg.LevelFor("core/eventbus"))
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.Equal(t, slog.LevelDebug, cfg.MinLevel())
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg := ParseConfig("", "")
	assert.Equal(t, slog.LevelInfo, cfg.DefaultLevel)
	assert.Equal(t, FormatText, cfg.Format)

	// 无法识别的级别被忽略
	cfg = ParseConfig("core/service=loud,verbose", "")
	assert.Equal(t, slog.LevelInfo, cfg.DefaultLevel)
	assert.Empty(t, cfg.ComponentLevels)
}

func TestNew_ComponentLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf, ParseConfig("core/service=debug,warn", ""))

	l.With("component", "core/service").Debug("service debug")
	l.With("component", "core/stability").Info("stability info")
	l.With("component", "core/stability").Warn("stability warn")

	out := buf.String()
	assert.Contains(t, out, "service debug")
	assert.NotContains(t, out, "stability info")
	assert.Contains(t, out, "stability warn")
	assert.Contains(t, out, "level=warn")
	assert.Contains(t, out, "ts=")
}

func TestSetup(t *testing.T) {
	t.Setenv("NETHEALTH_LOG_LEVEL", "info")
	t.Setenv("NETHEALTH_LOG_FORMAT", "json")

	prev := slog.Default()
	defer slog.SetDefault(prev)

	buf := &bytes.Buffer{}
	Setup(buf)
	slog.Default().With("component", "test").Info("hello", "key", "value")

	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)
	assert.Contains(t, line, `"msg":"hello"`)
	assert.Contains(t, line, `"component":"test"`)
}
