package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetOutputWithLevel(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	buf := &bytes.Buffer{}
	SetOutputWithLevel(buf, LevelInfo)

	logger := Logger("test")
	logger.Info("test message", "key", "value")
	logger.Debug("hidden")

	output := buf.String()
	assert.Contains(t, output, "test message")
	assert.Contains(t, output, "key=value")
	assert.Contains(t, output, "component=test")
	assert.NotContains(t, output, "hidden")
}

// TestLazyLogger_FollowsDefault 切换 default 后已有 logger 跟随新输出
func TestLazyLogger_FollowsDefault(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	logger := Logger("lazy")

	buf := &bytes.Buffer{}
	SetDefault(New(buf, LevelDebug, "json"))
	logger.Debug("after switch")

	assert.True(t, strings.HasPrefix(buf.String(), "{"))
	assert.Contains(t, buf.String(), `"component":"lazy"`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", LevelDebug, true},
		{" INFO ", LevelInfo, true},
		{"warning", LevelWarn, true},
		{"error", LevelError, true},
		{"verbose", LevelInfo, false},
		{"", LevelInfo, false},
	}

	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

// TestSetupFromEnv 级别与格式来自环境变量
func TestSetupFromEnv(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvLogFormat, "json")
	SetupFromEnv()

	ctx := context.Background()
	assert.True(t, slog.Default().Enabled(ctx, LevelWarn))
	assert.False(t, slog.Default().Enabled(ctx, LevelInfo))
	_, isJSON := slog.Default().Handler().(*slog.JSONHandler)
	assert.True(t, isJSON)

	t.Setenv(EnvLogLevel, "bogus")
	t.Setenv(EnvLogFormat, "")
	SetupFromEnv()
	assert.True(t, slog.Default().Enabled(ctx, LevelInfo))
	assert.False(t, slog.Default().Enabled(ctx, LevelDebug))
}

// TestLazyLogger_With 附加属性
func TestLazyLogger_With(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	buf := &bytes.Buffer{}
	SetOutputWithLevel(buf, LevelDebug)

	Logger("with").With("remote", "127.0.0.1:1").Debug("connected")
	assert.Contains(t, buf.String(), "component=with")
	assert.Contains(t, buf.String(), "remote=127.0.0.1:1")
}
