package connectivity

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultPollingConfig 默认轮询参数
func TestDefaultPollingConfig(t *testing.T) {
	cfg := DefaultPollingConfig()

	assert.Equal(t, DefaultPollingURL, cfg.URL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Interval)
	assert.Equal(t, pollingFallback, cfg.Enabled)
}

// TestDefaultPollingConfigFor 平台启发式决定默认是否轮询
func TestDefaultPollingConfigFor(t *testing.T) {
	assert.True(t, DefaultPollingConfigFor("windows").Enabled)
	assert.True(t, DefaultPollingConfigFor("android").Enabled)
	assert.False(t, DefaultPollingConfigFor("linux").Enabled)
	assert.False(t, DefaultPollingConfigFor("darwin").Enabled)
}

// TestResolvePollingConfig 三种轮询设置的合并结果
func TestResolvePollingConfig(t *testing.T) {
	defaults := PollingConfig{
		Enabled:  true,
		URL:      "https://default.example/",
		Timeout:  5 * time.Second,
		Interval: 5 * time.Second,
	}
	off := false

	tests := []struct {
		name    string
		polling Polling
		want    PollingConfig
	}{
		{
			name:    "零值使用默认",
			polling: Polling{},
			want:    defaults,
		},
		{
			name:    "关闭只改变 Enabled",
			polling: Polling{Disabled: true},
			want: PollingConfig{
				Enabled:  false,
				URL:      defaults.URL,
				Timeout:  defaults.Timeout,
				Interval: defaults.Interval,
			},
		},
		{
			name: "覆盖项合并非零字段",
			polling: Polling{Override: &PollingOverride{
				URL:      "http://x",
				Timeout:  10 * time.Millisecond,
				Interval: time.Second,
			}},
			want: PollingConfig{
				Enabled:  true,
				URL:      "http://x",
				Timeout:  10 * time.Millisecond,
				Interval: time.Second,
			},
		},
		{
			name:    "覆盖项显式关闭",
			polling: Polling{Override: &PollingOverride{Enabled: &off, URL: "http://y"}},
			want: PollingConfig{
				Enabled:  false,
				URL:      "http://y",
				Timeout:  defaults.Timeout,
				Interval: defaults.Interval,
			},
		},
		{
			name: "Disabled 优先于覆盖项",
			polling: Polling{
				Disabled: true,
				Override: &PollingOverride{URL: "http://z"},
			},
			want: PollingConfig{
				Enabled:  false,
				URL:      defaults.URL,
				Timeout:  defaults.Timeout,
				Interval: defaults.Interval,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePollingConfig(defaults, tt.polling))
		})
	}
}

// TestResolvePollingConfig_Pure 相同输入得到相同输出，且不修改输入
func TestResolvePollingConfig_Pure(t *testing.T) {
	defaults := DefaultPollingConfigFor("windows")
	snapshot := defaults
	override := &PollingOverride{URL: "http://x", Interval: time.Second}
	overrideSnapshot := *override

	first := ResolvePollingConfig(defaults, Polling{Override: override})
	second := ResolvePollingConfig(defaults, Polling{Override: override})

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, defaults)
	assert.Equal(t, overrideSnapshot, *override)
	assert.Equal(t, DefaultPollingConfigFor("windows"), defaults)
}

// TestConfig_Validate 补全平台名
func TestConfig_Validate(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, runtime.GOOS, cfg.Platform)

	cfg = DefaultConfig().WithPlatform("windows")
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "windows", cfg.Platform)
}

// TestConfig_Builders 链式设置
func TestConfig_Builders(t *testing.T) {
	cfg := DefaultConfig().WithPolling(false)
	assert.True(t, cfg.Polling.Disabled)

	cfg.WithPolling(true)
	assert.Equal(t, Polling{}, cfg.Polling)

	cfg.WithPollingOverride(PollingOverride{URL: "http://x"})
	require.NotNil(t, cfg.Polling.Override)
	assert.Equal(t, "http://x", cfg.Polling.Override.URL)

	called := false
	cfg.WithOnChange(func(bool) { called = true })
	cfg.OnChange(true)
	assert.True(t, called)
}
