package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-netstate/internal/core/connectivity"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, pollingAuto, cfg.Polling)
	assert.Equal(t, "online", cfg.OnlineText)
	assert.Equal(t, "offline", cfg.OfflineText)
	assert.Nil(t, cfg.serverConfig())
	assert.True(t, cfg.watcherConfig().Enabled)
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, pollingAuto, cfg.Polling)

	cfg.Polling = "sometimes"
	assert.Error(t, cfg.Validate())
}

func TestLoadConfigFile_JSON(t *testing.T) {
	path := writeFile(t, "netstate.json", `{
		"polling": "on",
		"url": "http://probe.example/",
		"timeout": "2s",
		"interval": 3000000000,
		"system_watcher": false,
		"online_text": "up"
	}`)

	cfg := defaultConfig()
	require.NoError(t, loadConfigFile(path, cfg))

	assert.Equal(t, pollingOn, cfg.Polling)
	assert.Equal(t, "http://probe.example/", cfg.URL)
	assert.Equal(t, Duration(2*time.Second), cfg.Timeout)
	assert.Equal(t, Duration(3*time.Second), cfg.Interval)
	require.NotNil(t, cfg.SystemWatcher)
	assert.False(t, *cfg.SystemWatcher)
	assert.Equal(t, "up", cfg.OnlineText)
	// 未出现的字段保留默认值
	assert.Equal(t, "offline", cfg.OfflineText)
}

func TestLoadConfigFile_YAML(t *testing.T) {
	path := writeFile(t, "netstate.yaml", `
polling: off
interval: 10s
addr: 127.0.0.1:9000
offline_text: down
`)

	cfg := defaultConfig()
	require.NoError(t, loadConfigFile(path, cfg))

	assert.Equal(t, pollingOff, cfg.Polling)
	assert.Equal(t, Duration(10*time.Second), cfg.Interval)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "down", cfg.OfflineText)
	require.NotNil(t, cfg.serverConfig())
	assert.Equal(t, "127.0.0.1:9000", cfg.serverConfig().Addr)
}

func TestLoadConfigFile_Errors(t *testing.T) {
	cfg := defaultConfig()
	assert.Error(t, loadConfigFile(filepath.Join(t.TempDir(), "missing.json"), cfg))
	assert.Error(t, loadConfigFile(writeFile(t, "bad.json", "{"), cfg))
	assert.Error(t, loadConfigFile(writeFile(t, "bad.yaml", "interval: soon"), cfg))
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()
	applyEnvOverrides(cfg, envMap(map[string]string{
		"NETSTATE_POLLING":          "ON",
		"NETSTATE_POLLING_URL":      "http://env.example/",
		"NETSTATE_POLLING_TIMEOUT":  "1s",
		"NETSTATE_POLLING_INTERVAL": "not-a-duration",
		"NETSTATE_ADDR":             ":7000",
		"NETSTATE_SYSTEM_WATCHER":   "no",
		"NETSTATE_LOG_LEVEL":        "debug",
	}))

	assert.Equal(t, pollingOn, cfg.Polling)
	assert.Equal(t, "http://env.example/", cfg.URL)
	assert.Equal(t, Duration(time.Second), cfg.Timeout)
	assert.Equal(t, Duration(0), cfg.Interval)
	assert.Equal(t, ":7000", cfg.Addr)
	require.NotNil(t, cfg.SystemWatcher)
	assert.False(t, *cfg.SystemWatcher)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestBuildConfig_Priority(t *testing.T) {
	path := writeFile(t, "netstate.yaml", "url: http://file.example/\nonline_text: file\noffline_text: file\n")

	fs, f := newFlagSet("test")
	require.NoError(t, fs.Parse([]string{"-config", path, "-online-text", "flag"}))

	cfg, err := buildConfig(fs, f, envMap(map[string]string{
		"NETSTATE_ONLINE_TEXT":  "env",
		"NETSTATE_OFFLINE_TEXT": "env",
	}))
	require.NoError(t, err)

	assert.Equal(t, "http://file.example/", cfg.URL)
	assert.Equal(t, "flag", cfg.OnlineText)
	assert.Equal(t, "env", cfg.OfflineText)
}

func TestBuildConfig_Invalid(t *testing.T) {
	fs, f := newFlagSet("test")
	require.NoError(t, fs.Parse([]string{"-polling", "maybe"}))

	_, err := buildConfig(fs, f, envMap(nil))
	assert.Error(t, err)
}

func TestConnectivityConfig(t *testing.T) {
	t.Run("关闭", func(t *testing.T) {
		cfg := &Config{Polling: pollingOff, URL: "http://x"}
		resolved := resolve(cfg, "windows")
		assert.False(t, resolved.Enabled)
	})

	t.Run("自动", func(t *testing.T) {
		cfg := &Config{Polling: pollingAuto}
		assert.True(t, resolve(cfg, "windows").Enabled)
		assert.False(t, resolve(cfg, "linux").Enabled)
		assert.Equal(t, connectivity.DefaultPollingConfig().URL, resolve(cfg, "linux").URL)
	})

	t.Run("强制开启", func(t *testing.T) {
		cfg := &Config{Polling: pollingOn, Interval: Duration(time.Minute)}
		resolved := resolve(cfg, "linux")
		assert.True(t, resolved.Enabled)
		assert.Equal(t, time.Minute, resolved.Interval)
		assert.Equal(t, connectivity.DefaultPollingTimeout, resolved.Timeout)
	})

	t.Run("自动且覆盖地址", func(t *testing.T) {
		cfg := &Config{Polling: pollingAuto, URL: "http://x"}
		resolved := resolve(cfg, "darwin")
		assert.False(t, resolved.Enabled)
		assert.Equal(t, "http://x", resolved.URL)
	})
}

func resolve(cfg *Config, goos string) connectivity.PollingConfig {
	return connectivity.ResolvePollingConfig(
		connectivity.DefaultPollingConfigFor(goos),
		cfg.connectivityConfig().Polling,
	)
}
