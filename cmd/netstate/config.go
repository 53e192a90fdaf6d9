package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dep2p/go-netstate/internal/core/connectivity"
	"github.com/dep2p/go-netstate/internal/core/connectivity/netsignal"
	"github.com/dep2p/go-netstate/internal/server"
)

// 轮询模式
const (
	pollingAuto = "auto"
	pollingOn   = "on"
	pollingOff  = "off"
)

// 环境变量（均使用 NETSTATE_ 前缀）
const (
	envPrefix        = "NETSTATE_"
	envPolling       = "POLLING"
	envPollingURL    = "POLLING_URL"
	envTimeout       = "POLLING_TIMEOUT"
	envInterval      = "POLLING_INTERVAL"
	envAddr          = "ADDR"
	envOnlineText    = "ONLINE_TEXT"
	envOfflineText   = "OFFLINE_TEXT"
	envLogFile       = "LOG_FILE"
	envLogLevel      = "LOG_LEVEL"
	envSystemWatcher = "SYSTEM_WATCHER"
)

// ============================================================================
//                              配置结构
// ============================================================================

// Duration 支持 "5s" 形式的时长
type Duration time.Duration

// UnmarshalJSON 解析字符串或纳秒整数
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return d.parse(s)
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid duration %s", data)
	}
	*d = Duration(n)
	return nil
}

// MarshalJSON 输出字符串形式
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalYAML 解析字符串时长
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.parse(node.Value)
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config CLI 配置
type Config struct {
	// Polling 轮询模式：auto / on / off
	Polling string `json:"polling" yaml:"polling"`

	URL      string   `json:"url" yaml:"url"`
	Timeout  Duration `json:"timeout" yaml:"timeout"`
	Interval Duration `json:"interval" yaml:"interval"`

	// SystemWatcher 为 nil 时启用系统网络事件监听
	SystemWatcher *bool `json:"system_watcher" yaml:"system_watcher"`

	// Addr 状态服务监听地址，为空时不启动
	Addr string `json:"addr" yaml:"addr"`

	OnlineText  string `json:"online_text" yaml:"online_text"`
	OfflineText string `json:"offline_text" yaml:"offline_text"`

	LogFile  string `json:"log_file" yaml:"log_file"`
	LogLevel string `json:"log_level" yaml:"log_level"`
}

// defaultConfig 返回默认配置
func defaultConfig() *Config {
	return &Config{
		Polling:     pollingAuto,
		OnlineText:  "online",
		OfflineText: "offline",
		LogLevel:    "info",
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.Polling {
	case pollingAuto, pollingOn, pollingOff:
	case "":
		c.Polling = pollingAuto
	default:
		return fmt.Errorf("invalid polling mode %q (want auto, on or off)", c.Polling)
	}
	return nil
}

// connectivityConfig 转换为监控器配置
func (c *Config) connectivityConfig() *connectivity.Config {
	cfg := connectivity.DefaultConfig()

	if c.Polling == pollingOff {
		return cfg.WithPolling(false)
	}

	override := connectivity.PollingOverride{
		URL:      c.URL,
		Timeout:  time.Duration(c.Timeout),
		Interval: time.Duration(c.Interval),
	}
	if c.Polling == pollingOn {
		enabled := true
		override.Enabled = &enabled
	}
	if override == (connectivity.PollingOverride{}) {
		return cfg.WithPolling(true)
	}
	return cfg.WithPollingOverride(override)
}

// watcherConfig 转换为系统监听配置
func (c *Config) watcherConfig() *netsignal.WatcherConfig {
	cfg := netsignal.DefaultWatcherConfig()
	if c.SystemWatcher != nil {
		cfg.Enabled = *c.SystemWatcher
	}
	return cfg
}

// serverConfig 转换为状态服务配置，未设置地址时返回 nil
func (c *Config) serverConfig() *server.Config {
	if c.Addr == "" {
		return nil
	}
	return &server.Config{Addr: c.Addr}
}

// ============================================================================
//                              配置加载
// ============================================================================

// loadConfigFile 从文件加载配置，.yaml/.yml 按 YAML 解析，其余按 JSON
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: 用户指定的配置文件路径是预期行为
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides 应用环境变量覆盖
//
// 环境变量优先级高于配置文件，但低于命令行参数。
// 无法解析的值被忽略。
func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	env := func(name string) string {
		return strings.TrimSpace(getenv(envPrefix + name))
	}

	if v := env(envPolling); v != "" {
		cfg.Polling = strings.ToLower(v)
	}
	if v := env(envPollingURL); v != "" {
		cfg.URL = v
	}
	if v := env(envTimeout); v != "" {
		_ = cfg.Timeout.parse(v)
	}
	if v := env(envInterval); v != "" {
		_ = cfg.Interval.parse(v)
	}
	if v := env(envAddr); v != "" {
		cfg.Addr = v
	}
	if v := env(envOnlineText); v != "" {
		cfg.OnlineText = v
	}
	if v := env(envOfflineText); v != "" {
		cfg.OfflineText = v
	}
	if v := env(envLogFile); v != "" {
		cfg.LogFile = v
	}
	if v := env(envLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := env(envSystemWatcher); v != "" {
		enabled := parseBool(v)
		cfg.SystemWatcher = &enabled
	}
}

// ============================================================================
//                              命令行参数
// ============================================================================

// flags 命令行参数
type flags struct {
	config      string
	url         string
	interval    time.Duration
	timeout     time.Duration
	polling     string
	addr        string
	onlineText  string
	offlineText string
	logFile     string
	logLevel    string
	version     bool
}

// newFlagSet 创建命令行参数集
func newFlagSet(name string) (*flag.FlagSet, *flags) {
	f := &flags{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	fs.StringVar(&f.config, "config", "", "配置文件路径（JSON 或 YAML）")
	fs.StringVar(&f.url, "url", "", "探测地址")
	fs.DurationVar(&f.interval, "interval", 0, "探测间隔")
	fs.DurationVar(&f.timeout, "timeout", 0, "单次探测超时")
	fs.StringVar(&f.polling, "polling", "", "轮询模式 (auto/on/off)")
	fs.StringVar(&f.addr, "addr", "", "状态服务监听地址（为空不启动）")
	fs.StringVar(&f.onlineText, "online-text", "", "在线时输出的文本")
	fs.StringVar(&f.offlineText, "offline-text", "", "离线时输出的文本")
	fs.StringVar(&f.logFile, "log", "", "日志文件路径")
	fs.StringVar(&f.logLevel, "log-level", "", "日志级别 (debug/info/warn/error)")
	fs.BoolVar(&f.version, "version", false, "显示版本信息")

	return fs, f
}

// applyFlags 应用显式设置的命令行参数（最高优先级）
func applyFlags(cfg *Config, fs *flag.FlagSet, f *flags) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "url":
			cfg.URL = f.url
		case "interval":
			cfg.Interval = Duration(f.interval)
		case "timeout":
			cfg.Timeout = Duration(f.timeout)
		case "polling":
			cfg.Polling = strings.ToLower(f.polling)
		case "addr":
			cfg.Addr = f.addr
		case "online-text":
			cfg.OnlineText = f.onlineText
		case "offline-text":
			cfg.OfflineText = f.offlineText
		case "log":
			cfg.LogFile = f.logFile
		case "log-level":
			cfg.LogLevel = f.logLevel
		}
	})
}

// ============================================================================
//                              辅助函数
// ============================================================================

// parseBool 解析布尔值字符串
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
