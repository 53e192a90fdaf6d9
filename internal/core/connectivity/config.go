package connectivity

import (
	"runtime"
	"time"

	"github.com/dep2p/go-netstate/internal/core/connectivity/netsignal"
)

// ============================================================================
//                              轮询配置
// ============================================================================

// 默认轮询参数
const (
	DefaultPollingURL      = "https://ipv4.icanhazip.com/"
	DefaultPollingTimeout  = 5 * time.Second
	DefaultPollingInterval = 5 * time.Second
)

// pollingFallback 构建时确定的平台启发式结果，运行期不再重新计算
var pollingFallback = netsignal.NeedsPollingFallback(runtime.GOOS)

// PollingConfig 生效的轮询配置
//
// 在 NewMonitor 中合并完成后不再改变。
type PollingConfig struct {
	// Enabled 是否启用轮询
	Enabled bool `json:"enabled"`

	// URL 探测地址
	URL string `json:"url"`

	// Timeout 单次探测超时
	Timeout time.Duration `json:"timeout"`

	// Interval 探测间隔
	Interval time.Duration `json:"interval"`
}

// PollingOverride 调用方提供的覆盖项，零值字段保留默认值
type PollingOverride struct {
	// Enabled 为 nil 时沿用平台默认
	Enabled *bool

	URL      string
	Timeout  time.Duration
	Interval time.Duration
}

// Polling 轮询设置
//
// 对应三种取值：零值表示"使用默认"，Disabled 表示关闭，
// Override 非 nil 表示与默认配置合并。Disabled 优先于 Override。
type Polling struct {
	Disabled bool
	Override *PollingOverride
}

// DefaultPollingConfig 返回当前平台的默认轮询配置
//
// 每次调用返回新值，调用方修改不会影响默认值。
func DefaultPollingConfig() PollingConfig {
	return PollingConfig{
		Enabled:  pollingFallback,
		URL:      DefaultPollingURL,
		Timeout:  DefaultPollingTimeout,
		Interval: DefaultPollingInterval,
	}
}

// DefaultPollingConfigFor 返回指定平台的默认轮询配置
func DefaultPollingConfigFor(goos string) PollingConfig {
	cfg := DefaultPollingConfig()
	cfg.Enabled = netsignal.NeedsPollingFallback(goos)
	return cfg
}

// ResolvePollingConfig 合并默认配置与轮询设置
//
// 纯函数：不修改 defaults，也不修改 p.Override。
// URL、超时与间隔不做校验，非法值只会体现为探测失败。
func ResolvePollingConfig(defaults PollingConfig, p Polling) PollingConfig {
	resolved := defaults

	switch {
	case p.Disabled:
		resolved.Enabled = false
	case p.Override != nil:
		o := p.Override
		if o.Enabled != nil {
			resolved.Enabled = *o.Enabled
		}
		if o.URL != "" {
			resolved.URL = o.URL
		}
		if o.Timeout != 0 {
			resolved.Timeout = o.Timeout
		}
		if o.Interval != 0 {
			resolved.Interval = o.Interval
		}
	}

	return resolved
}

// ============================================================================
//                              监控配置
// ============================================================================

// Config 监控器配置
type Config struct {
	// Polling 轮询设置
	Polling Polling

	// Platform 用于默认轮询启发式的平台名
	// 为空时使用 runtime.GOOS
	Platform string

	// OnChange 状态变更回调，每次被接受的变更调用一次
	OnChange func(online bool)
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Platform: runtime.GOOS,
	}
}

// Validate 补全缺省值
func (c *Config) Validate() error {
	if c.Platform == "" {
		c.Platform = runtime.GOOS
	}
	return nil
}

// defaults 返回该配置对应平台的默认轮询配置
func (c *Config) defaults() PollingConfig {
	if c.Platform == runtime.GOOS {
		return DefaultPollingConfig()
	}
	return DefaultPollingConfigFor(c.Platform)
}

// WithPolling 设置轮询开关
func (c *Config) WithPolling(enabled bool) *Config {
	c.Polling = Polling{Disabled: !enabled}
	return c
}

// WithPollingOverride 设置轮询覆盖项
func (c *Config) WithPollingOverride(o PollingOverride) *Config {
	c.Polling = Polling{Override: &o}
	return c
}

// WithOnChange 设置状态变更回调
func (c *Config) WithOnChange(fn func(online bool)) *Config {
	c.OnChange = fn
	return c
}

// WithPlatform 设置平台名
func (c *Config) WithPlatform(goos string) *Config {
	c.Platform = goos
	return c
}
