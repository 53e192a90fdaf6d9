package netstate

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-netstate/internal/core/connectivity"
	"github.com/dep2p/go-netstate/pkg/interfaces"
)

// PollingConfig 生效的轮询配置
type PollingConfig = connectivity.PollingConfig

// PollingOverride 轮询覆盖项，零值字段保留默认值
type PollingOverride = connectivity.PollingOverride

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	config *connectivity.Config

	prober    interfaces.ReachabilityProber
	source    interfaces.EventChannel
	scheduler interfaces.Scheduler

	registerer prometheus.Registerer
	instance   string

	// systemWatcher 为 nil 时使用默认（启用）
	systemWatcher *bool
}

func newOptions() *options {
	return &options{
		config: connectivity.DefaultConfig(),
	}
}

// WithPolling 开启或关闭轮询
//
// true 使用默认轮询配置，是否启用仍按平台决定；false 强制关闭。
// 需要在任何平台上强制轮询时使用 WithPollingOverride 并设置 Enabled。
func WithPolling(enabled bool) Option {
	return func(o *options) error {
		o.config.WithPolling(enabled)
		return nil
	}
}

// WithPollingOverride 覆盖轮询参数
//
// 参数不做校验，非法地址或超时只会体现为探测失败。
func WithPollingOverride(override PollingOverride) Option {
	return func(o *options) error {
		o.config.WithPollingOverride(override)
		return nil
	}
}

// WithOnChange 设置状态变更回调
//
// 回调在状态写入之前同步调用，每次被接受的变更调用一次。
// 回调中不能调用 GoOnline/GoOffline/Stop。
func WithOnChange(fn func(online bool)) Option {
	return func(o *options) error {
		o.config.WithOnChange(fn)
		return nil
	}
}

// WithPlatform 指定用于默认轮询启发式的平台名
func WithPlatform(goos string) Option {
	return func(o *options) error {
		if goos == "" {
			return fmt.Errorf("%w: empty platform", ErrInvalidOption)
		}
		o.config.WithPlatform(goos)
		return nil
	}
}

// WithProber 使用自定义可达性探测器
func WithProber(p interfaces.ReachabilityProber) Option {
	return func(o *options) error {
		if p == nil {
			return fmt.Errorf("%w: nil prober", ErrInvalidOption)
		}
		o.prober = p
		return nil
	}
}

// WithSignalSource 使用自定义系统事件源
//
// 事件源实现 interfaces.InitialStateProvider 时用于读取初始状态。
func WithSignalSource(ch interfaces.EventChannel) Option {
	return func(o *options) error {
		if ch == nil {
			return fmt.Errorf("%w: nil signal source", ErrInvalidOption)
		}
		o.source = ch
		return nil
	}
}

// WithScheduler 使用自定义周期任务调度器
func WithScheduler(s interfaces.Scheduler) Option {
	return func(o *options) error {
		if s == nil {
			return fmt.Errorf("%w: nil scheduler", ErrInvalidOption)
		}
		o.scheduler = s
		return nil
	}
}

// WithMetrics 向 reg 注册 Prometheus 指标
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) error {
		if reg == nil {
			return fmt.Errorf("%w: nil registerer", ErrInvalidOption)
		}
		o.registerer = reg
		return nil
	}
}

// WithInstance 为指标附加 instance 标签
//
// 多个检测器共享同一 Registerer 时，各自使用不同的名称才能得到独立的序列；
// 未设置时共享同一组序列。
func WithInstance(name string) Option {
	return func(o *options) error {
		if name == "" {
			return fmt.Errorf("%w: empty instance name", ErrInvalidOption)
		}
		o.instance = name
		return nil
	}
}

// WithSystemWatcher 开启或关闭操作系统网络事件监听
//
// 关闭后只能通过 Detector.Notify 推送系统事件。
// 与 WithSignalSource 同时使用时本选项无效。
func WithSystemWatcher(enable bool) Option {
	return func(o *options) error {
		o.systemWatcher = &enable
		return nil
	}
}
