package netsignal

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
)

// ============================================================================
//                              SystemWatcher 接口
// ============================================================================

// SystemWatcher 系统网络变化监听器
type SystemWatcher interface {
	// Start 启动监听
	Start(ctx context.Context) error

	// Stop 停止监听
	Stop() error

	// Events 返回事件通道
	// 只在在线状态发生变化时发送
	Events() <-chan Event

	// IsRunning 检查是否正在运行
	IsRunning() bool
}

// Event 在线状态变化事件
type Event struct {
	// Online 变化后的状态
	Online bool

	// Source 产生事件的监听器（netlink / route / polling / notify）
	Source string

	// Timestamp 事件时间
	Timestamp time.Time
}

// ============================================================================
//                              WatcherConfig
// ============================================================================

// WatcherConfig 监听器配置
type WatcherConfig struct {
	// Enabled 是否启用系统监听
	// 关闭后只能通过 Source.Notify 注入信号
	// 默认: true
	Enabled bool

	// PreferNative 是否优先使用平台原生监听
	// 默认: true
	PreferNative bool

	// PollInterval 轮询监听器的扫描间隔
	// 默认: 2s
	PollInterval time.Duration

	// EventBufferSize 事件缓冲区大小
	// 默认: 16
	EventBufferSize int

	// Clock 轮询使用的时钟（测试注入）
	Clock clock.Clock

	// State 在线状态读取函数（测试注入）
	// 默认: SystemOnline
	State StateFunc
}

// DefaultWatcherConfig 返回默认配置
func DefaultWatcherConfig() *WatcherConfig {
	return &WatcherConfig{
		Enabled:         true,
		PreferNative:    true,
		PollInterval:    2 * time.Second,
		EventBufferSize: 16,
	}
}

// Validate 修正无效配置
func (c *WatcherConfig) Validate() error {
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.EventBufferSize <= 0 {
		c.EventBufferSize = 16
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	if c.State == nil {
		c.State = SystemOnline
	}
	return nil
}

// ============================================================================
//                              NoOpWatcher
// ============================================================================

// NoOpWatcher 空操作监听器
type NoOpWatcher struct {
	events chan Event
}

// NewNoOpWatcher 创建空操作监听器
func NewNoOpWatcher() *NoOpWatcher {
	return &NoOpWatcher{events: make(chan Event)}
}

// Start 启动（空操作）
func (w *NoOpWatcher) Start(_ context.Context) error { return nil }

// Stop 停止（空操作）
func (w *NoOpWatcher) Stop() error { return nil }

// Events 返回事件通道（永远不会有事件）
func (w *NoOpWatcher) Events() <-chan Event { return w.events }

// IsRunning 检查是否运行
func (w *NoOpWatcher) IsRunning() bool { return false }

// ============================================================================
//                              工厂函数
// ============================================================================

// NewSystemWatcher 根据配置和平台选择监听器
//
// 优先使用平台原生（事件驱动）实现；否则回退到轮询实现。
func NewSystemWatcher(config *WatcherConfig) SystemWatcher {
	if config == nil {
		config = DefaultWatcherConfig()
	}
	_ = config.Validate()

	if !config.Enabled {
		return NewNoOpWatcher()
	}

	if config.PreferNative {
		if native := newNativeSystemWatcher(config); native != nil {
			return native
		}
	}

	return NewPollingWatcher(config)
}

// emit 非阻塞发送事件，缓冲区满时丢弃
func emit(events chan Event, event Event) {
	select {
	case events <- event:
		logger.Debug("发送网络事件", "online", event.Online, "source", event.Source)
	default:
		logger.Warn("网络事件缓冲区已满，丢弃事件", "online", event.Online, "source", event.Source)
	}
}
