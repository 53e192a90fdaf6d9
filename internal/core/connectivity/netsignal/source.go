package netsignal

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dep2p/go-netstate/pkg/interfaces"
)

// Source 系统连接信号源
//
// 实现 interfaces.EventChannel：第一个订阅者出现时启动监听器，
// 最后一个订阅者离开时停止，每次 Subscribe 都对应唯一的 Unsubscribe。
type Source struct {
	config *WatcherConfig

	// newWatcher 创建监听器（测试注入）
	newWatcher func(*WatcherConfig) SystemWatcher

	mu       sync.Mutex
	handlers map[interfaces.SubscriptionToken]interfaces.SignalHandler
	watcher  SystemWatcher
	cancel   context.CancelFunc
}

var (
	_ interfaces.EventChannel         = (*Source)(nil)
	_ interfaces.InitialStateProvider = (*Source)(nil)
)

// NewSource 创建信号源
func NewSource(config *WatcherConfig) *Source {
	if config == nil {
		config = DefaultWatcherConfig()
	}
	_ = config.Validate()

	return &Source{
		config:     config,
		newWatcher: NewSystemWatcher,
		handlers:   make(map[interfaces.SubscriptionToken]interfaces.SignalHandler),
	}
}

// Subscribe 注册处理函数
func (s *Source) Subscribe(handler interfaces.SignalHandler) interfaces.SubscriptionToken {
	if handler == nil {
		return ""
	}

	token := interfaces.SubscriptionToken(uuid.NewString())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.handlers[token] = handler
	if len(s.handlers) == 1 {
		s.startLocked()
	}

	logger.Debug("新增信号订阅", "token", token, "subscribers", len(s.handlers))
	return token
}

// Unsubscribe 取消订阅，未知凭证为空操作
//
// 不等待正在进行的分发，已取出的处理函数可能在返回后被调用一次。
func (s *Source) Unsubscribe(token interfaces.SubscriptionToken) error {
	s.mu.Lock()
	if _, ok := s.handlers[token]; !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.handlers, token)

	var watcher SystemWatcher
	if len(s.handlers) == 0 {
		watcher = s.stopLocked()
	}
	remaining := len(s.handlers)
	s.mu.Unlock()

	logger.Debug("取消信号订阅", "token", token, "subscribers", remaining)

	if watcher != nil {
		return watcher.Stop()
	}
	return nil
}

// Current 返回当前接口状态作为初始提示
func (s *Source) Current() (bool, bool) {
	online, err := s.config.State()
	if err != nil {
		logger.Debug("无法读取初始网络状态", "error", err)
		return false, false
	}
	return online, true
}

// Notify 由宿主直接推送上线/离线通知
//
// 用于无法自动检测网络变化的平台，在调用方 goroutine 中同步分发。
func (s *Source) Notify(online bool) {
	logger.Debug("收到外部网络通知", "online", online)
	s.deliver(online)
}

// Subscribers 返回当前订阅数
func (s *Source) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}

// Running 监听器是否在运行
func (s *Source) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watcher != nil
}

// Close 移除全部订阅并停止监听器
func (s *Source) Close() error {
	s.mu.Lock()
	s.handlers = make(map[interfaces.SubscriptionToken]interfaces.SignalHandler)
	watcher := s.stopLocked()
	s.mu.Unlock()

	if watcher != nil {
		return watcher.Stop()
	}
	return nil
}

// ============================================================================
//                              内部方法
// ============================================================================

func (s *Source) startLocked() {
	ctx, cancel := context.WithCancel(context.Background())

	watcher := s.newWatcher(s.config)
	if err := watcher.Start(ctx); err != nil {
		logger.Warn("启动原生网络监听失败，回退到轮询", "error", err)
		watcher = NewPollingWatcher(s.config)
		if err := watcher.Start(ctx); err != nil {
			logger.Warn("启动轮询网络监听失败", "error", err)
		}
	}

	s.watcher = watcher
	s.cancel = cancel

	go s.dispatch(ctx, watcher.Events())
}

// stopLocked 取消分发循环，返回需要在锁外停止的监听器
func (s *Source) stopLocked() SystemWatcher {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	watcher := s.watcher
	s.watcher = nil
	return watcher
}

func (s *Source) dispatch(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-events:
			if ctx.Err() != nil {
				return
			}
			logger.Info("系统网络状态变化", "online", event.Online, "source", event.Source)
			s.deliver(event.Online)
		}
	}
}

func (s *Source) deliver(online bool) {
	s.mu.Lock()
	handlers := make([]interfaces.SignalHandler, 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	for _, h := range handlers {
		h(online)
	}
}
