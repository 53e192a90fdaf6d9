package netsignal

import (
	"context"
	"sync"
	"sync/atomic"
)

// PollingWatcher 基于轮询的网络变化监听器
//
// 跨平台实现，定期读取接口状态，与上一次结果比较。
type PollingWatcher struct {
	config  *WatcherConfig
	events  chan Event
	tracker *stateTracker

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewPollingWatcher 创建轮询监听器
func NewPollingWatcher(config *WatcherConfig) *PollingWatcher {
	if config == nil {
		config = DefaultWatcherConfig()
	}
	_ = config.Validate()

	return &PollingWatcher{
		config:  config,
		events:  make(chan Event, config.EventBufferSize),
		tracker: newStateTracker(config.State),
	}
}

// Start 启动监听
func (w *PollingWatcher) Start(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return nil
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.tracker.reset()

	// ticker 在返回前创建，保证首个周期从 Start 开始计算
	ticker := w.config.Clock.Ticker(w.config.PollInterval)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.check()
			}
		}
	}()

	logger.Info("轮询网络监听器已启动", "poll_interval", w.config.PollInterval)
	return nil
}

// Stop 停止监听
func (w *PollingWatcher) Stop() error {
	if !w.running.CompareAndSwap(true, false) {
		return nil
	}

	w.cancel()
	w.wg.Wait()

	logger.Info("轮询网络监听器已停止")
	return nil
}

// Events 返回事件通道
func (w *PollingWatcher) Events() <-chan Event {
	return w.events
}

// IsRunning 检查是否运行
func (w *PollingWatcher) IsRunning() bool {
	return w.running.Load()
}

func (w *PollingWatcher) check() {
	online, changed := w.tracker.check()
	if !changed {
		return
	}
	emit(w.events, Event{
		Online:    online,
		Source:    "polling",
		Timestamp: w.config.Clock.Now(),
	})
}
