//go:build linux || darwin || freebsd || netbsd || openbsd

package netsignal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

// socketWatcher 基于内核通知 socket 的原生监听器
//
// 平台差异只在于如何打开 socket 以及哪些消息值得重新判定，
// 收到感兴趣的消息后重新读取接口状态，仅在在线状态变化时发出事件。
type socketWatcher struct {
	config  *WatcherConfig
	events  chan Event
	tracker *stateTracker

	// name 事件来源名称
	name string

	// open 打开并绑定通知 socket
	open func() (int, error)

	// relevant 判断消息是否可能影响在线状态
	relevant func(msg []byte) bool

	fd      int
	running atomic.Bool
	wg      sync.WaitGroup
}

func newSocketWatcher(config *WatcherConfig, name string, open func() (int, error), relevant func([]byte) bool) *socketWatcher {
	return &socketWatcher{
		config:   config,
		events:   make(chan Event, config.EventBufferSize),
		tracker:  newStateTracker(config.State),
		name:     name,
		open:     open,
		relevant: relevant,
		fd:       -1,
	}
}

// Start 打开 socket 并启动读取循环
func (w *socketWatcher) Start(_ context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return nil
	}

	fd, err := w.open()
	if err != nil {
		w.running.Store(false)
		return fmt.Errorf("open %s socket: %w", w.name, err)
	}

	// 读取超时让循环能定期检查 running 状态
	tv := unix.NsecToTimeval(int64(time.Second))
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		_ = unix.Close(fd)
		w.running.Store(false)
		return fmt.Errorf("set %s socket timeout: %w", w.name, err)
	}

	w.fd = fd
	w.tracker.reset()

	w.wg.Add(1)
	go w.readLoop()

	logger.Info("原生网络监听器已启动", "source", w.name)
	return nil
}

// Stop 停止读取循环并关闭 socket
func (w *socketWatcher) Stop() error {
	if !w.running.CompareAndSwap(true, false) {
		return nil
	}

	w.wg.Wait()
	err := unix.Close(w.fd)
	w.fd = -1

	logger.Info("原生网络监听器已停止", "source", w.name)
	return err
}

// Events 返回事件通道
func (w *socketWatcher) Events() <-chan Event {
	return w.events
}

// IsRunning 检查是否运行
func (w *socketWatcher) IsRunning() bool {
	return w.running.Load()
}

func (w *socketWatcher) readLoop() {
	defer w.wg.Done()

	buf := make([]byte, 8192)
	for w.running.Load() {
		n, err := unix.Read(w.fd, buf)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR) {
				continue
			}
			if !w.running.Load() {
				return
			}
			logger.Debug("读取通知 socket 失败", "source", w.name, "error", err)
			continue
		}

		if n <= 0 || !w.relevant(buf[:n]) {
			continue
		}

		online, changed := w.tracker.check()
		if !changed {
			continue
		}
		emit(w.events, Event{
			Online:    online,
			Source:    w.name,
			Timestamp: time.Now(),
		})
	}
}
