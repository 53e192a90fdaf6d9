package netsignal

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeState 可控的接口状态
type fakeState struct {
	online atomic.Bool
}

func (f *fakeState) read() (bool, error) {
	return f.online.Load(), nil
}

func newTestConfig(mock *clock.Mock, state *fakeState) *WatcherConfig {
	cfg := DefaultWatcherConfig()
	cfg.PreferNative = false
	cfg.PollInterval = time.Second
	cfg.Clock = mock
	cfg.State = state.read
	return cfg
}

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("等待事件超时")
		return Event{}
	}
}

// TestPollingWatcher_EmitsOnChange 状态变化时发送事件
func TestPollingWatcher_EmitsOnChange(t *testing.T) {
	mock := clock.NewMock()
	state := &fakeState{}
	state.online.Store(true)

	w := NewPollingWatcher(newTestConfig(mock, state))
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()
	assert.True(t, w.IsRunning())

	// 无变化不发送
	mock.Add(time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Len(t, w.Events(), 0)

	state.online.Store(false)
	mock.Add(time.Second)
	ev := receive(t, w.Events())
	assert.False(t, ev.Online)
	assert.Equal(t, "polling", ev.Source)

	state.online.Store(true)
	mock.Add(time.Second)
	ev = receive(t, w.Events())
	assert.True(t, ev.Online)
}

// TestPollingWatcher_StartStopIdempotent 重复启动/停止
func TestPollingWatcher_StartStopIdempotent(t *testing.T) {
	w := NewPollingWatcher(newTestConfig(clock.NewMock(), &fakeState{}))

	assert.NoError(t, w.Stop(), "未启动时停止")
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Start(context.Background()))
	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
	assert.False(t, w.IsRunning())
}

// TestNewSystemWatcher_Selection 工厂函数按配置选择实现
func TestNewSystemWatcher_Selection(t *testing.T) {
	cfg := DefaultWatcherConfig()
	cfg.Enabled = false
	_, ok := NewSystemWatcher(cfg).(*NoOpWatcher)
	assert.True(t, ok, "禁用时使用 NoOpWatcher")

	cfg = DefaultWatcherConfig()
	cfg.PreferNative = false
	_, ok = NewSystemWatcher(cfg).(*PollingWatcher)
	assert.True(t, ok, "不使用原生时回退轮询")

	w := NewSystemWatcher(nil)
	require.NotNil(t, w)
	if !HasNativeWatcher() {
		_, ok = w.(*PollingWatcher)
		assert.True(t, ok)
	}
}

// TestWatcherConfig_Validate 修正无效值
func TestWatcherConfig_Validate(t *testing.T) {
	cfg := &WatcherConfig{}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, 16, cfg.EventBufferSize)
	assert.NotNil(t, cfg.Clock)
	assert.NotNil(t, cfg.State)
}

// TestNoOpWatcher 空操作监听器
func TestNoOpWatcher(t *testing.T) {
	w := NewNoOpWatcher()
	assert.NoError(t, w.Start(context.Background()))
	assert.False(t, w.IsRunning())
	assert.NotNil(t, w.Events())
	assert.NoError(t, w.Stop())
}
