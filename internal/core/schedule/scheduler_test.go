package schedule

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScheduler_Ticks 每个周期执行一次任务
func TestScheduler_Ticks(t *testing.T) {
	mock := clock.NewMock()
	s := New(mock)

	var calls atomic.Int32
	token := s.Schedule(time.Second, func() { calls.Add(1) })
	require.NotZero(t, token)
	defer s.Cancel(token)

	// 未到周期不执行
	mock.Add(500 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())

	mock.Add(500 * time.Millisecond)
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	mock.Add(time.Second)
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
}

// TestScheduler_Cancel 取消后不再执行
func TestScheduler_Cancel(t *testing.T) {
	mock := clock.NewMock()
	s := New(mock)

	var calls atomic.Int32
	token := s.Schedule(time.Second, func() { calls.Add(1) })
	assert.Equal(t, 1, s.Len())

	s.Cancel(token)
	assert.Equal(t, 0, s.Len())

	mock.Add(5 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())

	// 重复取消、未知句柄都是空操作
	s.Cancel(token)
	s.Cancel(0)
	s.Cancel(12345)
}

// TestScheduler_InvalidInterval 非正间隔不创建任务
func TestScheduler_InvalidInterval(t *testing.T) {
	s := New(clock.NewMock())

	assert.Zero(t, s.Schedule(0, func() {}))
	assert.Zero(t, s.Schedule(-time.Second, func() {}))
	assert.Zero(t, s.Schedule(time.Second, nil))
	assert.Equal(t, 0, s.Len())
}

// TestScheduler_IndependentTasks 多个任务互不影响
func TestScheduler_IndependentTasks(t *testing.T) {
	mock := clock.NewMock()
	s := New(mock)

	var a, b atomic.Int32
	ta := s.Schedule(time.Second, func() { a.Add(1) })
	tb := s.Schedule(time.Second, func() { b.Add(1) })
	assert.NotEqual(t, ta, tb)

	s.Cancel(ta)
	mock.Add(time.Second)

	assert.Eventually(t, func() bool { return b.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(0), a.Load())

	s.Close()
	assert.Equal(t, 0, s.Len())
}

// TestNew_DefaultClock nil 时钟使用系统时钟
func TestNew_DefaultClock(t *testing.T) {
	s := New(nil)

	var calls atomic.Int32
	token := s.Schedule(10*time.Millisecond, func() { calls.Add(1) })
	defer s.Cancel(token)

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
}
