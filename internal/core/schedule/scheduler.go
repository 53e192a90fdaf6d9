// Package schedule 提供可取消的周期任务
//
// 基于 benbjohnson/clock，测试中可用 clock.Mock 精确推进时间。
package schedule

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-netstate/pkg/interfaces"
	"github.com/dep2p/go-netstate/pkg/lib/log"
)

var logger = log.Logger("core/schedule")

// Scheduler 周期任务调度器
type Scheduler struct {
	clock clock.Clock

	mu    sync.Mutex
	next  interfaces.CancelToken
	tasks map[interfaces.CancelToken]*task
}

// task 单个周期任务
type task struct {
	ticker *clock.Ticker
	stopCh chan struct{}
	doneCh chan struct{}
}

var _ interfaces.Scheduler = (*Scheduler)(nil)

// New 创建调度器，clk 为 nil 时使用系统时钟
func New(clk clock.Clock) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	return &Scheduler{
		clock: clk,
		tasks: make(map[interfaces.CancelToken]*task),
	}
}

// Schedule 每隔 interval 执行一次 fn
//
// ticker 在返回前已创建，第一次执行发生在一个 interval 之后。
// interval 非正时不创建任务，返回零值句柄。
func (s *Scheduler) Schedule(interval time.Duration, fn func()) interfaces.CancelToken {
	if interval <= 0 || fn == nil {
		logger.Warn("忽略无效的周期任务", "interval", interval)
		return 0
	}

	t := &task{
		ticker: s.clock.Ticker(interval),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	s.mu.Lock()
	s.next++
	token := s.next
	s.tasks[token] = t
	s.mu.Unlock()

	go t.run(fn)

	logger.Debug("周期任务已启动", "token", uint64(token), "interval", interval)
	return token
}

// Cancel 取消任务并等待循环退出
//
// 返回后 fn 不会再被调用。不能在 fn 内部调用 Cancel。
func (s *Scheduler) Cancel(token interfaces.CancelToken) {
	s.mu.Lock()
	t, ok := s.tasks[token]
	delete(s.tasks, token)
	s.mu.Unlock()

	if !ok {
		return
	}

	t.ticker.Stop()
	close(t.stopCh)
	<-t.doneCh

	logger.Debug("周期任务已取消", "token", uint64(token))
}

// Close 取消全部任务
func (s *Scheduler) Close() {
	s.mu.Lock()
	tokens := make([]interfaces.CancelToken, 0, len(s.tasks))
	for token := range s.tasks {
		tokens = append(tokens, token)
	}
	s.mu.Unlock()

	for _, token := range tokens {
		s.Cancel(token)
	}
}

// Len 返回活动任务数
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (t *task) run(fn func()) {
	defer close(t.doneCh)

	for {
		select {
		case <-t.stopCh:
			return
		case <-t.ticker.C:
			// 停止与 tick 同时就绪时优先停止
			select {
			case <-t.stopCh:
				return
			default:
			}
			fn()
		}
	}
}
