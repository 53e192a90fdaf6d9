package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/dep2p/go-netstate/internal/core/connectivity/netsignal"
	"github.com/dep2p/go-netstate/internal/core/schedule"
	"github.com/dep2p/go-netstate/pkg/interfaces"
)

// ============================================================================
//                              Monitor
// ============================================================================

// Params 监控器依赖
type Params struct {
	// Config 为 nil 时使用 DefaultConfig()
	Config *Config

	// Source 系统网络事件源，为 nil 时使用 netsignal.NewSource(nil)
	Source interfaces.EventChannel

	// Prober 为 nil 时使用 NewHTTPProber(nil)
	Prober interfaces.ReachabilityProber

	// Scheduler 为 nil 时使用 schedule.New(nil)
	Scheduler interfaces.Scheduler

	// Metrics 可选
	Metrics *Metrics
}

// Monitor 连通性监控器
//
// 状态变更按到达顺序串行执行：先以新值调用 OnChange，再写入状态，
// 然后更新指标并通知通道订阅者。OnChange 中不能调用 GoOnline/GoOffline/Stop。
type Monitor struct {
	polling  PollingConfig
	onChange func(online bool)

	source  interfaces.EventChannel
	prober  interfaces.ReachabilityProber
	sched   interfaces.Scheduler
	metrics *Metrics

	// transMu 串行化状态变更及其回调
	transMu sync.Mutex

	mu     sync.RWMutex
	online bool
	active bool

	// epoch 每次启动/停止递增，旧激活周期的探测结果与事件据此丢弃
	epoch uint64

	// probeCtx 探测使用的上下文，停止时不取消
	probeCtx context.Context

	sourceToken interfaces.SubscriptionToken
	pollHandle  interfaces.CancelToken

	subscribers   []chan interfaces.ConnectivityChange
	subscribersMu sync.RWMutex
}

var _ interfaces.ConnectivityMonitor = (*Monitor)(nil)

// NewMonitor 创建监控器
//
// 轮询配置在此合并并冻结。初始状态取自 Source 的初始提示，
// 无法获取时默认为在线。
func NewMonitor(p Params) *Monitor {
	config := p.Config
	if config == nil {
		config = DefaultConfig()
	}
	_ = config.Validate()

	m := &Monitor{
		polling:  ResolvePollingConfig(config.defaults(), config.Polling),
		onChange: config.OnChange,
		source:   p.Source,
		prober:   p.Prober,
		sched:    p.Scheduler,
		metrics:  p.Metrics,
		online:   true,
	}

	if m.source == nil {
		m.source = netsignal.NewSource(nil)
	}
	if m.prober == nil {
		m.prober = NewHTTPProber(nil)
	}
	if m.sched == nil {
		m.sched = schedule.New(nil)
	}

	if provider, ok := m.source.(interfaces.InitialStateProvider); ok {
		if online, known := provider.Current(); known {
			m.online = online
		}
	}
	m.metrics.setOnline(m.online)

	logger.Debug("创建连通性监控器",
		"online", m.online,
		"polling", m.polling.Enabled,
		"url", m.polling.URL,
		"interval", m.polling.Interval,
		"timeout", m.polling.Timeout)

	return m
}

// ============================================================================
//                              生命周期
// ============================================================================

// Start 激活监控器
//
// 订阅系统网络事件，启用轮询时按间隔调度探测。重复调用为空操作。
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.active {
		m.mu.Unlock()
		return nil
	}
	m.active = true
	m.epoch++
	epoch := m.epoch
	m.probeCtx = context.WithoutCancel(ctx)
	m.mu.Unlock()

	token := m.source.Subscribe(func(online bool) {
		reason := interfaces.ReasonNativeOffline
		if online {
			reason = interfaces.ReasonNativeOnline
		}
		m.transitionIn(epoch, online, reason)
	})

	var handle interfaces.CancelToken
	if m.polling.Enabled {
		handle = m.sched.Schedule(m.polling.Interval, func() {
			go m.poll(epoch)
		})
	}

	m.mu.Lock()
	if m.epoch != epoch {
		// Start 期间已被停止
		m.mu.Unlock()
		m.cancelPoll(handle)
		return m.source.Unsubscribe(token)
	}
	m.sourceToken = token
	m.pollHandle = handle
	m.mu.Unlock()

	logger.Info("连通性监控器已启动", "polling", m.polling.Enabled, "online", m.IsOnline())
	return nil
}

// Stop 停运监控器
//
// 取消事件订阅和轮询定时器，但不取消已发出的探测；其结果返回后被丢弃。
// 未启动或重复调用为空操作。进行中的状态变更完成后才使激活周期失效，
// 返回后不会再有事件或探测结果写入状态，因此不能在 OnChange 中调用。
func (m *Monitor) Stop() error {
	m.transMu.Lock()
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		m.transMu.Unlock()
		return nil
	}
	m.active = false
	m.epoch++
	token := m.sourceToken
	handle := m.pollHandle
	m.sourceToken = ""
	m.pollHandle = 0
	m.mu.Unlock()
	m.transMu.Unlock()

	m.cancelPoll(handle)

	var err error
	if token != "" {
		err = m.source.Unsubscribe(token)
	}

	m.subscribersMu.Lock()
	for _, ch := range m.subscribers {
		close(ch)
	}
	m.subscribers = nil
	m.subscribersMu.Unlock()

	logger.Info("连通性监控器已停止")
	return err
}

func (m *Monitor) cancelPoll(handle interfaces.CancelToken) {
	if handle != 0 {
		m.sched.Cancel(handle)
	}
}

// Active 监控器是否处于激活状态
func (m *Monitor) Active() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// ============================================================================
//                              状态变更
// ============================================================================

// GoOnline 切换到在线，已在线时为空操作
func (m *Monitor) GoOnline() {
	m.transition(true, interfaces.ReasonManual)
}

// GoOffline 切换到离线，已离线时为空操作
func (m *Monitor) GoOffline() {
	m.transition(false, interfaces.ReasonManual)
}

// transitionIn 仅当 epoch 对应的激活周期仍有效时执行状态变更
func (m *Monitor) transitionIn(epoch uint64, online bool, reason interfaces.ChangeReason) {
	m.transMu.Lock()
	defer m.transMu.Unlock()

	if !m.current(epoch) {
		logger.Debug("丢弃过期信号", "online", online, "reason", reason.String())
		return
	}
	m.applyLocked(online, reason)
}

func (m *Monitor) transition(online bool, reason interfaces.ChangeReason) {
	m.transMu.Lock()
	defer m.transMu.Unlock()
	m.applyLocked(online, reason)
}

// applyLocked 执行状态变更，调用方持有 transMu
func (m *Monitor) applyLocked(online bool, reason interfaces.ChangeReason) {
	m.mu.RLock()
	previous := m.online
	m.mu.RUnlock()

	if previous == online {
		return
	}

	if m.onChange != nil {
		m.onChange(online)
	}

	m.mu.Lock()
	m.online = online
	m.mu.Unlock()

	m.metrics.recordTransition(online, reason)

	logger.Info("网络连通性变更",
		"previous", stateLabel(previous),
		"current", stateLabel(online),
		"reason", reason.String())

	m.notifySubscribers(interfaces.ConnectivityChange{
		Previous:  previous,
		Current:   online,
		Reason:    reason,
		Timestamp: time.Now(),
	})
}

func (m *Monitor) current(epoch uint64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active && m.epoch == epoch
}

// ============================================================================
//                              轮询
// ============================================================================

// ResolvePollingConfig 返回生效的轮询配置
func (m *Monitor) ResolvePollingConfig() PollingConfig {
	return m.polling
}

// poll 执行一次探测，结果仅在 epoch 仍有效时生效
func (m *Monitor) poll(epoch uint64) {
	m.mu.RLock()
	ctx := m.probeCtx
	m.mu.RUnlock()

	if !m.current(epoch) {
		return
	}

	start := time.Now()
	reachable := m.prober.Probe(ctx, m.polling.URL, m.polling.Timeout)
	m.metrics.recordProbe(reachable, time.Since(start))

	reason := interfaces.ReasonPollOffline
	if reachable {
		reason = interfaces.ReasonPollOnline
	}
	m.transitionIn(epoch, reachable, reason)
}

// ============================================================================
//                              查询与订阅
// ============================================================================

// Query 返回当前状态快照
func (m *Monitor) Query() interfaces.ConnectivityState {
	return interfaces.ConnectivityState{Online: m.IsOnline()}
}

// IsOnline 当前是否在线
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// Subscribe 订阅状态变更
//
// 返回的通道在 Unsubscribe 或 Stop 时关闭。
func (m *Monitor) Subscribe() <-chan interfaces.ConnectivityChange {
	ch := make(chan interfaces.ConnectivityChange, 10)

	m.subscribersMu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.subscribersMu.Unlock()

	return ch
}

// Unsubscribe 取消订阅并关闭通道
func (m *Monitor) Unsubscribe(ch <-chan interfaces.ConnectivityChange) {
	m.subscribersMu.Lock()
	defer m.subscribersMu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			close(sub)
			last := len(m.subscribers) - 1
			m.subscribers[i] = m.subscribers[last]
			m.subscribers = m.subscribers[:last]
			return
		}
	}
}

// notifySubscribers 通知通道订阅者
//
// 通道已满时最多等待 100ms，超时丢弃。发送期间持有读锁，
// 避免与 Unsubscribe/Stop 关闭通道竞争。
func (m *Monitor) notifySubscribers(change interfaces.ConnectivityChange) {
	m.subscribersMu.RLock()
	defer m.subscribersMu.RUnlock()

	for _, ch := range m.subscribers {
		select {
		case ch <- change:
		default:
			logger.Warn("订阅者处理过慢，状态变更可能延迟",
				"current", stateLabel(change.Current),
				"reason", change.Reason.String())

			timer := time.NewTimer(100 * time.Millisecond)
			select {
			case ch <- change:
				logger.Debug("延迟发送成功")
			case <-timer.C:
				logger.Error("订阅者无响应，丢弃状态变更通知",
					"current", stateLabel(change.Current))
			}
			timer.Stop()
		}
	}
}
