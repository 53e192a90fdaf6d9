package netstate

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/dep2p/go-netstate/internal/core/connectivity"
	"github.com/dep2p/go-netstate/internal/core/connectivity/netsignal"
	"github.com/dep2p/go-netstate/internal/core/schedule"
	"github.com/dep2p/go-netstate/pkg/interfaces"
	"github.com/dep2p/go-netstate/pkg/lib/log"
	"github.com/dep2p/go-netstate/pkg/render"
)

var logger = log.Logger("netstate")

// Detector 网络连通性检测器
//
// 可以反复 Start/Stop；Close 之后不能再启动。
type Detector struct {
	monitor *connectivity.Monitor

	source    interfaces.EventChannel
	scheduler interfaces.Scheduler

	// 由 New 创建、需要在 Close 时释放的组件
	ownedSource    *netsignal.Source
	ownedScheduler *schedule.Scheduler

	mu     sync.Mutex
	closed bool
}

// New 创建检测器
func New(opts ...Option) (*Detector, error) {
	o := newOptions()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	d := &Detector{
		source:    o.source,
		scheduler: o.scheduler,
	}

	if d.source == nil {
		watcherConfig := netsignal.DefaultWatcherConfig()
		if o.systemWatcher != nil {
			watcherConfig.Enabled = *o.systemWatcher
		}
		d.ownedSource = netsignal.NewSource(watcherConfig)
		d.source = d.ownedSource
	}
	if d.scheduler == nil {
		d.ownedScheduler = schedule.New(nil)
		d.scheduler = d.ownedScheduler
	}

	var metrics *connectivity.Metrics
	if o.registerer != nil {
		reg := o.registerer
		if o.instance != "" {
			reg = prometheus.WrapRegistererWith(prometheus.Labels{"instance": o.instance}, reg)
		}
		var err error
		metrics, err = connectivity.NewMetrics(reg)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	d.monitor = connectivity.NewMonitor(connectivity.Params{
		Config:    o.config,
		Source:    d.source,
		Prober:    o.prober,
		Scheduler: d.scheduler,
		Metrics:   metrics,
	})

	return d, nil
}

// ============================================================================
//                              生命周期
// ============================================================================

// Start 启动检测，已启动时为空操作
func (d *Detector) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	return d.monitor.Start(ctx)
}

// Stop 停止检测，未启动时为空操作
func (d *Detector) Stop() error {
	return d.monitor.Stop()
}

// Close 停止检测并释放内部创建的资源
func (d *Detector) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	err := d.monitor.Stop()
	if d.ownedSource != nil {
		err = multierr.Append(err, d.ownedSource.Close())
	}
	if d.ownedScheduler != nil {
		d.ownedScheduler.Close()
	}

	logger.Debug("检测器已关闭")
	return err
}

// ============================================================================
//                              状态
// ============================================================================

// Query 返回当前状态快照
func (d *Detector) Query() interfaces.ConnectivityState {
	return d.monitor.Query()
}

// IsOnline 当前是否在线
func (d *Detector) IsOnline() bool {
	return d.monitor.IsOnline()
}

// GoOnline 直接切换到在线
func (d *Detector) GoOnline() {
	d.monitor.GoOnline()
}

// GoOffline 直接切换到离线
func (d *Detector) GoOffline() {
	d.monitor.GoOffline()
}

// Notify 推送一次系统网络事件
//
// 用于宿主自行感知网络变化的场景。事件与系统监听到的事件同等处理，
// 检测器未启动时被忽略。
func (d *Detector) Notify(online bool) {
	if n, ok := d.source.(interface{ Notify(bool) }); ok {
		n.Notify(online)
		return
	}
	if !d.monitor.Active() {
		return
	}
	if online {
		d.monitor.GoOnline()
	} else {
		d.monitor.GoOffline()
	}
}

// ResolvePollingConfig 返回生效的轮询配置
func (d *Detector) ResolvePollingConfig() PollingConfig {
	return d.monitor.ResolvePollingConfig()
}

// Subscribe 订阅状态变更，通道在 Unsubscribe 或 Stop 时关闭
func (d *Detector) Subscribe() <-chan interfaces.ConnectivityChange {
	return d.monitor.Subscribe()
}

// Unsubscribe 取消订阅
func (d *Detector) Unsubscribe(ch <-chan interfaces.ConnectivityChange) {
	d.monitor.Unsubscribe(ch)
}

// Render 以当前状态执行展示策略
func (d *Detector) Render(w io.Writer, s render.Strategy) error {
	return render.To(w, d.monitor, s)
}

// Monitor 返回底层监控器
func (d *Detector) Monitor() interfaces.ConnectivityMonitor {
	return d.monitor
}
