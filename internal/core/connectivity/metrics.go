package connectivity

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-netstate/pkg/interfaces"
)

// Metrics 连接状态指标
//
// nil *Metrics 的所有方法都是空操作。
type Metrics struct {
	online        prometheus.Gauge
	transitions   *prometheus.CounterVec
	probes        *prometheus.CounterVec
	probeDuration prometheus.Histogram
}

// NewMetrics 创建并注册指标，reg 为 nil 时只创建不注册
//
// 同一 Registerer 重复注册时复用已注册的收集器，多个监控器因此写入同一组序列。
// 需要区分实例时用 prometheus.WrapRegistererWith 附加 instance 等常量标签。
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		online: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "netstate",
			Name:      "online",
			Help:      "1 when the monitor considers the host online.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netstate",
			Name:      "transitions_total",
			Help:      "Accepted connectivity transitions.",
		}, []string{"state", "reason"}),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netstate",
			Name:      "probes_total",
			Help:      "Reachability probes by verdict.",
		}, []string{"result"}),
		probeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "netstate",
			Name:      "probe_duration_seconds",
			Help:      "Reachability probe latency.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if reg == nil {
		return m, nil
	}

	var err error
	m.online, err = register(reg, m.online)
	if err != nil {
		return nil, err
	}
	m.transitions, err = register(reg, m.transitions)
	if err != nil {
		return nil, err
	}
	m.probes, err = register(reg, m.probes)
	if err != nil {
		return nil, err
	}
	m.probeDuration, err = register(reg, m.probeDuration)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// setOnline 更新在线状态
func (m *Metrics) setOnline(online bool) {
	if m == nil {
		return
	}
	if online {
		m.online.Set(1)
	} else {
		m.online.Set(0)
	}
}

// recordTransition 记录一次状态变更
func (m *Metrics) recordTransition(online bool, reason interfaces.ChangeReason) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(stateLabel(online), reason.String()).Inc()
	m.setOnline(online)
}

// recordProbe 记录一次探测
func (m *Metrics) recordProbe(reachable bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "unreachable"
	if reachable {
		result = "reachable"
	}
	m.probes.WithLabelValues(result).Inc()
	m.probeDuration.Observe(elapsed.Seconds())
}

func stateLabel(online bool) string {
	if online {
		return "online"
	}
	return "offline"
}
