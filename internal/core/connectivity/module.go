package connectivity

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-netstate/pkg/interfaces"
)

// Module 返回 Fx 模块
//
// 依赖均为可选：未提供 EventChannel、ReachabilityProber、Scheduler
// 时使用 NewMonitor 的默认实现；提供 prometheus.Registerer 时注册指标。
func Module() fx.Option {
	return fx.Module("connectivity",
		fx.Provide(
			ProvideMonitor,
			func(m *Monitor) interfaces.ConnectivityMonitor { return m },
		),
		fx.Invoke(registerLifecycle),
	)
}

// monitorParams 监控器依赖参数
type monitorParams struct {
	fx.In

	Config     *Config                       `optional:"true"`
	Source     interfaces.EventChannel       `optional:"true"`
	Prober     interfaces.ReachabilityProber `optional:"true"`
	Scheduler  interfaces.Scheduler          `optional:"true"`
	Registerer prometheus.Registerer         `optional:"true"`
}

// ProvideMonitor 提供连通性监控器
func ProvideMonitor(params monitorParams) (*Monitor, error) {
	var metrics *Metrics
	if params.Registerer != nil {
		var err error
		metrics, err = NewMetrics(params.Registerer)
		if err != nil {
			return nil, err
		}
	}

	return NewMonitor(Params{
		Config:    params.Config,
		Source:    params.Source,
		Prober:    params.Prober,
		Scheduler: params.Scheduler,
		Metrics:   metrics,
	}), nil
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC      fx.Lifecycle
	Monitor *Monitor
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return input.Monitor.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			return input.Monitor.Stop()
		},
	})
}
