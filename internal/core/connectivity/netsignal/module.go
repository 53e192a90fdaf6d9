package netsignal

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-netstate/pkg/interfaces"
)

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("netsignal",
		fx.Provide(
			ProvideSource,
			func(s *Source) interfaces.EventChannel { return s },
		),
		fx.Invoke(registerLifecycle),
	)
}

// sourceParams 信号源依赖参数
type sourceParams struct {
	fx.In

	Config *WatcherConfig `optional:"true"`
}

// ProvideSource 提供系统信号源
func ProvideSource(params sourceParams) *Source {
	return NewSource(params.Config)
}

// registerLifecycle 应用停止时释放全部订阅与监听器
func registerLifecycle(lc fx.Lifecycle, s *Source) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return s.Close()
		},
	})
}
