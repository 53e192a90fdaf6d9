package server

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-netstate/internal/core/connectivity"
)

// Module 返回状态服务 Fx 模块
//
// 未提供 *Config 时不创建服务。
func Module() fx.Option {
	return fx.Module("server",
		fx.Provide(NewFromParams),
		fx.Invoke(registerLifecycle),
	)
}

// Params 状态服务依赖参数
type Params struct {
	fx.In

	Config   *Config `optional:"true"`
	Monitor  *connectivity.Monitor
	Gatherer prometheus.Gatherer `optional:"true"`
}

// Output 状态服务输出
type Output struct {
	fx.Out

	Server *Server
}

// NewFromParams 从参数创建状态服务
func NewFromParams(params Params) Output {
	if params.Config == nil {
		return Output{}
	}

	cfg := *params.Config
	cfg.Monitor = params.Monitor
	cfg.Polling = params.Monitor.ResolvePollingConfig()
	if cfg.Gatherer == nil {
		cfg.Gatherer = params.Gatherer
	}

	return Output{Server: New(cfg)}
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, server *Server) {
	if server == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return server.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			return server.Stop()
		},
	})
}
