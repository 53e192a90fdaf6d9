// Package server 提供连通性状态的本地 HTTP 服务
//
// 默认绑定到 127.0.0.1，不暴露到网络。
//
// # 端点
//
//	GET /api/status - 当前状态与生效的轮询配置 (JSON)
//	GET /ws         - WebSocket，连接时推送快照，之后推送每次状态变更
//	GET /metrics    - Prometheus 指标（配置了 Gatherer 时）
//	GET /health     - 健康检查
//
// # 使用示例
//
//	srv := server.New(server.Config{
//	    Addr:    "127.0.0.1:7070",
//	    Monitor: monitor,
//	})
//	srv.Start(ctx)
//	defer srv.Stop()
package server

import "github.com/dep2p/go-netstate/pkg/lib/log"

var logger = log.Logger("server")
