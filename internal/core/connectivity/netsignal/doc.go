// Package netsignal 把操作系统的网络变化通知适配为"上线/离线"信号
//
// # 组成
//
//   - Source: 实现 interfaces.EventChannel，按订阅数启停底层监听器
//   - SystemWatcher: 系统网络监听器接口
//   - 原生实现: Linux netlink、macOS/BSD routing socket
//   - PollingWatcher: 定期扫描 net.Interfaces() 的跨平台回退实现
//   - NoOpWatcher: 禁用监听时使用，只能通过 Source.Notify 注入信号
//
// # 在线判定
//
// 存在一个处于 up/running 状态、非 loopback、且拥有全局单播地址的接口即视为在线。
// 这只是"本机是否接入了网络"的信号，不代表互联网可达。
//
// # 使用示例
//
//	src := netsignal.NewSource(netsignal.DefaultWatcherConfig())
//	token := src.Subscribe(func(online bool) {
//	    log.Info("网络变化", "online", online)
//	})
//	defer src.Unsubscribe(token)
package netsignal

import (
	"github.com/dep2p/go-netstate/pkg/lib/log"
)

var logger = log.Logger("core/netsignal")
