// Package connectivity 实现网络连通性监控
//
// Monitor 持有唯一的在线/离线状态，由两路信号驱动：
//   - 系统网络事件（interfaces.EventChannel，见 netsignal 包）
//   - 可选的周期性可达性探测（interfaces.ReachabilityProber + interfaces.Scheduler）
//
// 两路信号不区分优先级，最后到达者生效。状态只通过 GoOnline / GoOffline
// 改变，目标状态与当前相同时为空操作，不会产生重复通知。
//
// 探测失败（超时、DNS、传输错误）视为离线信号，不作为错误向上返回。
// 停止监控器后，仍在进行的探测结果和迟到的系统事件都会被丢弃。
package connectivity

import "github.com/dep2p/go-netstate/pkg/lib/log"

var logger = log.Logger("core/connectivity")
