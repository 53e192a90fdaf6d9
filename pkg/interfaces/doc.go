// Package interfaces 定义 netstate 的公共接口
//
// 接口按职责划分：
//   - ConnectivityMonitor  连通性状态机（查询、订阅、手动切换）
//   - EventChannel         系统网络事件源
//   - ReachabilityProber   单次可达性探测
//   - Scheduler            周期任务调度
//
// 实现位于 internal/core 下对应目录，通过 Fx 模块装配。
package interfaces
