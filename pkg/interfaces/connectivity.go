package interfaces

import (
	"context"
	"time"
)

// ════════════════════════════════════════════════════════════════════════════
//                              连接状态
// ════════════════════════════════════════════════════════════════════════════

// ConnectivityState 连接状态快照
//
// 由 ConnectivityMonitor 独占持有，观察者只能读取副本。
type ConnectivityState struct {
	// Online 当前是否在线
	Online bool `json:"online"`
}

// ChangeReason 状态变更来源
type ChangeReason int

const (
	// ReasonManual 直接调用 GoOnline/GoOffline
	ReasonManual ChangeReason = iota

	// ReasonNativeOnline 系统通知"已上线"
	ReasonNativeOnline

	// ReasonNativeOffline 系统通知"已离线"
	ReasonNativeOffline

	// ReasonPollOnline 轮询探测成功
	ReasonPollOnline

	// ReasonPollOffline 轮询探测失败或超时
	ReasonPollOffline
)

// String 返回变更来源的字符串表示
func (r ChangeReason) String() string {
	switch r {
	case ReasonManual:
		return "manual"
	case ReasonNativeOnline:
		return "native_online"
	case ReasonNativeOffline:
		return "native_offline"
	case ReasonPollOnline:
		return "poll_online"
	case ReasonPollOffline:
		return "poll_offline"
	default:
		return "unknown"
	}
}

// ConnectivityChange 一次被接受的状态变更
type ConnectivityChange struct {
	// Previous 变更前状态
	Previous bool `json:"previous"`

	// Current 变更后状态
	Current bool `json:"current"`

	// Reason 变更来源
	Reason ChangeReason `json:"-"`

	// Timestamp 变更时间
	Timestamp time.Time `json:"timestamp"`
}

// ════════════════════════════════════════════════════════════════════════════
//                              信号源
// ════════════════════════════════════════════════════════════════════════════

// SubscriptionToken 订阅凭证（不透明）
type SubscriptionToken string

// SignalHandler 接收系统上线/离线通知
type SignalHandler func(online bool)

// EventChannel 系统连接事件通道
//
// 宿主环境通过该能力把"上线/离线"通知交给监控器，
// 监控器不依赖任何具体的事件 API。
type EventChannel interface {
	// Subscribe 注册处理函数，返回用于取消的凭证
	Subscribe(handler SignalHandler) SubscriptionToken

	// Unsubscribe 取消订阅
	// 未知或已取消的凭证视为空操作
	Unsubscribe(token SubscriptionToken) error
}

// InitialStateProvider 可选能力：提供初始连接状态提示
type InitialStateProvider interface {
	// Current 返回当前状态；ok 为 false 表示无可用信号
	Current() (online bool, ok bool)
}

// ════════════════════════════════════════════════════════════════════════════
//                              定时任务
// ════════════════════════════════════════════════════════════════════════════

// CancelToken 定时任务句柄，零值无效
type CancelToken uint64

// Scheduler 可取消的周期任务
type Scheduler interface {
	// Schedule 每隔 interval 执行一次 task
	Schedule(interval time.Duration, task func()) CancelToken

	// Cancel 取消任务；返回后不会再有新的 task 调用
	Cancel(token CancelToken)
}

// ════════════════════════════════════════════════════════════════════════════
//                              可达性探测
// ════════════════════════════════════════════════════════════════════════════

// ReachabilityProber 单次可达性探测
type ReachabilityProber interface {
	// Probe 对 url 发起一次带超时的探测
	//
	// 永不返回错误：超时、传输错误均视为 false，
	// 只要服务端有响应（包括非 2xx）即视为 true。
	Probe(ctx context.Context, url string, timeout time.Duration) bool
}

// ════════════════════════════════════════════════════════════════════════════
//                              监控器
// ════════════════════════════════════════════════════════════════════════════

// ConnectivityMonitor 连接状态监控器
type ConnectivityMonitor interface {
	// Start 订阅系统事件并按配置启动轮询
	Start(ctx context.Context) error

	// Stop 取消订阅并停止轮询，可重复调用
	Stop() error

	// GoOnline 切换到在线，已在线时为空操作
	GoOnline()

	// GoOffline 切换到离线，已离线时为空操作
	GoOffline()

	// Query 返回当前状态快照
	Query() ConnectivityState

	// Subscribe 订阅状态变更
	Subscribe() <-chan ConnectivityChange

	// Unsubscribe 取消订阅
	Unsubscribe(ch <-chan ConnectivityChange)
}
