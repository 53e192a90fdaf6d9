//go:build darwin || freebsd || netbsd || openbsd

package netsignal

import (
	"golang.org/x/sys/unix"
)

// newNativeSystemWatcher 创建 BSD routing socket 监听器
func newNativeSystemWatcher(config *WatcherConfig) SystemWatcher {
	_ = config.Validate()
	return newSocketWatcher(config, "route", openRouteSocket, routeRelevant)
}

func openRouteSocket() (int, error) {
	return unix.Socket(unix.AF_ROUTE, unix.SOCK_RAW, unix.AF_UNSPEC)
}

// routeRelevant 检查 rt_msghdr 的消息类型
//
// rt_msghdr 前 4 字节：msglen(2) version(1) type(1)。
func routeRelevant(msg []byte) bool {
	if len(msg) < 4 {
		return false
	}
	switch int(msg[3]) {
	case unix.RTM_NEWADDR, unix.RTM_DELADDR, unix.RTM_IFINFO,
		unix.RTM_ADD, unix.RTM_DELETE, unix.RTM_CHANGE:
		return true
	default:
		return false
	}
}
