package netsignal

// nativeEventPlatforms 能可靠发出网络变化事件的平台
//
// Android 虽然编译 linux 实现，但新版本限制了 netlink，仍需要轮询兜底。
var nativeEventPlatforms = map[string]struct{}{
	"linux":   {},
	"darwin":  {},
	"freebsd": {},
	"netbsd":  {},
	"openbsd": {},
}

// NeedsPollingFallback 判断平台是否需要可达性轮询兜底
func NeedsPollingFallback(goos string) bool {
	_, ok := nativeEventPlatforms[goos]
	return !ok
}

// HasNativeWatcher 当前构建是否包含原生监听器
func HasNativeWatcher() bool {
	return newNativeSystemWatcher(DefaultWatcherConfig()) != nil
}
