//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package netsignal

// newNativeSystemWatcher 非 Linux/BSD 平台不支持原生监听，回退到 PollingWatcher
func newNativeSystemWatcher(_ *WatcherConfig) SystemWatcher {
	return nil
}
