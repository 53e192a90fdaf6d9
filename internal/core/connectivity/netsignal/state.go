package netsignal

import (
	"net"
	"sync"
)

// StateFunc 读取当前在线状态
type StateFunc func() (online bool, err error)

// interfaceInfo 判定所需的接口信息
type interfaceInfo struct {
	Name  string
	Flags net.Flags
	Addrs []net.Addr
}

// SystemOnline 根据本机网络接口判断是否在线
func SystemOnline() (bool, error) {
	infos, err := listInterfaces()
	if err != nil {
		return false, err
	}
	return onlineFromInterfaces(infos), nil
}

func listInterfaces() ([]interfaceInfo, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	infos := make([]interfaceInfo, 0, len(ifaces))
	for _, iface := range ifaces {
		info := interfaceInfo{Name: iface.Name, Flags: iface.Flags}
		if addrs, err := iface.Addrs(); err == nil {
			info.Addrs = addrs
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// onlineFromInterfaces 任一可用接口拥有全局单播地址即为在线
func onlineFromInterfaces(infos []interfaceInfo) bool {
	for _, info := range infos {
		if info.Flags&net.FlagLoopback != 0 {
			continue
		}
		if info.Flags&net.FlagUp == 0 || info.Flags&net.FlagRunning == 0 {
			continue
		}
		for _, addr := range info.Addrs {
			if ip := addrIP(addr); ip != nil && ip.IsGlobalUnicast() {
				return true
			}
		}
	}
	return false
}

func addrIP(addr net.Addr) net.IP {
	switch a := addr.(type) {
	case *net.IPNet:
		return a.IP
	case *net.IPAddr:
		return a.IP
	default:
		return nil
	}
}

// ============================================================================
//                              状态跟踪
// ============================================================================

// stateTracker 记录上一次状态，只在变化时报告
type stateTracker struct {
	mu    sync.Mutex
	read  StateFunc
	last  bool
	known bool
}

func newStateTracker(read StateFunc) *stateTracker {
	if read == nil {
		read = SystemOnline
	}
	return &stateTracker{read: read}
}

// reset 以当前状态作为基线
func (t *stateTracker) reset() {
	online, err := t.read()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = online
	t.known = err == nil
}

// check 读取状态，返回是否相对基线发生变化
func (t *stateTracker) check() (online bool, changed bool) {
	online, err := t.read()
	if err != nil {
		logger.Debug("读取网络接口失败", "error", err)
		return false, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.known && t.last == online {
		return online, false
	}
	t.last = online
	t.known = true
	return online, true
}
