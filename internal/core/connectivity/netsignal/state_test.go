package netsignal

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ipNet(s string) *net.IPNet {
	ip, n, _ := net.ParseCIDR(s)
	n.IP = ip
	return n
}

// TestOnlineFromInterfaces 在线判定
func TestOnlineFromInterfaces(t *testing.T) {
	upRunning := net.FlagUp | net.FlagRunning

	tests := []struct {
		name   string
		infos  []interfaceInfo
		online bool
	}{
		{"无接口", nil, false},
		{
			"仅 loopback",
			[]interfaceInfo{{Name: "lo", Flags: upRunning | net.FlagLoopback, Addrs: []net.Addr{ipNet("127.0.0.1/8")}}},
			false,
		},
		{
			"接口 down",
			[]interfaceInfo{{Name: "eth0", Flags: 0, Addrs: []net.Addr{ipNet("192.168.1.2/24")}}},
			false,
		},
		{
			"up 但无载波",
			[]interfaceInfo{{Name: "eth0", Flags: net.FlagUp, Addrs: []net.Addr{ipNet("192.168.1.2/24")}}},
			false,
		},
		{
			"仅链路本地地址",
			[]interfaceInfo{{Name: "eth0", Flags: upRunning, Addrs: []net.Addr{ipNet("169.254.3.4/16"), ipNet("fe80::1/64")}}},
			false,
		},
		{
			"私有 IPv4",
			[]interfaceInfo{{Name: "wlan0", Flags: upRunning, Addrs: []net.Addr{ipNet("10.0.0.7/8")}}},
			true,
		},
		{
			"全局 IPv6 (IPAddr)",
			[]interfaceInfo{{Name: "eth1", Flags: upRunning, Addrs: []net.Addr{&net.IPAddr{IP: net.ParseIP("2001:db8::1")}}}},
			true,
		},
		{
			"多接口其一可用",
			[]interfaceInfo{
				{Name: "lo", Flags: upRunning | net.FlagLoopback, Addrs: []net.Addr{ipNet("127.0.0.1/8")}},
				{Name: "eth0", Flags: net.FlagUp},
				{Name: "wlan0", Flags: upRunning, Addrs: []net.Addr{ipNet("192.168.0.5/24")}},
			},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.online, onlineFromInterfaces(tt.infos))
		})
	}
}

// TestStateTracker 只在变化时报告
func TestStateTracker(t *testing.T) {
	var (
		online bool
		err    error
	)
	tracker := newStateTracker(func() (bool, error) { return online, err })

	online = true
	tracker.reset()

	_, changed := tracker.check()
	assert.False(t, changed, "与基线相同")

	online = false
	got, changed := tracker.check()
	assert.True(t, changed)
	assert.False(t, got)

	_, changed = tracker.check()
	assert.False(t, changed, "重复状态")

	err = errors.New("boom")
	online = true
	_, changed = tracker.check()
	assert.False(t, changed, "读取失败不报告")

	err = nil
	got, changed = tracker.check()
	assert.True(t, changed)
	assert.True(t, got)
}

// TestStateTracker_UnknownBaseline 基线读取失败时首次成功读取即报告
func TestStateTracker_UnknownBaseline(t *testing.T) {
	err := errors.New("unavailable")
	tracker := newStateTracker(func() (bool, error) { return true, err })
	tracker.reset()

	err = nil
	online, changed := tracker.check()
	assert.True(t, changed)
	assert.True(t, online)
}

func TestNeedsPollingFallback(t *testing.T) {
	for _, goos := range []string{"linux", "darwin", "freebsd", "netbsd", "openbsd"} {
		assert.False(t, NeedsPollingFallback(goos), goos)
	}
	for _, goos := range []string{"windows", "android", "ios", "js", "wasip1", "plan9", ""} {
		assert.True(t, NeedsPollingFallback(goos), goos)
	}
}
