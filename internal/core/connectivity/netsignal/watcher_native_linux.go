//go:build linux

package netsignal

import (
	"encoding/binary"

	"golang.org/x/sys/unix"
)

// newNativeSystemWatcher 创建 netlink 监听器
//
// 订阅链路与 IPv4/IPv6 地址变化组播组。
func newNativeSystemWatcher(config *WatcherConfig) SystemWatcher {
	_ = config.Validate()
	return newSocketWatcher(config, "netlink", openNetlink, netlinkRelevant)
}

func openNetlink() (int, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.NETLINK_ROUTE)
	if err != nil {
		return -1, err
	}

	addr := &unix.SockaddrNetlink{
		Family: unix.AF_NETLINK,
		Groups: unix.RTMGRP_LINK | unix.RTMGRP_IPV4_IFADDR | unix.RTMGRP_IPV6_IFADDR,
	}
	if err := unix.Bind(fd, addr); err != nil {
		_ = unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

// netlinkRelevant 只关注链路与地址的增删
//
// 一次读取可能包含多条消息，逐条检查。
func netlinkRelevant(msg []byte) bool {
	// nlmsghdr: len(4) type(2) flags(2) seq(4) pid(4)，主机字节序
	for len(msg) >= unix.SizeofNlMsghdr {
		switch binary.NativeEndian.Uint16(msg[4:6]) {
		case unix.RTM_NEWLINK, unix.RTM_DELLINK, unix.RTM_NEWADDR, unix.RTM_DELADDR:
			return true
		}

		length := int(binary.NativeEndian.Uint32(msg[0:4]))
		if length < unix.SizeofNlMsghdr || length > len(msg) {
			return false
		}
		aligned := (length + unix.NLMSG_ALIGNTO - 1) &^ (unix.NLMSG_ALIGNTO - 1)
		if aligned >= len(msg) {
			return false
		}
		msg = msg[aligned:]
	}
	return false
}
