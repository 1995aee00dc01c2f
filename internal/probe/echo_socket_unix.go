//go:build unix

package probe

import (
	"fmt"
	"net"
	"net/netip"
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

// dialEcho opens a datagram ICMP socket and connects it to dst. A connected
// ping socket gets hard ICMP errors for dst (host or network unreachable)
// reported on its next read; an unconnected one has them dropped.
func dialEcho(dst netip.Addr) (net.Conn, error) {
	var (
		af, proto int
		sa        unix.Sockaddr
	)
	if dst.Is4() {
		af, proto = unix.AF_INET, unix.IPPROTO_ICMP
		sa = &unix.SockaddrInet4{Addr: dst.As4()}
	} else {
		zone, err := zoneIndex(dst.Zone())
		if err != nil {
			return nil, err
		}
		af, proto = unix.AF_INET6, unix.IPPROTO_ICMPV6
		sa = &unix.SockaddrInet6{Addr: dst.As16(), ZoneId: zone}
	}

	fd, err := unix.Socket(af, unix.SOCK_DGRAM, proto)
	if err != nil {
		return nil, os.NewSyscallError("socket", err)
	}
	unix.CloseOnExec(fd)
	if err := unix.Connect(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, os.NewSyscallError("connect", err)
	}

	// FileConn dups the descriptor into the runtime poller.
	f := os.NewFile(uintptr(fd), "icmp:"+dst.String())
	defer f.Close()
	return net.FileConn(f)
}

func zoneIndex(zone string) (uint32, error) {
	if zone == "" {
		return 0, nil
	}
	if ifi, err := net.InterfaceByName(zone); err == nil {
		return uint32(ifi.Index), nil
	}
	n, err := strconv.ParseUint(zone, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown zone %q", zone)
	}
	return uint32(n), nil
}
