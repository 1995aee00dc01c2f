//go:build !unix

package probe

import (
	"fmt"
	"net"
	"net/netip"
	"runtime"
)

func dialEcho(dst netip.Addr) (net.Conn, error) {
	return nil, fmt.Errorf("datagram ICMP sockets are not supported on %s", runtime.GOOS)
}
