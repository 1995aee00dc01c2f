package probe

import (
	"net"
	"net/netip"
	"time"

	"github.com/hamed0406/pingmore/internal/deadline"
)

// dnsQuery is a standard query header (ID 0, one question) followed by a
// question for the root name with type and class 0. Servers answer it, if
// only with FORMERR or NOTIMP, and any answer counts.
var dnsQuery = [17]byte{0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}

// UDPEcho sends payload to dst and succeeds when any datagram comes back.
// The reply's content is not looked at. payload must not be empty.
func UDPEcho(dst netip.AddrPort, payload []byte, until time.Time) error {
	if len(payload) == 0 {
		panic("probe: UDPEcho called with empty payload")
	}
	dst = netip.AddrPortFrom(dst.Addr().Unmap(), dst.Port())
	f := familyOf(dst.Addr())

	// Connecting only fixes the peer locally; it also lets the kernel report
	// ICMP port unreachable as ECONNREFUSED on the next read.
	local := net.UDPAddrFromAddrPort(netip.AddrPortFrom(f.unspecified, 0))
	conn, err := net.DialUDP(f.udpNetwork, local, net.UDPAddrFromAddrPort(dst))
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := deadline.Apply(conn.SetWriteDeadline, until); err != nil {
		return err
	}
	if _, err := conn.Write(payload); err != nil {
		return err
	}

	if err := deadline.Apply(conn.SetReadDeadline, until); err != nil {
		return err
	}
	_, err = conn.Read(make([]byte, 1))
	return err
}

// DNS is UDPEcho with a fixed minimal DNS query.
func DNS(dst netip.AddrPort, until time.Time) error {
	return UDPEcho(dst, dnsQuery[:], until)
}
