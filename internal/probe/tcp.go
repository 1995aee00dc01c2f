package probe

import (
	"net"
	"net/netip"
	"time"

	"github.com/hamed0406/pingmore/internal/deadline"
)

// Connect succeeds once a TCP handshake with dst completes. No data is
// exchanged and the connection is closed right away.
func Connect(dst netip.AddrPort, until time.Time) error {
	dst = netip.AddrPortFrom(dst.Addr().Unmap(), dst.Port())
	f := familyOf(dst.Addr())

	var d net.Dialer
	now := time.Now()
	if timeout, ok := deadline.Remaining(until, now); ok {
		// Dialer.Timeout treats zero as unbounded, so bound it by instant.
		d.Deadline = now.Add(timeout)
	}

	conn, err := d.Dial(f.tcpNetwork, dst.String())
	if err != nil {
		return err
	}
	_ = conn.Close()
	return nil
}
