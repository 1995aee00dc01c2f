package probe

import (
	"fmt"
	"io"
	"net/netip"
	"time"

	"github.com/hamed0406/pingmore/internal/deadline"
)

// echoLen is the size of the echo request we send and of the reply we read:
// the ICMP header (type, code, checksum) plus identifier and sequence.
const echoLen = 8

// UnexpectedTypeError is returned when the peer answered with something other
// than an echo reply.
type UnexpectedTypeError struct {
	Type byte
	Name string
}

func (e *UnexpectedTypeError) Error() string {
	if e.Name == "" || e.Name == "<nil>" {
		return fmt.Sprintf("unexpected ICMP response type %d", e.Type)
	}
	return fmt.Sprintf("unexpected ICMP response type %d (%s)", e.Type, e.Name)
}

// Echo sends one ICMP echo request to dst and waits for the echo reply.
//
// It uses a datagram ICMP socket (IPPROTO_ICMP / IPPROTO_ICMPV6) connected to
// dst, so no privileges are needed where the kernel allows it; on Linux the
// caller's group must be inside net.ipv4.ping_group_range. The kernel fills
// in the identifier and checksum and only delivers replies matching this
// socket. An unreachable dst surfaces as an error, not a timeout.
func Echo(dst netip.Addr, until time.Time) error {
	dst = dst.Unmap()
	f := familyOf(dst)

	c, err := dialEcho(dst)
	if err != nil {
		return fmt.Errorf("open %s echo socket to %s: %w", f.name, dst, err)
	}
	defer c.Close()

	request := make([]byte, echoLen)
	request[0] = f.echoRequest

	if err := deadline.Apply(c.SetWriteDeadline, until); err != nil {
		return err
	}
	if _, err := c.Write(request); err != nil {
		return err
	}

	if err := deadline.Apply(c.SetReadDeadline, until); err != nil {
		return err
	}
	reply := make([]byte, 1500)
	n, err := c.Read(reply)
	if err != nil {
		return err
	}
	return checkEchoReply(f, reply[:n])
}

func checkEchoReply(f family, reply []byte) error {
	if len(reply) < echoLen {
		return fmt.Errorf("short ICMP response of %d bytes: %w", len(reply), io.ErrUnexpectedEOF)
	}
	if got := reply[0]; got != f.echoReply {
		return &UnexpectedTypeError{Type: got, Name: f.typeName(got)}
	}
	return nil
}
