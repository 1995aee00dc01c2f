package probe

import (
	"context"
	"net"
	"net/netip"
	"testing"
	"time"
)

const localTimeout = time.Second

// skipWithoutIPv6 skips when the host has no IPv6 loopback.
func skipWithoutIPv6(t *testing.T) {
	t.Helper()
	l, err := net.ListenPacket("udp6", "[::1]:0")
	if err != nil {
		t.Skipf("no IPv6 loopback: %v", err)
	}
	_ = l.Close()
}

// skipWithoutICMP skips when unprivileged echo sockets are not allowed, e.g.
// when the test's group is outside net.ipv4.ping_group_range.
func skipWithoutICMP(t *testing.T, dst netip.Addr) {
	t.Helper()
	c, err := dialEcho(dst)
	if err != nil {
		t.Skipf("unprivileged echo socket to %s unavailable: %v", dst, err)
	}
	_ = c.Close()
}

// udpServer answers every datagram on addr with reply (or an echo of the
// request when reply is nil) and records what it received.
func udpServer(ctx context.Context, t *testing.T, addr string, reply []byte) (netip.AddrPort, <-chan []byte) {
	t.Helper()
	s, err := net.ListenPacket("udp", addr)
	if err != nil {
		t.Fatal(err)
	}
	got := make(chan []byte, 16)

	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()
	go func() {
		buf := make([]byte, 1024)
		for {
			n, clientAddr, err := s.ReadFrom(buf)
			if err != nil {
				return
			}
			in := append([]byte(nil), buf[:n]...)
			select {
			case got <- in:
			default:
			}
			out := reply
			if out == nil {
				out = in
			}
			if _, err := s.WriteTo(out, clientAddr); err != nil {
				return
			}
		}
	}()

	return s.LocalAddr().(*net.UDPAddr).AddrPort(), got
}

// silentUDPServer reads datagrams and never answers.
func silentUDPServer(ctx context.Context, t *testing.T, addr string) netip.AddrPort {
	t.Helper()
	s, err := net.ListenPacket("udp", addr)
	if err != nil {
		t.Fatal(err)
	}
	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()
	go func() {
		buf := make([]byte, 1024)
		for {
			if _, _, err := s.ReadFrom(buf); err != nil {
				return
			}
		}
	}()
	return s.LocalAddr().(*net.UDPAddr).AddrPort()
}

// closedUDPPort returns a loopback port that was just released.
func closedUDPPort(t *testing.T, addr string) netip.AddrPort {
	t.Helper()
	s, err := net.ListenPacket("udp", addr)
	if err != nil {
		t.Fatal(err)
	}
	ap := s.LocalAddr().(*net.UDPAddr).AddrPort()
	_ = s.Close()
	return ap
}

// tcpServer accepts connections on addr until ctx is done.
func tcpServer(ctx context.Context, t *testing.T, addr string) netip.AddrPort {
	t.Helper()
	l, err := net.Listen("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	go func() {
		<-ctx.Done()
		_ = l.Close()
	}()
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()
	return l.Addr().(*net.TCPAddr).AddrPort()
}

// closedTCPPort returns a loopback port with no listener behind it.
func closedTCPPort(t *testing.T, addr string) netip.AddrPort {
	t.Helper()
	l, err := net.Listen("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	ap := l.Addr().(*net.TCPAddr).AddrPort()
	_ = l.Close()
	return ap
}

// assertQuick fails when a probe that should not touch the network for long
// took more than a small constant.
func assertQuick(t *testing.T, start time.Time) {
	t.Helper()
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("probe blocked for %v", elapsed)
	}
}
