package probe

import (
	"net/netip"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// family holds everything that differs between IPv4 and IPv6 probes.
type family struct {
	name string

	tcpNetwork  string
	udpNetwork  string
	unspecified netip.Addr

	echoRequest byte
	echoReply   byte
	typeName    func(code byte) string
}

var families = map[bool]family{
	true: {
		name:        "ipv4",
		tcpNetwork:  "tcp4",
		udpNetwork:  "udp4",
		unspecified: netip.IPv4Unspecified(),
		echoRequest: byte(ipv4.ICMPTypeEcho),
		echoReply:   byte(ipv4.ICMPTypeEchoReply),
		typeName:    func(code byte) string { return ipv4.ICMPType(code).String() },
	},
	false: {
		name:        "ipv6",
		tcpNetwork:  "tcp6",
		udpNetwork:  "udp6",
		unspecified: netip.IPv6Unspecified(),
		echoRequest: byte(ipv6.ICMPTypeEchoRequest),
		echoReply:   byte(ipv6.ICMPTypeEchoReply),
		typeName:    func(code byte) string { return ipv6.ICMPType(code).String() },
	},
}

// familyOf picks the family for addr. IPv4-mapped IPv6 addresses count as IPv4.
func familyOf(addr netip.Addr) family {
	return families[addr.Unmap().Is4()]
}
