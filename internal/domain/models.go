package domain

import (
	"net/netip"
	"time"
)

// Kind selects the protocol used to reach a target.
type Kind string

const (
	KindICMP Kind = "icmp"
	KindTCP  Kind = "tcp"
	KindUDP  Kind = "udp"
	KindDNS  Kind = "dns"
)

// DefaultDNSPort is used for DNS probes when no port was given.
const DefaultDNSPort uint16 = 53

// Kinds lists every supported kind, in help-text order.
var Kinds = []Kind{KindDNS, KindICMP, KindTCP, KindUDP}

// Request is a validated probe invocation. Port is zero for ICMP and Payload
// is only set for UDP.
type Request struct {
	Kind    Kind
	Target  netip.Addr
	Port    uint16
	Payload []byte
	Timeout *time.Duration // nil means wait indefinitely
}

// AddrPort returns the socket address for port based kinds.
func (r Request) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(r.Target, r.Port)
}

// Deadline returns the absolute deadline for a probe starting at start, or
// the zero time when the request has no timeout. A zero timeout yields a
// deadline equal to start, which expires before the first I/O step.
func (r Request) Deadline(start time.Time) time.Time {
	if r.Timeout == nil {
		return time.Time{}
	}
	return start.Add(*r.Timeout)
}

// Result is a finished probe as reported by the API.
type Result struct {
	ID        int64     `json:"id"`
	Kind      Kind      `json:"kind"`
	Target    string    `json:"target"`
	Port      uint16    `json:"port,omitempty"`
	Outcome   string    `json:"outcome"` // "success" | "timeout" | "error"
	LatencyMS float64   `json:"latency_ms"`
	Message   string    `json:"message,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}
