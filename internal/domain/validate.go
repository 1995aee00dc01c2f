package domain

import (
	"encoding/hex"
	"fmt"
	"math"
	"net/netip"
	"strconv"
	"strings"
	"time"
)

// maxTimeoutSeconds is the first value that no longer fits a time.Duration.
const maxTimeoutSeconds = float64(math.MaxInt64) / float64(time.Second)

// Args holds probe arguments as typed by a user. Empty strings mean the
// argument was not given.
type Args struct {
	Target  string
	Kind    string
	Port    string
	Payload string // hex, no "0x" prefix
	Timeout string // seconds, may be fractional
}

// ValidationError rejects an argument combination before any probe runs.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func reject(format string, a ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, a...)}
}

// ParseKind accepts a kind name in any case. Empty selects ICMP.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindICMP, nil
	case KindICMP, KindTCP, KindUDP, KindDNS:
		return k, nil
	}
	return "", reject("unknown ping kind %q (want one of dns, icmp, tcp, udp).", s)
}

// Validate turns raw arguments into a Request, applying the per-kind rules:
// ICMP takes neither port nor payload, TCP needs a port and takes no payload,
// UDP needs a port and defaults its payload to a single zero byte, DNS
// defaults its port to 53 and brings its own payload.
func Validate(a Args) (Request, error) {
	var req Request

	kind, err := ParseKind(a.Kind)
	if err != nil {
		return req, err
	}
	req.Kind = kind

	target := strings.TrimSpace(a.Target)
	if target == "" {
		return req, reject("target ip address is required.")
	}
	addr, err := netip.ParseAddr(target)
	if err != nil {
		return req, reject("invalid target ip address %q.", target)
	}
	req.Target = addr.Unmap()

	var port uint16
	hasPort := a.Port != ""
	if hasPort {
		n, err := strconv.ParseUint(a.Port, 10, 16)
		if err != nil || n == 0 {
			return req, reject("invalid port %q.", a.Port)
		}
		port = uint16(n)
	}

	var payload []byte
	hasPayload := a.Payload != ""
	if hasPayload {
		payload, err = hex.DecodeString(a.Payload)
		if err != nil {
			return req, reject("invalid payload %q: %v.", a.Payload, err)
		}
	}

	if a.Timeout != "" {
		secs, err := strconv.ParseFloat(a.Timeout, 64)
		if err != nil || math.IsNaN(secs) || secs < 0 || secs >= maxTimeoutSeconds {
			return req, reject("invalid timeout %q.", a.Timeout)
		}
		d := time.Duration(secs * float64(time.Second))
		req.Timeout = &d
	}

	switch kind {
	case KindICMP:
		if hasPort {
			return req, reject("ICMP ping does not use port.")
		}
		if hasPayload {
			return req, reject("ICMP ping does not use payload.")
		}
	case KindTCP:
		if !hasPort {
			return req, reject("TCP ping needs port.")
		}
		if hasPayload {
			return req, reject("TCP ping does not use payload.")
		}
	case KindUDP:
		if !hasPort {
			return req, reject("UDP ping needs port.")
		}
		if !hasPayload {
			payload = []byte{0}
		}
	case KindDNS:
		if !hasPort {
			port = DefaultDNSPort
		}
		if hasPayload {
			return req, reject("DNS ping does not use payload.")
		}
	}

	req.Port = port
	req.Payload = payload
	return req, nil
}
