package domain

import (
	"bytes"
	"errors"
	"net/netip"
	"testing"
	"time"
)

func TestValidate_Accepts(t *testing.T) {
	cases := []struct {
		name        string
		in          Args
		wantKind    Kind
		wantPort    uint16
		wantPayload []byte
	}{
		{"icmp default kind", Args{Target: "1.1.1.1"}, KindICMP, 0, nil},
		{"icmp v6", Args{Target: "::1", Kind: "icmp"}, KindICMP, 0, nil},
		{"dns default port", Args{Target: "1.1.1.1", Kind: "dns"}, KindDNS, 53, nil},
		{"dns explicit port", Args{Target: "1.1.1.1", Kind: "DNS", Port: "5353"}, KindDNS, 5353, nil},
		{"tcp", Args{Target: "10.0.0.1", Kind: "tcp", Port: "80"}, KindTCP, 80, nil},
		{"udp default payload", Args{Target: "10.0.0.1", Kind: "udp", Port: "7"}, KindUDP, 7, []byte{0}},
		{"udp payload", Args{Target: "10.0.0.1", Kind: "udp", Port: "53", Payload: "00ff10"}, KindUDP, 53, []byte{0x00, 0xff, 0x10}},
	}
	for _, c := range cases {
		req, err := Validate(c.in)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", c.name, err)
		}
		if req.Kind != c.wantKind || req.Port != c.wantPort || !bytes.Equal(req.Payload, c.wantPayload) {
			t.Fatalf("%s: got %+v", c.name, req)
		}
		if req.Timeout != nil {
			t.Fatalf("%s: want no timeout, got %v", c.name, *req.Timeout)
		}
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := []struct {
		in   Args
		want string
	}{
		{Args{Target: "1.1.1.1", Kind: "icmp", Port: "1"}, "ICMP ping does not use port."},
		{Args{Target: "1.1.1.1", Kind: "icmp", Payload: "00"}, "ICMP ping does not use payload."},
		{Args{Target: "1.1.1.1", Kind: "tcp"}, "TCP ping needs port."},
		{Args{Target: "1.1.1.1", Kind: "tcp", Port: "80", Payload: "00"}, "TCP ping does not use payload."},
		{Args{Target: "1.1.1.1", Kind: "udp"}, "UDP ping needs port."},
		{Args{Target: "1.1.1.1", Kind: "dns", Payload: "00"}, "DNS ping does not use payload."},
		{Args{Target: "", Kind: "icmp"}, "target ip address is required."},
	}
	for _, c := range cases {
		_, err := Validate(c.in)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%+v: want ValidationError, got %v", c.in, err)
		}
		if ve.Msg != c.want {
			t.Fatalf("%+v: message %q want %q", c.in, ve.Msg, c.want)
		}
	}
}

func TestValidate_RejectsMalformedValues(t *testing.T) {
	bad := []Args{
		{Target: "example.com"},
		{Target: "1.1.1.1", Kind: "sctp"},
		{Target: "1.1.1.1", Kind: "tcp", Port: "0"},
		{Target: "1.1.1.1", Kind: "tcp", Port: "65536"},
		{Target: "1.1.1.1", Kind: "tcp", Port: "http"},
		{Target: "1.1.1.1", Kind: "udp", Port: "9", Payload: "0x00"},
		{Target: "1.1.1.1", Kind: "udp", Port: "9", Payload: "abc"},
		{Target: "1.1.1.1", Timeout: "-1"},
		{Target: "1.1.1.1", Timeout: "NaN"},
		{Target: "1.1.1.1", Timeout: "+Inf"},
		{Target: "1.1.1.1", Timeout: "1e10"},
		{Target: "1.1.1.1", Timeout: "9223372036.854775808"},
		{Target: "1.1.1.1", Timeout: "soon"},
	}
	for _, in := range bad {
		if _, err := Validate(in); err == nil {
			t.Fatalf("%+v: want rejection", in)
		}
	}
}

func TestValidate_Timeout(t *testing.T) {
	req, err := Validate(Args{Target: "127.0.0.1", Timeout: "0.25"})
	if err != nil {
		t.Fatal(err)
	}
	if req.Timeout == nil || *req.Timeout != 250*time.Millisecond {
		t.Fatalf("timeout wrong: %v", req.Timeout)
	}

	start := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)
	if got := req.Deadline(start); !got.Equal(start.Add(250 * time.Millisecond)) {
		t.Fatalf("deadline wrong: %v", got)
	}

	zero, err := Validate(Args{Target: "127.0.0.1", Timeout: "0"})
	if err != nil {
		t.Fatal(err)
	}
	if got := zero.Deadline(start); !got.Equal(start) {
		t.Fatalf("zero timeout should expire at start, got %v", got)
	}

	long, err := Validate(Args{Target: "127.0.0.1", Timeout: "9e9"})
	if err != nil {
		t.Fatal(err)
	}
	if *long.Timeout <= 0 || !long.Deadline(start).After(start) {
		t.Fatalf("long timeout must stay positive, got %v", *long.Timeout)
	}
	if _, err := Validate(Args{Target: "127.0.0.1", Timeout: "1e10"}); err == nil {
		t.Fatal("timeout beyond time.Duration range accepted")
	}

	none, _ := Validate(Args{Target: "127.0.0.1"})
	if !none.Deadline(start).IsZero() {
		t.Fatalf("no timeout should mean no deadline")
	}
}

func TestValidate_UnmapsIPv4InIPv6(t *testing.T) {
	req, err := Validate(Args{Target: "::ffff:127.0.0.1", Kind: "tcp", Port: "80"})
	if err != nil {
		t.Fatal(err)
	}
	if !req.Target.Is4() {
		t.Fatalf("want plain IPv4 target, got %v", req.Target)
	}
	if req.AddrPort() != netip.MustParseAddrPort("127.0.0.1:80") {
		t.Fatalf("addrport wrong: %v", req.AddrPort())
	}
}
