package probe

import (
	"context"
	"time"

	"github.com/hamed0406/pingmore/internal/domain"
)

// CheckResult is the unified result of a single probe.
//
// Fields:
//   - Name: the probe kind that ran ("icmp", "tcp", "udp", "dns").
//   - Err: the underlying I/O or protocol error; nil on success.
//   - Elapsed: wall-clock time spent inside the probe call.
type CheckResult struct {
	Name    string
	Outcome Outcome
	Elapsed time.Duration
	Err     error
}

// Success reports whether the round trip completed.
func (r CheckResult) Success() bool { return r.Outcome == Success }

// LatencyMS is Elapsed in fractional milliseconds.
func (r CheckResult) LatencyMS() float64 {
	return float64(r.Elapsed) / float64(time.Millisecond)
}

// Message is the error text, or empty on success.
func (r CheckResult) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Checker runs exactly one probe for a validated request.
type Checker interface {
	Check(ctx context.Context, req domain.Request) CheckResult
}
