package probe

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/pingmore/internal/domain"
)

type probeFunc func(req domain.Request, until time.Time) error

var probes = map[domain.Kind]probeFunc{
	domain.KindICMP: func(req domain.Request, until time.Time) error {
		return Echo(req.Target, until)
	},
	domain.KindTCP: func(req domain.Request, until time.Time) error {
		return Connect(req.AddrPort(), until)
	},
	domain.KindUDP: func(req domain.Request, until time.Time) error {
		return UDPEcho(req.AddrPort(), req.Payload, until)
	},
	domain.KindDNS: func(req domain.Request, until time.Time) error {
		return DNS(req.AddrPort(), until)
	},
}

// Dispatcher runs the probe matching a request's kind and times it.
type Dispatcher struct {
	Logger *zap.Logger
}

func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{Logger: logger}
}

// Run probes once. The deadline is start + req.Timeout, if any.
func (d *Dispatcher) Run(req domain.Request) CheckResult {
	start := time.Now()
	return d.run(req, start, req.Deadline(start))
}

// Check implements Checker. A context deadline earlier than the request's own
// timeout takes precedence. Cancellation without a deadline is not observed
// once the probe has started.
func (d *Dispatcher) Check(ctx context.Context, req domain.Request) CheckResult {
	start := time.Now()
	until := req.Deadline(start)
	if dl, ok := ctx.Deadline(); ok && (until.IsZero() || dl.Before(until)) {
		until = dl
	}
	return d.run(req, start, until)
}

func (d *Dispatcher) run(req domain.Request, start, until time.Time) CheckResult {
	out := CheckResult{Name: string(req.Kind)}

	fn, ok := probes[req.Kind]
	if !ok {
		out.Err = fmt.Errorf("unsupported probe kind %q", req.Kind)
		out.Outcome = Failure
		return out
	}

	out.Err = fn(req, until)
	out.Elapsed = time.Since(start)
	out.Outcome = Classify(out.Err)

	d.Logger.Debug("probe_done",
		zap.String("kind", out.Name),
		zap.Stringer("target", req.Target),
		zap.Uint16("port", req.Port),
		zap.Stringer("outcome", out.Outcome),
		zap.Float64("latency_ms", out.LatencyMS()),
		zap.Error(out.Err),
	)
	return out
}
