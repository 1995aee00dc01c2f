package probe

import (
	"context"
	"errors"
	"net"
	"os"
)

// Outcome classifies a finished probe.
type Outcome int

const (
	Success Outcome = iota
	Timeout
	Failure
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Timeout:
		return "timeout"
	default:
		return "error"
	}
}

// Classify maps a probe error to its outcome. Timeouts are an expected
// result and are kept apart from every other failure.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return Success
	case IsTimeout(err):
		return Timeout
	default:
		return Failure
	}
}

// IsTimeout reports whether err means a deadline ran out before an I/O step
// completed.
func IsTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
