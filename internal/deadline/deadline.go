// Package deadline turns an optional absolute deadline into the per-step
// timeout a socket operation is allowed to wait.
//
// A zero time.Time means "no deadline", the same convention net.Conn uses.
package deadline

import "time"

// Remaining returns the time left until deadline as seen at now.
// ok is false when no deadline was supplied. A deadline that has already
// passed yields a zero duration, never a negative one.
func Remaining(deadline, now time.Time) (timeout time.Duration, ok bool) {
	if deadline.IsZero() {
		return 0, false
	}
	if d := deadline.Sub(now); d > 0 {
		return d, true
	}
	return 0, true
}

// Apply recomputes the remaining timeout right now and installs it through
// set, typically a conn's SetReadDeadline or SetWriteDeadline.
// Without a deadline the socket is left blocking. With zero time left the
// next I/O call fails immediately with a timeout.
func Apply(set func(time.Time) error, deadline time.Time) error {
	now := time.Now()
	timeout, ok := Remaining(deadline, now)
	if !ok {
		return set(time.Time{})
	}
	return set(now.Add(timeout))
}
