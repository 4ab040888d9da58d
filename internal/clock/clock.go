// Package clock provides the millisecond time base used by every tick-driven
// component, and the polled Deadline that replaces callback timers.
//
// The counter is not protected against overflow. On a 64-bit counter that is
// far beyond any realistic uptime; comparisons below are plain and do not
// attempt wraparound arithmetic.
package clock

import (
	"sync/atomic"
	"time"
)

// Millis is a monotonic timestamp in milliseconds since process start.
// Zero is reserved as the "unset" sentinel.
type Millis int64

// Duration converts a time.Duration to a Millis span.
func Duration(d time.Duration) Millis {
	return Millis(d / time.Millisecond)
}

// Std converts a Millis span back to a time.Duration.
func (m Millis) Std() time.Duration {
	return time.Duration(m) * time.Millisecond
}

// Clock returns the current monotonic time.
// Implementations must be safe to call from the GPIO edge goroutine.
type Clock interface {
	Now() Millis
}

// Monotonic is the production clock, backed by the runtime monotonic clock.
type Monotonic struct {
	start time.Time
}

// NewMonotonic starts a clock at 1ms so no reading collides with the sentinel.
func NewMonotonic() *Monotonic {
	return &Monotonic{start: time.Now().Add(-time.Millisecond)}
}

// Now returns milliseconds since the clock was created.
func (m *Monotonic) Now() Millis {
	return Millis(time.Since(m.start) / time.Millisecond)
}

// Fake is a manually advanced clock for tests.
type Fake struct {
	now atomic.Int64
}

// NewFake creates a fake clock reading start.
func NewFake(start Millis) *Fake {
	f := &Fake{}
	f.now.Store(int64(start))
	return f
}

// Now returns the current fake time.
func (f *Fake) Now() Millis {
	return Millis(f.now.Load())
}

// Set moves the fake clock to t.
func (f *Fake) Set(t Millis) {
	f.now.Store(int64(t))
}

// Advance moves the fake clock forward by d milliseconds.
func (f *Fake) Advance(d Millis) Millis {
	return Millis(f.now.Add(int64(d)))
}
