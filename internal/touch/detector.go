// Package touch turns the raw, chattery edge signal of the leaf touch sensor
// into debounced gestures: Down, Long, Hold and Up.
//
// The edge path (Edge) is called from the GPIO event goroutine and only
// performs atomic stores. Everything else runs on the tick loop.
package touch

import (
	"log/slog"
	"sync/atomic"

	"github.com/sweeney/flower-controller/internal/clock"
)

// Event is a classified gesture.
type Event uint8

const (
	Down Event = iota
	Long
	Hold
	Up
)

func (e Event) String() string {
	switch e {
	case Down:
		return "DOWN"
	case Long:
		return "LONG"
	case Hold:
		return "HOLD"
	case Up:
		return "UP"
	}
	return "UNKNOWN"
}

// Sink receives gestures synchronously, in emission order.
// It returns true when it handled the event.
type Sink interface {
	OnTouch(e Event) bool
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(e Event) bool

// OnTouch calls f(e).
func (f SinkFunc) OnTouch(e Event) bool { return f(e) }

// Timing thresholds in milliseconds.
const (
	LongThreshold  clock.Millis = 2000
	HoldThreshold  clock.Millis = 5000
	FadeWindow     clock.Millis = 75
	CooldownWindow clock.Millis = 300
)

// Detector tracks one touch session at a time.
//
// The three atomic cells form a single-producer/single-consumer handoff: the
// edge goroutine writes lastEdge and opens touchStart; the tick loop reads
// both, closes the session and owns touchEnded. Update stores touchEnded
// before clearing touchStart, so an edge that races an Up sees the cooldown
// after its swap and withdraws the session; Update ignores a session while
// touchEnded is set.
type Detector struct {
	lastEdge   atomic.Int64
	touchStart atomic.Int64
	touchEnded atomic.Int64
	enabled    atomic.Bool

	// tick-loop state
	downEmitted bool
	longEmitted bool
	holdEmitted bool

	sink   Sink
	logger *slog.Logger
}

// NewDetector creates a disabled detector; call Enable to accept edges.
func NewDetector(logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{logger: logger}
}

// SetSink installs the single consumer of gesture events.
func (d *Detector) SetSink(s Sink) {
	d.sink = s
}

// Enable starts accepting edges.
func (d *Detector) Enable() {
	d.enabled.Store(true)
}

// Disable ignores further edges. An open session fades out normally.
func (d *Detector) Disable() {
	d.enabled.Store(false)
}

// Enabled reports whether edges are accepted.
func (d *Detector) Enabled() bool {
	return d.enabled.Load()
}

// Edge records a sensor edge at now. Safe to call from any goroutine;
// it never blocks or allocates.
func (d *Detector) Edge(now clock.Millis) {
	if !d.enabled.Load() {
		return
	}
	d.lastEdge.Store(int64(now))
	if !d.touchStart.CompareAndSwap(0, int64(now)) {
		return
	}
	if d.touchEnded.Load() != 0 {
		d.touchStart.CompareAndSwap(int64(now), 0)
	}
}

// Touching reports whether a session is open.
func (d *Detector) Touching() bool {
	return d.touchStart.Load() != 0
}

// CoolingDown reports whether edges are currently suppressed after an Up.
func (d *Detector) CoolingDown() bool {
	return d.touchEnded.Load() != 0
}

// Update emits the gestures due at now.
func (d *Detector) Update(now clock.Millis) {
	start := clock.Millis(d.touchStart.Load())
	ended := clock.Millis(d.touchEnded.Load())
	if start == 0 || ended != 0 {
		if ended != 0 && now-ended > CooldownWindow {
			d.logger.Debug("touch cooldown over")
			d.touchEnded.Store(0)
		}
		return
	}

	lastEdge := clock.Millis(d.lastEdge.Load())
	released := now-lastEdge > FadeWindow

	// Contact lasts until the last edge once the sensor has gone quiet.
	held := now - start
	if released {
		held = lastEdge - start
	}

	if !d.downEmitted {
		d.downEmitted = true
		d.emit(Down, held)
	}
	if !d.longEmitted && held >= LongThreshold {
		d.longEmitted = true
		d.emit(Long, held)
	}
	if !d.holdEmitted && held >= HoldThreshold {
		d.holdEmitted = true
		d.emit(Hold, held)
	}
	if released {
		d.downEmitted = false
		d.longEmitted = false
		d.holdEmitted = false
		d.touchEnded.Store(int64(now))
		d.touchStart.Store(0)
		d.emit(Up, held)
	}
}

func (d *Detector) emit(e Event, held clock.Millis) {
	d.logger.Debug("touch", "event", e.String(), "held_ms", int64(held))
	if d.sink != nil {
		d.sink.OnTouch(e)
	}
}
