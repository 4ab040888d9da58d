// Package animation advances a small fixed set of time-sliced animation slots.
//
// Every slot holds at most one animation. Starting an animation on an occupied
// slot replaces it immediately. Each tick the scheduler computes the progress
// of every active slot and hands it to the slot's continuation, which renders
// the value and may restart itself when it completes.
package animation

import "github.com/sweeney/flower-controller/internal/clock"

// State is the phase of an animation reported to its continuation.
type State uint8

const (
	Started State = iota
	Running
	Completed
)

func (s State) String() string {
	switch s {
	case Started:
		return "started"
	case Running:
		return "running"
	case Completed:
		return "completed"
	}
	return "unknown"
}

// Param is handed to a continuation on every frame.
type Param struct {
	Slot     int
	Progress float64 // 0..1
	State    State
	Now      clock.Millis
}

// Func is a slot continuation.
type Func func(p Param)

type slot struct {
	active   bool
	started  bool
	start    clock.Millis
	duration clock.Millis
	fn       Func
}

// Scheduler owns the slots. Not safe for concurrent use; it is driven from
// the tick loop only.
type Scheduler struct {
	clk      clock.Clock
	slots    []slot
	updating bool
	now      clock.Millis
}

// NewScheduler creates a scheduler with n slots.
func NewScheduler(clk clock.Clock, n int) *Scheduler {
	return &Scheduler{
		clk:   clk,
		slots: make([]slot, n),
	}
}

// Slots returns the number of slots.
func (s *Scheduler) Slots() int {
	return len(s.slots)
}

func (s *Scheduler) timestamp() clock.Millis {
	if s.updating {
		return s.now
	}
	return s.clk.Now()
}

// Start runs fn on slot i for duration, replacing anything already there.
// A zero duration completes on the next Update.
func (s *Scheduler) Start(i int, duration clock.Millis, fn Func) {
	if duration < 0 {
		duration = 0
	}
	s.slots[i] = slot{
		active:   true,
		start:    s.timestamp(),
		duration: duration,
		fn:       fn,
	}
}

// Restart reruns the last continuation of slot i from the beginning with the
// same duration. Used by continuations on completion for perpetual effects.
func (s *Scheduler) Restart(i int) {
	sl := &s.slots[i]
	if sl.fn == nil {
		return
	}
	sl.active = true
	sl.started = false
	sl.start = s.timestamp()
}

// Stop clears slot i without a final frame.
func (s *Scheduler) Stop(i int) {
	s.slots[i] = slot{}
}

// Active reports whether slot i has a running animation.
func (s *Scheduler) Active(i int) bool {
	return s.slots[i].active
}

// Animating reports whether any slot is active.
func (s *Scheduler) Animating() bool {
	for i := range s.slots {
		if s.slots[i].active {
			return true
		}
	}
	return false
}

// Update advances every active slot to the current time.
func (s *Scheduler) Update() {
	s.now = s.clk.Now()
	s.updating = true
	defer func() { s.updating = false }()

	for i := range s.slots {
		sl := &s.slots[i]
		if !sl.active {
			continue
		}

		p := Param{Slot: i, Now: s.now}
		elapsed := s.now - sl.start
		switch {
		case elapsed >= sl.duration:
			p.Progress = 1
			p.State = Completed
			// Deactivate first so the continuation can restart the slot.
			sl.active = false
		case !sl.started:
			p.Progress = float64(elapsed) / float64(sl.duration)
			p.State = Started
		default:
			p.Progress = float64(elapsed) / float64(sl.duration)
			p.State = Running
		}
		sl.started = true

		sl.fn(p)
	}
}
