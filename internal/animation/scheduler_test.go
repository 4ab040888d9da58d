package animation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/flower-controller/internal/clock"
)

func TestProgressAndCompletion(t *testing.T) {
	clk := clock.NewFake(1000)
	s := NewScheduler(clk, 2)

	var frames []Param
	s.Start(1, 100, func(p Param) { frames = append(frames, p) })
	require.True(t, s.Active(1))
	require.False(t, s.Active(0))

	s.Update()
	clk.Advance(50)
	s.Update()
	clk.Advance(50)
	s.Update()

	require.Len(t, frames, 3)
	assert.Equal(t, Started, frames[0].State)
	assert.InDelta(t, 0, frames[0].Progress, 1e-9)
	assert.Equal(t, Running, frames[1].State)
	assert.InDelta(t, 0.5, frames[1].Progress, 1e-9)
	assert.Equal(t, Completed, frames[2].State)
	assert.InDelta(t, 1, frames[2].Progress, 1e-9)

	assert.False(t, s.Active(1))
	assert.False(t, s.Animating())

	// Completed slots receive no further frames.
	clk.Advance(50)
	s.Update()
	assert.Len(t, frames, 3)
}

func TestStartReplacesRunningAnimation(t *testing.T) {
	clk := clock.NewFake(1)
	s := NewScheduler(clk, 1)

	var first, second int
	s.Start(0, 1000, func(Param) { first++ })
	s.Update()
	s.Start(0, 1000, func(Param) { second++ })
	s.Update()

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}

func TestRestartFromCompletion(t *testing.T) {
	clk := clock.NewFake(1)
	s := NewScheduler(clk, 1)

	completions := 0
	var fn Func
	fn = func(p Param) {
		if p.State == Completed {
			completions++
			if completions < 3 {
				s.Restart(p.Slot)
			}
		}
	}
	s.Start(0, 10, fn)

	for i := 0; i < 10; i++ {
		clk.Advance(10)
		s.Update()
	}

	assert.Equal(t, 3, completions)
	assert.False(t, s.Active(0))
}

func TestRestartUsesUpdateTimestamp(t *testing.T) {
	clk := clock.NewFake(1)
	s := NewScheduler(clk, 1)

	var last Param
	s.Start(0, 100, func(p Param) {
		last = p
		if p.State == Completed {
			s.Restart(p.Slot)
		}
	})

	clk.Advance(150)
	s.Update() // completes at 151, restarts from 151
	require.Equal(t, Completed, last.State)

	clk.Advance(25)
	s.Update()
	assert.Equal(t, Started, last.State)
	assert.InDelta(t, 0.25, last.Progress, 1e-9)
}

func TestStopClearsWithoutFrame(t *testing.T) {
	clk := clock.NewFake(1)
	s := NewScheduler(clk, 1)

	calls := 0
	s.Start(0, 100, func(Param) { calls++ })
	s.Stop(0)
	s.Update()

	assert.Zero(t, calls)
	assert.False(t, s.Animating())

	// Restart after Stop has nothing to rerun.
	s.Restart(0)
	assert.False(t, s.Active(0))
}

func TestZeroDurationCompletesImmediately(t *testing.T) {
	clk := clock.NewFake(1)
	s := NewScheduler(clk, 1)

	var got Param
	s.Start(0, 0, func(p Param) { got = p })
	s.Update()

	assert.Equal(t, Completed, got.State)
	assert.InDelta(t, 1, got.Progress, 1e-9)
}
