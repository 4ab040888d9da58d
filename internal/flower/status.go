package flower

import (
	"github.com/sweeney/flower-controller/internal/clock"
	"github.com/sweeney/flower-controller/internal/color"
)

// StatusAnimation is how the status pixel presents its color.
type StatusAnimation uint8

const (
	Still StatusAnimation = iota
	BlinkOnce
	Pulsating
)

func (a StatusAnimation) String() string {
	switch a {
	case Still:
		return "still"
	case BlinkOnce:
		return "blink-once"
	case Pulsating:
		return "pulsating"
	}
	return "unknown"
}

type statusAnimation struct {
	color    color.HSB
	kind     StatusAnimation
	duration clock.Millis
	start    clock.Millis
}

// ShowStatus sets the status pixel. Blink and pulse take d per cycle.
func (f *Flower) ShowStatus(c color.HSB, kind StatusAnimation, d clock.Millis) {
	f.status = statusAnimation{color: c, kind: kind, duration: d, start: f.clk.Now()}
}

// StatusColor returns the color the status pixel is currently showing.
func (f *Flower) StatusColor() color.HSB {
	return f.shown
}

func (f *Flower) statusFrame(now clock.Millis) color.HSB {
	s := f.status
	if s.kind == Still || s.duration <= 0 {
		return s.color
	}

	elapsed := now - s.start
	if s.kind == BlinkOnce && elapsed >= s.duration {
		return color.Black
	}
	phase := float64(elapsed%s.duration) / float64(s.duration)
	var level float64
	if phase < 0.5 {
		level = color.EaseCubicInOut(phase * 2)
	} else {
		level = color.EaseCubicInOut((1 - phase) * 2)
	}
	return s.color.WithBrightness(s.color.B * level)
}

func (f *Flower) renderStatus(now clock.Millis) {
	c := f.statusFrame(now)
	if c == f.shown {
		return
	}
	if err := f.hw.Status.Show(c); err != nil {
		f.logger.Warn("status write failed", "error", err)
		return
	}
	f.shown = c
}
