package flower

import (
	"github.com/sweeney/flower-controller/internal/animation"
	"github.com/sweeney/flower-controller/internal/clock"
	"github.com/sweeney/flower-controller/internal/color"
)

// TransitionColor fades the ring to (h, s, b) over d.
//
// From black, the new hue and saturation apply immediately so the fade does
// not sweep from an undefined hue. Towards black, the current hue and
// saturation are kept so a later fade up returns to the same color.
func (f *Flower) TransitionColor(h, s, b float64, d clock.Millis) {
	target := color.HSB{H: h, S: s, B: b}
	if target == f.target {
		return
	}

	if f.current.B == 0 {
		f.current.H = h
		f.current.S = s
	} else if b == 0 {
		target.H = f.current.H
		target.S = f.current.S
	}

	f.target = target
	f.interruptible = false
	f.logger.Info("color", "h", target.H, "s", target.S, "b", target.B, "duration_ms", int64(d))

	if d <= 0 {
		f.anim.Stop(SlotColor)
		f.current = target
		f.showColor(f.current)
		return
	}
	f.origin = f.current
	f.anim.Start(SlotColor, d, f.transitionFrame)
}

func (f *Flower) transitionFrame(p animation.Param) {
	if p.State == animation.Completed {
		f.current = f.target
	} else {
		f.current = color.Blend(f.origin, f.target, p.Progress)
	}
	f.showColor(f.current)
}

// TransitionBrightness fades to brightness b keeping the target hue.
func (f *Flower) TransitionBrightness(b float64, d clock.Millis) {
	if b == f.target.B {
		return
	}
	f.TransitionColor(f.target.H, f.target.S, b, d)
}

// FlashColor pulses (h, s) at full brightness with an eased triangular
// envelope lasting d, repeating while the target stays lit.
func (f *Flower) FlashColor(h, s float64, d clock.Millis) {
	f.target = color.HSB{H: h, S: s, B: 1}
	f.current = f.target.WithBrightness(0)
	f.interruptible = false
	f.logger.Info("flash", "h", h, "s", s, "duration_ms", int64(d))
	f.anim.Start(SlotColor, d, f.flashFrame)
}

func (f *Flower) flashFrame(p animation.Param) {
	if p.Progress < 0.5 {
		f.current.B = color.EaseCubicInOut(p.Progress * 2)
	} else {
		f.current.B = color.EaseCubicInOut((1 - p.Progress) * 2)
	}
	f.showColor(f.current)

	if p.State == animation.Completed && f.target.Lit() {
		f.anim.Restart(p.Slot)
	}
}

// StopEffect stops whatever runs on the color slot. With retain, the color
// currently shown becomes the target.
func (f *Flower) StopEffect(retain bool) {
	f.anim.Stop(SlotColor)
	if retain {
		f.target = f.current
	}
}

// showColor fills the ring with c, or only the core pixel in low power mode.
func (f *Flower) showColor(c color.HSB) {
	for i := range f.ring {
		if f.lowPower && i > 0 {
			f.ring[i] = color.Black
			continue
		}
		f.ring[i] = c
	}
	f.dirty = true
}

// SetLowPowerMode limits plain colors to the core pixel. Effects that draw
// each pixel themselves are not affected.
func (f *Flower) SetLowPowerMode(on bool) {
	if f.lowPower == on {
		return
	}
	f.lowPower = on
	f.logger.Info("low power mode", "on", on)
	f.showColor(f.current)
}

// IsLowPowerMode reports whether only the core pixel shows plain colors.
func (f *Flower) IsLowPowerMode() bool {
	return f.lowPower
}
