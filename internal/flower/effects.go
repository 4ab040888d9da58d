package flower

import (
	"fmt"

	"github.com/sweeney/flower-controller/internal/animation"
	"github.com/sweeney/flower-controller/internal/clock"
	"github.com/sweeney/flower-controller/internal/color"
)

// Effect is a perpetual color animation.
type Effect uint8

const (
	Rainbow Effect = iota
	RainbowLoop
	CandleEffect
)

func (e Effect) String() string {
	switch e {
	case Rainbow:
		return "rainbow"
	case RainbowLoop:
		return "rainbow-loop"
	case CandleEffect:
		return "candle"
	}
	return "unknown"
}

// ParseEffect maps an effect name back to its value.
func ParseEffect(s string) (Effect, error) {
	switch s {
	case "rainbow":
		return Rainbow, nil
	case "rainbow-loop":
		return RainbowLoop, nil
	case "candle":
		return CandleEffect, nil
	}
	return 0, fmt.Errorf("unknown effect %q", s)
}

const (
	rainbowPeriod clock.Millis = 10000
	candlePeriod  clock.Millis = 1000

	candleMinBrightness = 0.2
	candleMinFlicker    = 10
	candleMaxFlicker    = 400
)

// flicker is the independent sub-animation of one secondary candle pixel.
type flicker struct {
	origin   color.HSB
	target   color.HSB
	start    clock.Millis
	duration clock.Millis
}

// StartEffect replaces the color animation with a perpetual effect.
func (f *Flower) StartEffect(e Effect) {
	f.interruptible = true
	f.logger.Info("effect", "name", e.String())

	switch e {
	case Rainbow:
		f.origin = f.current
		f.anim.Start(SlotColor, rainbowPeriod, f.rainbowFrame)
	case RainbowLoop:
		f.target = color.White
		f.current = color.White
		f.anim.Start(SlotColor, rainbowPeriod, f.rainbowLoopFrame)
	case CandleEffect:
		f.target = color.Candle
		f.current = color.Candle
		now := f.clk.Now()
		for i := range f.candle {
			f.candle[i] = flicker{origin: color.Candle, target: color.Candle, start: now}
		}
		f.anim.Start(SlotColor, candlePeriod, f.candleFrame)
	}
}

func (f *Flower) rainbowFrame(p animation.Param) {
	f.current = color.HSB{H: color.WrapHue(f.origin.H + p.Progress), S: 1, B: f.origin.B}
	f.showColor(f.current)

	if p.State == animation.Completed && f.target.Lit() {
		f.anim.Restart(p.Slot)
	}
}

func (f *Flower) rainbowLoopFrame(p animation.Param) {
	step := 1.0 / float64(len(f.ring))
	for i := range f.ring {
		f.ring[i] = color.HSB{H: color.WrapHue(p.Progress + float64(i)*step), S: 1, B: f.brightness}
	}
	f.current = f.ring[0]
	f.dirty = true

	if p.State == animation.Completed {
		f.anim.Restart(p.Slot)
	}
}

func (f *Flower) candleFrame(p animation.Param) {
	f.ring[0] = f.target
	for i := range f.candle {
		fl := &f.candle[i]
		if p.Now-fl.start >= fl.duration {
			fl.origin = fl.target
			fl.target = color.Candle.WithBrightness(candleMinBrightness + f.rnd.Float64()*(1-candleMinBrightness))
			fl.start = p.Now
			fl.duration = clock.Millis(candleMinFlicker + f.rnd.IntN(candleMaxFlicker-candleMinFlicker+1))
		}
		progress := float64(p.Now-fl.start) / float64(fl.duration)
		f.ring[i+1] = color.BlendShortestHue(fl.origin, fl.target, progress)
	}
	f.dirty = true

	if p.State == animation.Completed {
		f.anim.Restart(p.Slot)
	}
}
