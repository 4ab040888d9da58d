// Package flower is the animated body of the device: the petal motor, the
// ring of color pixels and the status pixel, driven through the animation
// scheduler. It implements the hardware contract the behavior supervisor
// consumes.
package flower

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/sweeney/flower-controller/internal/animation"
	"github.com/sweeney/flower-controller/internal/clock"
	"github.com/sweeney/flower-controller/internal/color"
	"github.com/sweeney/flower-controller/internal/power"
	"github.com/sweeney/flower-controller/internal/touch"
)

// Animation slots.
const (
	SlotMotion = 0
	SlotColor  = 1
	slotCount  = 2
)

// RailSettle is how long a power rail needs after switching on before the
// driver behind it may be addressed.
const RailSettle = 5 * time.Millisecond

// Ring is the color pixel chain. Pixel 0 is the core pixel.
type Ring interface {
	Show(pixels []color.HSB) error
}

// StatusLight is the single status pixel.
type StatusLight interface {
	Show(c color.HSB) error
}

// Motor positions the petals, level 0 (closed) .. 100 (open).
type Motor interface {
	MoveTo(level float64) error
}

// Rail switches a power rail.
type Rail interface {
	SetPower(on bool) error
}

// PowerSensor reads the charger and battery hardware.
type PowerSensor interface {
	ReadPowerFacts() (power.Facts, error)
}

// Hardware bundles the outputs and sensors the flower drives.
type Hardware struct {
	Ring        Ring
	Status      StatusLight
	Motor       Motor
	PixelsRail  Rail
	MotorRail   Rail
	PowerSensor PowerSensor
}

// Options tunes the flower.
type Options struct {
	RingPixels      int     // including the core pixel
	ColorBrightness float64 // brightness of the rainbow loop effect
	Seed            uint64
	LowPowerMode    bool    // light only the core pixel
	// Settle waits for a power rail; defaults to time.Sleep.
	Settle func(time.Duration)
}

// Flower is driven from the tick loop only.
type Flower struct {
	clk    clock.Clock
	anim   *animation.Scheduler
	hw     Hardware
	touch  *touch.Detector
	logger *slog.Logger
	rnd    *rand.Rand
	settle func(time.Duration)

	brightness float64

	// petals, in percent
	petalsTarget  int
	petalsOrigin  float64
	petalsCurrent float64
	motorPowered  bool

	// ring
	current       color.HSB
	origin        color.HSB
	target        color.HSB
	interruptible bool
	ring          []color.HSB
	dirty         bool
	pixelsPowered bool
	lowPower      bool
	candle        []flicker

	status statusAnimation
	shown  color.HSB

	power power.Facts
}

// New creates a flower with dark pixels and closed petals.
func New(clk clock.Clock, hw Hardware, det *touch.Detector, opts Options, logger *slog.Logger) *Flower {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RingPixels <= 0 {
		opts.RingPixels = 7
	}
	if opts.ColorBrightness <= 0 {
		opts.ColorBrightness = 1
	}
	settle := opts.Settle
	if settle == nil {
		settle = time.Sleep
	}
	return &Flower{
		clk:        clk,
		anim:       animation.NewScheduler(clk, slotCount),
		hw:         hw,
		touch:      det,
		logger:     logger,
		rnd:        rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		settle:     settle,
		brightness: opts.ColorBrightness,
		lowPower:   opts.LowPowerMode,
		ring:       make([]color.HSB, opts.RingPixels),
		candle:     make([]flicker, opts.RingPixels-1),
		shown:      color.HSB{H: -1},
	}
}

// SetColorBrightness changes the brightness used by the rainbow loop.
func (f *Flower) SetColorBrightness(b float64) {
	f.brightness = b
}

// Update advances all animations and pushes changed pixels to the hardware.
func (f *Flower) Update() {
	f.anim.Update()
	now := f.clk.Now()

	if f.current.Lit() {
		f.setPixelsPower(true)
		if f.dirty {
			f.flush()
		}
	} else if f.pixelsPowered {
		f.flush()
		f.setPixelsPower(false)
	}

	f.renderStatus(now)
}

func (f *Flower) flush() {
	if err := f.hw.Ring.Show(f.ring); err != nil {
		f.logger.Warn("pixels write failed", "error", err)
		return
	}
	f.dirty = false
}

func (f *Flower) setPixelsPower(on bool) {
	if on == f.pixelsPowered {
		return
	}
	if err := f.hw.PixelsRail.SetPower(on); err != nil {
		f.logger.Warn("pixels rail switch failed", "on", on, "error", err)
		return
	}
	f.pixelsPowered = on
	f.logger.Debug("pixels power", "on", on)
	if on {
		f.settle(RailSettle)
		f.dirty = true
	}
}

func (f *Flower) setMotorPower(on bool) {
	if on == f.motorPowered {
		return
	}
	if err := f.hw.MotorRail.SetPower(on); err != nil {
		f.logger.Warn("motor rail switch failed", "on", on, "error", err)
		return
	}
	f.motorPowered = on
	f.logger.Debug("motor power", "on", on)
	if on {
		f.settle(RailSettle)
	}
}

// ReadPowerFacts reads the power hardware. On a read error it returns the
// last good reading and false; before the first good read that is the zero
// Facts, which callers must not act on.
func (f *Flower) ReadPowerFacts() (power.Facts, bool) {
	facts, err := f.hw.PowerSensor.ReadPowerFacts()
	if err != nil {
		f.logger.Warn("power read failed", "error", err)
		return f.power, false
	}
	f.power = facts
	f.logger.Debug("power",
		"voltage", facts.BatteryVoltage,
		"level", facts.BatteryLevel,
		"charging", facts.Charging,
		"usb", facts.USBPowered,
		"switched_on", facts.SwitchedOn)
	return facts, true
}

// EnableTouch starts accepting touch edges.
func (f *Flower) EnableTouch() {
	if f.touch != nil {
		f.touch.Enable()
	}
}

// DisableTouch ignores touch edges.
func (f *Flower) DisableTouch() {
	if f.touch != nil {
		f.touch.Disable()
	}
}

// PrepareForSleep quiesces every output before the platform sleeps.
func (f *Flower) PrepareForSleep() {
	f.anim.Stop(SlotColor)
	f.anim.Stop(SlotMotion)
	f.DisableTouch()

	f.current = color.Black
	f.target = color.Black
	f.showColor(color.Black)
	if f.pixelsPowered {
		f.flush()
		f.setPixelsPower(false)
	}
	f.setMotorPower(false)

	f.status = statusAnimation{}
	if err := f.hw.Status.Show(color.Black); err != nil {
		f.logger.Warn("status write failed", "error", err)
	}
	f.shown = color.Black
}

// IsLit reports whether the pixel rail is powered.
func (f *Flower) IsLit() bool {
	return f.pixelsPowered
}

// IsAnimating reports whether any slot is running.
func (f *Flower) IsAnimating() bool {
	return f.anim.Animating()
}

// ArePetalsMoving reports whether the motion slot is running.
func (f *Flower) ArePetalsMoving() bool {
	return f.anim.Active(SlotMotion)
}

// IsChangingColor reports whether a non-interruptible color change runs.
// Perpetual effects are interruptible and do not count.
func (f *Flower) IsChangingColor() bool {
	return !f.interruptible && f.anim.Active(SlotColor)
}

// Color returns the target color.
func (f *Flower) Color() color.HSB {
	return f.target
}

// CurrentColor returns the color currently shown.
func (f *Flower) CurrentColor() color.HSB {
	return f.current
}

// Pixels returns a copy of the rendered ring.
func (f *Flower) Pixels() []color.HSB {
	out := make([]color.HSB, len(f.ring))
	copy(out, f.ring)
	return out
}
