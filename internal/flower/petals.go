package flower

import (
	"math"

	"github.com/sweeney/flower-controller/internal/animation"
	"github.com/sweeney/flower-controller/internal/clock"
	"github.com/sweeney/flower-controller/internal/mathx"
)

// SetPetalsOpenLevel moves the petals to level percent over d.
// Requesting the level already targeted keeps the running movement.
func (f *Flower) SetPetalsOpenLevel(level int, d clock.Millis) {
	level = mathx.Clamp(level, 0, 100)
	if level == f.petalsTarget {
		return
	}
	f.petalsTarget = level
	f.petalsOrigin = f.petalsCurrent
	f.logger.Info("petals", "level", level, "duration_ms", int64(d))

	if d <= 0 {
		f.anim.Stop(SlotMotion)
		f.movePetals(float64(level))
		f.setMotorPower(false)
		return
	}
	f.anim.Start(SlotMotion, d, f.petalsFrame)
}

func (f *Flower) petalsFrame(p animation.Param) {
	level := mathx.Lerp(f.petalsOrigin, float64(f.petalsTarget), p.Progress)
	if p.State == animation.Completed {
		level = float64(f.petalsTarget)
	}
	f.movePetals(level)
	if p.State == animation.Completed {
		f.setMotorPower(false)
	}
}

func (f *Flower) movePetals(level float64) {
	f.setMotorPower(true)
	if err := f.hw.Motor.MoveTo(level); err != nil {
		f.logger.Warn("motor move failed", "level", level, "error", err)
		return
	}
	f.petalsCurrent = level
}

// PetalsTargetLevel returns the requested open level.
func (f *Flower) PetalsTargetLevel() int {
	return f.petalsTarget
}

// PetalsOpenLevel returns the current open level, rounded.
func (f *Flower) PetalsOpenLevel() int {
	return int(math.Round(f.petalsCurrent))
}
