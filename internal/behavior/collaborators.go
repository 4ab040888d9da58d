package behavior

import (
	"github.com/sweeney/flower-controller/internal/clock"
	"github.com/sweeney/flower-controller/internal/color"
	"github.com/sweeney/flower-controller/internal/flower"
	"github.com/sweeney/flower-controller/internal/power"
)

// Device is the animated body the supervisor commands. *flower.Flower
// implements it.
type Device interface {
	// ReadPowerFacts reports false when the hardware could not be read.
	ReadPowerFacts() (power.Facts, bool)

	SetPetalsOpenLevel(level int, d clock.Millis)
	TransitionColor(h, s, b float64, d clock.Millis)
	TransitionBrightness(b float64, d clock.Millis)
	FlashColor(h, s float64, d clock.Millis)
	StartEffect(e flower.Effect)
	StopEffect(retain bool)
	ShowStatus(c color.HSB, kind flower.StatusAnimation, d clock.Millis)

	EnableTouch()
	DisableTouch()
	PrepareForSleep()

	ArePetalsMoving() bool
	IsAnimating() bool
	IsLit() bool
	IsChangingColor() bool
	PetalsOpenLevel() int
	Color() color.HSB
}

// Remote controls the radios and the remote-control link.
// Calls never fail from the caller's point of view; implementations log and
// skip what they cannot do.
type Remote interface {
	EnableBluetooth()
	DisableBluetooth()
	EnableWifi()
	DisableWifi()
	IsBluetoothEnabled() bool
	IsWifiEnabled() bool
	IsBluetoothConnected() bool
	IsWifiConnected() bool

	PushStatus(level int, charging bool)

	StartUpdate(ref string)
	IsUpdateRunning() bool
}

// Settings is the read-mostly configuration the supervisor consults.
type Settings interface {
	BluetoothEnabled() bool
	BluetoothAlwaysOn() bool
	SetBluetoothAlwaysOn(on bool)
	WifiEnabled() bool
	DeepSleepEnabled() bool
	Palette() []color.HSB
}

// Sleeper enters platform sleep. In production a successful call does not
// return.
type Sleeper interface {
	Sleep() error
}

// StateSink observes accepted state transitions.
type StateSink interface {
	OnStateChange(from, to State)
}

// Rand draws palette indices.
type Rand interface {
	IntN(n int) int
}
