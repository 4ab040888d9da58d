package behavior

import (
	"log/slog"

	"github.com/sweeney/flower-controller/internal/clock"
)

// SleepPlanner owns the single deep-sleep deadline.
type SleepPlanner struct {
	clk      clock.Clock
	settings Settings
	device   Device
	remote   Remote
	sleeper  Sleeper
	logger   *slog.Logger

	deadline clock.Deadline
	sleeps   int
}

// NewSleepPlanner creates a planner with no sleep planned.
func NewSleepPlanner(clk clock.Clock, settings Settings, device Device, remote Remote, sleeper Sleeper, logger *slog.Logger) *SleepPlanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &SleepPlanner{
		clk:      clk,
		settings: settings,
		device:   device,
		remote:   remote,
		sleeper:  sleeper,
		logger:   logger,
	}
}

// Plan arms the deadline after the given timeout, replacing any earlier one.
// Nothing is armed while deep sleep is disabled.
func (p *SleepPlanner) Plan(after clock.Millis) {
	if !p.settings.DeepSleepEnabled() {
		return
	}
	p.deadline.Arm(p.clk.Now(), after)
	p.logger.Info("sleep planned", "in_ms", int64(after))
}

// Cancel disarms a planned sleep.
func (p *SleepPlanner) Cancel() {
	if !p.deadline.Armed() {
		return
	}
	p.deadline.Disarm()
	p.logger.Info("sleep interrupted")
}

// Armed reports whether a sleep is planned.
func (p *SleepPlanner) Armed() bool {
	return p.deadline.Armed()
}

// Remaining returns the time left before the planned sleep.
func (p *SleepPlanner) Remaining() clock.Millis {
	return p.deadline.Remaining(p.clk.Now())
}

// Sleeps returns how many times sleep was entered.
func (p *SleepPlanner) Sleeps() int {
	return p.sleeps
}

// Check enters sleep when the deadline has passed and the flower runs on
// battery. A due deadline is consumed either way. It reports whether sleep
// was entered.
func (p *SleepPlanner) Check(now clock.Millis, usbPowered bool) bool {
	if !p.deadline.Due(now) {
		return false
	}
	p.deadline.Disarm()
	if usbPowered {
		p.logger.Debug("sleep skipped, usb powered")
		return false
	}

	p.logger.Info("going to sleep")
	p.device.PrepareForSleep()
	p.remote.DisableBluetooth()
	p.remote.DisableWifi()
	p.sleeps++
	if err := p.sleeper.Sleep(); err != nil {
		p.logger.Error("sleep failed", "error", err)
	}
	return true
}
