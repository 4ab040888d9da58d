// Package behavior owns the flower's behavior state machine: battery
// safety, the radio lifecycle, deep sleep and the pairing, remote-control and
// update modes.
//
// Everything here runs on the tick loop. Gestures, remote sessions and update
// requests are delivered synchronously from that loop.
package behavior

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/sweeney/flower-controller/internal/clock"
	"github.com/sweeney/flower-controller/internal/color"
	"github.com/sweeney/flower-controller/internal/power"
	"github.com/sweeney/flower-controller/internal/touch"
)

// Timings, tuned for a 1600mAh LiPo cell.
const (
	BluetoothStartDelay clock.Millis = 2000
	WifiStartDelay      clock.Millis = 2500
	InactivityTimeout   clock.Millis = 60000
	LowBatteryWarning   clock.Millis = 5000
	WatchdogInterval    clock.Millis = 1000
	StatusPushInterval  clock.Millis = 15000

	// lowBatteryRecheck is the wait before re-reading a dead battery at
	// startup; a cell under load can dip briefly.
	lowBatteryRecheck = 500 * time.Millisecond

	pairingFlash       clock.Millis = 1000
	pairingCancelFade  clock.Millis = 500
	lowBatteryFlash    clock.Millis = 1000
	shutdownTransition clock.Millis = 2500
	updateFlash        clock.Millis = 600
)

// Deps are the collaborators of a Supervisor.
type Deps struct {
	Clock    clock.Clock
	Device   Device
	Remote   Remote
	Settings Settings
	Planner  *SleepPlanner
	Logger   *slog.Logger
	// Rand draws palette colors; defaults to a time-seeded PCG.
	Rand Rand
	// Wait blocks for a short hardware wait; defaults to time.Sleep.
	Wait func(time.Duration)
}

// Supervisor is the single authority over the behavior State.
type Supervisor struct {
	clk       clock.Clock
	device    Device
	remote    Remote
	settings  Settings
	planner   *SleepPlanner
	indicator *Indicator
	logger    *slog.Logger
	rnd       Rand
	wait      func(time.Duration)
	sink      StateSink

	state          State
	facts          power.Facts
	preventTouchUp bool
	colorsUsed     uint64
	updateRef      string

	watchdog       clock.Deadline
	statusPush     clock.Deadline
	bluetoothStart clock.Deadline
	wifiStart      clock.Deadline
}

// NewSupervisor creates a supervisor in the Off state. Call Setup before the
// first Tick.
func NewSupervisor(deps Deps) *Supervisor {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rnd := deps.Rand
	if rnd == nil {
		seed := uint64(time.Now().UnixNano())
		rnd = rand.New(rand.NewPCG(seed, seed>>1))
	}
	wait := deps.Wait
	if wait == nil {
		wait = time.Sleep
	}
	return &Supervisor{
		clk:       deps.Clock,
		device:    deps.Device,
		remote:    deps.Remote,
		settings:  deps.Settings,
		planner:   deps.Planner,
		indicator: NewIndicator(deps.Device),
		logger:    logger,
		rnd:       rnd,
		wait:      wait,
		state:     Core(Off),
	}
}

// SetStateSink installs the observer of state changes.
func (s *Supervisor) SetStateSink(sink StateSink) {
	s.sink = sink
}

// Setup derives the initial state from the power hardware. wokeUp is set
// when the process starts after a deep sleep. The flower stays Off until the
// power hardware gives a good reading.
func (s *Supervisor) Setup(wokeUp bool) {
	facts, ok := s.device.ReadPowerFacts()
	if ok && facts.BatteryCritical() {
		s.logger.Warn("battery low at startup, re-verifying", "voltage", facts.BatteryVoltage)
		s.wait(lowBatteryRecheck)
	}

	s.runWatchdog(wokeUp)
	if s.state.Is(Standby) {
		s.logger.Info("ready", "woke_up", wokeUp)
	}

	now := s.clk.Now()
	s.watchdog.Arm(now, WatchdogInterval)
	s.statusPush.Arm(now, StatusPushInterval)
}

// Tick runs the automatic transitions, the watchdog when due and the
// deferred radio starts.
func (s *Supervisor) Tick() {
	switch s.state.Kind {
	case RemoteControl:
		if !s.device.IsLit() && !s.device.IsAnimating() && s.device.PetalsOpenLevel() == 0 {
			s.logger.Info("remote control idle")
			s.ChangeState(Core(Standby))
		}
	case UpdateInit:
		if !s.device.ArePetalsMoving() && s.updateRef != "" {
			ref := s.updateRef
			s.updateRef = ""
			s.ChangeState(Core(UpdateRunning))
			s.remote.StartUpdate(ref)
		}
	case UpdateRunning:
		if !s.remote.IsUpdateRunning() {
			s.logger.Warn("update stopped, restoring")
			s.ChangeState(Core(Standby))
			s.device.StopEffect(false)
			s.enablePeripherals(false)
		}
	}

	now := s.clk.Now()
	if s.watchdog.Due(now) {
		s.watchdog.Arm(now, WatchdogInterval)
		s.Watchdog()
	}
	if s.bluetoothStart.Due(now) && !s.device.ArePetalsMoving() {
		s.bluetoothStart.Disarm()
		s.remote.EnableBluetooth()
	}
	if s.wifiStart.Due(now) && !s.device.ArePetalsMoving() {
		s.wifiStart.Disarm()
		s.remote.EnableWifi()
	}
}

// Watchdog re-reads the power facts and applies the power rules.
func (s *Supervisor) Watchdog() {
	s.runWatchdog(false)
}

func (s *Supervisor) runWatchdog(wokeUp bool) {
	facts, ok := s.device.ReadPowerFacts()
	if !ok {
		s.logger.Warn("power unknown, keeping state", "state", s.state.String())
		return
	}
	s.facts = facts

	switch {
	case facts.BatteryCritical():
		if !s.state.Is(LowBattery) {
			s.logger.Warn("shutting down, battery low", "voltage", facts.BatteryVoltage)
			s.device.FlashColor(color.Red.H, color.Red.S, lowBatteryFlash)
			s.device.SetPetalsOpenLevel(0, shutdownTransition)
			s.disablePeripherals()
			s.ChangeState(Core(LowBattery))
			s.planner.Plan(LowBatteryWarning)
		}

	case !facts.SwitchedOn:
		if !s.state.Is(Off) {
			s.logger.Warn("switched off")
			s.device.TransitionBrightness(0, shutdownTransition)
			s.device.SetPetalsOpenLevel(0, shutdownTransition)
			s.disablePeripherals()
			s.ChangeState(Core(Off))
		}

	default:
		if s.state.Is(Off) || (s.state.Is(LowBattery) && facts.USBPowered) {
			s.logger.Info("power restored")
			s.device.StopEffect(false)
			s.enablePeripherals(wokeUp)
			s.ChangeState(Core(Standby))
		} else if facts.USBPowered {
			s.planner.Cancel()
		} else if s.state.Is(Standby) && !s.planner.Armed() {
			s.planner.Plan(InactivityTimeout)
		}

		if s.settings.WifiEnabled() && facts.USBPowered && !s.remote.IsWifiEnabled() && !s.wifiStart.Armed() {
			s.wifiStart.Arm(s.clk.Now(), WifiStartDelay)
		}
		if !facts.USBPowered {
			s.wifiStart.Disarm()
			if s.remote.IsWifiEnabled() {
				s.remote.DisableWifi()
			}
		}
	}

	now := s.clk.Now()
	if s.statusPush.Due(now) {
		s.statusPush.Arm(now, StatusPushInterval)
		s.remote.PushStatus(facts.BatteryLevel, facts.Charging)
	}

	s.indicator.Render(ResolveStatus(facts.Charging, s.remote.IsBluetoothConnected(), s.remote.IsWifiConnected()))
}

func (s *Supervisor) enablePeripherals(wokeUp bool) {
	s.logger.Debug("enabling peripherals", "woke_up", wokeUp)
	s.device.EnableTouch()
	if s.settings.BluetoothEnabled() && s.settings.BluetoothAlwaysOn() {
		s.bluetoothStart.Arm(s.clk.Now(), BluetoothStartDelay)
	}
}

func (s *Supervisor) disablePeripherals() {
	s.logger.Debug("disabling peripherals")
	s.bluetoothStart.Disarm()
	s.wifiStart.Disarm()
	s.device.DisableTouch()
	s.remote.DisableBluetooth()
	s.remote.DisableWifi()
}

// ChangeState moves to next. Entering Standby on battery plans a deep sleep;
// any other transition cancels a planned one.
func (s *Supervisor) ChangeState(next State) {
	if s.state == next {
		return
	}
	prev := s.state
	s.state = next
	s.logger.Info("state changed", "from", prev.String(), "to", next.String())

	if !s.facts.USBPowered && next.Is(Standby) {
		s.planner.Plan(InactivityTimeout)
	} else {
		s.planner.Cancel()
	}

	if s.sink != nil {
		s.sink.OnStateChange(prev, next)
	}
}

// ChangeStateIfIdle moves from one state to another once the petals and the
// color have settled.
func (s *Supervisor) ChangeStateIfIdle(from, to State) {
	if s.state == from && s.IsIdle() {
		s.ChangeState(to)
	}
}

// IsIdle reports whether neither the petals nor the color are changing.
func (s *Supervisor) IsIdle() bool {
	return !s.device.ArePetalsMoving() && !s.device.IsChangingColor()
}

// State returns the active state.
func (s *Supervisor) State() State {
	return s.state
}

// PowerFacts returns the facts read by the last watchdog.
func (s *Supervisor) PowerFacts() power.Facts {
	return s.facts
}

// IndicatedStatus returns what the status pixel currently shows.
func (s *Supervisor) IndicatedStatus() Status {
	return s.indicator.Shown()
}

// CanPair reports whether a Hold may start Bluetooth pairing.
func (s *Supervisor) CanPair() bool {
	return s.state.Is(Standby)
}

// OnTouch handles the gestures the supervisor owns and reports whether it
// consumed e.
func (s *Supervisor) OnTouch(e touch.Event) bool {
	switch {
	case e == touch.Hold && s.settings.BluetoothEnabled() && s.CanPair():
		s.device.FlashColor(color.Blue.H, color.Blue.S, pairingFlash)
		s.remote.EnableBluetooth()
		s.ChangeState(Core(BluetoothPairing))
		return true

	case e == touch.Down && s.state.Is(BluetoothPairing):
		s.logger.Info("pairing interrupted")
		s.remote.DisableBluetooth()
		s.settings.SetBluetoothAlwaysOn(false)
		s.device.TransitionBrightness(0, pairingCancelFade)
		s.ChangeState(Core(Standby))
		s.preventTouchUp = true
		return true

	case e == touch.Up && s.preventTouchUp:
		s.preventTouchUp = false
		return true
	}
	return false
}

// OnRemoteSession enters remote control. Ignored while the flower is off,
// out of battery or updating.
func (s *Supervisor) OnRemoteSession() {
	switch s.state.Kind {
	case Off, LowBattery, UpdateInit, UpdateRunning:
		s.logger.Warn("remote session ignored", "state", s.state.String())
		return
	}
	s.ChangeState(Core(RemoteControl))
}

// OnUpdateRequest closes the flower and prepares the update of ref. The
// update itself starts once the petals stop moving.
func (s *Supervisor) OnUpdateRequest(ref string) {
	switch s.state.Kind {
	case Off, LowBattery, UpdateInit, UpdateRunning:
		s.logger.Warn("update request ignored", "state", s.state.String(), "ref", ref)
		return
	}
	s.logger.Info("update requested", "ref", ref)
	s.ChangeState(Core(UpdateInit))
	s.device.FlashColor(color.Purple.H, color.Purple.S, updateFlash)
	s.device.SetPetalsOpenLevel(0, shutdownTransition)
	s.device.DisableTouch()
	s.remote.DisableBluetooth()
	s.updateRef = ref
}

// NextRandomColor returns a palette color not yet returned in the current
// batch. Once every color has been returned a new batch starts.
//
// When 3*len(palette) draws all hit used colors, the last drawn color is
// returned anyway and the batch bookkeeping stays as it was.
func (s *Supervisor) NextRandomColor() color.HSB {
	palette := s.settings.Palette()
	n := len(palette)
	if n == 0 {
		return color.White
	}
	if n > 64 {
		n = 64
	}

	all := uint64(1)<<uint(n) - 1
	s.colorsUsed &= all
	if s.colorsUsed == all {
		s.colorsUsed = 0
	}

	var idx int
	for attempts := 3 * n; ; {
		idx = s.rnd.IntN(n)
		attempts--
		if s.colorsUsed&(1<<uint(idx)) == 0 || attempts <= 0 {
			break
		}
	}
	s.colorsUsed |= 1 << uint(idx)
	return palette[idx]
}
