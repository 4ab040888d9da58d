package behavior

import (
	"fmt"

	"github.com/sweeney/flower-controller/internal/clock"
	"github.com/sweeney/flower-controller/internal/color"
	"github.com/sweeney/flower-controller/internal/flower"
	"github.com/sweeney/flower-controller/internal/power"
)

// FakeDevice records commands and answers queries from its fields.
type FakeDevice struct {
	Facts      power.Facts
	PowerFails bool

	Moving    bool
	Animating bool
	Lit       bool
	Changing  bool
	Petals    int
	Target    color.HSB

	TouchEnabled bool
	TouchEnables int
	Prepared     int
	Statuses     []color.HSB
	Calls        []string
}

func (d *FakeDevice) record(format string, args ...any) {
	d.Calls = append(d.Calls, fmt.Sprintf(format, args...))
}

func (d *FakeDevice) ReadPowerFacts() (power.Facts, bool) { return d.Facts, !d.PowerFails }

func (d *FakeDevice) SetPetalsOpenLevel(level int, dur clock.Millis) {
	d.Petals = level
	d.record("petals %d %d", level, dur)
}

func (d *FakeDevice) TransitionColor(h, s, b float64, dur clock.Millis) {
	d.Target = color.HSB{H: h, S: s, B: b}
	d.record("color %.2f %.2f %.2f %d", h, s, b, dur)
}

func (d *FakeDevice) TransitionBrightness(b float64, dur clock.Millis) {
	d.Target.B = b
	d.record("brightness %.2f %d", b, dur)
}

func (d *FakeDevice) FlashColor(h, s float64, dur clock.Millis) {
	d.Target = color.HSB{H: h, S: s, B: 1}
	d.record("flash %.2f %.2f %d", h, s, dur)
}

func (d *FakeDevice) StartEffect(e flower.Effect) { d.record("effect %s", e) }

func (d *FakeDevice) StopEffect(retain bool) { d.record("stop %t", retain) }

func (d *FakeDevice) ShowStatus(c color.HSB, kind flower.StatusAnimation, dur clock.Millis) {
	d.Statuses = append(d.Statuses, c)
	d.record("status %.2f %.2f %s %d", c.H, c.B, kind, dur)
}

func (d *FakeDevice) EnableTouch() {
	d.TouchEnabled = true
	d.TouchEnables++
}

func (d *FakeDevice) DisableTouch() { d.TouchEnabled = false }

func (d *FakeDevice) PrepareForSleep() { d.Prepared++ }

func (d *FakeDevice) ArePetalsMoving() bool { return d.Moving }
func (d *FakeDevice) IsAnimating() bool     { return d.Animating }
func (d *FakeDevice) IsLit() bool           { return d.Lit }
func (d *FakeDevice) IsChangingColor() bool { return d.Changing }
func (d *FakeDevice) PetalsOpenLevel() int  { return d.Petals }
func (d *FakeDevice) Color() color.HSB      { return d.Target }

// StatusPush is one recorded PushStatus call.
type StatusPush struct {
	Level    int
	Charging bool
}

// FakeRemote keeps radio flags in memory.
type FakeRemote struct {
	Bluetooth          bool
	Wifi               bool
	BluetoothConnected bool
	WifiConnected      bool
	UpdateRunning      bool

	BluetoothEnables  int
	BluetoothDisables int
	WifiEnables       int
	WifiDisables      int
	Pushes            []StatusPush
	Updates           []string
}

func (r *FakeRemote) EnableBluetooth() {
	r.Bluetooth = true
	r.BluetoothEnables++
}

func (r *FakeRemote) DisableBluetooth() {
	r.Bluetooth = false
	r.BluetoothConnected = false
	r.BluetoothDisables++
}

func (r *FakeRemote) EnableWifi() {
	r.Wifi = true
	r.WifiEnables++
}

func (r *FakeRemote) DisableWifi() {
	r.Wifi = false
	r.WifiConnected = false
	r.WifiDisables++
}

func (r *FakeRemote) IsBluetoothEnabled() bool   { return r.Bluetooth }
func (r *FakeRemote) IsWifiEnabled() bool        { return r.Wifi }
func (r *FakeRemote) IsBluetoothConnected() bool { return r.BluetoothConnected }
func (r *FakeRemote) IsWifiConnected() bool      { return r.WifiConnected }

func (r *FakeRemote) PushStatus(level int, charging bool) {
	r.Pushes = append(r.Pushes, StatusPush{Level: level, Charging: charging})
}

func (r *FakeRemote) StartUpdate(ref string) {
	r.Updates = append(r.Updates, ref)
	r.UpdateRunning = true
}

func (r *FakeRemote) IsUpdateRunning() bool { return r.UpdateRunning }

// FakeSettings holds settings in fields.
type FakeSettings struct {
	Bluetooth bool
	AlwaysOn  bool
	Wifi      bool
	DeepSleep bool
	Colors    []color.HSB
}

func (s *FakeSettings) BluetoothEnabled() bool       { return s.Bluetooth }
func (s *FakeSettings) BluetoothAlwaysOn() bool      { return s.AlwaysOn }
func (s *FakeSettings) SetBluetoothAlwaysOn(on bool) { s.AlwaysOn = on }
func (s *FakeSettings) WifiEnabled() bool            { return s.Wifi }
func (s *FakeSettings) DeepSleepEnabled() bool       { return s.DeepSleep }
func (s *FakeSettings) Palette() []color.HSB         { return s.Colors }

// FakeSleeper counts sleep entries and returns Err.
type FakeSleeper struct {
	Calls int
	Err   error
}

func (s *FakeSleeper) Sleep() error {
	s.Calls++
	return s.Err
}
