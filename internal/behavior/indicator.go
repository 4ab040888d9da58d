package behavior

import (
	"github.com/sweeney/flower-controller/internal/clock"
	"github.com/sweeney/flower-controller/internal/color"
	"github.com/sweeney/flower-controller/internal/flower"
)

// Status is what the status pixel shows.
type Status uint8

const (
	StatusIdle Status = iota
	StatusCharging
	StatusBluetooth
	StatusWifi

	statusUnknown Status = 0xff
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusCharging:
		return "charging"
	case StatusBluetooth:
		return "bluetooth"
	case StatusWifi:
		return "wifi"
	}
	return "unknown"
}

const statusPulse clock.Millis = 2000

// idleMarker keeps a faint dot lit so the flower visibly runs.
var idleMarker = color.Red.WithBrightness(0.01)

// ResolveStatus picks one status by priority: charging, then Bluetooth,
// then Wi-Fi.
func ResolveStatus(charging, bluetoothConnected, wifiConnected bool) Status {
	switch {
	case charging:
		return StatusCharging
	case bluetoothConnected:
		return StatusBluetooth
	case wifiConnected:
		return StatusWifi
	}
	return StatusIdle
}

// Indicator renders a Status on the device, writing only on change.
type Indicator struct {
	device Device
	shown  Status
}

// NewIndicator creates an indicator that renders on its first call.
func NewIndicator(device Device) *Indicator {
	return &Indicator{device: device, shown: statusUnknown}
}

// Render shows s unless it is already shown. It reports whether it wrote.
func (i *Indicator) Render(s Status) bool {
	if s == i.shown {
		return false
	}
	switch s {
	case StatusCharging:
		i.device.ShowStatus(color.Red, flower.Pulsating, statusPulse)
	case StatusBluetooth:
		i.device.ShowStatus(color.Blue, flower.Pulsating, statusPulse)
	case StatusWifi:
		i.device.ShowStatus(color.Purple, flower.Pulsating, statusPulse)
	default:
		i.device.ShowStatus(idleMarker, flower.Still, 0)
	}
	i.shown = s
	return true
}

// Shown returns the last rendered status.
func (i *Indicator) Shown() Status {
	return i.shown
}
