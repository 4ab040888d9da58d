// Package power holds the power facts read from the charger and battery
// hardware once per watchdog tick.
package power

import "github.com/sweeney/flower-controller/internal/mathx"

// LowBatteryThreshold is the voltage below which the flower must shut down
// when it is not powered by USB. Tuned for a 1600mAh LiPo cell.
const LowBatteryThreshold = 3.4

// Battery voltage range mapped to 0..100%.
const (
	emptyVoltage = 3.3
	fullVoltage  = 4.2
)

// Facts is a point-in-time reading of the power hardware.
type Facts struct {
	BatteryVoltage float64 `json:"battery_voltage"`
	BatteryLevel   int     `json:"battery_level"` // 0..100
	Charging       bool    `json:"charging"`
	USBPowered     bool    `json:"usb_powered"`
	SwitchedOn     bool    `json:"switched_on"`
}

// BatteryCritical reports whether the battery is too low to keep running.
// It never holds while USB power is present.
func (f Facts) BatteryCritical() bool {
	return !f.USBPowered && f.BatteryVoltage < LowBatteryThreshold
}

// LevelFromVoltage maps a cell voltage linearly onto 0..100%.
func LevelFromVoltage(v float64) int {
	pct := (v - emptyVoltage) / (fullVoltage - emptyVoltage) * 100
	return int(mathx.Clamp(pct, 0, 100))
}
