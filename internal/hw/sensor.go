package hw

import (
	"fmt"

	"github.com/sweeney/flower-controller/internal/gpio"
	"github.com/sweeney/flower-controller/internal/power"
)

// VoltageReader measures the battery cell.
type VoltageReader interface {
	Voltage() (float64, error)
}

// PowerSensor combines the battery ADC with the charger and switch lines.
type PowerSensor struct {
	battery VoltageReader
	inputs  gpio.Reader
}

// NewPowerSensor creates a sensor reading both sources.
func NewPowerSensor(battery VoltageReader, inputs gpio.Reader) *PowerSensor {
	return &PowerSensor{battery: battery, inputs: inputs}
}

// ReadPowerFacts reads the inputs and the battery. When only the battery
// read fails the returned facts still carry the input lines, with the
// battery fields zero, alongside the error.
func (p *PowerSensor) ReadPowerFacts() (power.Facts, error) {
	in, err := p.inputs.Read()
	if err != nil {
		return power.Facts{}, fmt.Errorf("read power inputs: %w", err)
	}
	facts := power.Facts{
		Charging:   in.Charging,
		USBPowered: in.USB,
		SwitchedOn: in.SwitchedOn,
	}
	v, err := p.battery.Voltage()
	if err != nil {
		return facts, fmt.Errorf("read battery: %w", err)
	}
	facts.BatteryVoltage = v
	facts.BatteryLevel = power.LevelFromVoltage(v)
	return facts, nil
}
