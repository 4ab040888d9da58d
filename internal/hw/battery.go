package hw

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
)

// Battery reads the cell voltage through an ADS1115 behind a resistor
// divider.
type Battery struct {
	bus     i2c.BusCloser
	pin     ads1x15.PinADC
	divider float64
}

// OpenBattery opens the I2C bus by name and the ADC's channel 0.
// divider scales the measured voltage to the cell voltage.
func OpenBattery(busName string, divider float64) (*Battery, error) {
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c %q: %w", busName, err)
	}
	adc, err := ads1x15.NewADS1115(bus, &ads1x15.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("ads1115: %w", err)
	}
	pin, err := adc.PinForChannel(ads1x15.Channel0, 5*physic.Volt, 1*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("ads1115 channel 0: %w", err)
	}
	return &Battery{bus: bus, pin: pin, divider: divider}, nil
}

// Voltage returns the cell voltage.
func (b *Battery) Voltage() (float64, error) {
	sample, err := b.pin.Read()
	if err != nil {
		return 0, fmt.Errorf("read battery adc: %w", err)
	}
	return float64(sample.V) / float64(physic.Volt) * b.divider, nil
}

// Close releases the ADC and the bus.
func (b *Battery) Close() error {
	if err := b.pin.Halt(); err != nil {
		b.bus.Close()
		return fmt.Errorf("halt adc: %w", err)
	}
	return b.bus.Close()
}
