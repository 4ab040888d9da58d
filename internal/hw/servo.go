package hw

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"

	"github.com/sweeney/flower-controller/internal/mathx"
)

// Servo pulse widths in microseconds for closed and fully open petals.
const (
	servoClosedUs = 1000.0
	servoOpenUs   = 2000.0
	servoPeriodUs = 20000.0
)

const servoFreq = 50 * physic.Hertz

// Servo positions the petals with a hobby servo on a PWM capable pin.
type Servo struct {
	pin gpio.PinIO
}

// OpenServo looks up the pin by name, e.g. "GPIO18".
func OpenServo(name string) (*Servo, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("servo pin %q not found", name)
	}
	return &Servo{pin: pin}, nil
}

// MoveTo sets the petals to level percent open.
func (s *Servo) MoveTo(level float64) error {
	if err := s.pin.PWM(servoDuty(level), servoFreq); err != nil {
		return fmt.Errorf("servo pwm: %w", err)
	}
	return nil
}

// Close stops the PWM output.
func (s *Servo) Close() error {
	return s.pin.Halt()
}

func servoDuty(level float64) gpio.Duty {
	level = mathx.Clamp(level, 0, 100)
	pulse := servoClosedUs + (servoOpenUs-servoClosedUs)*level/100
	return gpio.Duty(float64(gpio.DutyMax) * pulse / servoPeriodUs)
}
