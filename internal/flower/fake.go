package flower

import (
	"github.com/sweeney/flower-controller/internal/color"
	"github.com/sweeney/flower-controller/internal/power"
)

// FakeRing records every frame written to the ring.
type FakeRing struct {
	Frames [][]color.HSB
	Err    error
}

// Show records a copy of pixels.
func (r *FakeRing) Show(pixels []color.HSB) error {
	if r.Err != nil {
		return r.Err
	}
	frame := make([]color.HSB, len(pixels))
	copy(frame, pixels)
	r.Frames = append(r.Frames, frame)
	return nil
}

// Last returns the most recent frame, or nil.
func (r *FakeRing) Last() []color.HSB {
	if len(r.Frames) == 0 {
		return nil
	}
	return r.Frames[len(r.Frames)-1]
}

// FakeStatusLight records status pixel writes.
type FakeStatusLight struct {
	Colors []color.HSB
}

// Show records c.
func (s *FakeStatusLight) Show(c color.HSB) error {
	s.Colors = append(s.Colors, c)
	return nil
}

// FakeMotor records positions.
type FakeMotor struct {
	Positions []float64
}

// MoveTo records level.
func (m *FakeMotor) MoveTo(level float64) error {
	m.Positions = append(m.Positions, level)
	return nil
}

// FakeRail tracks the rail state and switch count.
type FakeRail struct {
	On       bool
	Switches int
}

// SetPower records the new state.
func (r *FakeRail) SetPower(on bool) error {
	r.On = on
	r.Switches++
	return nil
}

// FakePowerSensor returns scripted facts.
type FakePowerSensor struct {
	Facts power.Facts
	Err   error
	Reads int
}

// ReadPowerFacts returns Facts or Err.
func (s *FakePowerSensor) ReadPowerFacts() (power.Facts, error) {
	s.Reads++
	if s.Err != nil {
		return power.Facts{}, s.Err
	}
	return s.Facts, nil
}

// FakeHardware returns a Hardware made of fakes, and the fakes.
func FakeHardware() (Hardware, *FakeRing, *FakeStatusLight, *FakeMotor, *FakePowerSensor) {
	ring := &FakeRing{}
	status := &FakeStatusLight{}
	motor := &FakeMotor{}
	sensor := &FakePowerSensor{Facts: power.Facts{BatteryVoltage: 4.0, BatteryLevel: 77, SwitchedOn: true, USBPowered: true}}
	return Hardware{
		Ring:        ring,
		Status:      status,
		Motor:       motor,
		PixelsRail:  &FakeRail{},
		MotorRail:   &FakeRail{},
		PowerSensor: sensor,
	}, ring, status, motor, sensor
}
