// Package gpio reads the flower's power inputs, watches the leaf touch pad
// and switches the power rails.
// The real implementation uses the Linux GPIO character device.
// The fakes allow testing without hardware.
package gpio

// Inputs are the logical states of the charger and switch lines.
type Inputs struct {
	USB        bool // USB power present
	Charging   bool // charger reports charging
	SwitchedOn bool // power switch on
}

// Reader reads the power input lines.
type Reader interface {
	// Read returns the logical input states.
	// The charge line is active low: raw 0 = charging.
	Read() (Inputs, error)

	// Close releases GPIO resources.
	Close() error
}

// Pad is the leaf touch pad. Edges are delivered to the handler given at
// construction, from the GPIO event goroutine.
type Pad interface {
	// Active reports whether the pad is currently touched.
	Active() (bool, error)
	Close() error
}

// Output drives a power rail enable line.
type Output interface {
	SetPower(on bool) error
	Close() error
}
