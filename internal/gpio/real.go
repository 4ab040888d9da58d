//go:build linux

package gpio

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads the power inputs from actual hardware.
type RealReader struct {
	chip   *gpiocdev.Chip
	usb    *gpiocdev.Line
	charge *gpiocdev.Line
	sw     *gpiocdev.Line
}

// NewRealReader requests the USB, charge and switch lines on chipName.
func NewRealReader(chipName string, usbLine, chargeLine, switchLine int) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	// Pull-downs match the Pi boot defaults; the charger's open-drain
	// status output needs a pull-up.
	usb, err := chip.RequestLine(usbLine, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request USB line %d: %w", usbLine, err)
	}

	charge, err := chip.RequestLine(chargeLine, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		usb.Close()
		chip.Close()
		return nil, fmt.Errorf("request charge line %d: %w", chargeLine, err)
	}

	sw, err := chip.RequestLine(switchLine, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		charge.Close()
		usb.Close()
		chip.Close()
		return nil, fmt.Errorf("request switch line %d: %w", switchLine, err)
	}

	return &RealReader{chip: chip, usb: usb, charge: charge, sw: sw}, nil
}

// Read returns the logical input states.
func (r *RealReader) Read() (Inputs, error) {
	usbRaw, err := r.usb.Value()
	if err != nil {
		return Inputs{}, fmt.Errorf("read USB line: %w", err)
	}
	chargeRaw, err := r.charge.Value()
	if err != nil {
		return Inputs{}, fmt.Errorf("read charge line: %w", err)
	}
	swRaw, err := r.sw.Value()
	if err != nil {
		return Inputs{}, fmt.Errorf("read switch line: %w", err)
	}

	return Inputs{
		USB:        usbRaw == 1,
		Charging:   chargeRaw == 0,
		SwitchedOn: swRaw == 1,
	}, nil
}

// Close reconfigures the lines to inputs with pull-down, matching the Pi
// boot defaults, and releases them.
func (r *RealReader) Close() error {
	return closeLines(r.chip, r.usb, r.charge, r.sw)
}

// RealPad watches the touch pad line for edges.
type RealPad struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealPad requests the pad line with edge detection on both edges.
// onEdge is called from the gpiocdev event goroutine and must not block.
func NewRealPad(chipName string, offset int, debounce time.Duration, onEdge func()) (*RealPad, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	opts := []gpiocdev.LineReqOption{
		gpiocdev.WithPullDown,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) { onEdge() }),
	}
	if debounce > 0 {
		opts = append(opts, gpiocdev.WithDebounce(debounce))
	}

	line, err := chip.RequestLine(offset, opts...)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request touch line %d: %w", offset, err)
	}
	return &RealPad{chip: chip, line: line}, nil
}

// Active reports whether the pad is touched.
func (p *RealPad) Active() (bool, error) {
	v, err := p.line.Value()
	if err != nil {
		return false, fmt.Errorf("read touch line: %w", err)
	}
	return v == 1, nil
}

// Close releases the pad line.
func (p *RealPad) Close() error {
	return closeLines(p.chip, p.line)
}

// RealOutput drives a rail enable line.
type RealOutput struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
	name string
}

// NewRealOutput requests offset as an output, initially off.
func NewRealOutput(chipName string, offset int, name string) (*RealOutput, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	line, err := chip.RequestLine(offset, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request %s line %d: %w", name, offset, err)
	}
	return &RealOutput{chip: chip, line: line, name: name}, nil
}

// SetPower switches the rail.
func (o *RealOutput) SetPower(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := o.line.SetValue(v); err != nil {
		return fmt.Errorf("set %s line: %w", o.name, err)
	}
	return nil
}

// Close switches the rail off by returning the line to an input with
// pull-down.
func (o *RealOutput) Close() error {
	return closeLines(o.chip, o.line)
}

func closeLines(chip *gpiocdev.Chip, lines ...*gpiocdev.Line) error {
	var errs []error
	for _, l := range lines {
		if l == nil {
			continue
		}
		if err := l.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure line: %w", err))
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line: %w", err))
		}
	}
	if chip != nil {
		if err := chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
