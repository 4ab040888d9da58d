//go:build !linux

package gpio

import (
	"errors"
	"time"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns an error on non-Linux platforms.
func NewRealReader(string, int, int, int) (*RealReader, error) {
	return nil, errUnsupported
}

func (r *RealReader) Read() (Inputs, error) { return Inputs{}, errUnsupported }
func (r *RealReader) Close() error          { return nil }

// RealPad is not available on non-Linux platforms.
type RealPad struct{}

// NewRealPad returns an error on non-Linux platforms.
func NewRealPad(string, int, time.Duration, func()) (*RealPad, error) {
	return nil, errUnsupported
}

func (p *RealPad) Active() (bool, error) { return false, errUnsupported }
func (p *RealPad) Close() error          { return nil }

// RealOutput is not available on non-Linux platforms.
type RealOutput struct{}

// NewRealOutput returns an error on non-Linux platforms.
func NewRealOutput(string, int, string) (*RealOutput, error) {
	return nil, errUnsupported
}

func (o *RealOutput) SetPower(bool) error { return errUnsupported }
func (o *RealOutput) Close() error        { return nil }
