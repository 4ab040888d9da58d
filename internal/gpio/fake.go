package gpio

import (
	"errors"
	"sync"
)

// FakeReader is a test double that returns scripted input states.
type FakeReader struct {
	// Samples contains scripted states to return.
	// Each call to Read() consumes the next sample.
	Samples []Inputs

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Inputs) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (Inputs, error) {
	if f.ReadError != nil {
		return Inputs{}, f.ReadError
	}

	if len(f.Samples) == 0 {
		return Inputs{}, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}

// FakePad is a touch pad whose level is set by the test. Touch and Release
// fire the edge handler like the hardware would.
type FakePad struct {
	mu     sync.Mutex
	active bool
	onEdge func()
	Closed bool
}

// NewFakePad creates a released pad reporting edges to onEdge.
func NewFakePad(onEdge func()) *FakePad {
	return &FakePad{onEdge: onEdge}
}

// Touch raises the pad level and fires an edge.
func (p *FakePad) Touch() { p.set(true) }

// Release lowers the pad level and fires an edge.
func (p *FakePad) Release() { p.set(false) }

func (p *FakePad) set(active bool) {
	p.mu.Lock()
	p.active = active
	p.mu.Unlock()
	if p.onEdge != nil {
		p.onEdge()
	}
}

// Active reports the pad level.
func (p *FakePad) Active() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active, nil
}

// Close marks the pad as closed.
func (p *FakePad) Close() error {
	p.Closed = true
	return nil
}

// FakeOutput records rail switching.
type FakeOutput struct {
	On       bool
	Switches int
	Closed   bool
	Err      error
}

// SetPower records the new state unless Err is set.
func (o *FakeOutput) SetPower(on bool) error {
	if o.Err != nil {
		return o.Err
	}
	o.On = on
	o.Switches++
	return nil
}

// Close switches the output off and marks it closed.
func (o *FakeOutput) Close() error {
	o.On = false
	o.Closed = true
	return nil
}
