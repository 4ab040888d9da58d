package hw

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"

	"github.com/sweeney/flower-controller/internal/color"
)

// Strip is a chain of WS2812 pixels on an SPI port.
type Strip struct {
	port spi.PortCloser
	dev  *nrzled.Dev
	buf  []byte
}

// OpenStrip opens the SPI port by name ("" for the first one) and drives n
// pixels on it.
func OpenStrip(name string, n int) (*Strip, error) {
	port, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", name, err)
	}
	dev, err := nrzled.NewSPI(port, &nrzled.Opts{
		NumPixels: n,
		Channels:  3,
		Freq:      800 * physic.KiloHertz,
	})
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("nrzled on %q: %w", name, err)
	}
	return &Strip{port: port, dev: dev, buf: make([]byte, n*3)}, nil
}

// Show writes one frame.
func (s *Strip) Show(pixels []color.HSB) error {
	encode(s.buf, pixels)
	if _, err := s.dev.Write(s.buf); err != nil {
		return fmt.Errorf("write pixels: %w", err)
	}
	return nil
}

// Close blanks the strip and releases the port.
func (s *Strip) Close() error {
	if err := s.dev.Halt(); err != nil {
		s.port.Close()
		return fmt.Errorf("halt pixels: %w", err)
	}
	return s.port.Close()
}

// encode packs pixels as RGB triplets into buf. Missing pixels are dark.
func encode(buf []byte, pixels []color.HSB) {
	for i := 0; i*3 < len(buf); i++ {
		var r, g, b uint8
		if i < len(pixels) {
			r, g, b = pixels[i].RGB8()
		}
		buf[i*3], buf[i*3+1], buf[i*3+2] = r, g, b
	}
}

// StatusPixel is a single-pixel strip.
type StatusPixel struct {
	*Strip
}

// OpenStatusPixel opens a one-pixel strip on the named SPI port.
func OpenStatusPixel(name string) (*StatusPixel, error) {
	s, err := OpenStrip(name, 1)
	if err != nil {
		return nil, err
	}
	return &StatusPixel{Strip: s}, nil
}

// Show lights the pixel with c.
func (p *StatusPixel) Show(c color.HSB) error {
	return p.Strip.Show([]color.HSB{c})
}
