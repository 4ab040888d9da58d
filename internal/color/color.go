// Package color implements the normalized hue/saturation/brightness model used
// by the flower's pixels and the blending rules between two colors.
package color

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/sweeney/flower-controller/internal/mathx"
)

// HSB is a color with hue, saturation and brightness each in [0,1].
type HSB struct {
	H float64 `json:"h" yaml:"h" toml:"h"`
	S float64 `json:"s" yaml:"s" toml:"s"`
	B float64 `json:"b" yaml:"b" toml:"b"`
}

// Named colors used by status and behavior feedback.
var (
	Black  = HSB{0, 0, 0}
	White  = HSB{0, 0, 1}
	Red    = HSB{0, 1, 1}
	Green  = HSB{0.3333, 1, 1}
	Blue   = HSB{0.6666, 1, 1}
	Purple = HSB{0.8333, 1, 1}
	Yellow = HSB{0.1666, 1, 1}
	Candle = HSB{0.042, 1, 1}
)

// blendHueThreshold is the circular hue distance up to which two colors are
// treated as shades of one hue rather than distinct colors.
const blendHueThreshold = 0.2

// WithBrightness returns c with B replaced.
func (c HSB) WithBrightness(b float64) HSB {
	c.B = b
	return c
}

// Lit reports whether the color emits any light.
func (c HSB) Lit() bool {
	return c.B > 0
}

// HueDistance returns the circular distance between two hues in [0, 0.5].
func HueDistance(a, b float64) float64 {
	d := mathx.Abs(a - b)
	return math.Min(d, 1-d)
}

// Blend interpolates from origin to target by progress p in [0,1].
// Close hues travel along the shortest arc; distant hues blend through RGB.
func Blend(origin, target HSB, p float64) HSB {
	p = mathx.Clamp(p, 0, 1)
	if HueDistance(origin.H, target.H) <= blendHueThreshold {
		return BlendShortestHue(origin, target, p)
	}
	return BlendRGB(origin, target, p)
}

// BlendShortestHue blends hue along the shortest arc, S and B linearly.
func BlendShortestHue(origin, target HSB, p float64) HSB {
	from, to := origin.H, target.H
	if to-from > 0.5 {
		from += 1
	} else if from-to > 0.5 {
		to += 1
	}
	h := mathx.Lerp(from, to, p)
	if h >= 1 {
		h -= 1
	}
	return HSB{
		H: h,
		S: mathx.Lerp(origin.S, target.S, p),
		B: mathx.Lerp(origin.B, target.B, p),
	}
}

// BlendRGB blends linearly in RGB space and converts the result back.
func BlendRGB(origin, target HSB, p float64) HSB {
	return FromColorful(origin.Colorful().BlendRgb(target.Colorful(), p))
}

// Colorful converts c to a go-colorful value.
func (c HSB) Colorful() colorful.Color {
	return colorful.Hsv(mathx.Clamp(c.H, 0, 1)*360, mathx.Clamp(c.S, 0, 1), mathx.Clamp(c.B, 0, 1))
}

// FromColorful converts a go-colorful value to HSB.
func FromColorful(c colorful.Color) HSB {
	h, s, v := c.Clamped().Hsv()
	return HSB{H: math.Mod(h/360, 1), S: s, B: v}
}

// RGB8 returns the 8-bit RGB triple for a pixel driver.
func (c HSB) RGB8() (r, g, b uint8) {
	return c.Colorful().Clamped().RGB255()
}

// EaseCubicInOut is the cubic ease used by flash envelopes.
func EaseCubicInOut(t float64) float64 {
	t = mathx.Clamp(t, 0, 1)
	if t < 0.5 {
		return 4 * t * t * t
	}
	f := 2*t - 2
	return 0.5*f*f*f + 1
}

// WrapHue folds h into [0,1).
func WrapHue(h float64) float64 {
	h = math.Mod(h, 1)
	if h < 0 {
		h += 1
	}
	return h
}
