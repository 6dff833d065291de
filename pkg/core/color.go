package core

import (
	"image/color"

	"github.com/chewxy/math32"
)

// Color is a linear RGBA color in single precision. Arithmetic is per
// channel and includes alpha.
type Color struct {
	R, G, B, A float32
}

var (
	// White is opaque unit radiance
	White = Color{1, 1, 1, 1}
	// Black is opaque black
	Black = Color{0, 0, 0, 1}
	// Clear is fully transparent black
	Clear = Color{0, 0, 0, 0}
)

// brightnessScale normalizes sqrt(3) to 1 so that White has brightness 1
const brightnessScale = 0.577350269

// NewColor creates an opaque color
func NewColor(r, g, b float32) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// Add returns the per-channel sum
func (c Color) Add(other Color) Color {
	return Color{c.R + other.R, c.G + other.G, c.B + other.B, c.A + other.A}
}

// Multiply returns the per-channel product
func (c Color) Multiply(other Color) Color {
	return Color{c.R * other.R, c.G * other.G, c.B * other.B, c.A * other.A}
}

// Scale multiplies every channel by s
func (c Color) Scale(s float32) Color {
	return Color{c.R * s, c.G * s, c.B * s, c.A * s}
}

// Lerp blends toward other by t
func (c Color) Lerp(other Color, t float32) Color {
	return c.Scale(1 - t).Add(other.Scale(t))
}

// Brightness is the RGB magnitude scaled so White is 1
func (c Color) Brightness() float32 {
	return math32.Sqrt(c.R*c.R+c.G*c.G+c.B*c.B) * brightnessScale
}

// Clamp limits every channel to [0,1]
func (c Color) Clamp() Color {
	return Color{clamp01(c.R), clamp01(c.G), clamp01(c.B), clamp01(c.A)}
}

// Equals reports whether two colors are within tolerance per channel
func (c Color) Equals(other Color, tolerance float32) bool {
	return math32.Abs(c.R-other.R) <= tolerance &&
		math32.Abs(c.G-other.G) <= tolerance &&
		math32.Abs(c.B-other.B) <= tolerance &&
		math32.Abs(c.A-other.A) <= tolerance
}

// ToRGBA8 packs the clamped color into 8 bits per channel
func (c Color) ToRGBA8() color.NRGBA {
	c = c.Clamp()
	return color.NRGBA{
		R: uint8(c.R*255 + 0.5),
		G: uint8(c.G*255 + 0.5),
		B: uint8(c.B*255 + 0.5),
		A: uint8(c.A*255 + 0.5),
	}
}

// ToRGBA64 packs the clamped color into 16 bits per channel
func (c Color) ToRGBA64() color.NRGBA64 {
	c = c.Clamp()
	return color.NRGBA64{
		R: uint16(c.R*65535 + 0.5),
		G: uint16(c.G*65535 + 0.5),
		B: uint16(c.B*65535 + 0.5),
		A: uint16(c.A*65535 + 0.5),
	}
}

// ColorFromRGBA8 unpacks an 8-bit color
func ColorFromRGBA8(p color.NRGBA) Color {
	return Color{float32(p.R) / 255, float32(p.G) / 255, float32(p.B) / 255, float32(p.A) / 255}
}

// ColorFromRGBA64 unpacks a 16-bit color
func ColorFromRGBA64(p color.NRGBA64) Color {
	return Color{float32(p.R) / 65535, float32(p.G) / 65535, float32(p.B) / 65535, float32(p.A) / 65535}
}

// ColorFrom converts any image color to linear float channels
func ColorFrom(c color.Color) Color {
	return ColorFromRGBA64(color.NRGBA64Model.Convert(c).(color.NRGBA64))
}

// RGBA implements color.Color
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.ToRGBA64().RGBA()
}

func clamp01(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
