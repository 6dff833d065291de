package core

import (
	"image/color"
	"testing"

	"github.com/chewxy/math32"
)

func TestColor_RoundTrip8(t *testing.T) {
	colors := []Color{
		{0, 0, 0, 0},
		{1, 1, 1, 1},
		{0.5, 0.25, 0.125, 0.75},
		{0.003, 0.997, 0.333, 0.666},
	}
	for _, c := range colors {
		back := ColorFromRGBA8(c.ToRGBA8())
		if !back.Equals(c, 1.0/255) {
			t.Errorf("8-bit round trip of %+v gave %+v", c, back)
		}
	}
}

func TestColor_RoundTrip16(t *testing.T) {
	colors := []Color{
		{0, 0, 0, 0},
		{1, 1, 1, 1},
		{0.5, 0.25, 0.125, 0.75},
		{0.00001, 0.99999, 0.333333, 0.666666},
	}
	for _, c := range colors {
		back := ColorFromRGBA64(c.ToRGBA64())
		if !back.Equals(c, 1.0/65535) {
			t.Errorf("16-bit round trip of %+v gave %+v", c, back)
		}
	}
}

func TestColor_PackingClamps(t *testing.T) {
	got := Color{2, -1, 0.5, 1}.ToRGBA8()
	expected := color.NRGBA{255, 0, 128, 255}
	if got != expected {
		t.Errorf("Expected %v, got %v", expected, got)
	}
	if nan := (Color{math32.NaN(), 0, 0, 1}).ToRGBA64(); nan.R != 0 {
		t.Errorf("Expected NaN channel to pack as 0, got %d", nan.R)
	}
}

func TestColor_Arithmetic(t *testing.T) {
	a := Color{0.5, 0.25, 1, 1}
	b := Color{0.5, 2, 0.5, 0.5}

	if got := a.Multiply(b); got != (Color{0.25, 0.5, 0.5, 0.5}) {
		t.Errorf("Multiply: got %+v", got)
	}
	if got := a.Add(b); got != (Color{1, 2.25, 1.5, 1.5}) {
		t.Errorf("Add: got %+v", got)
	}
	if got := a.Scale(2); got != (Color{1, 0.5, 2, 2}) {
		t.Errorf("Scale: got %+v", got)
	}
}

func TestColor_Brightness(t *testing.T) {
	tests := []struct {
		name     string
		color    Color
		expected float32
	}{
		{"White", White, 1},
		{"Black", Black, 0},
		{"Clear", Clear, 0},
		{"Red", NewColor(1, 0, 0), 0.577350269},
		{"Alpha ignored", Color{1, 1, 1, 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.color.Brightness(); math32.Abs(got-tt.expected) > 1e-5 {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestColor_ImplementsColorModel(t *testing.T) {
	var c color.Color = NewColor(1, 0, 0)
	r, g, b, a := c.RGBA()
	if r != 0xffff || g != 0 || b != 0 || a != 0xffff {
		t.Errorf("Unexpected RGBA %d %d %d %d", r, g, b, a)
	}
	if back := ColorFrom(c); !back.Equals(NewColor(1, 0, 0), 1e-6) {
		t.Errorf("Expected red, got %+v", back)
	}
}
