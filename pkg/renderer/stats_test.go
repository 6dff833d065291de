package renderer

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"
	"time"
)

func TestCalculateAverageLuminance(t *testing.T) {
	// Red 0.2126, green 0.7152, blue 0.0722, black 0: average 0.25
	img := image.NewRGBA64(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 255, 0, 255})
	img.Set(0, 1, color.RGBA{0, 0, 255, 255})
	img.Set(1, 1, color.RGBA{0, 0, 0, 255})

	avgLum := CalculateAverageLuminance(img)
	expected := 0.25
	tolerance := 0.0001

	if avgLum < expected-tolerance || avgLum > expected+tolerance {
		t.Errorf("Expected average luminosity %f, got %f", expected, avgLum)
	}
}

func TestCalculateAverageLuminance_Empty(t *testing.T) {
	if avgLum := CalculateAverageLuminance(image.NewRGBA64(image.Rectangle{})); avgLum != 0 {
		t.Errorf("Expected 0 for an empty image, got %f", avgLum)
	}
}

func TestStats_SamplesPerSecond(t *testing.T) {
	stats := Stats{SamplesTraced: 5000, Duration: 2 * time.Second}
	if got := stats.SamplesPerSecond(); got != 2500 {
		t.Errorf("Expected 2500 samples/s, got %v", got)
	}
	if got := (Stats{SamplesTraced: 10}).SamplesPerSecond(); got != 0 {
		t.Errorf("Expected 0 without a duration, got %v", got)
	}
}

func TestStats_WriteTable(t *testing.T) {
	stats := Stats{Width: 320, Height: 240, Triangles: 1234, TilesTotal: 80, TilesCompleted: 80}

	var buf bytes.Buffer
	stats.WriteTable(&buf)
	out := buf.String()
	for _, want := range []string{"320x240", "1234", "80/80", "Triangles"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in the table:\n%s", want, out)
		}
	}
}
