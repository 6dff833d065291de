package renderer

import (
	"fmt"
	"image"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Stats contains statistics about a render
type Stats struct {
	Width           int
	Height          int
	Workers         int
	Samples         int // Camera rays per pixel
	Triangles       int
	TilesTotal      int
	TilesDispatched int
	TilesCompleted  int
	TilesAbandoned  int   // Tiles a worker gave up on after a stop
	SamplesTraced   int64 // Camera rays traced in composited rows
	IndexTime       time.Duration
	Duration        time.Duration
}

// SamplesPerSecond returns the camera ray throughput
func (s Stats) SamplesPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.SamplesTraced) / s.Duration.Seconds()
}

// WriteTable prints the statistics as a table
func (s Stats) WriteTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Stat", "Value"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk([][]string{
		{"Image", fmt.Sprintf("%dx%d", s.Width, s.Height)},
		{"Triangles", fmt.Sprint(s.Triangles)},
		{"Workers", fmt.Sprint(s.Workers)},
		{"Samples per pixel", fmt.Sprint(s.Samples)},
		{"Tiles", fmt.Sprintf("%d/%d", s.TilesCompleted, s.TilesTotal)},
		{"Samples traced", fmt.Sprint(s.SamplesTraced)},
		{"Samples per second", fmt.Sprintf("%.0f", s.SamplesPerSecond())},
		{"Index build", s.IndexTime.Round(time.Millisecond).String()},
		{"Render time", s.Duration.Round(time.Millisecond).String()},
	})
	table.Render()
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of img
// in [0,1]
func CalculateAverageLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	if bounds.Empty() {
		return 0
	}
	var total float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			total += (0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)) / 0xffff
		}
	}
	return total / float64(bounds.Dx()*bounds.Dy())
}
