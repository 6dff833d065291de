package material

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/df07/go-octree-pathtracer/pkg/core"
)

// Checkerboard is a procedural pattern of Horizontal x Vertical tiles per unit UV
type Checkerboard struct {
	Horizontal int
	Vertical   int
	Even       core.Color // Color of tiles where both parities agree
	Odd        core.Color
}

// NewCheckerboard creates a black and white checkerboard
func NewCheckerboard(horizontal, vertical int) *Checkerboard {
	return &Checkerboard{
		Horizontal: horizontal,
		Vertical:   vertical,
		Even:       core.Black,
		Odd:        core.White,
	}
}

// Color implements Texture
func (c *Checkerboard) Color(uv core.TextureCoordinate, angle float32) core.Color {
	lowU := math32.Mod(uv.U*float32(c.Horizontal), 2) <= 1
	lowV := math32.Mod(uv.V*float32(c.Vertical), 2) <= 1
	if lowU == lowV {
		return c.Even
	}
	return c.Odd
}

func (c *Checkerboard) String() string {
	return fmt.Sprintf("Checkerboard (%dx%d)", c.Horizontal, c.Vertical)
}
