package material

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-octree-pathtracer/pkg/core"
)

// Default is a fast preview shader: the surface color darkened toward
// grazing angles. It never traces further rays.
type Default struct {
	Color   core.Color
	Texture Texture
}

// NewDefault creates a preview shader with a flat color
func NewDefault(color core.Color) *Default {
	return &Default{Color: color}
}

// Shade implements Shader
func (d *Default) Shade(ctx *Context, in Intersection, path core.Color, depth int) core.Color {
	cos := min(math32.Abs(in.Normal().Dot(in.Direction)), 1)
	return surfaceColor(d.Color, d.Texture, in).Scale(0.66667*cos + 0.33333)
}
