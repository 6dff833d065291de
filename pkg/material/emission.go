package material

import (
	"github.com/df07/go-octree-pathtracer/pkg/core"
)

// Emission is a light source. Strength may exceed 1.
type Emission struct {
	Color    core.Color
	Texture  Texture
	Strength float32
}

// NewEmission creates an emitting shader
func NewEmission(color core.Color, strength float32) *Emission {
	return &Emission{Color: color, Strength: strength}
}

// Shade implements Shader
func (e *Emission) Shade(ctx *Context, in Intersection, path core.Color, depth int) core.Color {
	return surfaceColor(e.Color, e.Texture, in).Scale(e.Strength)
}
