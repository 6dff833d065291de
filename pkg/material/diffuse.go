package material

import (
	"github.com/df07/go-octree-pathtracer/pkg/core"
)

// Diffuse scatters light uniformly over the hemisphere above the surface
type Diffuse struct {
	Color   core.Color
	Texture Texture
}

// NewDiffuse creates a diffuse shader with a flat color
func NewDiffuse(color core.Color) *Diffuse {
	return &Diffuse{Color: color}
}

// Shade implements Shader
func (d *Diffuse) Shade(ctx *Context, in Intersection, path core.Color, depth int) core.Color {
	if depth <= 0 {
		return core.Clear
	}
	color := surfaceColor(d.Color, d.Texture, in)
	next := color.Multiply(path)
	if next.Brightness() <= MinContribution {
		return core.Black
	}

	n := in.FacingNormal()
	ray := core.NewRay(in.Point.Add(n.Multiply(RayOffset)), core.RandomHemisphere(ctx.Random, n))
	return ctx.Bounce(ray, next, depth).Multiply(color)
}
