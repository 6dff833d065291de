package material

import (
	"github.com/df07/go-octree-pathtracer/pkg/core"
)

// Reflection is a mirror. Roughness above zero blurs the reflection with
// logistic noise scaled by roughness squared.
type Reflection struct {
	Color     core.Color
	Texture   Texture
	Roughness float32
}

// NewReflection creates a reflective shader
func NewReflection(color core.Color, roughness float32) *Reflection {
	return &Reflection{Color: color, Roughness: roughness}
}

// Shade implements Shader
func (r *Reflection) Shade(ctx *Context, in Intersection, path core.Color, depth int) core.Color {
	if depth <= 0 {
		return core.Clear
	}
	color := surfaceColor(r.Color, r.Texture, in)
	next := color.Multiply(path)
	if next.Brightness() <= MinContribution {
		return core.Black
	}

	n := in.FacingNormal()
	dir := core.Reflect(in.Direction, n)
	dir = mirrorAbove(core.PerturbLogistic(ctx.Random, dir, r.Roughness), n)

	ray := core.NewRay(in.Point.Add(n.Multiply(RayOffset)), dir)
	return ctx.Bounce(ray, next, depth).Multiply(color)
}
