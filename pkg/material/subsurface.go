package material

import (
	"github.com/df07/go-octree-pathtracer/pkg/core"
)

// Subsurface is a random-walk scattering medium such as wax or skin. Light
// enters the surface, scatters in random directions with free paths that
// shrink as Density grows, and is tinted toward Color along the way.
type Subsurface struct {
	Color   core.Color
	Texture Texture
	Density float32
}

// NewSubsurface creates a scattering shader
func NewSubsurface(color core.Color, density float32) *Subsurface {
	return &Subsurface{Color: color, Density: density}
}

// Shade implements Shader
func (s *Subsurface) Shade(ctx *Context, in Intersection, path core.Color, depth int) core.Color {
	if depth <= 0 {
		return core.Clear
	}
	color := surfaceColor(s.Color, s.Texture, in)
	if color.Multiply(path).Brightness() <= MinContribution || s.Density <= 0 {
		return core.Black
	}

	// start walking into the surface
	inward := in.FacingNormal().Negate()
	dir := core.RandomHemisphere(ctx.Random, inward)
	point := in.Point
	throughput := core.White

	for step := 0; step < depth; step++ {
		ray := core.NewRay(point.Add(dir.Multiply(RayOffset)), dir)
		free := ctx.Random.Float32() / s.Density

		if hit, ok := ctx.Store.NearestHit(ray); ok && hit.T < free {
			throughput = throughput.Multiply(core.White.Lerp(color, min(hit.T*s.Density, 1)))
			next := ctx.ShadeHit(ray, hit, path.Multiply(throughput), depth-step-1)
			return throughput.Multiply(next)
		}

		throughput = throughput.Multiply(core.White.Lerp(color, min(free*s.Density, 1)))
		point = ray.At(free)
		dir = core.RandomUnitVector(ctx.Random)
	}
	return color
}
