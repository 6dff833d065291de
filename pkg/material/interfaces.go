package material

import (
	"github.com/chewxy/math32"
	"golang.org/x/exp/rand"

	"github.com/df07/go-octree-pathtracer/pkg/core"
)

// RayOffset moves secondary ray origins off the surface they leave
const RayOffset = 0.001

// MinContribution is the brightness below which a path is not worth extending
const MinContribution = 0.001

// Shader computes the color seen along an incoming ray at a surface hit.
// Shaders that recurse spend one unit of depth per secondary ray and
// return core.Clear once depth is exhausted. Shaders are shared by pointer
// and must not be edited while a render is running.
type Shader interface {
	Shade(ctx *Context, in Intersection, path core.Color, depth int) core.Color
}

// Texture maps a texture coordinate and an incidence angle to a color
type Texture interface {
	Color(uv core.TextureCoordinate, angle float32) core.Color
}

// Intersection describes the surface point being shaded
type Intersection struct {
	Triangle    core.Triangle
	Barycentric core.Barycentric
	Point       core.Point3
	Direction   core.Vec3 // Incoming ray direction, normalized
}

// Normal returns the interpolated shading normal
func (in Intersection) Normal() core.Vec3 {
	return in.Triangle.InterpolatedNormal(in.Barycentric)
}

// FacingNormal returns the shading normal flipped to the side the ray came from
func (in Intersection) FacingNormal() core.Vec3 {
	n := in.Normal()
	if n.Dot(in.Direction) > 0 {
		return n.Negate()
	}
	return n
}

// Angle returns the angle in radians between the ray and the surface normal
func (in Intersection) Angle() float32 {
	c := math32.Abs(in.Normal().Dot(in.Direction))
	return math32.Acos(min(c, 1))
}

// Context carries everything a shader needs to trace further rays. Each
// render worker owns one Context, so Random is never shared.
type Context struct {
	Store       core.TriangleStore
	Materials   *Library
	Environment *Environment
	Random      *rand.Rand
}

// Bounce casts a secondary ray for a shader that was handed depth. A miss
// returns the environment color, a hit shades the next surface with depth-1.
func (c *Context) Bounce(ray core.Ray, path core.Color, depth int) core.Color {
	col, _ := c.bounce(ray, path, depth)
	return col
}

// bounce also reports the distance to the next surface, or +Inf on a miss
func (c *Context) bounce(ray core.Ray, path core.Color, depth int) (core.Color, float32) {
	if depth <= 0 {
		return core.Clear, 0
	}
	hit, ok := c.Store.NearestHit(ray)
	if !ok {
		return c.Environment.Radiance(ray.Direction), math32.Inf(1)
	}
	return c.ShadeHit(ray, hit, path, depth-1), hit.T
}

// ShadeHit evaluates the material of a hit triangle
func (c *Context) ShadeHit(ray core.Ray, hit core.Hit, path core.Color, depth int) core.Color {
	in := Intersection{
		Triangle:    hit.Triangle,
		Barycentric: hit.Barycentric,
		Point:       ray.At(hit.T),
		Direction:   ray.Direction,
	}
	return c.Materials.Shader(hit.Triangle.Material).Shade(c, in, path, depth)
}

// surfaceColor returns the texture color at the hit or the flat color
func surfaceColor(flat core.Color, tex Texture, in Intersection) core.Color {
	if tex == nil {
		return flat
	}
	return tex.Color(in.Triangle.InterpolatedUV(in.Barycentric), in.Angle())
}

// mirrorAbove reflects dir across the surface plane when it points below n
func mirrorAbove(dir, n core.Vec3) core.Vec3 {
	if d := dir.Dot(n); d < 0 {
		return dir.Subtract(n.Multiply(2 * d))
	}
	return dir
}
