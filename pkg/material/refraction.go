package material

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-octree-pathtracer/pkg/core"
)

// Refraction is a dielectric such as glass or water. Light is split between
// a reflected and a transmitted ray by the Fresnel equations. Inside the
// medium light is tinted toward VolumeColor as it travels.
type Refraction struct {
	Color       core.Color // Tint of both the transmitted and the reflected light
	Texture     Texture
	IOR         float32 // Index of refraction of the medium
	Roughness   float32
	VolumeColor core.Color
	Absorption  float32 // Absorption per unit distance, 0 disables tinting
}

// NewRefraction creates a clear refractive shader
func NewRefraction(ior, roughness float32) *Refraction {
	return &Refraction{
		Color:       core.White,
		IOR:         ior,
		Roughness:   roughness,
		VolumeColor: core.White,
	}
}

// Fresnel returns the unpolarized reflectance for light arriving at cosI
// and leaving at cosT when crossing into a medium with relative index ior.
// Total internal reflection makes cosT NaN, which is reported as 1.
func Fresnel(cosI, cosT, ior float32) float32 {
	rs := (cosI - ior*cosT) / (cosI + ior*cosT)
	rp := (ior*cosI - cosT) / (ior*cosI + cosT)
	r := (rs*rs + rp*rp) / 2
	if math32.IsNaN(r) {
		return 1
	}
	return min(r, 1)
}

// Shade implements Shader
func (r *Refraction) Shade(ctx *Context, in Intersection, path core.Color, depth int) core.Color {
	if depth <= 0 {
		return core.Clear
	}
	tint := surfaceColor(r.Color, r.Texture, in)
	if tint.Multiply(path).Brightness() <= MinContribution {
		return core.Black
	}

	d := in.Direction
	n := in.Normal()
	entering := n.Dot(d) <= 0
	ior := r.IOR
	if !entering {
		ior = 1 / r.IOR
		n = n.Negate()
	}

	iorInv := 1 / ior
	cosI := -n.Dot(d)
	sin2I := 1 - cosI*cosI
	cosT := math32.Sqrt(1 - iorInv*iorInv*sin2I)
	reflectance := Fresnel(cosI, cosT, ior)
	transmittance := 1 - reflectance

	result := core.Clear

	if transmittance > MinContribution {
		dir := d.Multiply(iorInv).Add(n.Multiply(iorInv*cosI - cosT)).Normalize()
		dir = mirrorAbove(core.PerturbLogistic(ctx.Random, dir, r.Roughness), n.Negate())

		ray := core.NewRay(in.Point.Subtract(n.Multiply(RayOffset)), dir)
		next := path.Multiply(tint).Scale(transmittance)
		col, dist := ctx.bounce(ray, next, depth)
		if entering {
			col = col.Multiply(r.volume(dist))
		}
		result = result.Add(col.Multiply(tint).Scale(transmittance))
	}

	if reflectance > MinContribution {
		dir := mirrorAbove(core.PerturbLogistic(ctx.Random, core.Reflect(d, n), r.Roughness), n)

		ray := core.NewRay(in.Point.Add(n.Multiply(RayOffset)), dir)
		col, dist := ctx.bounce(ray, path.Multiply(tint).Scale(reflectance), depth)
		if !entering {
			// internal reflection keeps travelling through the medium
			col = col.Multiply(r.volume(dist))
		}
		result = result.Add(col.Multiply(tint).Scale(reflectance))
	}

	return result
}

// volume returns the tint after travelling dist through the medium
func (r *Refraction) volume(dist float32) core.Color {
	if r.Absorption <= 0 {
		return core.White
	}
	factor := 1 - math32.Exp(-r.Absorption*dist)
	return core.White.Lerp(r.VolumeColor, factor)
}
