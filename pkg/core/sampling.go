package core

import (
	"github.com/chewxy/math32"
	"golang.org/x/exp/rand"
)

// RandomUnitVector returns a direction distributed uniformly on the sphere
func RandomUnitVector(rng *rand.Rand) Vec3 {
	for {
		v := Vec3{
			X: rng.Float32()*2 - 1,
			Y: rng.Float32()*2 - 1,
			Z: rng.Float32()*2 - 1,
		}
		lsq := v.LengthSquared()
		if lsq > 1e-8 && lsq <= 1 {
			return v.Multiply(1 / math32.Sqrt(lsq))
		}
	}
}

// RandomHemisphere returns a uniform direction on the side of normal,
// flipping samples that point into the surface
func RandomHemisphere(rng *rand.Rand, normal Vec3) Vec3 {
	d := RandomUnitVector(rng)
	if d.Dot(normal) < 0 {
		return d.Negate()
	}
	return d
}

// Logistic returns a sample of the standard logistic distribution,
// the logit of a uniform variable in (0,1)
func Logistic(rng *rand.Rand) float32 {
	u := rng.Float32()
	for u == 0 {
		u = rng.Float32()
	}
	return -math32.Log(1/u - 1)
}

// PerturbLogistic jitters a unit direction by logistic noise scaled with
// roughness squared and renormalizes it. roughness <= 0 returns dir unchanged.
func PerturbLogistic(rng *rand.Rand, dir Vec3, roughness float32) Vec3 {
	if roughness <= 0 {
		return dir
	}
	s := roughness * roughness
	jitter := Vec3{Logistic(rng) * s, Logistic(rng) * s, Logistic(rng) * s}
	out := dir.Add(jitter).Normalize()
	if out.LengthSquared() == 0 {
		return dir
	}
	return out
}

// RandomInUnitDisk samples the unit disk in polar form with radius sqrt(u)
func RandomInUnitDisk(rng *rand.Rand) (x, y float32) {
	angle := rng.Float32() * 2 * math32.Pi
	radius := math32.Sqrt(rng.Float32())
	s, c := math32.Sincos(angle)
	return c * radius, s * radius
}

// Reflect mirrors v about the normal n
func Reflect(v, n Vec3) Vec3 {
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}
