package material

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-octree-pathtracer/pkg/core"
)

// Environment colors rays that leave the scene
type Environment struct {
	Color    core.Color
	Texture  Texture // Optional equirectangular map, +Z up
	Strength float32
}

// NewEnvironment creates a uniform environment
func NewEnvironment(color core.Color, strength float32) *Environment {
	return &Environment{Color: color, Strength: strength}
}

// Radiance returns the color arriving from direction dir. A nil
// environment is black.
func (e *Environment) Radiance(dir core.Vec3) core.Color {
	if e == nil {
		return core.Black
	}
	if e.Texture == nil {
		return e.Color.Scale(e.Strength)
	}
	return e.Texture.Color(EquirectangularUV(dir), math32.Pi/2).Scale(e.Strength)
}

// EquirectangularUV maps a direction to longitude/latitude texture
// coordinates with u in [0,1) around Z and v=1 straight up
func EquirectangularUV(dir core.Vec3) core.TextureCoordinate {
	d := dir.Normalize()
	longitude := math32.Atan2(d.Y, d.X)
	if longitude < 0 {
		longitude += 2 * math32.Pi
	}
	latitude := math32.Asin(max(-1, min(1, d.Z)))
	return core.TextureCoordinate{
		U: longitude / (2 * math32.Pi),
		V: latitude/math32.Pi + 0.5,
	}
}
