package material

import (
	"github.com/df07/go-octree-pathtracer/pkg/core"
)

// Add sums two shaders without weighting. The result can exceed unit
// energy, which is what summing per-wavelength refraction shaders for
// dispersion relies on.
type Add struct {
	First  Shader
	Second Shader
}

// NewAdd creates an additive combination
func NewAdd(first, second Shader) *Add {
	return &Add{First: first, Second: second}
}

// Shade implements Shader
func (a *Add) Shade(ctx *Context, in Intersection, path core.Color, depth int) core.Color {
	return a.First.Shade(ctx, in, path, depth).Add(a.Second.Shade(ctx, in, path, depth))
}

// Mix blends two shaders. Balance 1 is all First, 0 is all Second.
type Mix struct {
	First   Shader
	Second  Shader
	Balance float32
}

// NewMix creates a mix, clamping balance to [0,1]
func NewMix(first, second Shader, balance float32) *Mix {
	return &Mix{First: first, Second: second, Balance: max(0, min(balance, 1))}
}

// Shade implements Shader
func (m *Mix) Shade(ctx *Context, in Intersection, path core.Color, depth int) core.Color {
	a := m.First.Shade(ctx, in, path, depth)
	b := m.Second.Shade(ctx, in, path, depth)
	return a.Scale(m.Balance).Add(b.Scale(1 - m.Balance))
}
