package scene

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-octree-pathtracer/pkg/core"
	"github.com/df07/go-octree-pathtracer/pkg/material"
)

// NewGlassScene creates a scene for testing caustics and volume absorption:
// a tinted glass sphere, a dispersive prism made of per-channel refraction
// shaders summed together and a frosted cube on a dark checkerboard
func NewGlassScene() *Scene {
	s := New()
	s.Camera = NewCamera(core.NewVec3(2.5, -5, 2.5)).LookingAt(core.NewVec3(0, 0, 0.6))
	s.Camera.FieldOfView = 45 * math32.Pi / 180
	s.Environment = material.NewEnvironment(core.NewColor(0.2, 0.2, 0.2), 1)

	// Create materials
	floor := material.NewDiffuse(core.White)
	floor.Texture = &material.Checkerboard{
		Horizontal: 12,
		Vertical:   12,
		Even:       core.NewColor(0.1, 0.1, 0.1),
		Odd:        core.NewColor(0.7, 0.7, 0.7),
	}

	tinted := material.NewRefraction(1.5, 0)
	tinted.VolumeColor = core.NewColor(0.2, 0.5, 0.9)
	tinted.Absorption = 0.8

	frosted := material.NewMix(material.NewRefraction(1.45, 0.3), material.NewReflection(core.White, 0.2), 0.85)

	floorID := s.Materials.MustAdd("floor", floor)
	tintedID := s.Materials.MustAdd("tinted glass", tinted)
	prismID := s.Materials.MustAdd("dispersive glass", dispersiveGlass())
	frostedID := s.Materials.MustAdd("frosted glass", frosted)
	lampID := s.Materials.MustAdd("lamp", material.NewEmission(core.White, 12))

	ground := NewPlane("floor", 16, floorID)

	sphere := NewUVSphere("tinted sphere", 0.8, 64, 32, tintedID)
	sphere.Location = core.NewVec3(-1, 0.3, 0.8)

	prism := NewCube("prism", 1, prismID)
	prism.Location = core.NewVec3(1.1, 0.2, 0.5)
	prism.Rotation = [3]float32{math32.Pi / 5, 0, 0}

	cube := NewCube("frosted cube", 0.7, frostedID)
	cube.Location = core.NewVec3(0.2, 1.6, 0.35)

	lamp := NewPlane("lamp", 1.2, lampID)
	lamp.Location = core.NewVec3(-1, 2, 4)
	lamp.Rotation = [3]float32{0, 0, math32.Pi * 0.85}

	s.Add(ground, sphere, prism, cube, lamp)
	return s
}

// dispersiveGlass sums a red, green and blue refraction with slightly
// different indices. Each part only passes its own channel.
func dispersiveGlass() material.Shader {
	channel := func(color core.Color, ior float32) *material.Refraction {
		r := material.NewRefraction(ior, 0)
		r.Color = color
		return r
	}
	red := channel(core.Color{R: 1}, 1.50)
	green := channel(core.Color{G: 1, A: 1}, 1.52)
	blue := channel(core.Color{B: 1}, 1.54)
	return material.NewAdd(material.NewAdd(red, green), blue)
}
