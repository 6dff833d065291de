package scene

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-octree-pathtracer/pkg/core"
	"github.com/df07/go-octree-pathtracer/pkg/material"
)

// NewDefaultScene creates a checkerboard floor with a diffuse, a mirror and
// a glass sphere under a bright sky
func NewDefaultScene() *Scene {
	s := New()
	s.Camera = NewCamera(core.NewVec3(0, -6, 1.6)).LookingAt(core.NewVec3(0, 0, 0.7))
	s.Camera.FieldOfView = 50 * math32.Pi / 180
	s.Camera.ApertureSize = 0.02
	s.Environment = material.NewEnvironment(core.NewColor(0.75, 0.85, 1.0), 1)

	// Create materials
	floor := material.NewDiffuse(core.NewColor(0.8, 0.8, 0.8))
	floor.Texture = material.NewCheckerboard(16, 16)
	board := floor.Texture.(*material.Checkerboard)
	board.Even = core.NewColor(0.25, 0.25, 0.25)
	board.Odd = core.NewColor(0.85, 0.85, 0.85)

	floorID := s.Materials.MustAdd("floor", floor)
	redID := s.Materials.MustAdd("red", material.NewDiffuse(core.NewColor(0.65, 0.2, 0.15)))
	mirrorID := s.Materials.MustAdd("mirror", material.NewReflection(core.NewColor(0.9, 0.9, 0.9), 0.05))
	glassID := s.Materials.MustAdd("glass", material.NewRefraction(1.5, 0))
	lampID := s.Materials.MustAdd("lamp", material.NewEmission(core.NewColor(1, 0.95, 0.85), 6))

	ground := NewPlane("floor", 20, floorID)

	left := NewUVSphere("red sphere", 0.7, 48, 24, redID)
	left.Location = core.NewVec3(-1.6, 0.4, 0.7)

	center := NewUVSphere("mirror sphere", 0.7, 48, 24, mirrorID)
	center.Location = core.NewVec3(0, 1.2, 0.7)

	right := NewUVSphere("glass sphere", 0.7, 48, 24, glassID)
	right.Location = core.NewVec3(1.6, 0.4, 0.7)

	lamp := NewPlane("lamp", 2, lampID)
	lamp.Location = core.NewVec3(0, 0, 5)
	lamp.Rotation = [3]float32{0, 0, math32.Pi} // face down

	s.Add(ground, left, center, right, lamp)
	return s
}
