package scene

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-octree-pathtracer/pkg/core"
	"github.com/df07/go-octree-pathtracer/pkg/material"
)

// NewCornellScene creates a Cornell box of unit-sized triangle walls with a
// ceiling light, a tall mirror block and a subsurface sphere
func NewCornellScene() *Scene {
	s := New()
	s.Camera = NewCamera(core.NewVec3(0, -3.4, 1))
	s.Camera.FieldOfView = 40 * math32.Pi / 180
	s.Environment = material.NewEnvironment(core.Black, 1)

	// Create materials
	white := s.Materials.MustAdd("white", material.NewDiffuse(core.NewColor(0.73, 0.73, 0.73)))
	red := s.Materials.MustAdd("red", material.NewDiffuse(core.NewColor(0.65, 0.05, 0.05)))
	green := s.Materials.MustAdd("green", material.NewDiffuse(core.NewColor(0.12, 0.45, 0.15)))
	light := s.Materials.MustAdd("light", material.NewEmission(core.White, 15))
	mirror := s.Materials.MustAdd("mirror", material.NewReflection(core.NewColor(0.8, 0.8, 0.9), 0))
	wax := s.Materials.MustAdd("wax", material.NewSubsurface(core.NewColor(0.9, 0.6, 0.4), 4))

	// The box spans x in [-1,1], y in [-1,1], z in [0,2] and is open toward -Y
	walls := []struct {
		name     string
		mat      core.MaterialID
		location core.Vec3
		rotation [3]float32
	}{
		{"floor", white, core.NewVec3(0, 0, 0), [3]float32{0, 0, 0}},
		{"ceiling", white, core.NewVec3(0, 0, 2), [3]float32{0, 0, math32.Pi}},
		{"back wall", white, core.NewVec3(0, 1, 1), [3]float32{0, 0, math32.Pi / 2}},
		{"left wall", red, core.NewVec3(-1, 0, 1), [3]float32{0, math32.Pi / 2, 0}},
		{"right wall", green, core.NewVec3(1, 0, 1), [3]float32{0, -math32.Pi / 2, 0}},
	}
	for _, w := range walls {
		wall := NewPlane(w.name, 2, w.mat)
		wall.Location = w.location
		wall.Rotation = w.rotation
		s.Add(wall)
	}

	lamp := NewPlane("light", 0.5, light)
	lamp.Location = core.NewVec3(0, 0, 1.999)
	lamp.Rotation = [3]float32{0, 0, math32.Pi}
	s.Add(lamp)

	block := NewCube("block", 1, mirror)
	block.Location = core.NewVec3(-0.4, 0.3, 0.6)
	block.Rotation = [3]float32{0.3, 0, 0}
	block.Scale = 0.6
	// stretch the block into a tall box
	for i := range block.Triangles {
		for _, v := range []*core.Vertex{&block.Triangles[i].A, &block.Triangles[i].B, &block.Triangles[i].C} {
			v.Point.Z *= 2
		}
	}

	ball := NewUVSphere("wax ball", 0.35, 32, 16, wax)
	ball.Location = core.NewVec3(0.45, -0.2, 0.35)

	s.Add(block, ball)
	return s
}
