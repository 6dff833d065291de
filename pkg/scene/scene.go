package scene

import (
	"errors"

	"github.com/df07/go-octree-pathtracer/pkg/core"
	"github.com/df07/go-octree-pathtracer/pkg/material"
)

var (
	// ErrInvalidCamera is returned for a camera that cannot produce rays
	ErrInvalidCamera = errors.New("scene: invalid camera")
	// ErrUnknownObject is returned for an object type the loader does not know
	ErrUnknownObject = errors.New("scene: unknown object type")
	// ErrUnknownScene is returned when a scene name cannot be resolved
	ErrUnknownScene = errors.New("scene: unknown scene")
)

// Scene contains everything needed to render: geometry, the materials the
// triangles refer to, a camera and the environment seen by escaping rays.
// Scenes are edited between renders only.
type Scene struct {
	Objects     []Object
	Camera      Camera
	Environment *material.Environment
	Materials   *material.Library
}

// New creates an empty scene with a black environment
func New() *Scene {
	return &Scene{
		Camera:      NewCamera(core.NewVec3(0, -4, 0)),
		Environment: material.NewEnvironment(core.Black, 1),
		Materials:   material.NewLibrary(),
	}
}

// Add places objects in the scene
func (s *Scene) Add(objects ...Object) {
	s.Objects = append(s.Objects, objects...)
}

// Object returns the first object with the given name
func (s *Scene) Object(name string) (Object, bool) {
	for _, o := range s.Objects {
		if o.Name() == name {
			return o, true
		}
	}
	return nil, false
}

// Triangles returns every object's triangles in world space
func (s *Scene) Triangles() []core.Triangle {
	out := make([]core.Triangle, 0, s.TriangleCount())
	for _, o := range s.Objects {
		out = append(out, o.Transformed()...)
	}
	return out
}

// Transformed returns the world triangles expressed in camera space: the
// camera sits at the origin looking along +Y. Rendering indexes world
// space instead; this frame is for exporting what the camera sees.
func (s *Scene) Transformed() []core.Triangle {
	inverse := s.Camera.Matrix().Transpose()
	place := func(v core.Vertex) core.Vertex {
		return core.Vertex{
			Point:  inverse.Apply(v.Point.Subtract(s.Camera.Location)),
			Normal: inverse.Apply(v.Normal),
			UV:     v.UV,
		}
	}

	world := s.Triangles()
	for i, tri := range world {
		world[i] = core.Triangle{A: place(tri.A), B: place(tri.B), C: place(tri.C), Material: tri.Material}
	}
	return world
}

// TriangleCount returns the number of triangles across all objects
func (s *Scene) TriangleCount() int {
	n := 0
	for _, o := range s.Objects {
		n += objectTriangleCount(o)
	}
	return n
}

func objectTriangleCount(o Object) int {
	if m, ok := o.(*Mesh); ok {
		return len(m.Triangles)
	}
	return len(o.Transformed())
}

// UsedMaterials returns the distinct materials referenced by the objects
func (s *Scene) UsedMaterials() []*material.Material {
	var ids []core.MaterialID
	for _, o := range s.Objects {
		ids = append(ids, o.Materials()...)
	}
	return s.Materials.Distinct(ids)
}

// Bounds returns the world-space box around all triangles
func (s *Scene) Bounds() core.AABB {
	var points []core.Point3
	for _, tri := range s.Triangles() {
		p := tri.Points()
		points = append(points, p[:]...)
	}
	return core.NewAABBFromPoints(points...)
}
