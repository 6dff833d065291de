package scene

import (
	"fmt"

	"github.com/df07/go-octree-pathtracer/pkg/core"
)

// Object is anything that can be placed in a scene and turned into triangles
type Object interface {
	Name() string
	// Transformed returns the object's triangles in world space
	Transformed() []core.Triangle
	// Materials returns the distinct material IDs used by the object
	Materials() []core.MaterialID
	// AssignMaterial sets every triangle of the object to one material
	AssignMaterial(id core.MaterialID)
}

// Mesh is an explicit triangle list in object space with a placement
type Mesh struct {
	name      string
	Location  core.Point3
	Scale     float32
	Rotation  [3]float32 // alpha, beta, gamma in radians, see core.NewRotation
	Triangles []core.Triangle
}

// NewMesh creates a mesh at the origin with unit scale
func NewMesh(name string, triangles []core.Triangle) *Mesh {
	if name == "" {
		name = "unnamed"
	}
	return &Mesh{name: name, Scale: 1, Triangles: triangles}
}

// Name implements Object
func (m *Mesh) Name() string {
	return m.name
}

// Rename changes the mesh name
func (m *Mesh) Rename(name string) {
	m.name = name
}

// Matrix returns the rotation of the mesh
func (m *Mesh) Matrix() core.Mat3 {
	return core.NewRotation(m.Rotation[0], m.Rotation[1], m.Rotation[2])
}

// Transformed rotates, then scales, then translates every triangle.
// Normals are rotated, and flipped when a negative scale mirrors the mesh.
func (m *Mesh) Transformed() []core.Triangle {
	rot := m.Matrix()
	flip := float32(1)
	if m.Scale < 0 {
		flip = -1
	}
	place := func(v core.Vertex) core.Vertex {
		return core.Vertex{
			Point:  rot.Apply(v.Point).Multiply(m.Scale).Add(m.Location),
			Normal: rot.Apply(v.Normal).Multiply(flip),
			UV:     v.UV,
		}
	}

	out := make([]core.Triangle, len(m.Triangles))
	for i, tri := range m.Triangles {
		out[i] = core.Triangle{A: place(tri.A), B: place(tri.B), C: place(tri.C), Material: tri.Material}
	}
	return out
}

// Materials implements Object
func (m *Mesh) Materials() []core.MaterialID {
	seen := make(map[core.MaterialID]bool)
	var ids []core.MaterialID
	for _, tri := range m.Triangles {
		if !seen[tri.Material] {
			seen[tri.Material] = true
			ids = append(ids, tri.Material)
		}
	}
	return ids
}

// AssignMaterial implements Object
func (m *Mesh) AssignMaterial(id core.MaterialID) {
	for i := range m.Triangles {
		m.Triangles[i].Material = id
	}
}

// Translated returns a copy moved by offset. Triangles are shared.
func (m *Mesh) Translated(offset core.Vec3) *Mesh {
	c := *m
	c.Location = m.Location.Add(offset)
	return &c
}

// Scaled returns a copy with the scale multiplied by factor. Triangles are shared.
func (m *Mesh) Scaled(factor float32) *Mesh {
	c := *m
	c.Scale = m.Scale * factor
	return &c
}

func (m *Mesh) String() string {
	return fmt.Sprintf("Mesh %q (%d triangles, location %v, scale %g)", m.name, len(m.Triangles), m.Location, m.Scale)
}
