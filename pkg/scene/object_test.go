package scene

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/df07/go-octree-pathtracer/pkg/core"
)

func singleTriangleMesh() *Mesh {
	return NewMesh("tri", []core.Triangle{
		core.NewTriangle(core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 0), 3),
	})
}

func TestMesh_TransformOrder(t *testing.T) {
	mesh := singleTriangleMesh()
	mesh.Rotation = [3]float32{math32.Pi / 2, 0, 0}
	mesh.Scale = 2
	mesh.Location = core.NewVec3(1, 1, 1)

	tri := mesh.Transformed()[0]

	// rotate (1,0,0) to (0,1,0), scale to (0,2,0), then translate
	expected := core.NewVec3(1, 3, 1)
	if !tri.A.Point.Equals(expected, 1e-5) {
		t.Errorf("Expected %v, got %v", expected, tri.A.Point)
	}
	if !tri.C.Point.Equals(mesh.Location, 1e-6) {
		t.Errorf("Expected the origin to land on the location %v, got %v", mesh.Location, tri.C.Point)
	}
	if tri.Material != 3 {
		t.Errorf("Expected material 3 to be kept, got %d", tri.Material)
	}
}

func TestMesh_NormalsAreRotated(t *testing.T) {
	mesh := singleTriangleMesh()
	mesh.Rotation = [3]float32{0, 0, math32.Pi / 2}
	mesh.Scale = 5

	n := mesh.Transformed()[0].A.Normal
	expected := core.NewVec3(0, -1, 0)
	if !n.Equals(expected, 1e-5) {
		t.Errorf("Expected normal %v, got %v", expected, n)
	}
}

func TestMesh_NegativeScaleFlipsNormals(t *testing.T) {
	mesh := singleTriangleMesh()
	mesh.Scale = -2

	tri := mesh.Transformed()[0]
	if !tri.A.Point.Equals(core.NewVec3(-2, 0, 0), 1e-6) {
		t.Errorf("Expected the mirrored point (-2,0,0), got %v", tri.A.Point)
	}
	for _, v := range []core.Vertex{tri.A, tri.B, tri.C} {
		if !v.Normal.Equals(core.NewVec3(0, 0, -1), 1e-6) {
			t.Errorf("Expected normal (0,0,-1), got %v", v.Normal)
		}
	}
}

func TestMesh_Materials(t *testing.T) {
	mesh := NewMesh("", []core.Triangle{
		core.NewTriangle(core.Vec3{}, core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), 2),
		core.NewTriangle(core.Vec3{}, core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), 1),
		core.NewTriangle(core.Vec3{}, core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), 2),
	})
	if mesh.Name() != "unnamed" {
		t.Errorf("Expected default name, got %q", mesh.Name())
	}

	ids := mesh.Materials()
	if len(ids) != 2 || ids[0] != 2 || ids[1] != 1 {
		t.Errorf("Expected [2 1], got %v", ids)
	}

	mesh.AssignMaterial(7)
	ids = mesh.Materials()
	if len(ids) != 1 || ids[0] != 7 {
		t.Errorf("Expected [7], got %v", ids)
	}
}

func TestMesh_TranslatedAndScaledCopy(t *testing.T) {
	mesh := singleTriangleMesh()
	moved := mesh.Translated(core.NewVec3(0, 0, 2)).Scaled(3)

	if mesh.Location != (core.Vec3{}) || mesh.Scale != 1 {
		t.Errorf("Expected the original to be unchanged, got %v scale %v", mesh.Location, mesh.Scale)
	}
	if moved.Location != core.NewVec3(0, 0, 2) || moved.Scale != 3 {
		t.Errorf("Expected location (0,0,2) scale 3, got %v scale %v", moved.Location, moved.Scale)
	}
	if moved.Name() != mesh.Name() {
		t.Errorf("Expected the name to be kept, got %q", moved.Name())
	}
}

func TestPrimitives_OutwardNormals(t *testing.T) {
	tests := []struct {
		name  string
		mesh  *Mesh
		count int
	}{
		{"cube", NewCube("cube", 2, 0), 12},
		{"sphere", NewUVSphere("sphere", 1.5, 12, 6, 0), 12 * 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.mesh.Triangles) != tt.count {
				t.Fatalf("Expected %d triangles, got %d", tt.count, len(tt.mesh.Triangles))
			}
			for i, tri := range tt.mesh.Triangles {
				centroid := tri.Point(core.Barycentric{Alpha: 1.0 / 3, Beta: 1.0 / 3, Gamma: 1.0 / 3})
				face := tri.FaceNormal()
				if face.Dot(centroid) <= 0 {
					t.Errorf("Triangle %d: face normal %v points inward", i, face)
				}
				if tri.A.Normal.Dot(face) <= 0 {
					t.Errorf("Triangle %d: vertex normal %v disagrees with face %v", i, tri.A.Normal, face)
				}
			}
		})
	}
}

func TestUVSphere_Radius(t *testing.T) {
	sphere := NewUVSphere("sphere", 2, 8, 4, 0)
	for _, tri := range sphere.Triangles {
		for _, p := range tri.Points() {
			if math32.Abs(p.Length()-2) > 1e-5 {
				t.Fatalf("Expected vertices at radius 2, got %v", p.Length())
			}
		}
	}
}

func TestPlane(t *testing.T) {
	plane := NewPlane("floor", 4, 1)
	if len(plane.Triangles) != 2 {
		t.Fatalf("Expected 2 triangles, got %d", len(plane.Triangles))
	}
	up := core.NewVec3(0, 0, 1)
	for _, tri := range plane.Triangles {
		if !tri.FaceNormal().Equals(up, 1e-6) {
			t.Errorf("Expected face normal %v, got %v", up, tri.FaceNormal())
		}
	}

	// a ray straight down through any interior point hits exactly one half
	store := core.LinearStore(plane.Transformed())
	hit, ok := store.NearestHit(core.NewRay(core.NewVec3(1.9, -1.2, 1), core.NewVec3(0, 0, -1)))
	if !ok || math32.Abs(hit.T-1) > 1e-6 {
		t.Errorf("Expected a hit at t=1, got %v %v", ok, hit.T)
	}
}
