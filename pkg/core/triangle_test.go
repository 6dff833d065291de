package core

import (
	"testing"

	"github.com/chewxy/math32"
)

func unitTriangle() Triangle {
	return NewTriangle(NewVec3(0, 0, 0), NewVec3(1, 0, 0), NewVec3(0, 1, 0), 0)
}

func TestIntersect_Centroid(t *testing.T) {
	triangles := []Triangle{
		unitTriangle(),
		NewTriangle(NewVec3(-2, 3, 1), NewVec3(4, 1, -1), NewVec3(0, -3, 2), 0),
		NewTriangle(NewVec3(10, 10, 10), NewVec3(10, 12, 10), NewVec3(10, 10, 13), 0),
	}

	for i, tri := range triangles {
		centroid := tri.A.Point.Add(tri.B.Point).Add(tri.C.Point).Multiply(1.0 / 3.0)
		origin := centroid.Add(tri.FaceNormal().Multiply(5))
		ray := NewRay(origin, centroid.Subtract(origin).Normalize())

		tHit, b, ok := Intersect(ray, tri)
		if !ok {
			t.Fatalf("Triangle %d: expected hit through centroid", i)
		}
		sum := b.Alpha + b.Beta + b.Gamma
		if math32.Abs(sum-1) > 1e-5 {
			t.Errorf("Triangle %d: barycentric sum expected 1, got %v", i, sum)
		}
		for _, w := range []float32{b.Alpha, b.Beta, b.Gamma} {
			if w < 0 || w > 1 {
				t.Errorf("Triangle %d: weight out of range: %+v", i, b)
			}
			if math32.Abs(w-1.0/3.0) > 1e-4 {
				t.Errorf("Triangle %d: expected centroid weights, got %+v", i, b)
			}
		}
		if math32.Abs(tHit-5) > 1e-4 {
			t.Errorf("Triangle %d: expected t=5, got %v", i, tHit)
		}
		if !ray.At(tHit).Equals(centroid, 1e-4) {
			t.Errorf("Triangle %d: hit point %v differs from centroid %v", i, ray.At(tHit), centroid)
		}
	}
}

func TestIntersect_Misses(t *testing.T) {
	tri := unitTriangle()
	tests := []struct {
		name string
		ray  Ray
	}{
		{"Outside projection", NewRay(NewVec3(2, 2, 1), NewVec3(0, 0, -1))},
		{"Beyond hypotenuse", NewRay(NewVec3(0.6, 0.6, 1), NewVec3(0, 0, -1))},
		{"Behind origin", NewRay(NewVec3(0.2, 0.2, 1), NewVec3(0, 0, 1))},
		{"Parallel to plane", NewRay(NewVec3(0.2, 0.2, 1), NewVec3(1, 0, 0))},
		{"Origin on the plane", NewRay(NewVec3(0.2, 0.2, 0), NewVec3(0, 0, 1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tHit, b, ok := Intersect(tt.ray, tri); ok {
				t.Errorf("Expected no hit, got t=%v b=%+v", tHit, b)
			}
		})
	}
}

func TestIntersect_BothSides(t *testing.T) {
	tri := unitTriangle()
	for _, z := range []float32{1, -1} {
		ray := NewRay(NewVec3(0.25, 0.25, z), NewVec3(0, 0, -z))
		tHit, b, ok := Intersect(ray, tri)
		if !ok {
			t.Fatalf("Expected hit from z=%v", z)
		}
		if math32.Abs(tHit-1) > 1e-6 || math32.Abs(b.Beta-0.25) > 1e-6 || math32.Abs(b.Gamma-0.25) > 1e-6 {
			t.Errorf("From z=%v: unexpected t=%v b=%+v", z, tHit, b)
		}
	}
}

func TestTriangle_Interpolation(t *testing.T) {
	tri := unitTriangle()
	tri.B.UV = TextureCoordinate{1, 0}
	tri.C.UV = TextureCoordinate{0, 1}
	b := Barycentric{Alpha: 0.5, Beta: 0.25, Gamma: 0.25}

	if uv := tri.InterpolatedUV(b); math32.Abs(uv.U-0.25) > 1e-6 || math32.Abs(uv.V-0.25) > 1e-6 {
		t.Errorf("Expected uv (0.25,0.25), got %+v", uv)
	}
	if p := tri.Point(b); !p.Equals(NewVec3(0.25, 0.25, 0), 1e-6) {
		t.Errorf("Expected point (0.25,0.25,0), got %v", p)
	}
	if n := tri.InterpolatedNormal(b); !n.Equals(NewVec3(0, 0, 1), 1e-6) {
		t.Errorf("Expected +Z normal, got %v", n)
	}

	tri.A.Normal, tri.B.Normal, tri.C.Normal = Vec3{}, Vec3{}, Vec3{}
	if n := tri.InterpolatedNormal(b); !n.Equals(tri.FaceNormal(), 1e-6) {
		t.Errorf("Expected face normal fallback, got %v", n)
	}
}

func TestLinearStore_Nearest(t *testing.T) {
	near := NewTriangle(NewVec3(-1, -1, 1), NewVec3(1, -1, 1), NewVec3(0, 1, 1), 1)
	far := NewTriangle(NewVec3(-1, -1, 3), NewVec3(1, -1, 3), NewVec3(0, 1, 3), 2)
	store := LinearStore{far, near}

	hit, ok := store.NearestHit(NewRay(NewVec3(0, 0, 0), NewVec3(0, 0, 1)))
	if !ok {
		t.Fatal("Expected a hit")
	}
	if hit.Triangle.Material != 1 || math32.Abs(hit.T-1) > 1e-6 {
		t.Errorf("Expected nearest triangle at t=1, got material %d at t=%v", hit.Triangle.Material, hit.T)
	}

	if _, ok := (LinearStore{}).NearestHit(NewRay(Vec3{}, NewVec3(0, 0, 1))); ok {
		t.Error("Empty store should never hit")
	}
}
