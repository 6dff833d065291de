package scene

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-octree-pathtracer/pkg/core"
)

var quadUVs = [4]core.TextureCoordinate{{U: 0, V: 0}, {U: 1, V: 0}, {U: 1, V: 1}, {U: 0, V: 1}}

// quad splits four counter-clockwise corners into two triangles facing n
func quad(p [4]core.Point3, n core.Vec3, mat core.MaterialID) [2]core.Triangle {
	v := func(i int) core.Vertex {
		return core.Vertex{Point: p[i], Normal: n, UV: quadUVs[i]}
	}
	return [2]core.Triangle{
		{A: v(0), B: v(1), C: v(2), Material: mat},
		{A: v(0), B: v(2), C: v(3), Material: mat},
	}
}

// NewPlane creates a square of the given size in the XY plane facing +Z
func NewPlane(name string, size float32, mat core.MaterialID) *Mesh {
	h := size / 2
	tris := quad([4]core.Point3{
		core.NewVec3(-h, -h, 0),
		core.NewVec3(h, -h, 0),
		core.NewVec3(h, h, 0),
		core.NewVec3(-h, h, 0),
	}, core.NewVec3(0, 0, 1), mat)
	return NewMesh(name, tris[:])
}

// NewCube creates an axis-aligned cube centered at the origin with outward normals
func NewCube(name string, size float32, mat core.MaterialID) *Mesh {
	h := size / 2
	faces := []struct{ n, u, v core.Vec3 }{
		{core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 1)},
		{core.NewVec3(-1, 0, 0), core.NewVec3(0, 0, 1), core.NewVec3(0, 1, 0)},
		{core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 1), core.NewVec3(1, 0, 0)},
		{core.NewVec3(0, -1, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1)},
		{core.NewVec3(0, 0, 1), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0)},
		{core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0), core.NewVec3(1, 0, 0)},
	}

	tris := make([]core.Triangle, 0, 12)
	for _, f := range faces {
		c := f.n.Multiply(h)
		u := f.u.Multiply(h)
		v := f.v.Multiply(h)
		q := quad([4]core.Point3{
			c.Subtract(u).Subtract(v),
			c.Add(u).Subtract(v),
			c.Add(u).Add(v),
			c.Subtract(u).Add(v),
		}, f.n, mat)
		tris = append(tris, q[:]...)
	}
	return NewMesh(name, tris)
}

// NewUVSphere creates a smooth sphere from latitude rings and longitude
// segments. UVs wrap once around Z with v=1 at the north pole.
func NewUVSphere(name string, radius float32, segments, rings int, mat core.MaterialID) *Mesh {
	segments = max(segments, 3)
	rings = max(rings, 2)

	vertex := func(i, j int) core.Vertex {
		theta := math32.Pi * float32(j) / float32(rings)
		phi := 2 * math32.Pi * float32(i) / float32(segments)
		st, ct := math32.Sincos(theta)
		sp, cp := math32.Sincos(phi)
		n := core.NewVec3(st*cp, st*sp, ct)
		return core.Vertex{
			Point:  n.Multiply(radius),
			Normal: n,
			UV:     core.TextureCoordinate{U: float32(i) / float32(segments), V: 1 - float32(j)/float32(rings)},
		}
	}

	tris := make([]core.Triangle, 0, segments*(2*rings-2))
	for j := 0; j < rings; j++ {
		for i := 0; i < segments; i++ {
			a, b := vertex(i, j), vertex(i+1, j)
			c, d := vertex(i+1, j+1), vertex(i, j+1)
			if j != rings-1 {
				tris = append(tris, core.Triangle{A: a, B: d, C: c, Material: mat})
			}
			if j != 0 {
				tris = append(tris, core.Triangle{A: a, B: c, C: b, Material: mat})
			}
		}
	}
	return NewMesh(name, tris)
}
