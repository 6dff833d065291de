package core

// MaterialID addresses a material in a material arena. Triangles store the
// ID so edits to the material are visible to every triangle using it.
type MaterialID uint32

// TextureCoordinate is a UV pair
type TextureCoordinate struct {
	U, V float32
}

// Vertex is a triangle corner with its shading normal and texture coordinate
type Vertex struct {
	Point  Point3
	Normal Vec3
	UV     TextureCoordinate
}

// Barycentric holds the weights of a point inside a triangle. Alpha weights A,
// Beta weights B and Gamma weights C.
type Barycentric struct {
	Alpha, Beta, Gamma float32
}

// Triangle is a value type holding three vertices and a material handle
type Triangle struct {
	A, B, C  Vertex
	Material MaterialID
}

// NewTriangle creates a triangle whose vertex normals are the face normal
// and whose texture coordinates are (0,0), (1,0), (0,1)
func NewTriangle(a, b, c Point3, material MaterialID) Triangle {
	n := b.Subtract(a).Cross(c.Subtract(a)).Normalize()
	return Triangle{
		A:        Vertex{Point: a, Normal: n, UV: TextureCoordinate{0, 0}},
		B:        Vertex{Point: b, Normal: n, UV: TextureCoordinate{1, 0}},
		C:        Vertex{Point: c, Normal: n, UV: TextureCoordinate{0, 1}},
		Material: material,
	}
}

// FaceNormal returns the normalized cross product of the triangle edges
func (t Triangle) FaceNormal() Vec3 {
	return t.B.Point.Subtract(t.A.Point).Cross(t.C.Point.Subtract(t.A.Point)).Normalize()
}

// Points returns the three corner positions
func (t Triangle) Points() [3]Point3 {
	return [3]Point3{t.A.Point, t.B.Point, t.C.Point}
}

// Bounds returns the tight box around the triangle
func (t Triangle) Bounds() AABB {
	return NewAABBFromPoints(t.A.Point, t.B.Point, t.C.Point)
}

// Point returns the position at the given barycentric coordinates
func (t Triangle) Point(b Barycentric) Point3 {
	return t.A.Point.Multiply(b.Alpha).
		Add(t.B.Point.Multiply(b.Beta)).
		Add(t.C.Point.Multiply(b.Gamma))
}

// InterpolatedNormal returns the normalized blend of the vertex normals.
// Falls back to the face normal when the vertex normals cancel out.
func (t Triangle) InterpolatedNormal(b Barycentric) Vec3 {
	n := t.A.Normal.Multiply(b.Alpha).
		Add(t.B.Normal.Multiply(b.Beta)).
		Add(t.C.Normal.Multiply(b.Gamma)).
		Normalize()
	if n.LengthSquared() == 0 {
		return t.FaceNormal()
	}
	return n
}

// InterpolatedUV returns the blended texture coordinate
func (t Triangle) InterpolatedUV(b Barycentric) TextureCoordinate {
	return TextureCoordinate{
		U: t.A.UV.U*b.Alpha + t.B.UV.U*b.Beta + t.C.UV.U*b.Gamma,
		V: t.A.UV.V*b.Alpha + t.B.UV.V*b.Beta + t.C.UV.V*b.Gamma,
	}
}

// Intersect solves origin + t*dir = A + beta*(B-A) + gamma*(C-A) with
// Cramer's rule. It reports no hit for a zero determinant, for barycentric
// weights outside [0,1] and for t <= 0. No epsilon is applied here.
func Intersect(ray Ray, tri Triangle) (float32, Barycentric, bool) {
	a := tri.A.Point
	bSubA := tri.B.Point.Subtract(a)
	cSubA := tri.C.Point.Subtract(a)
	nDir := ray.Direction.Negate()
	right := ray.Origin.Subtract(a)

	det := determinant(bSubA, cSubA, nDir)
	if det == 0 {
		return 0, Barycentric{}, false
	}
	inv := 1 / det

	beta := determinant(right, cSubA, nDir) * inv
	if !(beta >= 0 && beta <= 1) {
		return 0, Barycentric{}, false
	}
	gamma := determinant(bSubA, right, nDir) * inv
	if !(gamma >= 0 && gamma <= 1) {
		return 0, Barycentric{}, false
	}
	alpha := 1 - beta - gamma
	if !(alpha >= 0 && alpha <= 1) {
		return 0, Barycentric{}, false
	}
	t := determinant(bSubA, cSubA, right) * inv
	if !(t > 0) {
		return 0, Barycentric{}, false
	}
	return t, Barycentric{Alpha: alpha, Beta: beta, Gamma: gamma}, true
}

// determinant of the 3x3 matrix with the given column vectors
func determinant(c0, c1, c2 Vec3) float32 {
	return c0.X*(c1.Y*c2.Z-c2.Y*c1.Z) -
		c1.X*(c0.Y*c2.Z-c2.Y*c0.Z) +
		c2.X*(c0.Y*c1.Z-c1.Y*c0.Z)
}

// Hit is the nearest intersection of a ray with a triangle store
type Hit struct {
	Triangle    Triangle
	T           float32
	Barycentric Barycentric
}

// TriangleStore answers nearest-intersection queries. Implementations must
// be safe for concurrent readers.
type TriangleStore interface {
	NearestHit(ray Ray) (Hit, bool)
}

// LinearStore tests every triangle. It is the reference the octree is checked against.
type LinearStore []Triangle

// NearestHit returns the closest positive intersection over all triangles
func (s LinearStore) NearestHit(ray Ray) (Hit, bool) {
	var best Hit
	found := false
	for _, tri := range s {
		t, b, ok := Intersect(ray, tri)
		if ok && (!found || t < best.T) {
			best = Hit{Triangle: tri, T: t, Barycentric: b}
			found = true
		}
	}
	return best, found
}
