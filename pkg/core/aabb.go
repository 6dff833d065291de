package core

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	box := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		box.Min = box.Min.Min(p)
		box.Max = box.Max.Max(p)
	}
	return box
}

// Union returns an AABB that bounds both boxes
func (b AABB) Union(other AABB) AABB {
	return AABB{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// Intersection returns the overlap of two boxes. The result may be empty
// (Min greater than Max on some axis).
func (b AABB) Intersection(other AABB) AABB {
	return AABB{Min: b.Min.Max(other.Min), Max: b.Max.Min(other.Max)}
}

// Center returns the center point of the AABB
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Multiply(0.5)
}

// Size returns the extent of the AABB along each axis
func (b AABB) Size() Vec3 {
	return b.Max.Subtract(b.Min)
}

// IsValid returns true if min <= max on all axes
func (b AABB) IsValid() bool {
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

// Contains reports whether p lies inside the box, faces included
func (b AABB) Contains(p Point3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Slab returns the parametric entry and exit of the ray's line through the
// box. A zero direction component divides to ±Inf, and a NaN produced by an
// origin lying exactly on that slab face fails every later comparison, so
// the node is excluded rather than silently accepted.
func (b AABB) Slab(ray Ray) (tMin, tMax float32) {
	invX := 1 / ray.Direction.X
	invY := 1 / ray.Direction.Y
	invZ := 1 / ray.Direction.Z

	tx1 := (b.Min.X - ray.Origin.X) * invX
	tx2 := (b.Max.X - ray.Origin.X) * invX
	ty1 := (b.Min.Y - ray.Origin.Y) * invY
	ty2 := (b.Max.Y - ray.Origin.Y) * invY
	tz1 := (b.Min.Z - ray.Origin.Z) * invZ
	tz2 := (b.Max.Z - ray.Origin.Z) * invZ

	tMin = nanMax(nanMax(nanMin(tx1, tx2), nanMin(ty1, ty2)), nanMin(tz1, tz2))
	tMax = nanMin(nanMin(nanMax(tx1, tx2), nanMax(ty1, ty2)), nanMax(tz1, tz2))
	return tMin, tMax
}

// Hit reports whether the ray enters the box before better and after the
// origin. Comparisons are written so that NaN bounds reject the box.
func (b AABB) Hit(ray Ray, better float32) (float32, bool) {
	tMin, tMax := b.Slab(ray)
	if !(tMax >= 0) || !(tMax >= tMin) || !(tMin < better) {
		return tMin, false
	}
	return tMin, true
}

// SegmentHits reports whether the segment from p to q passes through the box
func (b AABB) SegmentHits(p, q Point3) bool {
	tMin, tMax := b.Slab(Ray{Origin: p, Direction: q.Subtract(p)})
	return tMax >= 0 && tMax >= tMin && tMin <= 1
}

// Edges returns the twelve edges of the box as point pairs
func (b AABB) Edges() [12][2]Point3 {
	lo, hi := b.Min, b.Max
	c := [8]Point3{
		{lo.X, lo.Y, lo.Z}, {hi.X, lo.Y, lo.Z}, {lo.X, hi.Y, lo.Z}, {hi.X, hi.Y, lo.Z},
		{lo.X, lo.Y, hi.Z}, {hi.X, lo.Y, hi.Z}, {lo.X, hi.Y, hi.Z}, {hi.X, hi.Y, hi.Z},
	}
	return [12][2]Point3{
		{c[0], c[1]}, {c[2], c[3]}, {c[4], c[5]}, {c[6], c[7]},
		{c[0], c[2]}, {c[1], c[3]}, {c[4], c[6]}, {c[5], c[7]},
		{c[0], c[4]}, {c[1], c[5]}, {c[2], c[6]}, {c[3], c[7]},
	}
}

// OverlapsTriangle reports whether a triangle touches the box: a vertex lies
// inside, a triangle edge crosses the box, or a box edge pierces the triangle.
func (b AABB) OverlapsTriangle(tri Triangle) bool {
	pts := tri.Points()
	for _, p := range pts {
		if b.Contains(p) {
			return true
		}
	}
	for i := 0; i < 3; i++ {
		if b.SegmentHits(pts[i], pts[(i+1)%3]) {
			return true
		}
	}
	for _, e := range b.Edges() {
		t, _, ok := Intersect(Ray{Origin: e[0], Direction: e[1].Subtract(e[0])}, tri)
		if ok && t <= 1 {
			return true
		}
	}
	return false
}

// nanMin and nanMax propagate NaN so that a NaN slab rejects the box
func nanMin(a, b float32) float32 {
	if a != a || b != b {
		return a + b
	}
	if a < b {
		return a
	}
	return b
}

func nanMax(a, b float32) float32 {
	if a != a || b != b {
		return a + b
	}
	if a > b {
		return a
	}
	return b
}
