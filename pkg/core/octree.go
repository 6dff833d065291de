package core

import (
	"time"

	"github.com/chewxy/math32"
	"golang.org/x/exp/rand"

	"github.com/df07/go-octree-pathtracer/pkg/containers"
)

const (
	// DefaultLeafThreshold is the bucket size at or below which a node stays a leaf
	DefaultLeafThreshold = 4
	// DefaultMaxDepth bounds subdivision on pathological input
	DefaultMaxDepth = 32

	// emptyChild marks an octant that received no triangles
	emptyChild = -1

	// splitMedianWeight blends the split plane between median and center
	splitMedianWeight = 2.0 / 3.0
)

// OctreeOptions configures octree construction
type OctreeOptions struct {
	LeafThreshold int    // Buckets this small are not split further (default 4)
	MaxDepth      int    // Maximum subdivision depth (default 32)
	Seed          uint64 // Seed for the randomized median selection
	Logger        Logger // Optional build log
}

// octreeNode is one arena slot. Leaves keep a range into Octree.refs,
// inner nodes keep eight child slots.
type octreeNode struct {
	bounds   AABB
	children [8]int32
	first    int32
	count    int32
	leaf     bool
}

// Octree is an immutable spatial index over a triangle set. Triangles that
// straddle split planes are replicated into every octant they overlap.
type Octree struct {
	triangles []Triangle
	nodes     []octreeNode
	refs      []int32
	stats     OctreeStats
}

// OctreeStats describes the shape of a built octree
type OctreeStats struct {
	Triangles   int
	Nodes       int
	InnerNodes  int
	Leaves      int
	EmptyLeaves int
	MaxDepth    int
	References  int // Triangle references stored in leaves, replication included
	BuildTime   time.Duration
}

// buildTask is a node waiting to be filled in by the builder
type buildTask struct {
	node  int32
	tris  []int32
	depth int
}

// NewOctree builds the index. A nil or empty triangle set yields an index
// that never reports a hit.
func NewOctree(triangles []Triangle, opts OctreeOptions) *Octree {
	if opts.LeafThreshold <= 0 {
		opts.LeafThreshold = DefaultLeafThreshold
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Logger == nil {
		opts.Logger = NopLogger{}
	}

	start := time.Now()
	tree := &Octree{triangles: append([]Triangle(nil), triangles...)}
	tree.stats.Triangles = len(triangles)
	if len(triangles) == 0 {
		return tree
	}

	all := make([]int32, len(triangles))
	points := make([]Point3, 0, 3*len(triangles))
	for i, tri := range triangles {
		all[i] = int32(i)
		p := tri.Points()
		points = append(points, p[:]...)
	}

	b := &octreeBuilder{tree: tree, opts: opts, rng: rand.New(rand.NewSource(opts.Seed))}
	rootBounds := NewAABBFromPoints(points...)
	tree.nodes = append(tree.nodes, octreeNode{bounds: pad(rootBounds)})

	if len(all) > opts.LeafThreshold && !degenerate(rootBounds) {
		b.stack = append(b.stack, buildTask{node: 0, tris: all, depth: 0})
	} else {
		b.makeLeaf(0, all)
	}
	for len(b.stack) > 0 {
		task := b.stack[len(b.stack)-1]
		b.stack = b.stack[:len(b.stack)-1]
		b.split(task)
	}

	tree.stats.Nodes = len(tree.nodes)
	tree.stats.References = len(tree.refs)
	tree.stats.BuildTime = time.Since(start)
	opts.Logger.Printf("octree: %d triangles, %d nodes (%d leaves, %d empty), depth %d, %d refs in %v",
		tree.stats.Triangles, tree.stats.Nodes, tree.stats.Leaves, tree.stats.EmptyLeaves,
		tree.stats.MaxDepth, tree.stats.References, tree.stats.BuildTime)
	return tree
}

type octreeBuilder struct {
	tree  *Octree
	opts  OctreeOptions
	rng   *rand.Rand
	stack []buildTask
}

// split turns a node into an inner node and queues the children that need
// further subdivision
func (b *octreeBuilder) split(task buildTask) {
	tree := b.tree
	bounds := tree.nodes[task.node].bounds
	splitAt := b.splitPoint(bounds, task.tris)
	tree.stats.InnerNodes++
	if task.depth > tree.stats.MaxDepth {
		tree.stats.MaxDepth = task.depth
	}

	for octant := 0; octant < 8; octant++ {
		box := octantBox(bounds, splitAt, octant)
		test := pad(box)

		var bucket []int32
		for _, idx := range task.tris {
			if test.OverlapsTriangle(tree.triangles[idx]) {
				bucket = append(bucket, idx)
			}
		}
		if len(bucket) == 0 {
			tree.nodes[task.node].children[octant] = emptyChild
			tree.stats.EmptyLeaves++
			continue
		}

		childBounds := b.tightBounds(bucket).Intersection(box)
		child := int32(len(tree.nodes))
		tree.nodes = append(tree.nodes, octreeNode{bounds: pad(childBounds)})
		tree.nodes[task.node].children[octant] = child

		inBox := b.pointsInside(bucket, childBounds)
		if len(bucket) > b.opts.LeafThreshold &&
			len(bucket) < len(task.tris) &&
			task.depth+1 < b.opts.MaxDepth &&
			!degenerate(NewAABBFromPoints(inBox...)) {
			b.stack = append(b.stack, buildTask{node: child, tris: bucket, depth: task.depth + 1})
		} else {
			b.makeLeaf(child, bucket)
			if task.depth+1 > tree.stats.MaxDepth {
				tree.stats.MaxDepth = task.depth + 1
			}
		}
	}
}

func (b *octreeBuilder) makeLeaf(node int32, tris []int32) {
	tree := b.tree
	n := &tree.nodes[node]
	n.leaf = true
	n.first = int32(len(tree.refs))
	n.count = int32(len(tris))
	tree.refs = append(tree.refs, tris...)
	tree.stats.Leaves++
}

// splitPoint blends the per-axis median of the vertices inside bounds with
// the center of bounds
func (b *octreeBuilder) splitPoint(bounds AABB, tris []int32) Vec3 {
	center := bounds.Center()
	inside := b.pointsInside(tris, bounds)
	if len(inside) == 0 {
		return center
	}

	coords := make([]float32, len(inside))
	var out Vec3
	for axis := 0; axis < 3; axis++ {
		for i, p := range inside {
			coords[i] = p.Axis(axis)
		}
		median, err := containers.KthSmallest(coords, max(1, len(coords)/2), b.rng)
		if err != nil {
			median = center.Axis(axis)
		}
		c := center.Axis(axis)
		out = out.WithAxis(axis, c+(median-c)*splitMedianWeight)
	}
	return out
}

func (b *octreeBuilder) tightBounds(tris []int32) AABB {
	first := b.tree.triangles[tris[0]].Bounds()
	for _, idx := range tris[1:] {
		first = first.Union(b.tree.triangles[idx].Bounds())
	}
	return first
}

func (b *octreeBuilder) pointsInside(tris []int32, box AABB) []Point3 {
	var out []Point3
	for _, idx := range tris {
		for _, p := range b.tree.triangles[idx].Points() {
			if box.Contains(p) {
				out = append(out, p)
			}
		}
	}
	return out
}

// octantBox returns child box number octant. Bit 0 selects the upper X
// half, bit 1 the upper Y half and bit 2 the upper Z half.
func octantBox(bounds AABB, splitAt Vec3, octant int) AABB {
	box := bounds
	for axis := 0; axis < 3; axis++ {
		s := splitAt.Axis(axis)
		if octant&(1<<axis) != 0 {
			box.Min = box.Min.WithAxis(axis, s)
		} else {
			box.Max = box.Max.WithAxis(axis, s)
		}
	}
	return box
}

// degenerate reports a box with no extent on any axis
func degenerate(box AABB) bool {
	s := box.Size()
	return s.X == 0 && s.Y == 0 && s.Z == 0
}

// pad grows a box by a small relative margin so that geometry lying exactly
// on a face is still counted as overlapping after rounding
func pad(box AABB) AABB {
	s := box.Size()
	extent := max(s.X, s.Y, s.Z, math32.Abs(box.Min.X), math32.Abs(box.Min.Y), math32.Abs(box.Min.Z),
		math32.Abs(box.Max.X), math32.Abs(box.Max.Y), math32.Abs(box.Max.Z))
	e := extent*1e-5 + 1e-6
	margin := Vec3{e, e, e}
	return AABB{Min: box.Min.Subtract(margin), Max: box.Max.Add(margin)}
}

// Stats returns build statistics
func (o *Octree) Stats() OctreeStats {
	return o.stats
}

// Len returns the number of indexed triangles
func (o *Octree) Len() int {
	return len(o.triangles)
}

// NearestHit returns the closest intersection of the ray with any indexed
// triangle. The search is depth first and visits every child whose box the
// ray enters before the best hit found so far.
func (o *Octree) NearestHit(ray Ray) (Hit, bool) {
	if len(o.nodes) == 0 {
		return Hit{}, false
	}
	best := Hit{T: math32.Inf(1)}
	found := o.nearest(0, ray, &best)
	return best, found
}

func (o *Octree) nearest(idx int32, ray Ray, best *Hit) bool {
	n := &o.nodes[idx]
	if _, ok := n.bounds.Hit(ray, best.T); !ok {
		return false
	}

	found := false
	if n.leaf {
		for _, ref := range o.refs[n.first : n.first+n.count] {
			tri := o.triangles[ref]
			t, bary, ok := Intersect(ray, tri)
			if ok && t < best.T {
				*best = Hit{Triangle: tri, T: t, Barycentric: bary}
				found = true
			}
		}
		return found
	}

	for _, child := range n.children {
		if child != emptyChild && o.nearest(child, ray, best) {
			found = true
		}
	}
	return found
}
