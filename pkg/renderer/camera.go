package renderer

import (
	"github.com/chewxy/math32"
	"golang.org/x/exp/rand"

	"github.com/df07/go-octree-pathtracer/pkg/core"
	"github.com/df07/go-octree-pathtracer/pkg/scene"
)

// Camera generates primary rays for an image of a fixed size
type Camera struct {
	origin   core.Point3
	rotation core.Mat3
	aperture float32
	focal    float32
	halfX    float32 // Film half extents on the plane one unit ahead
	halfZ    float32
	width    float32
	height   float32
}

// NewCamera prepares ray generation for cam. The field of view spans the
// image width.
func NewCamera(cam scene.Camera, width, height int) *Camera {
	halfX := math32.Tan(cam.FieldOfView / 2)
	return &Camera{
		origin:   cam.Location,
		rotation: cam.Matrix(),
		aperture: cam.ApertureSize,
		focal:    cam.FocalDistance,
		halfX:    halfX,
		halfZ:    halfX * float32(height) / float32(width),
		width:    float32(width),
		height:   float32(height),
	}
}

// GetRay returns a ray through a random point of pixel (x, y), leaving
// from a random point of the lens. Row 0 is the top of the image.
func (c *Camera) GetRay(x, y int, random *rand.Rand) core.Ray {
	sx := float32(x) + random.Float32()
	sy := float32(y) + random.Float32()
	var lx, lz float32
	if c.aperture > 0 {
		lx, lz = core.RandomInUnitDisk(random)
		lx *= c.aperture
		lz *= c.aperture
	}
	return c.rayAt(sx, sy, lx, lz)
}

// rayAt builds the ray through film position (sx, sy) in pixels from lens
// offset (lx, lz). All rays through one film position meet on the focal
// plane.
func (c *Camera) rayAt(sx, sy, lx, lz float32) core.Ray {
	dx := (2*sx/c.width - 1) * c.halfX
	dz := (1 - 2*sy/c.height) * c.halfZ
	if lx != 0 || lz != 0 {
		dx -= lx / c.focal
		dz -= lz / c.focal
	}
	dir := c.rotation.Apply(core.NewVec3(dx, 1, dz).Normalize())
	origin := c.origin.Add(c.rotation.Apply(core.NewVec3(lx, 0, lz)))
	return core.NewRay(origin, dir)
}

// CenterRay returns the pinhole ray through the center of pixel (x, y)
func (c *Camera) CenterRay(x, y int) core.Ray {
	return c.rayAt(float32(x)+0.5, float32(y)+0.5, 0, 0)
}
