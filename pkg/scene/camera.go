package scene

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-octree-pathtracer/pkg/core"
)

// Camera is a thin-lens camera. Unrotated it looks along +Y with +Z up
// and +X to the right.
type Camera struct {
	Location      core.Point3
	Rotation      [3]float32 // alpha, beta, gamma in radians, see core.NewRotation
	ApertureSize  float32    // Lens radius, 0 is a pinhole
	FocalDistance float32    // Distance to the plane in focus
	FieldOfView   float32    // Horizontal field of view in radians
}

// NewCamera creates a pinhole camera with a 60 degree field of view
func NewCamera(location core.Point3) Camera {
	return Camera{
		Location:      location,
		FocalDistance: 1,
		FieldOfView:   math32.Pi / 3,
	}
}

// Matrix returns the camera rotation
func (c Camera) Matrix() core.Mat3 {
	return core.NewRotation(c.Rotation[0], c.Rotation[1], c.Rotation[2])
}

// Forward returns the viewing direction
func (c Camera) Forward() core.Vec3 {
	return c.Matrix().Apply(core.NewVec3(0, 1, 0))
}

// LookingAt returns the camera turned toward target without roll. The
// focal distance is set to the distance of target.
func (c Camera) LookingAt(target core.Point3) Camera {
	d := target.Subtract(c.Location)
	dist := d.Length()
	if dist == 0 {
		return c
	}
	d = d.Multiply(1 / dist)
	c.Rotation = [3]float32{math32.Atan2(-d.X, d.Y), 0, math32.Asin(max(-1, min(1, d.Z)))}
	c.FocalDistance = dist
	return c
}

// Validate reports whether the camera can produce rays
func (c Camera) Validate() error {
	if !(c.FieldOfView > 0 && c.FieldOfView < math32.Pi) {
		return ErrInvalidCamera
	}
	if c.ApertureSize < 0 || (c.ApertureSize > 0 && !(c.FocalDistance > 0)) {
		return ErrInvalidCamera
	}
	if !c.Location.IsFinite() {
		return ErrInvalidCamera
	}
	return nil
}
