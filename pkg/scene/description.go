package scene

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/pelletier/go-toml/v2"

	"github.com/df07/go-octree-pathtracer/pkg/core"
	"github.com/df07/go-octree-pathtracer/pkg/loaders"
	"github.com/df07/go-octree-pathtracer/pkg/material"
)

// ErrInvalidDescription is returned for malformed scene files
var ErrInvalidDescription = errors.New("scene: invalid description")

// Object types understood by scene files
const (
	ObjectPlane  = "plane"
	ObjectCube   = "cube"
	ObjectSphere = "sphere"
	ObjectOBJ    = "obj"
	ObjectPLY    = "ply"
)

// defaultMaterial is created on demand for objects that name no material
const defaultMaterial = "default"

// Description is the TOML form of a scene
type Description struct {
	Library     string                           `toml:"library,omitempty"` // Material library file, relative to the scene
	Meta        Meta                             `toml:"meta"`
	Render      RenderSettings                   `toml:"render"`
	Camera      CameraSpec                       `toml:"camera"`
	Environment EnvironmentSpec                  `toml:"environment"`
	Materials   map[string]material.MaterialSpec `toml:"materials,omitempty"`
	Objects     []ObjectSpec                     `toml:"objects"`
}

// Meta describes a scene for listings
type Meta struct {
	Name        string `toml:"name"`
	Description string `toml:"description,omitempty"`
	Group       string `toml:"group,omitempty"`
}

// RenderSettings are the suggested render options of a scene. Zero values
// leave the renderer defaults in place.
type RenderSettings struct {
	Width   int `toml:"width,omitempty"`
	Height  int `toml:"height,omitempty"`
	Samples int `toml:"samples,omitempty"`
	Depth   int `toml:"depth,omitempty"`
}

// CameraSpec places the camera. Angles are in degrees. LookAt, when set,
// overrides Rotation and FocalDistance.
type CameraSpec struct {
	Location      []float32 `toml:"location"`
	Rotation      []float32 `toml:"rotation,omitempty"`
	LookAt        []float32 `toml:"look_at,omitempty"`
	Aperture      float32   `toml:"aperture,omitempty"`
	FocalDistance float32   `toml:"focal_distance,omitempty"`
	FieldOfView   float32   `toml:"fov,omitempty"`
}

// EnvironmentSpec is a uniform color or an equirectangular image
type EnvironmentSpec struct {
	Color    []float32 `toml:"color,omitempty"`
	Strength *float32  `toml:"strength,omitempty"`
	Texture  string    `toml:"texture,omitempty"`
}

// ObjectSpec places one primitive or model. Rotation is in degrees.
type ObjectSpec struct {
	Type     string    `toml:"type"`
	Name     string    `toml:"name,omitempty"`
	Material string    `toml:"material,omitempty"`
	Location []float32 `toml:"location,omitempty"`
	Rotation []float32 `toml:"rotation,omitempty"`
	Scale    float32   `toml:"scale,omitempty"`
	Size     float32   `toml:"size,omitempty"`     // plane and cube edge length
	Radius   float32   `toml:"radius,omitempty"`   // sphere
	Segments int       `toml:"segments,omitempty"` // sphere
	Rings    int       `toml:"rings,omitempty"`    // sphere
	Path     string    `toml:"path,omitempty"`     // obj and ply, relative to the scene
}

// ReadDescription decodes a scene file
func ReadDescription(r io.Reader) (*Description, error) {
	var d Description
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to decode scene: %w", err)
	}
	return &d, nil
}

// LoadDescription reads a scene file and builds the scene. Relative paths
// inside the file are resolved against its directory.
func LoadDescription(path string, logger core.Logger) (*Description, *Scene, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	d, err := ReadDescription(file)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	if d.Meta.Name == "" {
		d.Meta.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	s, err := d.Build(filepath.Dir(path), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, s, nil
}

// Build turns the description into a scene
func (d *Description) Build(base string, logger core.Logger) (*Scene, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}
	images := loaders.NewImageCache(base)
	s := New()

	if d.Library != "" {
		f, err := os.Open(resolvePath(base, d.Library))
		if err != nil {
			return nil, fmt.Errorf("failed to open material library: %w", err)
		}
		lib, err := material.DecodeLibrary(f, images.Load)
		f.Close()
		if err != nil {
			return nil, err
		}
		s.Materials = lib
	}
	if err := s.Materials.AddSpecs(d.Materials, images.Load); err != nil {
		return nil, err
	}

	camera, err := d.Camera.build()
	if err != nil {
		return nil, err
	}
	s.Camera = camera

	env, err := d.Environment.build(images)
	if err != nil {
		return nil, err
	}
	s.Environment = env

	for i, spec := range d.Objects {
		meshes, err := spec.build(base, s.Materials, logger)
		if err != nil {
			return nil, fmt.Errorf("object %d (%s): %w", i, spec.Name, err)
		}
		for _, mesh := range meshes {
			s.Add(mesh)
		}
	}
	logger.Printf("Built scene %q: %d objects, %d triangles, %d materials", d.Meta.Name, len(s.Objects), s.TriangleCount(), s.Materials.Len())
	return s, nil
}

func (c CameraSpec) build() (Camera, error) {
	location, err := vec3(c.Location, core.NewVec3(0, -4, 0))
	if err != nil {
		return Camera{}, fmt.Errorf("camera location: %w", err)
	}
	rotation, err := vec3(c.Rotation, core.Vec3{})
	if err != nil {
		return Camera{}, fmt.Errorf("camera rotation: %w", err)
	}

	cam := NewCamera(location)
	cam.Rotation = radians(rotation)
	cam.ApertureSize = c.Aperture
	if c.FocalDistance > 0 {
		cam.FocalDistance = c.FocalDistance
	}
	if c.FieldOfView > 0 {
		cam.FieldOfView = c.FieldOfView * math32.Pi / 180
	}
	if len(c.LookAt) > 0 {
		target, err := vec3(c.LookAt, core.Vec3{})
		if err != nil {
			return Camera{}, fmt.Errorf("camera look_at: %w", err)
		}
		cam = cam.LookingAt(target)
		if c.FocalDistance > 0 {
			cam.FocalDistance = c.FocalDistance
		}
	}
	if err := cam.Validate(); err != nil {
		return Camera{}, err
	}
	return cam, nil
}

func (e EnvironmentSpec) build(images *loaders.ImageCache) (*material.Environment, error) {
	color := core.Black
	if len(e.Color) > 0 {
		c, err := vec3(e.Color, core.Vec3{})
		if err != nil {
			return nil, fmt.Errorf("environment color: %w", err)
		}
		color = core.NewColor(c.X, c.Y, c.Z)
	}
	strength := float32(1)
	if e.Strength != nil {
		strength = *e.Strength
	}
	env := material.NewEnvironment(color, strength)
	if e.Texture != "" {
		tex, err := images.Load(e.Texture)
		if err != nil {
			return nil, err
		}
		env.Texture = tex
	}
	return env, nil
}

// build returns the meshes of one object entry. Every type gives a single
// mesh except obj, which gives one mesh per object name in the model.
func (o ObjectSpec) build(base string, lib *material.Library, logger core.Logger) ([]*Mesh, error) {
	matID, err := objectMaterial(o.Material, lib)
	if err != nil {
		return nil, err
	}

	var meshes []*Mesh
	switch strings.ToLower(o.Type) {
	case ObjectPlane:
		meshes = []*Mesh{NewPlane(o.Name, orDefault(o.Size, 1), matID)}
	case ObjectCube:
		meshes = []*Mesh{NewCube(o.Name, orDefault(o.Size, 1), matID)}
	case ObjectSphere:
		segments := o.Segments
		if segments == 0 {
			segments = 32
		}
		rings := o.Rings
		if rings == 0 {
			rings = 16
		}
		meshes = []*Mesh{NewUVSphere(o.Name, orDefault(o.Radius, 1), segments, rings, matID)}
	case ObjectOBJ:
		if o.Path == "" {
			return nil, fmt.Errorf("%w: obj needs a path", ErrInvalidDescription)
		}
		meshes, err = ImportOBJFile(resolvePath(base, o.Path), LibraryResolver(lib), logger)
		if err != nil {
			return nil, err
		}
		for _, mesh := range meshes {
			if o.Material != "" {
				mesh.AssignMaterial(matID)
			}
			switch {
			case o.Name == "":
			case len(meshes) == 1:
				mesh.Rename(o.Name)
			default:
				mesh.Rename(o.Name + "/" + mesh.Name())
			}
		}
	case ObjectPLY:
		if o.Path == "" {
			return nil, fmt.Errorf("%w: ply needs a path", ErrInvalidDescription)
		}
		mesh, err := ImportPLYFile(resolvePath(base, o.Path), matID, logger)
		if err != nil {
			return nil, err
		}
		if o.Name != "" {
			mesh.Rename(o.Name)
		}
		meshes = []*Mesh{mesh}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownObject, o.Type)
	}

	location, err := vec3(o.Location, core.Vec3{})
	if err != nil {
		return nil, fmt.Errorf("location: %w", err)
	}
	rotation, err := vec3(o.Rotation, core.Vec3{})
	if err != nil {
		return nil, fmt.Errorf("rotation: %w", err)
	}
	for _, mesh := range meshes {
		mesh.Location = location
		mesh.Rotation = radians(rotation)
		mesh.Scale = orDefault(o.Scale, 1)
	}
	return meshes, nil
}

// objectMaterial looks up a named material, creating the preview
// material when no name is given
func objectMaterial(name string, lib *material.Library) (core.MaterialID, error) {
	if name == "" {
		if m, ok := lib.Lookup(defaultMaterial); ok {
			return m.ID, nil
		}
		return lib.Add(defaultMaterial, material.NewDefault(core.NewColor(0.8, 0.8, 0.8)))
	}
	m, ok := lib.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", material.ErrUnknownMaterial, name)
	}
	return m.ID, nil
}

func vec3(values []float32, fallback core.Vec3) (core.Vec3, error) {
	switch len(values) {
	case 0:
		return fallback, nil
	case 3:
		return core.NewVec3(values[0], values[1], values[2]), nil
	default:
		return core.Vec3{}, fmt.Errorf("%w: expected 3 components, got %d", ErrInvalidDescription, len(values))
	}
}

func radians(degrees core.Vec3) [3]float32 {
	const k = math32.Pi / 180
	return [3]float32{degrees.X * k, degrees.Y * k, degrees.Z * k}
}

func orDefault(v, fallback float32) float32 {
	if v == 0 {
		return fallback
	}
	return v
}

func resolvePath(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
