package scene

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/df07/go-octree-pathtracer/pkg/core"
	"github.com/df07/go-octree-pathtracer/pkg/loaders"
	"github.com/df07/go-octree-pathtracer/pkg/material"
)

// MaterialResolver maps a usemtl name to a material. lib holds the entries
// of the model's .mtl file and may be empty. It is called once per usemtl
// group in file order.
type MaterialResolver func(name string, lib loaders.MaterialLib) (core.MaterialID, error)

// ImportOBJ reads a Wavefront model. Each o or g name becomes one mesh,
// in order of first appearance, and a name seen again adds to its mesh.
// Faces without a name go to a mesh called name.
func ImportOBJ(name string, r io.Reader, lib loaders.MaterialLib, resolve MaterialResolver, logger core.Logger) ([]*Mesh, error) {
	data, err := loaders.LoadOBJ(name, r, logger)
	if err != nil {
		return nil, err
	}
	return meshesFromOBJ(name, data, lib, resolve)
}

// ImportOBJFile reads a model and the material library it names. Unnamed
// faces go to a mesh named after the file.
func ImportOBJFile(path string, resolve MaterialResolver, logger core.Logger) ([]*Mesh, error) {
	data, err := loaders.LoadOBJFile(path, logger)
	if err != nil {
		return nil, err
	}
	lib, err := loaders.LoadMaterialLib(path, data.Mtllib, logger)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return meshesFromOBJ(name, data, lib, resolve)
}

// ImportPLYFile reads a PLY model into a mesh named after the file. PLY
// files carry no materials, so every triangle uses mat.
func ImportPLYFile(path string, mat core.MaterialID, logger core.Logger) (*Mesh, error) {
	data, err := loaders.LoadPLYFile(path, logger)
	if err != nil {
		return nil, err
	}
	tris := make([]core.Triangle, len(data.Faces))
	for i, f := range data.Faces {
		tris[i] = core.Triangle{A: f[0], B: f[1], C: f[2], Material: mat}
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return NewMesh(name, tris), nil
}

func meshesFromOBJ(name string, data *loaders.OBJData, lib loaders.MaterialLib, resolve MaterialResolver) ([]*Mesh, error) {
	var meshes []*Mesh
	byName := make(map[string]*Mesh)
	for _, g := range data.Groups {
		id, err := resolve(g.Material, lib)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve material %q: %w", g.Material, err)
		}

		meshName := g.Name
		if meshName == "" {
			meshName = name
		}
		mesh, ok := byName[meshName]
		if !ok {
			mesh = NewMesh(meshName, nil)
			byName[meshName] = mesh
			meshes = append(meshes, mesh)
		}
		for _, f := range g.Faces {
			mesh.Triangles = append(mesh.Triangles, core.Triangle{A: f[0], B: f[1], C: f[2], Material: id})
		}
	}
	return meshes, nil
}

// LibraryResolver resolves names against a material library. Unknown names
// are added as diffuse materials using the .mtl diffuse color when there is
// one, so repeated groups share a material.
func LibraryResolver(materials *material.Library) MaterialResolver {
	return func(name string, lib loaders.MaterialLib) (core.MaterialID, error) {
		if name == "" {
			name = "default"
		}
		if m, ok := materials.Lookup(name); ok {
			return m.ID, nil
		}
		color := core.NewColor(0.8, 0.8, 0.8)
		if entry, ok := lib[name]; ok {
			color = entry.Diffuse
		}
		return materials.Add(name, material.NewDiffuse(color))
	}
}

// Space selects the frame ExportOBJ writes coordinates in
type Space int

const (
	// WorldSpace keeps scene coordinates
	WorldSpace Space = iota
	// CameraSpace puts the camera at the origin looking along +Y
	CameraSpace
)

// ExportOBJ writes the scene's triangles as a Wavefront model. Each object
// becomes an o block and material names are written as usemtl.
func ExportOBJ(w io.Writer, s *Scene, space Space) error {
	tris := s.Triangles()
	if space == CameraSpace {
		tris = s.Transformed()
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %d objects, %d triangles\n", len(s.Objects), len(tris))

	next := 1
	for _, o := range s.Objects {
		n := objectTriangleCount(o)
		objTris := tris[:n]
		tris = tris[n:]

		fmt.Fprintf(bw, "o %s\n", strings.ReplaceAll(o.Name(), " ", "_"))
		current := core.MaterialID(^uint32(0))
		for _, tri := range objTris {
			if tri.Material != current {
				current = tri.Material
				name := fmt.Sprintf("material_%d", current)
				if m, err := s.Materials.Get(current); err == nil {
					name = m.Name
				}
				fmt.Fprintf(bw, "usemtl %s\n", name)
			}
			for _, v := range [3]core.Vertex{tri.A, tri.B, tri.C} {
				fmt.Fprintf(bw, "v %g %g %g\n", v.Point.X, v.Point.Y, v.Point.Z)
				fmt.Fprintf(bw, "vt %g %g\n", v.UV.U, v.UV.V)
				fmt.Fprintf(bw, "vn %g %g %g\n", v.Normal.X, v.Normal.Y, v.Normal.Z)
			}
			fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", next, next, next, next+1, next+1, next+1, next+2, next+2, next+2)
			next += 3
		}
	}
	return bw.Flush()
}
