package loaders

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/udhos/gwob"

	"github.com/df07/go-octree-pathtracer/pkg/core"
)

// OBJGroup is a run of faces sharing one o or g name and one usemtl
// directive. Name is empty for faces before the first o or g line.
type OBJGroup struct {
	Name     string
	Material string
	Faces    [][3]core.Vertex
}

// OBJData is a triangulated Wavefront model
type OBJData struct {
	Name   string
	Mtllib string // Material library named by the model, if any
	Groups []OBJGroup
}

// FaceCount returns the number of triangles across all groups
func (d *OBJData) FaceCount() int {
	n := 0
	for _, g := range d.Groups {
		n += len(g.Faces)
	}
	return n
}

// MTLMaterial holds the colors of one entry in a .mtl library
type MTLMaterial struct {
	Name      string
	Diffuse   core.Color
	Ambient   core.Color
	Specular  core.Color
	Shininess float32
}

// MaterialLib maps usemtl names to library entries
type MaterialLib map[string]MTLMaterial

// defaultUVs are used for vertices without texture coordinates
var defaultUVs = [3]core.TextureCoordinate{{U: 0, V: 0}, {U: 1, V: 0}, {U: 0, V: 1}}

func parserOptions(logger core.Logger) *gwob.ObjParserOptions {
	opts := &gwob.ObjParserOptions{IgnoreNormals: false}
	if logger != nil {
		opts.LogStats = true
		opts.Logger = func(s string) { logger.Printf("obj: %s", s) }
	}
	return opts
}

// LoadOBJ parses a Wavefront model. Polygons are triangulated by the
// parser. Missing normals are taken from the face and missing texture
// coordinates default to (0,0), (1,0), (0,1).
func LoadOBJ(name string, r io.Reader, logger core.Logger) (*OBJData, error) {
	start := time.Now()

	obj, err := gwob.NewObjFromReader(name, r, parserOptions(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OBJ %s: %w", name, err)
	}

	stride := obj.StrideSize / 4
	position := obj.StrideOffsetPosition / 4
	normal := obj.StrideOffsetNormal / 4
	texture := obj.StrideOffsetTexture / 4

	vertex := func(index int) (core.Point3, core.Vec3, core.TextureCoordinate, bool, bool) {
		base := stride * index
		p := core.NewVec3(obj.Coord[base+position], obj.Coord[base+position+1], obj.Coord[base+position+2])
		var n core.Vec3
		var uv core.TextureCoordinate
		if obj.NormCoordFound {
			n = core.NewVec3(obj.Coord[base+normal], obj.Coord[base+normal+1], obj.Coord[base+normal+2]).Normalize()
		}
		if obj.TextCoordFound {
			uv = core.TextureCoordinate{U: obj.Coord[base+texture], V: obj.Coord[base+texture+1]}
		}
		return p, n, uv, obj.NormCoordFound, obj.TextCoordFound
	}

	data := &OBJData{Name: name, Mtllib: obj.Mtllib}
	for _, g := range obj.Groups {
		group := OBJGroup{Name: g.Name, Material: g.Usemtl, Faces: make([][3]core.Vertex, 0, g.IndexCount/3)}
		for f := 0; f < g.IndexCount/3; f++ {
			var face [3]core.Vertex
			hasNormals := true
			for v := 0; v < 3; v++ {
				p, n, uv, okN, okUV := vertex(obj.Indices[g.IndexBegin+3*f+v])
				if !okUV {
					uv = defaultUVs[v]
				}
				hasNormals = hasNormals && okN
				face[v] = core.Vertex{Point: p, Normal: n, UV: uv}
			}
			fillFaceNormal(&face, hasNormals)
			group.Faces = append(group.Faces, face)
		}
		if len(group.Faces) > 0 {
			data.Groups = append(data.Groups, group)
		}
	}

	if logger != nil {
		logger.Printf("Loaded OBJ %s: %d triangles in %d groups (%v)", name, data.FaceCount(), len(data.Groups), time.Since(start))
	}
	return data, nil
}

// LoadOBJFile loads a model from disk
func LoadOBJFile(path string, logger core.Logger) (*OBJData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open OBJ file: %w", err)
	}
	defer file.Close()
	return LoadOBJ(path, file, logger)
}

// LoadMaterialLib reads a .mtl library. A relative path is resolved next to
// the model first.
func LoadMaterialLib(modelPath, mtllib string, logger core.Logger) (MaterialLib, error) {
	if mtllib == "" {
		return MaterialLib{}, nil
	}
	opts := parserOptions(logger)
	lib, err := gwob.ReadMaterialLibFromFile(filepath.Join(filepath.Dir(modelPath), mtllib), opts)
	if err != nil {
		lib, err = gwob.ReadMaterialLibFromFile(mtllib, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to read material library %s: %w", mtllib, err)
		}
	}

	out := make(MaterialLib, len(lib.Lib))
	for name, m := range lib.Lib {
		out[name] = MTLMaterial{
			Name:      name,
			Diffuse:   core.NewColor(m.Kd[0], m.Kd[1], m.Kd[2]),
			Ambient:   core.NewColor(m.Ka[0], m.Ka[1], m.Ka[2]),
			Specular:  core.NewColor(m.Ks[0], m.Ks[1], m.Ks[2]),
			Shininess: m.Ns,
		}
	}
	return out, nil
}
