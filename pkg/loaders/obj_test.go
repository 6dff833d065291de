package loaders

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-octree-pathtracer/pkg/core"
)

const twoMaterialOBJ = `# two squares with different materials
mtllib squares.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 0 0 1
v 1 0 1
v 1 1 1
v 0 1 1
usemtl red
f 1 2 3 4
usemtl blue
f 5 6 7
`

const squaresMTL = `newmtl red
Kd 1.0 0.0 0.0
Ns 10

newmtl blue
Kd 0.0 0.0 1.0
`

func TestLoadOBJ_Groups(t *testing.T) {
	data, err := LoadOBJ("squares", strings.NewReader(twoMaterialOBJ), nil)
	if err != nil {
		t.Fatalf("LoadOBJ failed: %v", err)
	}

	if data.Mtllib != "squares.mtl" {
		t.Errorf("Expected mtllib squares.mtl, got %q", data.Mtllib)
	}
	if len(data.Groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(data.Groups))
	}
	if data.Groups[0].Material != "red" || data.Groups[1].Material != "blue" {
		t.Errorf("Expected groups red and blue, got %q and %q", data.Groups[0].Material, data.Groups[1].Material)
	}
	if len(data.Groups[0].Faces) != 2 {
		t.Errorf("Expected the quad to be split into 2 triangles, got %d", len(data.Groups[0].Faces))
	}
	if data.FaceCount() != 3 {
		t.Errorf("Expected 3 triangles, got %d", data.FaceCount())
	}
}

func TestLoadOBJ_DefaultsForMissingAttributes(t *testing.T) {
	data, err := LoadOBJ("squares", strings.NewReader(twoMaterialOBJ), nil)
	if err != nil {
		t.Fatalf("LoadOBJ failed: %v", err)
	}

	face := data.Groups[1].Faces[0]
	up := core.NewVec3(0, 0, 1)
	for i, v := range face {
		if !v.Normal.Equals(up, 1e-6) {
			t.Errorf("Vertex %d: Expected face normal %v, got %v", i, up, v.Normal)
		}
		if v.UV != defaultUVs[i] {
			t.Errorf("Vertex %d: Expected UV %v, got %v", i, defaultUVs[i], v.UV)
		}
	}
}

func TestLoadOBJ_ExplicitNormalsAndUVs(t *testing.T) {
	input := `v 0 0 0
v 1 0 0
v 0 1 0
vt 0.5 0.5
vt 1 0.5
vt 0.5 1
vn 0 0 2
f 1/1/1 2/2/1 3/3/1
`
	data, err := LoadOBJ("tri", strings.NewReader(input), nil)
	if err != nil {
		t.Fatalf("LoadOBJ failed: %v", err)
	}
	face := data.Groups[0].Faces[0]
	if !face[0].Normal.Equals(core.NewVec3(0, 0, 1), 1e-6) {
		t.Errorf("Expected normalized normal, got %v", face[0].Normal)
	}
	if face[1].UV != (core.TextureCoordinate{U: 1, V: 0.5}) {
		t.Errorf("Expected UV (1, 0.5), got %v", face[1].UV)
	}
}

func TestLoadMaterialLib(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "squares.obj")
	if err := os.WriteFile(filepath.Join(dir, "squares.mtl"), []byte(squaresMTL), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	lib, err := LoadMaterialLib(model, "squares.mtl", nil)
	if err != nil {
		t.Fatalf("LoadMaterialLib failed: %v", err)
	}
	red, ok := lib["red"]
	if !ok {
		t.Fatal("Expected material red")
	}
	if !red.Diffuse.Equals(core.NewColor(1, 0, 0), 1e-6) {
		t.Errorf("Expected red diffuse, got %v", red.Diffuse)
	}
	if red.Shininess != 10 {
		t.Errorf("Expected shininess 10, got %v", red.Shininess)
	}
}

func TestLoadMaterialLib_Empty(t *testing.T) {
	lib, err := LoadMaterialLib("model.obj", "", nil)
	if err != nil || len(lib) != 0 {
		t.Errorf("Expected an empty library, got %v, %v", lib, err)
	}
}
