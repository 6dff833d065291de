package material

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/df07/go-octree-pathtracer/pkg/core"
)

var (
	// ErrUnknownMaterial is returned when a name or ID is not in the library
	ErrUnknownMaterial = errors.New("material: unknown material")
	// ErrDuplicateMaterial is returned when adding a name that already exists
	ErrDuplicateMaterial = errors.New("material: duplicate material name")
)

// Material binds a shader to a name. Triangles refer to it by ID.
type Material struct {
	ID     core.MaterialID
	UUID   uuid.UUID // Stable identity across save and load
	Name   string
	Shader Shader
}

// fallbackShader shades triangles whose material is missing
var fallbackShader Shader = NewDefault(core.NewColor(0.8, 0.8, 0.8))

// Library is an arena of materials addressed by core.MaterialID. Editing a
// material's shader is visible to every triangle holding its ID. The
// library is not synchronized: edit it only while no render is running.
type Library struct {
	materials []*Material
	byName    map[string]core.MaterialID
}

// NewLibrary creates an empty library
func NewLibrary() *Library {
	return &Library{byName: make(map[string]core.MaterialID)}
}

// Add stores a new material and returns its ID
func (l *Library) Add(name string, shader Shader) (core.MaterialID, error) {
	if _, exists := l.byName[name]; exists {
		return 0, fmt.Errorf("%w: %q", ErrDuplicateMaterial, name)
	}
	id := core.MaterialID(len(l.materials))
	l.materials = append(l.materials, &Material{ID: id, UUID: uuid.New(), Name: name, Shader: shader})
	l.byName[name] = id
	return id, nil
}

// MustAdd is Add for built-in scenes where names are known to be unique
func (l *Library) MustAdd(name string, shader Shader) core.MaterialID {
	id, err := l.Add(name, shader)
	if err != nil {
		panic(err)
	}
	return id
}

// Get returns the material for an ID
func (l *Library) Get(id core.MaterialID) (*Material, error) {
	if int(id) >= len(l.materials) {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownMaterial, id)
	}
	return l.materials[id], nil
}

// Lookup returns the material with the given name
func (l *Library) Lookup(name string) (*Material, bool) {
	id, ok := l.byName[name]
	if !ok {
		return nil, false
	}
	return l.materials[id], true
}

// Set replaces the shader of an existing material
func (l *Library) Set(id core.MaterialID, shader Shader) error {
	m, err := l.Get(id)
	if err != nil {
		return err
	}
	m.Shader = shader
	return nil
}

// Shader returns the shader for an ID, or a neutral preview shader when the
// ID is unknown or has no shader
func (l *Library) Shader(id core.MaterialID) Shader {
	if l == nil || int(id) >= len(l.materials) || l.materials[id].Shader == nil {
		return fallbackShader
	}
	return l.materials[id].Shader
}

// Len returns the number of materials
func (l *Library) Len() int {
	return len(l.materials)
}

// Materials returns all materials in ID order
func (l *Library) Materials() []*Material {
	return append([]*Material(nil), l.materials...)
}

// Distinct returns the materials referenced by ids, each once, sorted by ID
func (l *Library) Distinct(ids []core.MaterialID) []*Material {
	seen := make(map[core.MaterialID]bool)
	var out []*Material
	for _, id := range ids {
		if seen[id] || int(id) >= len(l.materials) {
			continue
		}
		seen[id] = true
		out = append(out, l.materials[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
