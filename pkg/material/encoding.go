package material

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"

	"github.com/df07/go-octree-pathtracer/pkg/core"
)

var (
	// ErrUnknownShader is returned for a shader type the decoder does not know
	ErrUnknownShader = errors.New("material: unknown shader type")
	// ErrUnknownTexture is returned for a texture type the decoder does not know
	ErrUnknownTexture = errors.New("material: unknown texture type")
	// ErrInvalidSpec is returned for malformed shader fields
	ErrInvalidSpec = errors.New("material: invalid shader description")
	// ErrCyclicReference is returned when shaders refer to each other in a loop
	ErrCyclicReference = errors.New("material: cyclic shader reference")
)

// Shader type names used in material files
const (
	TypeDefault    = "default"
	TypeDiffuse    = "diffuse"
	TypeEmission   = "emission"
	TypeReflection = "reflection"
	TypeRefraction = "refraction"
	TypeSubsurface = "subsurface"
	TypeAdd        = "add"
	TypeMix        = "mix"
	TypeReference  = "ref"

	TextureCheckerboard = "checkerboard"
	TextureImage        = "image"
)

// LibraryFile is the on-disk form of a material library
type LibraryFile struct {
	Materials map[string]MaterialSpec `toml:"materials"`
}

// MaterialSpec is one named material
type MaterialSpec struct {
	UUID   string     `toml:"uuid,omitempty"`
	Shader ShaderSpec `toml:"shader"`
}

// ShaderSpec holds the primitive fields every shader is built from. Only
// the fields relevant to Type are read. Type "ref" points at another
// material by name so combinators can share a shader.
type ShaderSpec struct {
	Type        string       `toml:"type"`
	Ref         string       `toml:"ref,omitempty"`
	Color       []float32    `toml:"color,omitempty"`
	Texture     *TextureSpec `toml:"texture,omitempty"`
	Strength    float32      `toml:"strength,omitempty"`
	Roughness   float32      `toml:"roughness,omitempty"`
	IOR         float32      `toml:"ior,omitempty"`
	VolumeColor []float32    `toml:"volume_color,omitempty"`
	Absorption  float32      `toml:"absorption,omitempty"`
	Density     float32      `toml:"density,omitempty"`
	Balance     float32      `toml:"balance,omitempty"`
	First       *ShaderSpec  `toml:"first,omitempty"`
	Second      *ShaderSpec  `toml:"second,omitempty"`
}

// TextureSpec describes a texture by type
type TextureSpec struct {
	Type       string    `toml:"type"`
	Horizontal int       `toml:"horizontal,omitempty"`
	Vertical   int       `toml:"vertical,omitempty"`
	Even       []float32 `toml:"even,omitempty"`
	Odd        []float32 `toml:"odd,omitempty"`
	Path       string    `toml:"path,omitempty"`
}

// ImageLoader resolves an image texture path
type ImageLoader func(path string) (*ImageTexture, error)

// DecodeLibrary reads a TOML material library. Materials are added in name
// order so IDs are stable for a given file.
func DecodeLibrary(r io.Reader, images ImageLoader) (*Library, error) {
	var file LibraryFile
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode material library: %w", err)
	}
	lib := NewLibrary()
	if err := lib.AddSpecs(file.Materials, images); err != nil {
		return nil, err
	}
	return lib, nil
}

// AddSpecs decodes and adds a set of named materials. References between
// them resolve to the same shader value.
func (l *Library) AddSpecs(specs map[string]MaterialSpec, images ImageLoader) error {
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)

	d := &specDecoder{specs: specs, images: images, lib: l, done: make(map[string]Shader), active: make(map[string]bool)}
	for _, name := range names {
		shader, err := d.named(name)
		if err != nil {
			return err
		}
		id, err := l.Add(name, shader)
		if err != nil {
			return err
		}
		if s := specs[name].UUID; s != "" {
			parsed, err := uuid.Parse(s)
			if err != nil {
				return fmt.Errorf("%w: material %q: %v", ErrInvalidSpec, name, err)
			}
			l.materials[id].UUID = parsed
		}
	}
	return nil
}

type specDecoder struct {
	specs  map[string]MaterialSpec
	images ImageLoader
	lib    *Library
	done   map[string]Shader
	active map[string]bool
}

func (d *specDecoder) named(name string) (Shader, error) {
	if s, ok := d.done[name]; ok {
		return s, nil
	}
	spec, ok := d.specs[name]
	if !ok {
		// allow references to materials already in the library
		if m, found := d.lib.Lookup(name); found {
			return m.Shader, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownMaterial, name)
	}
	if d.active[name] {
		return nil, fmt.Errorf("%w: %q", ErrCyclicReference, name)
	}
	d.active[name] = true
	defer delete(d.active, name)

	s, err := d.shader(spec.Shader)
	if err != nil {
		return nil, fmt.Errorf("material %q: %w", name, err)
	}
	d.done[name] = s
	return s, nil
}

func (d *specDecoder) shader(spec ShaderSpec) (Shader, error) {
	color, err := parseColor(spec.Color, core.White)
	if err != nil {
		return nil, err
	}
	tex, err := d.texture(spec.Texture)
	if err != nil {
		return nil, err
	}

	kind := strings.ToLower(spec.Type)
	switch kind {
	case TypeDefault:
		return &Default{Color: color, Texture: tex}, nil
	case TypeDiffuse:
		return &Diffuse{Color: color, Texture: tex}, nil
	case TypeEmission:
		strength := spec.Strength
		if strength == 0 {
			strength = 1
		}
		return &Emission{Color: color, Texture: tex, Strength: strength}, nil
	case TypeReflection:
		return &Reflection{Color: color, Texture: tex, Roughness: spec.Roughness}, nil
	case TypeRefraction:
		if spec.IOR <= 0 {
			return nil, fmt.Errorf("%w: refraction needs a positive ior", ErrInvalidSpec)
		}
		volume, err := parseColor(spec.VolumeColor, core.White)
		if err != nil {
			return nil, err
		}
		return &Refraction{
			Color:       color,
			Texture:     tex,
			IOR:         spec.IOR,
			Roughness:   spec.Roughness,
			VolumeColor: volume,
			Absorption:  spec.Absorption,
		}, nil
	case TypeSubsurface:
		return &Subsurface{Color: color, Texture: tex, Density: spec.Density}, nil
	case TypeAdd, TypeMix:
		if spec.First == nil || spec.Second == nil {
			return nil, fmt.Errorf("%w: %s needs first and second", ErrInvalidSpec, kind)
		}
		first, err := d.shader(*spec.First)
		if err != nil {
			return nil, err
		}
		second, err := d.shader(*spec.Second)
		if err != nil {
			return nil, err
		}
		if kind == TypeAdd {
			return NewAdd(first, second), nil
		}
		return NewMix(first, second, spec.Balance), nil
	case TypeReference:
		return d.named(spec.Ref)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownShader, spec.Type)
	}
}

func (d *specDecoder) texture(spec *TextureSpec) (Texture, error) {
	if spec == nil {
		return nil, nil
	}
	switch strings.ToLower(spec.Type) {
	case TextureCheckerboard:
		c := NewCheckerboard(max(spec.Horizontal, 1), max(spec.Vertical, 1))
		var err error
		if c.Even, err = parseColor(spec.Even, c.Even); err != nil {
			return nil, err
		}
		if c.Odd, err = parseColor(spec.Odd, c.Odd); err != nil {
			return nil, err
		}
		return c, nil
	case TextureImage:
		if d.images == nil {
			return nil, fmt.Errorf("%w: no image loader for %q", ErrInvalidSpec, spec.Path)
		}
		img, err := d.images(spec.Path)
		if err != nil {
			return nil, err
		}
		img.Path = spec.Path
		return img, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTexture, spec.Type)
	}
}

// EncodeLibrary writes a library as TOML. Shaders shared between materials
// are written as references to the material that owns them.
func EncodeLibrary(w io.Writer, lib *Library) error {
	owners := make(map[Shader]string)
	for _, m := range lib.materials {
		if _, taken := owners[m.Shader]; !taken && m.Shader != nil {
			owners[m.Shader] = m.Name
		}
	}

	file := LibraryFile{Materials: make(map[string]MaterialSpec, lib.Len())}
	for _, m := range lib.materials {
		e := &specEncoder{owners: owners, self: m.Name}
		spec, err := e.shader(m.Shader, true)
		if err != nil {
			return fmt.Errorf("material %q: %w", m.Name, err)
		}
		file.Materials[m.Name] = MaterialSpec{UUID: m.UUID.String(), Shader: spec}
	}
	return toml.NewEncoder(w).Encode(file)
}

type specEncoder struct {
	owners map[Shader]string
	self   string
}

func (e *specEncoder) shader(s Shader, top bool) (ShaderSpec, error) {
	if owner, ok := e.owners[s]; ok && (!top || owner != e.self) {
		return ShaderSpec{Type: TypeReference, Ref: owner}, nil
	}

	switch v := s.(type) {
	case *Default:
		return ShaderSpec{Type: TypeDefault, Color: colorSlice(v.Color), Texture: encodeTexture(v.Texture)}, nil
	case *Diffuse:
		return ShaderSpec{Type: TypeDiffuse, Color: colorSlice(v.Color), Texture: encodeTexture(v.Texture)}, nil
	case *Emission:
		return ShaderSpec{Type: TypeEmission, Color: colorSlice(v.Color), Texture: encodeTexture(v.Texture), Strength: v.Strength}, nil
	case *Reflection:
		return ShaderSpec{Type: TypeReflection, Color: colorSlice(v.Color), Texture: encodeTexture(v.Texture), Roughness: v.Roughness}, nil
	case *Refraction:
		return ShaderSpec{
			Type:        TypeRefraction,
			Color:       colorSlice(v.Color),
			Texture:     encodeTexture(v.Texture),
			IOR:         v.IOR,
			Roughness:   v.Roughness,
			VolumeColor: colorSlice(v.VolumeColor),
			Absorption:  v.Absorption,
		}, nil
	case *Subsurface:
		return ShaderSpec{Type: TypeSubsurface, Color: colorSlice(v.Color), Texture: encodeTexture(v.Texture), Density: v.Density}, nil
	case *Add:
		return e.pair(TypeAdd, v.First, v.Second, 0)
	case *Mix:
		return e.pair(TypeMix, v.First, v.Second, v.Balance)
	default:
		return ShaderSpec{}, fmt.Errorf("%w: %T", ErrUnknownShader, s)
	}
}

func (e *specEncoder) pair(kind string, a, b Shader, balance float32) (ShaderSpec, error) {
	first, err := e.shader(a, false)
	if err != nil {
		return ShaderSpec{}, err
	}
	second, err := e.shader(b, false)
	if err != nil {
		return ShaderSpec{}, err
	}
	return ShaderSpec{Type: kind, First: &first, Second: &second, Balance: balance}, nil
}

func encodeTexture(t Texture) *TextureSpec {
	switch v := t.(type) {
	case *Checkerboard:
		return &TextureSpec{
			Type:       TextureCheckerboard,
			Horizontal: v.Horizontal,
			Vertical:   v.Vertical,
			Even:       colorSlice(v.Even),
			Odd:        colorSlice(v.Odd),
		}
	case *ImageTexture:
		return &TextureSpec{Type: TextureImage, Path: v.Path}
	default:
		return nil
	}
}

func parseColor(values []float32, fallback core.Color) (core.Color, error) {
	switch len(values) {
	case 0:
		return fallback, nil
	case 3:
		return core.NewColor(values[0], values[1], values[2]), nil
	case 4:
		return core.Color{R: values[0], G: values[1], B: values[2], A: values[3]}, nil
	default:
		return core.Color{}, fmt.Errorf("%w: color needs 3 or 4 components, got %d", ErrInvalidSpec, len(values))
	}
}

func colorSlice(c core.Color) []float32 {
	return []float32{c.R, c.G, c.B, c.A}
}
