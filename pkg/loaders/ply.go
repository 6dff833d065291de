package loaders

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-octree-pathtracer/pkg/core"
)

// ErrInvalidPLY is returned for PLY files that cannot be read
var ErrInvalidPLY = errors.New("loaders: invalid PLY file")

// PLYHeader represents the parsed header of a PLY file
type PLYHeader struct {
	Format   string // "ascii", "binary_little_endian" or "binary_big_endian"
	Elements []PLYElement
}

// PLYElement is one element block, e.g. the vertex list
type PLYElement struct {
	Name  string
	Count int
	Props []PLYProperty
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string // Scalar type, or the item type of a list
	IsList   bool
	ListType string // Type of the list length
}

// PLYData is a triangulated PLY mesh. Faces use the same vertex defaults
// as OBJData: face normals and (0,0), (1,0), (0,1) UVs when missing.
type PLYData struct {
	Name     string
	Vertices int
	Faces    [][3]core.Vertex
}

// vertex property slots
const (
	plyIgnore = iota
	plyX
	plyY
	plyZ
	plyNX
	plyNY
	plyNZ
	plyU
	plyV
	plySlots
)

// LoadPLYFile loads a PLY model from disk
func LoadPLYFile(path string, logger core.Logger) (*PLYData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()
	return LoadPLY(path, file, logger)
}

// LoadPLY reads an ASCII or binary PLY model. Polygons are triangulated as
// fans around their first vertex.
func LoadPLY(name string, r io.Reader, logger core.Logger) (*PLYData, error) {
	start := time.Now()

	br := bufio.NewReader(r)
	header, err := parsePLYHeader(br)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	var values plyValues
	switch header.Format {
	case "ascii":
		words := bufio.NewScanner(br)
		words.Split(bufio.ScanWords)
		values = &asciiValues{words: words}
	case "binary_little_endian":
		values = &binaryValues{r: br, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &binaryValues{r: br, order: binary.BigEndian}
	default:
		return nil, fmt.Errorf("%w: %s: unsupported format %q", ErrInvalidPLY, name, header.Format)
	}

	data := &PLYData{Name: name}
	var verts []core.Vertex
	var hasNormals, hasUVs bool
	for _, el := range header.Elements {
		switch el.Name {
		case "vertex":
			verts, hasNormals, hasUVs, err = readPLYVertices(values, el)
			data.Vertices = len(verts)
		case "face":
			err = readPLYFaces(values, el, verts, hasNormals, hasUVs, data)
		default:
			err = skipPLYElement(values, el)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: element %s: %w", name, el.Name, err)
		}
	}

	if logger != nil {
		logger.Printf("Loaded PLY %s: %d vertices, %d triangles (%v)", name, data.Vertices, len(data.Faces), time.Since(start))
	}
	return data, nil
}

// parsePLYHeader reads up to and including end_header, leaving r at the
// first body byte
func parsePLYHeader(r *bufio.Reader) (*PLYHeader, error) {
	if line, err := readHeaderLine(r); err != nil || line != "ply" {
		return nil, fmt.Errorf("%w: missing ply magic", ErrInvalidPLY)
	}

	header := &PLYHeader{}
	for {
		line, err := readHeaderLine(r)
		if err != nil {
			return nil, fmt.Errorf("%w: unterminated header", ErrInvalidPLY)
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "end_header":
			return header, nil
		case "format":
			if len(parts) < 2 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidPLY, line)
			}
			header.Format = parts[1]
		case "comment", "obj_info":
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidPLY, line)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: invalid element count %q", ErrInvalidPLY, parts[2])
			}
			header.Elements = append(header.Elements, PLYElement{Name: parts[1], Count: count})
		case "property":
			if len(header.Elements) == 0 {
				return nil, fmt.Errorf("%w: property outside an element", ErrInvalidPLY)
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, err
			}
			el := &header.Elements[len(header.Elements)-1]
			el.Props = append(el.Props, prop)
		default:
			return nil, fmt.Errorf("%w: unexpected header line %q", ErrInvalidPLY, line)
		}
	}
}

func readHeaderLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// parsePLYProperty parses the fields after "property"
func parsePLYProperty(parts []string) (PLYProperty, error) {
	var prop PLYProperty
	switch {
	case len(parts) == 4 && parts[0] == "list":
		prop = PLYProperty{IsList: true, ListType: parts[1], Type: parts[2], Name: parts[3]}
		if plyTypeSize(prop.ListType) == 0 {
			return prop, fmt.Errorf("%w: unknown type %q", ErrInvalidPLY, prop.ListType)
		}
	case len(parts) == 2:
		prop = PLYProperty{Type: parts[0], Name: parts[1]}
	default:
		return prop, fmt.Errorf("%w: invalid property %q", ErrInvalidPLY, strings.Join(parts, " "))
	}
	if plyTypeSize(prop.Type) == 0 {
		return prop, fmt.Errorf("%w: unknown type %q", ErrInvalidPLY, prop.Type)
	}
	return prop, nil
}

// plyTypeSize returns the binary size of a PLY type, 0 if unknown
func plyTypeSize(typ string) int {
	switch typ {
	case "char", "int8", "uchar", "uint8":
		return 1
	case "short", "int16", "ushort", "uint16":
		return 2
	case "int", "int32", "uint", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	default:
		return 0
	}
}

func readPLYVertices(values plyValues, el PLYElement) ([]core.Vertex, bool, bool, error) {
	slots := make([]int, len(el.Props))
	var found [plySlots]bool
	for i, p := range el.Props {
		if p.IsList {
			continue
		}
		switch p.Name {
		case "x":
			slots[i] = plyX
		case "y":
			slots[i] = plyY
		case "z":
			slots[i] = plyZ
		case "nx":
			slots[i] = plyNX
		case "ny":
			slots[i] = plyNY
		case "nz":
			slots[i] = plyNZ
		case "u", "s", "texture_u":
			slots[i] = plyU
		case "v", "t", "texture_v":
			slots[i] = plyV
		}
		found[slots[i]] = true
	}
	if !found[plyX] || !found[plyY] || !found[plyZ] {
		return nil, false, false, fmt.Errorf("%w: vertices need x, y and z", ErrInvalidPLY)
	}
	hasNormals := found[plyNX] && found[plyNY] && found[plyNZ]
	hasUVs := found[plyU] && found[plyV]

	verts := make([]core.Vertex, el.Count)
	var f [plySlots]float32
	for i := range verts {
		for j, p := range el.Props {
			if p.IsList {
				if err := skipPLYList(values, p); err != nil {
					return nil, false, false, err
				}
				continue
			}
			v, err := values.next(p.Type)
			if err != nil {
				return nil, false, false, fmt.Errorf("vertex %d: %w", i, err)
			}
			f[slots[j]] = float32(v)
		}
		verts[i].Point = core.NewVec3(f[plyX], f[plyY], f[plyZ])
		if hasNormals {
			verts[i].Normal = core.NewVec3(f[plyNX], f[plyNY], f[plyNZ]).Normalize()
		}
		if hasUVs {
			verts[i].UV = core.TextureCoordinate{U: f[plyU], V: f[plyV]}
		}
	}
	return verts, hasNormals, hasUVs, nil
}

func readPLYFaces(values plyValues, el PLYElement, verts []core.Vertex, hasNormals, hasUVs bool, data *PLYData) error {
	var indices []int
	for i := 0; i < el.Count; i++ {
		for _, p := range el.Props {
			if !p.IsList || (p.Name != "vertex_indices" && p.Name != "vertex_index") {
				if err := skipPLYProperty(values, p); err != nil {
					return err
				}
				continue
			}

			n, err := values.next(p.ListType)
			if err != nil {
				return fmt.Errorf("face %d: %w", i, err)
			}
			indices = indices[:0]
			for k := 0; k < int(n); k++ {
				v, err := values.next(p.Type)
				if err != nil {
					return fmt.Errorf("face %d: %w", i, err)
				}
				idx := int(v)
				if idx < 0 || idx >= len(verts) {
					return fmt.Errorf("%w: face %d uses vertex %d of %d", ErrInvalidPLY, i, idx, len(verts))
				}
				indices = append(indices, idx)
			}

			for k := 1; k+1 < len(indices); k++ {
				face := [3]core.Vertex{verts[indices[0]], verts[indices[k]], verts[indices[k+1]]}
				if !hasUVs {
					for v := range face {
						face[v].UV = defaultUVs[v]
					}
				}
				fillFaceNormal(&face, hasNormals)
				data.Faces = append(data.Faces, face)
			}
		}
	}
	return nil
}

// fillFaceNormal replaces the vertex normals with the face normal unless
// every vertex has a usable one
func fillFaceNormal(face *[3]core.Vertex, hasNormals bool) {
	if hasNormals {
		usable := true
		for _, v := range face {
			usable = usable && v.Normal.LengthSquared() > 0
		}
		if usable {
			return
		}
	}
	n := face[1].Point.Subtract(face[0].Point).Cross(face[2].Point.Subtract(face[0].Point)).Normalize()
	for v := range face {
		face[v].Normal = n
	}
}

func skipPLYElement(values plyValues, el PLYElement) error {
	for i := 0; i < el.Count; i++ {
		for _, p := range el.Props {
			if err := skipPLYProperty(values, p); err != nil {
				return err
			}
		}
	}
	return nil
}

func skipPLYProperty(values plyValues, p PLYProperty) error {
	if p.IsList {
		return skipPLYList(values, p)
	}
	_, err := values.next(p.Type)
	return err
}

func skipPLYList(values plyValues, p PLYProperty) error {
	n, err := values.next(p.ListType)
	if err != nil {
		return err
	}
	for k := 0; k < int(n); k++ {
		if _, err := values.next(p.Type); err != nil {
			return err
		}
	}
	return nil
}

// plyValues yields body values one at a time in file order
type plyValues interface {
	next(typ string) (float64, error)
}

type asciiValues struct {
	words *bufio.Scanner
}

func (a *asciiValues) next(string) (float64, error) {
	if !a.words.Scan() {
		if err := a.words.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	v, err := strconv.ParseFloat(a.words.Text(), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidPLY, a.words.Text())
	}
	return v, nil
}

type binaryValues struct {
	r     io.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *binaryValues) next(typ string) (float64, error) {
	p := b.buf[:plyTypeSize(typ)]
	if _, err := io.ReadFull(b.r, p); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, err
	}
	switch typ {
	case "char", "int8":
		return float64(int8(p[0])), nil
	case "uchar", "uint8":
		return float64(p[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(p))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(p)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(p))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(p)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(p))), nil
	default:
		return math.Float64frombits(b.order.Uint64(p)), nil
	}
}
