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

	"github.com/df07/go-bvh-pathtracer/log"
	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/geometry"
)

// ErrUnsupportedPLY is returned for PLY content the loader cannot read
var ErrUnsupportedPLY = errors.New("loaders: unsupported PLY content")

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format   string // "ascii", "binary_little_endian" or "binary_big_endian"
	Version  string
	Elements []PLYElement

	HasNormals      bool
	PositionIndices [3]int // indices of x, y, z within the vertex properties
	NormalIndices   [3]int // indices of nx, ny, nz within the vertex properties
}

// PLYElement is one element block declared in the header
type PLYElement struct {
	Name       string
	Count      int
	Properties []PLYProperty
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
	DataType string // For list properties, the type of the data
}

// LoadPLY loads a PLY file as a triangle mesh
func LoadPLY(filename string) (*geometry.Mesh, error) {
	startTime := time.Now()

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()

	mesh, err := ReadPLY(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	log.New("loaders").Infof("loaded %s: %d vertices, %d triangles in %v",
		filename, len(mesh.Vertices), mesh.NumTris, time.Since(startTime))
	return mesh, nil
}

// ReadPLY parses PLY data. Polygons are fan triangulated and vertex normals
// are computed from the faces when the file has none.
func ReadPLY(r io.Reader) (*geometry.Mesh, error) {
	reader := bufio.NewReader(r)

	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %w", err)
	}

	var values valueReader
	switch header.Format {
	case "ascii":
		scanner := bufio.NewScanner(reader)
		scanner.Split(bufio.ScanWords)
		values = &asciiReader{scanner: scanner}
	case "binary_little_endian":
		values = &binaryReader{r: reader, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &binaryReader{r: reader, order: binary.BigEndian}
	default:
		return nil, fmt.Errorf("%w: format %q", ErrUnsupportedPLY, header.Format)
	}

	var vertices []geometry.Vertex
	var indices []uint32
	for _, element := range header.Elements {
		switch element.Name {
		case "vertex":
			vertices, err = readVertices(values, element, header)
		case "face":
			indices, err = readFaces(values, element)
		default:
			err = skipElement(values, element)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s data: %w", element.Name, err)
		}
	}

	mesh, err := geometry.NewMesh(vertices, indices)
	if err != nil {
		return nil, err
	}
	if !header.HasNormals {
		mesh.ComputeVertexNormals()
	}
	return mesh, nil
}

// parsePLYHeader reads up to and including end_header
func parsePLYHeader(reader *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}
	foundPosition := [3]bool{}
	foundNormal := [3]bool{}

	first := true
	for {
		line, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return nil, fmt.Errorf("unexpected end of header: %w", err)
		}
		line = strings.TrimSpace(line)

		if first {
			if line != "ply" {
				return nil, fmt.Errorf("%w: missing ply magic", ErrUnsupportedPLY)
			}
			first = false
			continue
		}
		if line == "end_header" {
			break
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) >= 3 {
				header.Format = parts[1]
				header.Version = parts[2]
			}
		case "comment", "obj_info":
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid element line: %q", line)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("invalid element count: %s", parts[2])
			}
			header.Elements = append(header.Elements, PLYElement{Name: parts[1], Count: count})
		case "property":
			if len(header.Elements) == 0 {
				return nil, fmt.Errorf("property before element: %q", line)
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("failed to parse property: %w", err)
			}
			element := &header.Elements[len(header.Elements)-1]
			element.Properties = append(element.Properties, prop)

			if element.Name == "vertex" {
				propIndex := len(element.Properties) - 1
				switch prop.Name {
				case "x", "y", "z":
					axis := int(prop.Name[0] - 'x')
					header.PositionIndices[axis] = propIndex
					foundPosition[axis] = true
				case "nx", "ny", "nz":
					axis := int(prop.Name[1] - 'x')
					header.NormalIndices[axis] = propIndex
					foundNormal[axis] = true
				}
			}
		}
	}

	if foundPosition != [3]bool{true, true, true} {
		return nil, fmt.Errorf("%w: vertex element needs x, y and z", ErrUnsupportedPLY)
	}
	header.HasNormals = foundNormal == [3]bool{true, true, true}
	return header, nil
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) < 2 {
		return PLYProperty{}, fmt.Errorf("invalid property definition")
	}

	if parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, fmt.Errorf("invalid list property definition")
		}
		return PLYProperty{IsList: true, ListType: parts[1], DataType: parts[2], Name: parts[3]}, nil
	}
	return PLYProperty{Type: parts[0], Name: parts[1]}, nil
}

// maxPrealloc caps the capacity reserved from a header count. Larger
// elements grow as data is actually read, so a bogus count fails on
// truncated input instead of exhausting memory.
const maxPrealloc = 1 << 16

func readVertices(values valueReader, element PLYElement, header *PLYHeader) ([]geometry.Vertex, error) {
	vertices := make([]geometry.Vertex, 0, min(element.Count, maxPrealloc))
	scalars := make([]float64, len(element.Properties))

	for i := 0; i < element.Count; i++ {
		for j, prop := range element.Properties {
			if prop.IsList {
				if err := skipList(values, prop); err != nil {
					return nil, err
				}
				continue
			}
			v, err := values.read(prop.Type)
			if err != nil {
				return nil, fmt.Errorf("vertex %d: %w", i, err)
			}
			scalars[j] = v
		}

		var vertex geometry.Vertex
		p := header.PositionIndices
		vertex.Position = core.Point(float32(scalars[p[0]]), float32(scalars[p[1]]), float32(scalars[p[2]]))
		if header.HasNormals {
			n := header.NormalIndices
			vertex.Normal = core.Vec3(float32(scalars[n[0]]), float32(scalars[n[1]]), float32(scalars[n[2]]))
		}
		vertices = append(vertices, vertex)
	}
	return vertices, nil
}

func readFaces(values valueReader, element PLYElement) ([]uint32, error) {
	indices := make([]uint32, 0, 3*min(element.Count, maxPrealloc))
	polygon := make([]uint32, 0, 8)

	for i := 0; i < element.Count; i++ {
		for _, prop := range element.Properties {
			if !prop.IsList || (prop.Name != "vertex_indices" && prop.Name != "vertex_index") {
				if err := skipProperty(values, prop); err != nil {
					return nil, err
				}
				continue
			}

			count, err := values.read(prop.ListType)
			if err != nil {
				return nil, fmt.Errorf("face %d: %w", i, err)
			}
			polygon = polygon[:0]
			for k := 0; k < int(count); k++ {
				idx, err := values.read(prop.DataType)
				if err != nil {
					return nil, fmt.Errorf("face %d: %w", i, err)
				}
				if idx < 0 {
					return nil, fmt.Errorf("face %d: %w", i, geometry.ErrIndexRange)
				}
				polygon = append(polygon, uint32(idx))
			}

			// fan triangulation; faces with fewer than 3 vertices are dropped
			for k := 1; k+1 < len(polygon); k++ {
				indices = append(indices, polygon[0], polygon[k], polygon[k+1])
			}
		}
	}
	return indices, nil
}

func skipElement(values valueReader, element PLYElement) error {
	for i := 0; i < element.Count; i++ {
		for _, prop := range element.Properties {
			if err := skipProperty(values, prop); err != nil {
				return err
			}
		}
	}
	return nil
}

func skipProperty(values valueReader, prop PLYProperty) error {
	if prop.IsList {
		return skipList(values, prop)
	}
	_, err := values.read(prop.Type)
	return err
}

func skipList(values valueReader, prop PLYProperty) error {
	count, err := values.read(prop.ListType)
	if err != nil {
		return err
	}
	for k := 0; k < int(count); k++ {
		if _, err := values.read(prop.DataType); err != nil {
			return err
		}
	}
	return nil
}

// valueReader reads one scalar of a PLY type as float64
type valueReader interface {
	read(typ string) (float64, error)
}

type asciiReader struct {
	scanner *bufio.Scanner
}

func (a *asciiReader) read(typ string) (float64, error) {
	if _, err := typeSize(typ); err != nil {
		return 0, err
	}
	if !a.scanner.Scan() {
		if err := a.scanner.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	return strconv.ParseFloat(a.scanner.Text(), 64)
}

type binaryReader struct {
	r     io.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *binaryReader) read(typ string) (float64, error) {
	size, err := typeSize(typ)
	if err != nil {
		return 0, err
	}
	buf := b.buf[:size]
	if _, err := io.ReadFull(b.r, buf); err != nil {
		return 0, err
	}

	switch typ {
	case "char", "int8":
		return float64(int8(buf[0])), nil
	case "uchar", "uint8":
		return float64(buf[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(buf))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(buf)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(buf))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(buf)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(buf))), nil
	default:
		return math.Float64frombits(b.order.Uint64(buf)), nil
	}
}

// typeSize returns the binary size of a PLY scalar type
func typeSize(typ string) (int, error) {
	switch typ {
	case "char", "int8", "uchar", "uint8":
		return 1, nil
	case "short", "int16", "ushort", "uint16":
		return 2, nil
	case "int", "int32", "uint", "uint32", "float", "float32":
		return 4, nil
	case "double", "float64":
		return 8, nil
	default:
		return 0, fmt.Errorf("%w: property type %q", ErrUnsupportedPLY, typ)
	}
}
