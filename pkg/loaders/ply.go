package loaders

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-raykernel/pkg/core"
	"github.com/df07/go-raykernel/pkg/geometry"
	"github.com/df07/go-raykernel/pkg/transform"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Limits on sizes read from a file. Storage grows as data arrives, so a
// header that overstates its counts fails at end of input.
const (
	maxPLYElements   = 1 << 28
	maxPLYListLength = 1 << 10
	plyPrealloc      = 1 << 16
)

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format      string // "binary_little_endian", "binary_big_endian", or "ascii"
	Version     string // Usually "1.0"
	Elements    []PLYElement
	VertexCount int
	FaceCount   int

	// Property detection flags
	HasNormals   bool
	HasTexCoords bool
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

// PLYData contains the geometry loaded from a PLY file
type PLYData struct {
	Positions []core.Point3
	Indices   []int          // Triangle indices (3 per triangle), quads are split in two
	Normals   []core.Normal3 // Per-vertex normals - nil if not present
	UVs       []core.Point2  // Per-vertex texture coordinates - nil if not present
}

// Mesh builds a triangle mesh placed in the world by objectToWorld
func (d *PLYData) Mesh(objectToWorld *transform.Transform, alpha geometry.AlphaTexture) (*geometry.TriangleMesh, error) {
	return geometry.NewTriangleMesh(objectToWorld, d.Indices, d.Positions, &geometry.TriangleMeshOptions{
		Normals:   d.Normals,
		UVs:       d.UVs,
		AlphaMask: alpha,
	})
}

// LoadPLY loads a PLY file. logger may be nil.
func LoadPLY(filename string, logger core.Logger) (*PLYData, error) {
	startTime := time.Now()

	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "open PLY file")
	}
	defer file.Close()

	data, err := ReadPLY(file)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", filename)
	}

	if logger != nil {
		logger.Printf("loaded PLY data: %d vertices, %d triangles in %v",
			len(data.Positions), len(data.Indices)/3, time.Since(startTime))
	}
	return data, nil
}

// ReadPLY parses PLY data in any of the three encodings
func ReadPLY(r io.Reader) (*PLYData, error) {
	reader := bufio.NewReaderSize(r, 1<<20)

	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, errors.Wrap(err, "parse PLY header")
	}
	zap.S().Debugw("parsed PLY header",
		"format", header.Format, "vertices", header.VertexCount, "faces", header.FaceCount,
		"normals", header.HasNormals, "uvs", header.HasTexCoords)

	var values valueReader
	switch header.Format {
	case "ascii":
		values = newASCIIReader(reader)
	case "binary_little_endian":
		values = &binaryReader{r: reader, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &binaryReader{r: reader, order: binary.BigEndian}
	default:
		return nil, errors.Errorf("unsupported PLY format: %s", header.Format)
	}

	data, err := readBody(values, header)
	if err != nil {
		return nil, errors.Wrap(err, "read PLY data")
	}
	return data, nil
}

// parsePLYHeader reads up to and including the end_header line
func parsePLYHeader(r *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}
	var current *PLYElement

	magic, err := r.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return nil, errors.New("missing ply magic number")
	}

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, errors.Wrap(err, "header ended before end_header")
		}
		line = strings.TrimSpace(line)
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
			// Ignore comments
		case "element":
			if len(parts) < 3 {
				return nil, errors.Errorf("invalid element line: %q", line)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, errors.Errorf("invalid element count: %s", parts[2])
			}
			if count > maxPLYElements {
				return nil, errors.Errorf("element %s count %d exceeds %d", parts[1], count, maxPLYElements)
			}
			header.Elements = append(header.Elements, PLYElement{Name: parts[1], Count: count})
			current = &header.Elements[len(header.Elements)-1]
			switch parts[1] {
			case "vertex":
				header.VertexCount = count
			case "face":
				header.FaceCount = count
			}
		case "property":
			if current == nil {
				return nil, errors.Errorf("property before any element: %q", line)
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, errors.Wrap(err, "parse property")
			}
			current.Properties = append(current.Properties, prop)
			if current.Name == "vertex" {
				switch prop.Name {
				case "nx", "ny", "nz":
					header.HasNormals = true
				case "u", "s", "texture_u", "v", "t", "texture_v":
					header.HasTexCoords = true
				}
			}
		default:
			return nil, errors.Errorf("unknown header keyword %q", parts[0])
		}
	}

	if header.Format == "" {
		return nil, errors.New("missing format line")
	}
	return header, nil
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) < 2 {
		return PLYProperty{}, errors.New("invalid property definition")
	}

	if parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, errors.New("invalid list property definition")
		}
		if getTypeSize(parts[1]) == 0 || getTypeSize(parts[2]) == 0 {
			return PLYProperty{}, errors.Errorf("unsupported list types %s %s", parts[1], parts[2])
		}
		return PLYProperty{IsList: true, ListType: parts[1], DataType: parts[2], Name: parts[3]}, nil
	}
	if getTypeSize(parts[0]) == 0 {
		return PLYProperty{}, errors.Errorf("unsupported data type: %s", parts[0])
	}
	return PLYProperty{Type: parts[0], Name: parts[1]}, nil
}

// getTypeSize returns the size in bytes of a PLY data type, or 0 if unknown
func getTypeSize(dataType string) int {
	switch dataType {
	case "float", "float32", "int", "int32", "uint", "uint32":
		return 4
	case "double", "float64":
		return 8
	case "short", "int16", "ushort", "uint16":
		return 2
	case "char", "int8", "uchar", "uint8":
		return 1
	default:
		return 0
	}
}

// readBody reads every element in header order, keeping vertices and faces
func readBody(values valueReader, header *PLYHeader) (*PLYData, error) {
	data := &PLYData{}
	for _, element := range header.Elements {
		var err error
		switch element.Name {
		case "vertex":
			err = readVertices(values, element, header, data)
		case "face":
			err = readFaces(values, element, data)
		default:
			err = skipElement(values, element)
		}
		if err != nil {
			return nil, err
		}
	}

	for _, idx := range data.Indices {
		if idx < 0 || idx >= len(data.Positions) {
			return nil, errors.Errorf("face index %d out of range [0,%d)", idx, len(data.Positions))
		}
	}
	return data, nil
}

func readVertices(values valueReader, element PLYElement, header *PLYHeader, data *PLYData) error {
	n := min(element.Count, plyPrealloc)
	data.Positions = make([]core.Point3, 0, n)
	if header.HasNormals {
		data.Normals = make([]core.Normal3, 0, n)
	}
	if header.HasTexCoords {
		data.UVs = make([]core.Point2, 0, n)
	}

	for i := 0; i < element.Count; i++ {
		var p core.Point3
		var nrm core.Normal3
		var uv core.Point2
		for _, prop := range element.Properties {
			if prop.IsList {
				if _, err := readList(values, prop); err != nil {
					return errors.Wrapf(err, "vertex %d property %s", i, prop.Name)
				}
				continue
			}
			v, err := values.value(prop.Type)
			if err != nil {
				return errors.Wrapf(err, "vertex %d property %s", i, prop.Name)
			}
			switch prop.Name {
			case "x":
				p.X = v
			case "y":
				p.Y = v
			case "z":
				p.Z = v
			case "nx":
				nrm.X = v
			case "ny":
				nrm.Y = v
			case "nz":
				nrm.Z = v
			case "u", "s", "texture_u":
				uv.X = v
			case "v", "t", "texture_v":
				uv.Y = v
			}
		}
		data.Positions = append(data.Positions, p)
		if header.HasNormals {
			data.Normals = append(data.Normals, nrm)
		}
		if header.HasTexCoords {
			data.UVs = append(data.UVs, uv)
		}
	}
	return nil
}

func readFaces(values valueReader, element PLYElement, data *PLYData) error {
	data.Indices = make([]int, 0, 3*min(element.Count, plyPrealloc))
	for i := 0; i < element.Count; i++ {
		for _, prop := range element.Properties {
			if !prop.IsList {
				if _, err := values.value(prop.Type); err != nil {
					return errors.Wrapf(err, "face %d property %s", i, prop.Name)
				}
				continue
			}
			list, err := readList(values, prop)
			if err != nil {
				return errors.Wrapf(err, "face %d property %s", i, prop.Name)
			}
			if prop.Name != "vertex_indices" && prop.Name != "vertex_index" {
				continue
			}
			switch len(list) {
			case 3:
				data.Indices = append(data.Indices, int(list[0]), int(list[1]), int(list[2]))
			case 4:
				// Split quads along the 0-2 diagonal
				data.Indices = append(data.Indices,
					int(list[0]), int(list[1]), int(list[2]),
					int(list[0]), int(list[2]), int(list[3]))
			default:
				return errors.Errorf("face %d has %d vertices, only triangles and quads are supported", i, len(list))
			}
		}
	}
	return nil
}

func skipElement(values valueReader, element PLYElement) error {
	for i := 0; i < element.Count; i++ {
		for _, prop := range element.Properties {
			var err error
			if prop.IsList {
				_, err = readList(values, prop)
			} else {
				_, err = values.value(prop.Type)
			}
			if err != nil {
				return errors.Wrapf(err, "skip %s %d", element.Name, i)
			}
		}
	}
	return nil
}

func readList(values valueReader, prop PLYProperty) ([]float64, error) {
	n, err := values.value(prop.ListType)
	if err != nil {
		return nil, err
	}
	if n < 0 || n != math.Trunc(n) {
		return nil, errors.Errorf("invalid list length %v", n)
	}
	if n > maxPLYListLength {
		return nil, errors.Errorf("list length %v exceeds %d", n, maxPLYListLength)
	}
	list := make([]float64, int(n))
	for i := range list {
		if list[i], err = values.value(prop.DataType); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// valueReader yields successive scalar values of the body
type valueReader interface {
	value(dataType string) (float64, error)
}

type asciiReader struct {
	scanner *bufio.Scanner
}

func newASCIIReader(r io.Reader) *asciiReader {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	return &asciiReader{scanner: scanner}
}

func (a *asciiReader) value(dataType string) (float64, error) {
	if !a.scanner.Scan() {
		if err := a.scanner.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	v, err := strconv.ParseFloat(a.scanner.Text(), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse %s", dataType)
	}
	return v, nil
}

type binaryReader struct {
	r     io.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *binaryReader) value(dataType string) (float64, error) {
	size := getTypeSize(dataType)
	if size == 0 {
		return 0, errors.Errorf("unsupported data type: %s", dataType)
	}
	buf := b.buf[:size]
	if _, err := io.ReadFull(b.r, buf); err != nil {
		return 0, err
	}

	switch dataType {
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(buf))), nil
	case "double", "float64":
		return math.Float64frombits(b.order.Uint64(buf)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(buf))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(buf)), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(buf))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(buf)), nil
	case "char", "int8":
		return float64(int8(buf[0])), nil
	default:
		return float64(buf[0]), nil
	}
}
