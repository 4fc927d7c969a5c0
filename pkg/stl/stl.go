// Package stl reads and writes triangulated surfaces in STL format.
// Both the binary and ASCII encodings are read; writing always produces
// binary STL. Vertex coordinates survive a write/read round trip exactly
// at STL's native float32 precision, and triangle order is preserved.
package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/chazu/flowprep/pkg/geometry"
)

// ErrFormat is returned when surface data cannot be parsed or contains no
// triangles.
var ErrFormat = errors.New("malformed stl data")

// Surface is a triangle soup parsed from an STL file.
type Surface struct {
	Name      string
	Triangles []geometry.Triangle
}

// binary STL layout: 80-byte header, uint32 triangle count, then one
// 50-byte record per triangle (normal, 3 vertices, attribute count).
const (
	headerSize = 80
	recordSize = 50
)

// Load reads an STL surface from a file. Missing files surface the
// underlying not-exist error; unparseable contents fail with ErrFormat.
func Load(path string) (*Surface, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("stl: open %s: %w", path, err)
	}
	defer f.Close()

	s, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("stl: read %s: %w", path, err)
	}
	return s, nil
}

// Read parses an STL surface from r, auto-detecting the encoding.
// A file is treated as ASCII when it begins with "solid" and contains a
// "facet" keyword; binary files that happen to start with "solid" are
// still recognized by their record layout.
func Read(r io.Reader) (*Surface, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrFormat)
	}

	if isASCII(data) {
		return readASCII(data)
	}
	return readBinary(data)
}

func isASCII(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	trimmed := bytes.TrimLeft(head, " \t\r\n")
	return bytes.HasPrefix(trimmed, []byte("solid")) && bytes.Contains(head, []byte("facet"))
}

func readBinary(data []byte) (*Surface, error) {
	if len(data) < headerSize+4 {
		return nil, fmt.Errorf("%w: truncated binary header", ErrFormat)
	}
	count := binary.LittleEndian.Uint32(data[headerSize:])
	if count == 0 {
		return nil, fmt.Errorf("%w: no triangles", ErrFormat)
	}
	want := headerSize + 4 + int(count)*recordSize
	if len(data) < want {
		return nil, fmt.Errorf("%w: expected %d triangle records, data truncated", ErrFormat, count)
	}

	name := strings.TrimRight(string(bytes.TrimRight(data[:headerSize], "\x00")), " ")
	tris := make([]geometry.Triangle, count)
	off := headerSize + 4
	for i := range tris {
		rec := data[off : off+recordSize]
		tris[i].Normal = readVec(rec[0:])
		tris[i].V[0] = readVec(rec[12:])
		tris[i].V[1] = readVec(rec[24:])
		tris[i].V[2] = readVec(rec[36:])
		off += recordSize
	}
	return &Surface{Name: name, Triangles: tris}, nil
}

func readVec(b []byte) geometry.Point3 {
	return geometry.Point3{
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b[0:]))),
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))),
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))),
	}
}

func readASCII(data []byte) (*Surface, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	s := &Surface{}
	var tri geometry.Triangle
	verts := 0
	inFacet := false

	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				s.Name = fields[1]
			}
		case "facet":
			// "facet normal nx ny nz"
			if len(fields) >= 5 && fields[1] == "normal" {
				n, err := parseVec(fields[2:5])
				if err != nil {
					return nil, err
				}
				tri.Normal = n
			}
			inFacet = true
			verts = 0
		case "vertex":
			if !inFacet || verts >= 3 || len(fields) < 4 {
				return nil, fmt.Errorf("%w: unexpected vertex line", ErrFormat)
			}
			v, err := parseVec(fields[1:4])
			if err != nil {
				return nil, err
			}
			tri.V[verts] = v
			verts++
		case "endfacet":
			if verts != 3 {
				return nil, fmt.Errorf("%w: facet with %d vertices", ErrFormat, verts)
			}
			s.Triangles = append(s.Triangles, tri)
			tri = geometry.Triangle{}
			inFacet = false
		case "outer", "endloop", "endsolid":
			// structural keywords, nothing to capture
		default:
			return nil, fmt.Errorf("%w: unrecognized keyword %q", ErrFormat, fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if inFacet {
		return nil, fmt.Errorf("%w: unterminated facet", ErrFormat)
	}
	if len(s.Triangles) == 0 {
		return nil, fmt.Errorf("%w: no triangles", ErrFormat)
	}
	return s, nil
}

func parseVec(fields []string) (geometry.Point3, error) {
	var p geometry.Point3
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return p, fmt.Errorf("%w: bad coordinate %q", ErrFormat, f)
		}
		p[i] = v
	}
	return p, nil
}

// Save writes the surface to a file in binary STL.
func Save(path string, s *Surface) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("stl: create %s: %w", path, err)
	}
	if err := Write(f, s); err != nil {
		f.Close()
		return fmt.Errorf("stl: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("stl: close %s: %w", path, err)
	}
	return nil
}

// Write encodes the surface as binary STL. Facet normals are recomputed
// from the vertex winding so that transformed geometry carries consistent
// normals.
func Write(w io.Writer, s *Surface) error {
	bw := bufio.NewWriter(w)

	var header [headerSize]byte
	copy(header[:], s.Name)
	if _, err := bw.Write(header[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(s.Triangles))); err != nil {
		return err
	}

	var rec [recordSize]byte
	for _, t := range s.Triangles {
		writeVec(rec[0:], t.FaceNormal())
		writeVec(rec[12:], t.V[0])
		writeVec(rec[24:], t.V[1])
		writeVec(rec[36:], t.V[2])
		rec[48], rec[49] = 0, 0
		if _, err := bw.Write(rec[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeVec(b []byte, p geometry.Point3) {
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(float32(p[0])))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(float32(p[1])))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(float32(p[2])))
}
