// Package solid owns a triangulated aircraft surface and its rigid and
// non-rigid transforms. A Solid caches its bounding box and the extremal-y
// vertices (the wingtips on a conventional aircraft); every successful
// transform recomputes the cache before returning, and a failed transform
// leaves both the vertices and the cache untouched.
//
// A Solid has a single owner. Concurrent transforms on one instance are
// not safe; sweeps over multiple orientations must load one Solid per case.
package solid

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/chazu/flowprep/pkg/geometry"
	"github.com/chazu/flowprep/pkg/logger"
	"github.com/chazu/flowprep/pkg/stl"
)

var (
	// ErrNotFound is returned when the input surface file does not exist.
	ErrNotFound = errors.New("geometry file not found")

	// ErrInvalidScale is returned for non-positive scale factors, which
	// would invert or collapse the solid.
	ErrInvalidScale = errors.New("scale factors must be positive")
)

// Solid is a mutable triangulated surface with cached derived geometry.
type Solid struct {
	name string
	tris []geometry.Triangle

	bounds geometry.BoundingBox
	yMax   geometry.Point3
	yMin   geometry.Point3
}

// Load reads a surface file into a Solid. It fails with ErrNotFound for a
// missing path and with stl.ErrFormat for unparseable or empty data.
func Load(path string) (*Solid, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("solid: %w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("solid: stat %s: %w", path, err)
	}

	logger.Info("loading surface", zap.String("path", path))
	surf, err := stl.Load(path)
	if err != nil {
		return nil, err
	}
	return New(surf.Name, surf.Triangles)
}

// New builds a Solid from an in-memory triangle list.
func New(name string, tris []geometry.Triangle) (*Solid, error) {
	if len(tris) == 0 {
		return nil, fmt.Errorf("solid: %w: no triangles", stl.ErrFormat)
	}
	s := &Solid{name: name, tris: tris}
	s.recompute()
	return s, nil
}

// Save writes the solid to a binary STL file. Vertex coordinates are
// preserved to STL's float32 precision.
func (s *Solid) Save(path string) error {
	logger.Info("saving surface", zap.String("path", path), zap.Int("triangles", len(s.tris)))
	return stl.Save(path, &stl.Surface{Name: s.name, Triangles: s.tris})
}

// Name returns the solid's name from the surface file header.
func (s *Solid) Name() string { return s.name }

// TriangleCount returns the number of facets.
func (s *Solid) TriangleCount() int { return len(s.tris) }

// Triangles returns the facet list in original file order. The slice is
// owned by the Solid; callers must not modify it.
func (s *Solid) Triangles() []geometry.Triangle { return s.tris }

// Bounds returns the cached bounding box.
func (s *Solid) Bounds() geometry.BoundingBox { return s.bounds }

// YMaxPoint returns the cached vertex at the maximum y bound.
func (s *Solid) YMaxPoint() geometry.Point3 { return s.yMax }

// YMinPoint returns the cached vertex at the minimum y bound.
func (s *Solid) YMinPoint() geometry.Point3 { return s.yMin }

// recompute rescans all vertices, rebuilding the bounding box and the
// extremal-y vertices. The extremal vertex is the first one in
// triangle/vertex scan order whose y equals the bound, so y-symmetric
// geometry picks whichever tip the file lists first. Callers may rely on
// "some vertex at the extreme y" and nothing more.
func (s *Solid) recompute() {
	bb := geometry.NewBoundingBox()
	for _, t := range s.tris {
		for _, v := range t.V {
			bb.Extend(v)
		}
	}
	s.bounds = bb

	foundMax, foundMin := false, false
	for _, t := range s.tris {
		for _, v := range t.V {
			if !foundMax && v[1] == bb.Max[1] {
				s.yMax = v
				foundMax = true
			}
			if !foundMin && v[1] == bb.Min[1] {
				s.yMin = v
				foundMin = true
			}
			if foundMax && foundMin {
				return
			}
		}
	}
}

// Rotate applies the Euler rotation R = Rz(z)*Ry(y)*Rx(x) to every vertex
// (roll first, then pitch, then yaw). The unit is validated before any
// vertex is touched, so an invalid unit leaves the solid unchanged.
func (s *Solid) Rotate(z, y, x float64, unit geometry.AngleUnit) error {
	zr, err := unit.ToRadians(z)
	if err != nil {
		return fmt.Errorf("solid: rotate: %w", err)
	}
	yr, _ := unit.ToRadians(y)
	xr, _ := unit.ToRadians(x)

	m := geometry.EulerMatrix(zr, yr, xr)
	for i := range s.tris {
		for j := range s.tris[i].V {
			s.tris[i].V[j] = m.Mul3x1(s.tris[i].V[j])
		}
	}
	s.recompute()
	return nil
}

// SetAngleOfAttack pitches the solid about the y axis, simulating the
// aircraft's orientation relative to the oncoming flow.
func (s *Solid) SetAngleOfAttack(angle float64, unit geometry.AngleUnit) error {
	logger.Debug("setting angle of attack", zap.Float64("angle", angle), zap.String("units", string(unit)))
	return s.Rotate(0, angle, 0, unit)
}

// Translate shifts every vertex by (dx, dy, dz).
func (s *Solid) Translate(dx, dy, dz float64) {
	d := geometry.Point3{dx, dy, dz}
	for i := range s.tris {
		for j := range s.tris[i].V {
			s.tris[i].V[j] = s.tris[i].V[j].Add(d)
		}
	}
	s.recompute()
}

// Scale multiplies every vertex component-wise by (sx, sy, sz). All
// factors must be positive; validation happens before any mutation.
func (s *Solid) Scale(sx, sy, sz float64) error {
	if sx <= 0 || sy <= 0 || sz <= 0 {
		return fmt.Errorf("solid: %w: (%g, %g, %g)", ErrInvalidScale, sx, sy, sz)
	}
	for i := range s.tris {
		for j := range s.tris[i].V {
			v := s.tris[i].V[j]
			s.tris[i].V[j] = geometry.Point3{v[0] * sx, v[1] * sy, v[2] * sz}
		}
	}
	s.recompute()
	return nil
}

// Center translates the solid so its bounding box is symmetric about the
// origin on all three axes: afterwards max+min == 0 per axis within
// floating tolerance.
func (s *Solid) Center() {
	mid := s.bounds.Mid()
	s.Translate(-mid[0], -mid[1], -mid[2])
}
