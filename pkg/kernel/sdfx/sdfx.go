// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/flowprep/pkg/geometry"
	"github.com/chazu/flowprep/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() geometry.BoundingBox {
	bb := s.s.BoundingBox()
	return geometry.BoundingBox{
		Min: geometry.Point3{bb.Min.X, bb.Min.Y, bb.Min.Z},
		Max: geometry.Point3{bb.Max.X, bb.Max.Y, bb.Max.Z},
	}
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Box creates an axis-aligned box spanning min..max. sdf.Box3D centers
// the box at the origin, so it is translated to the span's midpoint.
func (k *SdfxKernel) Box(min, max geometry.Point3) kernel.Solid {
	size := max.Sub(min)
	s, err := sdf.Box3D(v3.Vec{X: size[0], Y: size[1], Z: size[2]}, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	mid := min.Add(max).Mul(0.5)
	m := sdf.Translate3d(v3.Vec{X: mid[0], Y: mid[1], Z: mid[2]})
	return wrap(sdf.Transform3D(s, m))
}

// CylinderX creates a cylinder of the given length and radius whose axis
// runs along +x from p1. sdf.Cylinder3D builds along z centered at the
// origin, so the solid is pitched onto the x axis and translated to the
// segment midpoint.
func (k *SdfxKernel) CylinderX(p1 geometry.Point3, length, radius float64) kernel.Solid {
	s, err := sdf.Cylinder3D(length, radius, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cylinder3D: %v", err))
	}
	m := sdf.Translate3d(v3.Vec{X: p1[0] + length/2, Y: p1[1], Z: p1[2]}).Mul(sdf.RotateY(math.Pi / 2))
	return wrap(sdf.Transform3D(s, m))
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// ToTriangles tessellates a solid with marching cubes.
func (k *SdfxKernel) ToTriangles(s kernel.Solid, cells int) ([]geometry.Triangle, error) {
	if cells <= 0 {
		return nil, fmt.Errorf("sdfx: tessellation cells must be positive, got %d", cells)
	}

	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(unwrap(s), renderer)

	out := make([]geometry.Triangle, 0, len(triangles))
	for _, tri := range triangles {
		n := tri.Normal()
		t := geometry.Triangle{
			Normal: geometry.Point3{n.X, n.Y, n.Z},
		}
		for j := 0; j < 3; j++ {
			t.V[j] = geometry.Point3{tri.V[j].X, tri.V[j].Y, tri.V[j].Z}
		}
		out = append(out, t)
	}
	return out, nil
}
