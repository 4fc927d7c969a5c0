// Package kernel defines the abstract geometry kernel interface used to
// build preview solids of the computed domain and refinement volumes.
// Implementations (sdfx) provide solid modeling behind this interface, so
// the backend can be swapped without changing the preview code.
package kernel

import "github.com/chazu/flowprep/pkg/geometry"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() geometry.BoundingBox
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Box creates an axis-aligned box spanning min..max.
	Box(min, max geometry.Point3) Solid

	// CylinderX creates a cylinder whose axis runs along +x from p1.
	CylinderX(p1 geometry.Point3, length, radius float64) Solid

	// Union returns the union of two solids.
	Union(a, b Solid) Solid

	// ToTriangles tessellates a solid into a triangle surface. cells
	// controls the tessellation resolution.
	ToTriangles(s Solid, cells int) ([]geometry.Triangle, error)
}
