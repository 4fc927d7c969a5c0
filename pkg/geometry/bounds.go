package geometry

import "math"

// BoundingBox is the minimal axis-aligned box containing a set of points.
// A box derived from a non-empty vertex set always satisfies Min[i] <= Max[i];
// geometry that is planar in an axis degenerates to zero width there.
type BoundingBox struct {
	Min Point3
	Max Point3
}

// NewBoundingBox returns an empty bounding box ready to be extended.
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Point3{math.MaxFloat64, math.MaxFloat64, math.MaxFloat64},
		Max: Point3{-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64},
	}
}

// Extend expands the bounding box to include a point.
func (b *BoundingBox) Extend(p Point3) {
	for i := 0; i < 3; i++ {
		b.Min[i] = math.Min(b.Min[i], p[i])
		b.Max[i] = math.Max(b.Max[i], p[i])
	}
}

// IsEmpty reports whether the box has never been extended.
func (b BoundingBox) IsEmpty() bool {
	return b.Min[0] > b.Max[0]
}

// Size returns the per-axis extent of the box.
func (b BoundingBox) Size() Point3 {
	return b.Max.Sub(b.Min)
}

// Mid returns the center point of the box.
func (b BoundingBox) Mid() Point3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Contains reports whether p lies inside the box (boundary inclusive).
func (b BoundingBox) Contains(p Point3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}
