// Package geometry defines the core value types shared by the rest of
// flowprep: points, triangles, bounding boxes and Euler rotations.
package geometry

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Point3 is a 3D point or vector in the wind-tunnel frame.
// It aliases mgl64.Vec3 so mathgl's vector and matrix operations
// apply directly.
type Point3 = mgl64.Vec3

// Triangle is a single facet of a triangulated surface. The normal is
// carried for STL compatibility; transforms recompute it from the
// vertices on save rather than transforming it.
type Triangle struct {
	Normal Point3
	V      [3]Point3
}

// FaceNormal returns the unit normal of the triangle computed from its
// vertex winding. Degenerate triangles return the zero vector.
func (t Triangle) FaceNormal() Point3 {
	n := t.V[1].Sub(t.V[0]).Cross(t.V[2].Sub(t.V[0]))
	if n.Len() == 0 {
		return Point3{}
	}
	return n.Normalize()
}
