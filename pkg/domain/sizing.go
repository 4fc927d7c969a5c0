// Package domain converts the geometry's bounding box into the enclosing
// block-structured tunnel domain and the named refinement volumes the mesh
// generator consumes. The heuristic constants are empirical aerodynamic
// practice, kept in config structs so they can be overridden without
// touching the algorithms.
package domain

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/flowprep/pkg/geometry"
)

// ErrInvalidCellSize is returned for a non-positive base cell size.
var ErrInvalidCellSize = errors.New("base cell size must be positive")

// SizingConfig holds the tunnel-domain scaling heuristics. The downwind
// factor is much larger than the lateral ones because the wake needs room
// to develop behind the geometry.
type SizingConfig struct {
	DownwindFactor float64 `yaml:"downwind_factor"` // x extent multiplier
	LateralFactor  float64 `yaml:"lateral_factor"`  // y extent multiplier
	VerticalFactor float64 `yaml:"vertical_factor"` // z extent multiplier
	MinExtent      float64 `yaml:"min_extent"`      // per-axis floor, domain-length units
	ShiftFactor    float64 `yaml:"shift_factor"`    // downwind x shift in body lengths
}

// DefaultSizing returns the standard wind-tunnel sizing heuristics.
func DefaultSizing() SizingConfig {
	return SizingConfig{
		DownwindFactor: 12,
		LateralFactor:  4,
		VerticalFactor: 4,
		MinExtent:      2.5,
		ShiftFactor:    6,
	}
}

// Spec describes the tunnel domain block: its eight corner vertices in
// blockMesh order and the per-axis cell counts. Produced fresh per Size
// call; treat as immutable.
type Spec struct {
	Vertices [8]geometry.Point3
	Blocks   [3]int
}

// unitCube is the template block layout: corners of the +-1 cube in
// blockMesh vertex order (bottom face counter-clockwise, then top).
var unitCube = [8]geometry.Point3{
	{-1, -1, -1},
	{1, -1, -1},
	{1, 1, -1},
	{-1, 1, -1},
	{-1, -1, 1},
	{1, -1, 1},
	{1, 1, 1},
	{-1, 1, 1},
}

// Size computes the tunnel domain for a solid's bounding box.
//
// The raw extents are the bounding-box size scaled per axis, clamped to
// cfg.MinExtent so degenerate or tiny geometry still yields a usable
// tunnel. Cell counts are ceil(extent / baseCellSize) per axis. The
// template corners are scaled by the extents and then every x coordinate
// is shifted downwind by cfg.ShiftFactor body lengths, leaving more wake
// room aft of the geometry than ahead of it.
//
// Planar geometry on an axis is not an error (the clamp applies), and a
// cell size larger than an extent simply yields one block on that axis.
func Size(bb geometry.BoundingBox, baseCellSize float64, cfg SizingConfig) (Spec, error) {
	if baseCellSize <= 0 {
		return Spec{}, fmt.Errorf("domain: %w: %g", ErrInvalidCellSize, baseCellSize)
	}

	size := bb.Size()
	dx := math.Max(size[0]*cfg.DownwindFactor, cfg.MinExtent)
	dy := math.Max(size[1]*cfg.LateralFactor, cfg.MinExtent)
	dz := math.Max(size[2]*cfg.VerticalFactor, cfg.MinExtent)

	var spec Spec
	spec.Blocks = [3]int{
		int(math.Ceil(dx / baseCellSize)),
		int(math.Ceil(dy / baseCellSize)),
		int(math.Ceil(dz / baseCellSize)),
	}

	shift := size[0] * cfg.ShiftFactor
	for i, c := range unitCube {
		spec.Vertices[i] = geometry.Point3{
			c[0]*dx + shift,
			c[1] * dy,
			c[2] * dz,
		}
	}
	return spec, nil
}

// Bounds returns the axis-aligned extent of the domain block.
func (s Spec) Bounds() geometry.BoundingBox {
	bb := geometry.NewBoundingBox()
	for _, v := range s.Vertices {
		bb.Extend(v)
	}
	return bb
}
