package domain

import (
	"github.com/chazu/flowprep/pkg/geometry"
)

// Mode is a refinement region's containment mode.
type Mode string

const (
	ModeInside  Mode = "inside"
	ModeOutside Mode = "outside"
)

// Shape is the geometric variant of a refinement region.
type Shape interface {
	shape()
}

// Box is an axis-aligned refinement box.
type Box struct {
	Min geometry.Point3
	Max geometry.Point3
}

// Cylinder is a refinement cylinder between two points.
type Cylinder struct {
	Point1 geometry.Point3
	Point2 geometry.Point3
	Radius float64
}

func (Box) shape()      {}
func (Cylinder) shape() {}

// Region is a named refinement volume with its level range and
// containment mode. Levels[0] is the coarse bound and Levels[1] the fine
// bound: cells inside are refined to at least the coarse level, up to the
// fine level near the surface. Immutable value.
type Region struct {
	Name   string
	Shape  Shape
	Mode   Mode
	Levels [2]int
}

// RefinementConfig holds the refinement-volume heuristics.
type RefinementConfig struct {
	BoxEnlarge    float64 `yaml:"box_enlarge"`    // wake box bound multiplier
	WakeExtension float64 `yaml:"wake_extension"` // extra downwind body lengths
	TipRadius     float64 `yaml:"tip_radius"`     // wingtip cylinder radius
	TipLength     float64 `yaml:"tip_length"`     // wingtip cylinder length, downwind
	WakeLevels    [2]int  `yaml:"wake_levels"`
	TipLevels     [2]int  `yaml:"tip_levels"`
}

// DefaultRefinement returns the standard refinement heuristics. The
// wingtip levels are finer than the wake levels because tip vortices are
// the most resolution-sensitive structures in the flow.
func DefaultRefinement() RefinementConfig {
	return RefinementConfig{
		BoxEnlarge:    2.5,
		WakeExtension: 4,
		TipRadius:     0.2,
		TipLength:     6,
		WakeLevels:    [2]int{1, 4},
		TipLevels:     [2]int{1, 5},
	}
}

// Plan is the refinement planner's output: the wake box, the two wingtip
// cylinders and the point the mesh generator uses to identify the fluid
// region.
type Plan struct {
	Regions        []Region
	LocationInMesh geometry.Point3
}

// PlanRefinement computes the refinement volumes for a solid. It is a
// pure function of the bounding box and the two extremal-y vertices.
//
// The wake box enlarges the geometry's bounds by cfg.BoxEnlarge and
// extends the downwind face by cfg.WakeExtension body lengths. Each
// wingtip cylinder runs cfg.TipLength downwind from its extremal vertex.
// The location-in-mesh is the wake box's min corner, which sits inside
// the meshed fluid volume and away from both the geometry and the domain
// boundary.
//
// Both the wake box and the tunnel domain are expressed in the same world
// frame as the input geometry; the domain's downwind shift moves the
// block within that frame and needs no correction here.
func PlanRefinement(bb geometry.BoundingBox, yMinPt, yMaxPt geometry.Point3, cfg RefinementConfig) Plan {
	bodyLength := bb.Max[0] - bb.Min[0]

	wake := Box{
		Min: bb.Min.Mul(cfg.BoxEnlarge),
		Max: geometry.Point3{
			cfg.BoxEnlarge*bb.Max[0] + cfg.WakeExtension*bodyLength,
			cfg.BoxEnlarge * bb.Max[1],
			cfg.BoxEnlarge * bb.Max[2],
		},
	}

	downwind := geometry.Point3{cfg.TipLength, 0, 0}
	regions := []Region{
		{Name: "downwindbox", Shape: wake, Mode: ModeInside, Levels: cfg.WakeLevels},
		{
			Name:   "wingtip1",
			Shape:  Cylinder{Point1: yMinPt, Point2: yMinPt.Add(downwind), Radius: cfg.TipRadius},
			Mode:   ModeInside,
			Levels: cfg.TipLevels,
		},
		{
			Name:   "wingtip2",
			Shape:  Cylinder{Point1: yMaxPt, Point2: yMaxPt.Add(downwind), Radius: cfg.TipRadius},
			Mode:   ModeInside,
			Levels: cfg.TipLevels,
		},
	}

	return Plan{
		Regions:        regions,
		LocationInMesh: wake.Min,
	}
}
