// Package preview tessellates the computed tunnel domain and refinement
// volumes into STL surfaces so a case can be inspected in any mesh viewer
// before the external mesh generator runs.
package preview

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/chazu/flowprep/pkg/domain"
	"github.com/chazu/flowprep/pkg/kernel"
	"github.com/chazu/flowprep/pkg/logger"
	"github.com/chazu/flowprep/pkg/stl"
)

// defaultCells controls marching cubes tessellation resolution when the
// caller does not override it.
const defaultCells = 100

// Preview builds inspection surfaces with a geometry kernel.
type Preview struct {
	k     kernel.Kernel
	cells int
}

// New returns a Preview using the given kernel at default resolution.
func New(k kernel.Kernel) *Preview {
	return &Preview{k: k, cells: defaultCells}
}

// WithResolution sets the tessellation cell count.
func (p *Preview) WithResolution(cells int) *Preview {
	p.cells = cells
	return p
}

// DomainSolid builds a solid for the tunnel domain block.
func (p *Preview) DomainSolid(spec domain.Spec) kernel.Solid {
	bb := spec.Bounds()
	return p.k.Box(bb.Min, bb.Max)
}

// RegionSolid builds a solid for one refinement region.
func (p *Preview) RegionSolid(r domain.Region) (kernel.Solid, error) {
	switch s := r.Shape.(type) {
	case domain.Box:
		return p.k.Box(s.Min, s.Max), nil
	case domain.Cylinder:
		length := s.Point2[0] - s.Point1[0]
		return p.k.CylinderX(s.Point1, length, s.Radius), nil
	}
	return nil, fmt.Errorf("preview: unsupported region shape %T", r.Shape)
}

// RegionsSolid builds the union of all refinement regions in a plan.
func (p *Preview) RegionsSolid(plan domain.Plan) (kernel.Solid, error) {
	var acc kernel.Solid
	for _, r := range plan.Regions {
		s, err := p.RegionSolid(r)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			acc = s
		} else {
			acc = p.k.Union(acc, s)
		}
	}
	if acc == nil {
		return nil, fmt.Errorf("preview: plan has no regions")
	}
	return acc, nil
}

// SaveSTL tessellates a solid and writes it as a binary STL surface.
func (p *Preview) SaveSTL(path, name string, s kernel.Solid) error {
	tris, err := p.k.ToTriangles(s, p.cells)
	if err != nil {
		return fmt.Errorf("preview: tessellate %s: %w", name, err)
	}
	logger.Info("writing preview surface",
		zap.String("path", path), zap.Int("triangles", len(tris)))
	return stl.Save(path, &stl.Surface{Name: name, Triangles: tris})
}
