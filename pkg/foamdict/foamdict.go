// Package foamdict renders OpenFOAM dictionary text from the computed
// domain and refinement values. Emission is one-way: the external mesh
// generator owns the dictionaries' full schema, this package only writes
// the entries flowprep computes.
package foamdict

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/flowprep/pkg/domain"
	"github.com/chazu/flowprep/pkg/geometry"
	"github.com/chazu/flowprep/pkg/parallel"
)

// header renders the FoamFile preamble common to all dictionaries.
func header(object string) string {
	return fmt.Sprintf(`FoamFile
{
    version     2.0;
    format      ascii;
    class       dictionary;
    object      %s;
}

`, object)
}

func point(p geometry.Point3) string {
	return fmt.Sprintf("(%g %g %g)", p[0], p[1], p[2])
}

// BlockMeshDict renders a complete blockMeshDict for the tunnel domain:
// the eight corner vertices, a single hex block with the computed cell
// counts, and the standard wind-tunnel patch set (inlet on the upwind
// face, outlet downwind, walls elsewhere).
func BlockMeshDict(spec domain.Spec) string {
	var b strings.Builder
	b.WriteString(header("blockMeshDict"))
	b.WriteString("convertToMeters 1;\n\n")

	b.WriteString("vertices\n(\n")
	for _, v := range spec.Vertices {
		fmt.Fprintf(&b, "    %s\n", point(v))
	}
	b.WriteString(");\n\n")

	fmt.Fprintf(&b, "blocks\n(\n    hex (0 1 2 3 4 5 6 7) (%d %d %d) simpleGrading (1 1 1)\n);\n\n",
		spec.Blocks[0], spec.Blocks[1], spec.Blocks[2])

	b.WriteString("edges\n(\n);\n\n")

	b.WriteString(`boundary
(
    inlet
    {
        type patch;
        faces ((0 4 7 3));
    }
    outlet
    {
        type patch;
        faces ((1 2 6 5));
    }
    walls
    {
        type wall;
        faces
        (
            (0 1 5 4)
            (3 7 6 2)
            (0 3 2 1)
            (4 5 6 7)
        );
    }
);

mergePatchPairs
(
);
`)
	return b.String()
}

// SnappyRegions renders the geometry and castellatedMeshControls entries
// for the refinement plan, ready to be spliced into a snappyHexMeshDict.
func SnappyRegions(plan domain.Plan) string {
	var b strings.Builder

	b.WriteString("geometry\n{\n")
	for _, r := range plan.Regions {
		switch s := r.Shape.(type) {
		case domain.Box:
			fmt.Fprintf(&b, "    %s\n    {\n        type searchableBox;\n        min %s;\n        max %s;\n    }\n",
				r.Name, point(s.Min), point(s.Max))
		case domain.Cylinder:
			fmt.Fprintf(&b, "    %s\n    {\n        type searchableCylinder;\n        point1 %s;\n        point2 %s;\n        radius %g;\n    }\n",
				r.Name, point(s.Point1), point(s.Point2), s.Radius)
		}
	}
	b.WriteString("}\n\n")

	b.WriteString("refinementRegions\n{\n")
	for _, r := range plan.Regions {
		fmt.Fprintf(&b, "    %s\n    {\n        mode %s;\n        levels ((%d %d));\n    }\n",
			r.Name, r.Mode, r.Levels[0], r.Levels[1])
	}
	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "locationInMesh %s;\n", point(plan.LocationInMesh))
	return b.String()
}

// DecomposeParDict renders a decomposeParDict with hierarchical
// decomposition matching the computed split.
func DecomposeParDict(d parallel.Decomposition) string {
	var b strings.Builder
	b.WriteString(header("decomposeParDict"))
	fmt.Fprintf(&b, "numberOfSubdomains %d;\n\nmethod hierarchical;\n\n", d.Subdomains)
	fmt.Fprintf(&b, "hierarchicalCoeffs\n{\n    n (%d %d %d);\n    delta 0.001;\n    order xyz;\n}\n",
		d.Coeffs[0], d.Coeffs[1], d.Coeffs[2])
	return b.String()
}

// WriteFile writes dictionary text to path, creating parent directories
// as needed.
func WriteFile(path, contents string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("foamdict: mkdir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return fmt.Errorf("foamdict: write %s: %w", path, err)
	}
	return nil
}
