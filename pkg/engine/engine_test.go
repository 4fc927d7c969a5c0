package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/flowprep/pkg/geometry"
	"github.com/chazu/flowprep/pkg/solid"
)

// writeFixtures lays down a small wing STL and a minimal case template,
// returning their paths.
func writeFixtures(t *testing.T) (stlPath, templateDir string) {
	t.Helper()
	dir := t.TempDir()

	s, err := solid.New("wing", []geometry.Triangle{
		{V: [3]geometry.Point3{{0, -4, 0}, {2, 0, 0}, {0, 0, 0.5}}},
		{V: [3]geometry.Point3{{0, 4, 0}, {2, 0, 0}, {0, 0, -0.5}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	stlPath = filepath.Join(dir, "wing.stl")
	if err := s.Save(stlPath); err != nil {
		t.Fatal(err)
	}

	templateDir = filepath.Join(dir, "template")
	if err := os.MkdirAll(filepath.Join(templateDir, "system"), 0o755); err != nil {
		t.Fatal(err)
	}
	controlDict := filepath.Join(templateDir, "system", "controlDict")
	if err := os.WriteFile(controlDict, []byte("application simpleFoam;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return stlPath, templateDir
}

func TestEvaluateEmptySource(t *testing.T) {
	e := NewEngine(nil)

	for _, src := range []string{"", "   \n\t  "} {
		cases, evalErrs, err := e.Evaluate(src)
		if err != nil {
			t.Fatalf("Evaluate(%q) error = %v", src, err)
		}
		if len(evalErrs) != 0 {
			t.Errorf("Evaluate(%q) eval errors = %v", src, evalErrs)
		}
		if cases == nil || len(cases.Dirs) != 0 {
			t.Errorf("Evaluate(%q) cases = %v, want empty set", src, cases)
		}
	}
}

func TestEvaluateWriteCase(t *testing.T) {
	stlPath, templateDir := writeFixtures(t)
	caseDir := filepath.Join(t.TempDir(), "aoa_5")

	src := fmt.Sprintf(
		`;; single-case sweep
(write-case (center (set-aoa (load-solid %q) 5))
            :dir %q :template %q :procs 4)`,
		stlPath, caseDir, templateDir)

	cases, evalErrs, err := NewEngine(nil).Evaluate(src)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(evalErrs) != 0 {
		t.Fatalf("Evaluate() eval errors = %v", evalErrs)
	}
	if len(cases.Dirs) != 1 {
		t.Fatalf("emitted cases = %v, want one", cases.Dirs)
	}

	for _, rel := range []string{
		filepath.Join("constant", "triSurface", "aircraft.stl"),
		filepath.Join("constant", "polyMesh", "blockMeshDict"),
		filepath.Join("system", "snappyRefinement"),
		filepath.Join("system", "decomposeParDict"),
		filepath.Join("system", "controlDict"), // from the template
	} {
		if _, err := os.Stat(filepath.Join(cases.Dirs[0], rel)); err != nil {
			t.Errorf("case missing %s: %v", rel, err)
		}
	}

	// The installed geometry carries the applied transforms: centering
	// leaves the bounds symmetric about the origin.
	got, err := solid.Load(filepath.Join(cases.Dirs[0], "constant", "triSurface", "aircraft.stl"))
	if err != nil {
		t.Fatalf("installed geometry unreadable: %v", err)
	}
	bb := got.Bounds()
	for i := 0; i < 3; i++ {
		if sum := bb.Max[i] + bb.Min[i]; sum > 1e-5 || sum < -1e-5 {
			t.Errorf("axis %d: max+min = %g, want 0", i, sum)
		}
	}
}

func TestEvaluateCellSizeKeyword(t *testing.T) {
	stlPath, templateDir := writeFixtures(t)
	caseDir := filepath.Join(t.TempDir(), "coarse")

	// The wing spans 2 x 8 x 1, so a 1.0 cell gives 24x32x4 blocks where
	// the 0.25 default would give 96x128x16.
	src := fmt.Sprintf(`(write-case (load-solid %q) :dir %q :template %q :cell-size 1.0)`,
		stlPath, caseDir, templateDir)

	cases, evalErrs, err := NewEngine(nil).Evaluate(src)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(evalErrs) != 0 {
		t.Fatalf("Evaluate() eval errors = %v", evalErrs)
	}

	data, err := os.ReadFile(filepath.Join(cases.Dirs[0], "constant", "polyMesh", "blockMeshDict"))
	if err != nil {
		t.Fatalf("blockMeshDict unreadable: %v", err)
	}
	if !strings.Contains(string(data), "(24 32 4)") {
		t.Errorf("blockMeshDict ignores :cell-size 1.0:\n%s", data)
	}
}

func TestEvaluateSingleProcSkipsDecomposeDict(t *testing.T) {
	stlPath, templateDir := writeFixtures(t)
	caseDir := filepath.Join(t.TempDir(), "serial")

	src := fmt.Sprintf(`(write-case (load-solid %q) :dir %q :template %q)`,
		stlPath, caseDir, templateDir)

	cases, evalErrs, err := NewEngine(nil).Evaluate(src)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(evalErrs) != 0 {
		t.Fatalf("Evaluate() eval errors = %v", evalErrs)
	}
	if _, err := os.Stat(filepath.Join(cases.Dirs[0], "system", "decomposeParDict")); !errors.Is(err, os.ErrNotExist) {
		t.Error("serial case should not carry a decomposeParDict")
	}
}

func TestEvaluateBoundsBuiltin(t *testing.T) {
	stlPath, _ := writeFixtures(t)

	// bounds feeds the script a plain array; using it keeps the script
	// honest about the builtin's return shape.
	src := fmt.Sprintf(`(bounds (load-solid %q))`, stlPath)
	_, evalErrs, err := NewEngine(nil).Evaluate(src)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(evalErrs) != 0 {
		t.Errorf("Evaluate() eval errors = %v", evalErrs)
	}
}

func TestEvaluateMissingGeometryIsEvalError(t *testing.T) {
	src := `(load-solid "does/not/exist.stl")`
	cases, evalErrs, err := NewEngine(nil).Evaluate(src)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if cases != nil {
		t.Errorf("cases = %v, want nil", cases)
	}
	if len(evalErrs) == 0 {
		t.Fatal("missing geometry should surface as an eval error")
	}
}

func TestEvaluateUnknownFunction(t *testing.T) {
	cases, evalErrs, err := NewEngine(nil).Evaluate(`(no-such-builtin 1 2)`)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if cases != nil {
		t.Errorf("cases = %v, want nil", cases)
	}
	if len(evalErrs) == 0 {
		t.Fatal("unknown function should surface as an eval error")
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
	}{
		{"long form", "Error on line 3: undefined symbol", 3},
		{"short form", "line 12: unexpected token", 12},
		{"no line info", "something went wrong", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseZygomysError(errors.New(tt.msg))
			if len(got) != 1 {
				t.Fatalf("error count = %d, want 1", len(got))
			}
			if got[0].Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", got[0].Line, tt.wantLine)
			}
			if got[0].Message == "" {
				t.Error("Message is empty")
			}
		})
	}
}

func TestEvalErrorString(t *testing.T) {
	e := EvalError{Line: 4, Message: "bad form"}
	if got := e.Error(); got != "line 4: bad form" {
		t.Errorf("Error() = %q", got)
	}
	e = EvalError{Message: "bad form"}
	if got := e.Error(); got != "bad form" {
		t.Errorf("Error() = %q", got)
	}
}
