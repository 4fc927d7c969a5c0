package solid

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/chazu/flowprep/pkg/geometry"
	"github.com/chazu/flowprep/pkg/stl"
)

// wingSolid builds a crude symmetric wing: two triangles whose y extremes
// sit at distinct, float32-exact vertices.
func wingSolid(t *testing.T) *Solid {
	t.Helper()
	tris := []geometry.Triangle{
		{V: [3]geometry.Point3{{0, -4, 0}, {2, 0, 0}, {0, 0, 0.5}}},
		{V: [3]geometry.Point3{{0, 4, 0}, {2, 0, 0}, {0, 0, -0.5}}},
	}
	s, err := New("wing", tris)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestNewEmpty(t *testing.T) {
	_, err := New("empty", nil)
	if !errors.Is(err, stl.ErrFormat) {
		t.Errorf("New() error = %v, want stl.ErrFormat", err)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.stl"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestBoundsAndExtremalPoints(t *testing.T) {
	s := wingSolid(t)

	bb := s.Bounds()
	if bb.Min != (geometry.Point3{0, -4, -0.5}) {
		t.Errorf("Min = %v, want (0,-4,-0.5)", bb.Min)
	}
	if bb.Max != (geometry.Point3{2, 4, 0.5}) {
		t.Errorf("Max = %v, want (2,4,0.5)", bb.Max)
	}
	if s.YMaxPoint() != (geometry.Point3{0, 4, 0}) {
		t.Errorf("YMaxPoint = %v, want (0,4,0)", s.YMaxPoint())
	}
	if s.YMinPoint() != (geometry.Point3{0, -4, 0}) {
		t.Errorf("YMinPoint = %v, want (0,-4,0)", s.YMinPoint())
	}
}

func TestExtremalTieBreakFirstInScanOrder(t *testing.T) {
	// Two distinct vertices share ymax; the first in triangle/vertex scan
	// order wins.
	tris := []geometry.Triangle{
		{V: [3]geometry.Point3{{1, 7, 0}, {0, 0, 0}, {2, 0, 0}}},
		{V: [3]geometry.Point3{{5, 7, 3}, {0, 0, 0}, {2, 0, 0}}},
	}
	s, err := New("tie", tris)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if s.YMaxPoint() != (geometry.Point3{1, 7, 0}) {
		t.Errorf("YMaxPoint = %v, want first-in-scan-order (1,7,0)", s.YMaxPoint())
	}
}

func TestExtremalPropertyHoldsAfterTransforms(t *testing.T) {
	s := wingSolid(t)

	steps := []struct {
		name  string
		apply func() error
	}{
		{"rotate", func() error { return s.Rotate(30, 10, 5, geometry.Degrees) }},
		{"translate", func() error { s.Translate(1, -2, 3); return nil }},
		{"scale", func() error { return s.Scale(2, 0.5, 1) }},
		{"center", func() error { s.Center(); return nil }},
	}
	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			if err := step.apply(); err != nil {
				t.Fatalf("%s error = %v", step.name, err)
			}
			bb := s.Bounds()
			if got := s.YMaxPoint()[1]; got != bb.Max[1] {
				t.Errorf("YMaxPoint.y = %g, want ymax %g", got, bb.Max[1])
			}
			if got := s.YMinPoint()[1]; got != bb.Min[1] {
				t.Errorf("YMinPoint.y = %g, want ymin %g", got, bb.Min[1])
			}
		})
	}
}

func TestRotateZeroIsIdentity(t *testing.T) {
	s := wingSolid(t)
	before := append([]geometry.Triangle(nil), s.Triangles()...)

	if err := s.Rotate(0, 0, 0, geometry.Radians); err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}
	for i, tri := range s.Triangles() {
		if tri.V != before[i].V {
			t.Errorf("triangle %d moved: %v -> %v", i, before[i].V, tri.V)
		}
	}
}

func TestRotatePitch90(t *testing.T) {
	tris := []geometry.Triangle{
		{V: [3]geometry.Point3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}},
	}
	s, err := New("axes", tris)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.Rotate(0, 90, 0, geometry.Degrees); err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}
	got := s.Triangles()[0].V[0]
	want := geometry.Point3{0, 0, -1}
	for i := 0; i < 3; i++ {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("pitch 90 moved (1,0,0) to %v, want (0,0,-1)", got)
		}
	}
}

func TestRotateInvalidUnitsLeavesSolidUntouched(t *testing.T) {
	s := wingSolid(t)
	before := s.Bounds()
	beforeTip := s.YMaxPoint()

	err := s.Rotate(0, 45, 0, geometry.AngleUnit("gradians"))
	if !errors.Is(err, geometry.ErrInvalidUnits) {
		t.Fatalf("Rotate() error = %v, want ErrInvalidUnits", err)
	}
	if s.Bounds() != before {
		t.Error("failed rotate changed cached bounds")
	}
	if s.YMaxPoint() != beforeTip {
		t.Error("failed rotate changed cached extremal point")
	}
}

func TestSetAngleOfAttackMatchesPitchRotate(t *testing.T) {
	a := wingSolid(t)
	b := wingSolid(t)

	if err := a.SetAngleOfAttack(5, geometry.Degrees); err != nil {
		t.Fatalf("SetAngleOfAttack() error = %v", err)
	}
	if err := b.Rotate(0, 5, 0, geometry.Degrees); err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}
	for i := range a.Triangles() {
		if a.Triangles()[i].V != b.Triangles()[i].V {
			t.Fatalf("triangle %d differs between set-aoa and pitch rotate", i)
		}
	}
}

func TestScaleValidation(t *testing.T) {
	tests := []struct {
		name       string
		sx, sy, sz float64
		wantErr    bool
	}{
		{"zero factor", 0, 1, 1, true},
		{"negative factor", -1, 1, 1, true},
		{"identity", 1, 1, 1, false},
		{"anisotropic", 2, 3, 0.5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := wingSolid(t)
			before := s.Bounds()

			err := s.Scale(tt.sx, tt.sy, tt.sz)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidScale) {
					t.Fatalf("Scale() error = %v, want ErrInvalidScale", err)
				}
				if s.Bounds() != before {
					t.Error("failed scale changed cached bounds")
				}
				return
			}
			if err != nil {
				t.Fatalf("Scale() error = %v", err)
			}
		})
	}
}

func TestScaleIdentityIsNoOp(t *testing.T) {
	s := wingSolid(t)
	before := append([]geometry.Triangle(nil), s.Triangles()...)

	if err := s.Scale(1, 1, 1); err != nil {
		t.Fatalf("Scale() error = %v", err)
	}
	for i, tri := range s.Triangles() {
		if tri.V != before[i].V {
			t.Errorf("triangle %d moved under identity scale", i)
		}
	}
}

func TestCenterInvariant(t *testing.T) {
	s := wingSolid(t)
	s.Translate(17, -3, 42) // push it well off-origin first
	s.Center()

	bb := s.Bounds()
	for i := 0; i < 3; i++ {
		if sum := bb.Max[i] + bb.Min[i]; math.Abs(sum) > 1e-9 {
			t.Errorf("axis %d: max+min = %g, want 0", i, sum)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wing.stl")
	s := wingSolid(t)

	if err := s.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.TriangleCount() != s.TriangleCount() {
		t.Fatalf("triangle count = %d, want %d", got.TriangleCount(), s.TriangleCount())
	}
	// All test vertices are float32-exact, so the round trip is exact.
	for i := range s.Triangles() {
		if got.Triangles()[i].V != s.Triangles()[i].V {
			t.Errorf("triangle %d = %v, want %v", i, got.Triangles()[i].V, s.Triangles()[i].V)
		}
	}
	if got.Bounds() != s.Bounds() {
		t.Errorf("bounds = %v, want %v", got.Bounds(), s.Bounds())
	}
}
