package parallel

import (
	"errors"
	"testing"
)

func TestDecompose(t *testing.T) {
	tests := []struct {
		procs int
		want  [3]int
	}{
		{1, [3]int{1, 1, 1}},
		{2, [3]int{2, 1, 1}},
		{3, [3]int{3, 1, 1}},
		{4, [3]int{2, 2, 1}},
		{6, [3]int{3, 2, 1}},
		{7, [3]int{7, 1, 1}}, // prime counts get a single-axis split
		{8, [3]int{2, 2, 2}},
		{12, [3]int{3, 2, 2}},
		{16, [3]int{4, 2, 2}},
		{18, [3]int{3, 3, 2}},
	}
	for _, tt := range tests {
		d, err := Decompose(tt.procs)
		if err != nil {
			t.Errorf("Decompose(%d) error = %v", tt.procs, err)
			continue
		}
		if d.Subdomains != tt.procs {
			t.Errorf("Decompose(%d).Subdomains = %d", tt.procs, d.Subdomains)
		}
		if d.Coeffs != tt.want {
			t.Errorf("Decompose(%d).Coeffs = %v, want %v", tt.procs, d.Coeffs, tt.want)
		}
	}
}

func TestDecomposeCoeffsMultiplyOut(t *testing.T) {
	for procs := 1; procs <= 64; procs++ {
		d, err := Decompose(procs)
		if err != nil {
			t.Fatalf("Decompose(%d) error = %v", procs, err)
		}
		if got := d.Coeffs[0] * d.Coeffs[1] * d.Coeffs[2]; got != procs {
			t.Errorf("Decompose(%d): coeffs %v multiply to %d", procs, d.Coeffs, got)
		}
	}
}

func TestDecomposeInvalid(t *testing.T) {
	for _, procs := range []int{0, -4} {
		if _, err := Decompose(procs); !errors.Is(err, ErrInvalidProcs) {
			t.Errorf("Decompose(%d) error = %v, want ErrInvalidProcs", procs, err)
		}
	}
}
