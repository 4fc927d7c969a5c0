// Package parallel computes the subdomain decomposition handed to the
// external mesh generator's decomposition step. The processor count is an
// explicit capability injected by the caller; this package never inspects
// the machine it runs on.
package parallel

import (
	"errors"
	"fmt"
)

// ErrInvalidProcs is returned for a processor count below one.
var ErrInvalidProcs = errors.New("number of processors must be at least 1")

// Decomposition describes how the case is split across processors:
// the subdomain count and the hierarchical per-axis split factors
// (nx * ny * nz == Subdomains).
type Decomposition struct {
	Subdomains int
	Coeffs     [3]int
}

// Decompose factors procs into per-axis splits. The flow direction (x)
// gets the larger factors first since the domain is longest there.
func Decompose(procs int) (Decomposition, error) {
	if procs < 1 {
		return Decomposition{}, fmt.Errorf("parallel: %w: %d", ErrInvalidProcs, procs)
	}

	coeffs := [3]int{1, 1, 1}
	for _, p := range primeFactors(procs) {
		// Assign each factor (largest first) to the axis with the
		// smallest current split, preferring x on ties.
		axis := 0
		for i := 1; i < 3; i++ {
			if coeffs[i] < coeffs[axis] {
				axis = i
			}
		}
		coeffs[axis] *= p
	}
	return Decomposition{Subdomains: procs, Coeffs: coeffs}, nil
}

// primeFactors returns the prime factorization of n in descending order.
func primeFactors(n int) []int {
	var factors []int
	for d := 2; d*d <= n; d++ {
		for n%d == 0 {
			factors = append(factors, d)
			n /= d
		}
	}
	if n > 1 {
		factors = append(factors, n)
	}
	// Reverse into descending order so large factors are placed first.
	for i, j := 0, len(factors)-1; i < j; i, j = i+1, j-1 {
		factors[i], factors[j] = factors[j], factors[i]
	}
	return factors
}
