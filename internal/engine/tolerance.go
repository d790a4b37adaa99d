package engine

import "github.com/born-ml/mathengine/internal/sweep"

// Tolerances returns the largest accepted absolute difference between two backends
// for every operation in the catalogue. Exact operations map to 0.
func Tolerances() map[string]float64 {
	tol := make(map[string]float64)
	for _, c := range sweep.Cases() {
		tol[c.Op] = c.Tolerance
	}
	return tol
}

// Ops returns the catalogue operation names in catalogue order.
func Ops() []string {
	cases := sweep.Cases()
	ops := make([]string, len(cases))
	for i, c := range cases {
		ops[i] = c.Op
	}
	return ops
}
