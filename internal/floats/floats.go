// Package floats hosts the one scalar helper the Krylov stop-type
// formulas share that gonum.org/v1/gonum/floats has no equivalent for.
// Norm and dot-product work goes through gonum.org/v1/gonum/floats
// directly (see spmat.Vector), the same dependency the teacher uses in
// its own production vector code.
package floats

// MaxDenominator returns max(eps, v), the guarded denominator used
// throughout the Krylov stop-type formulas in spec.md to avoid division
// by (near) zero.
func MaxDenominator(v, eps float64) float64 {
	if v > eps {
		return v
	}
	return eps
}
