// Package densekernel provides the small, dense n x n linear-algebra
// kernels used throughout the solver for per-node block operations: block
// Jacobi/Schwarz inverses, BSR diagonal-block solves, and Galerkin
// block-triple-products. Specialized paths exist for n in {2,3,5,7} (the
// block sizes the rest of the library specializes for): closed-form for
// n in {2,3}, Gauss-Jordan elimination for n in {5,7}; any other n falls back to LU with partial pivoting via
// gonum.org/v1/gonum/mat, the one generic dense linear-algebra dependency
// the teacher codebase already carries.
package densekernel

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// epsTiny is the determinant (n in {2,3}) or pivot (n in {5,7}) magnitude
// below which Inverse reports ill-conditioning rather than returning a (numerically meaningless)
// inverse.
const epsTiny = 1e-24

// Inverse computes the inverse of the n x n row-major matrix a in place,
// overwriting a with its inverse. It returns false (leaving a unusable)
// when |det(a)| < epsTiny for n in {2,3}, or when a pivot of magnitude
// below epsTiny is met for n in {5,7}, signalling the caller to treat the block as
// ill-conditioned and skip it (e.g. fall back to a diagonal entry).
func Inverse(n int, a []float64) bool {
	switch n {
	case 2:
		return inverse2(a)
	case 3:
		return inverse3(a)
	case 5:
		return inverse5(a)
	case 7:
		return inverse7(a)
	default:
		return inverseN(n, a)
	}
}

// MulVec computes y = A*x for a row-major n x n matrix A.
func MulVec(n int, a, x, y []float64) {
	for r := 0; r < n; r++ {
		var s float64
		row := a[r*n : r*n+n]
		for c := 0; c < n; c++ {
			s += row[c] * x[c]
		}
		y[r] = s
	}
}

// MulVecAdd computes y += alpha*A*x for a row-major n x n matrix A.
func MulVecAdd(n int, alpha float64, a, x, y []float64) {
	for r := 0; r < n; r++ {
		var s float64
		row := a[r*n : r*n+n]
		for c := 0; c < n; c++ {
			s += row[c] * x[c]
		}
		y[r] += alpha * s
	}
}

// Mul computes C = A*B for row-major n x n matrices A, B, C (C must not
// alias A or B).
func Mul(n int, a, b, c []float64) {
	for i := range c {
		c[i] = 0
	}
	for r := 0; r < n; r++ {
		arow := a[r*n : r*n+n]
		crow := c[r*n : r*n+n]
		for k := 0; k < n; k++ {
			aik := arow[k]
			if aik == 0 {
				continue
			}
			brow := b[k*n : k*n+n]
			for col := 0; col < n; col++ {
				crow[col] += aik * brow[col]
			}
		}
	}
}

// Saturate computes ys -= A_ss * xs where A_ss is the trailing (n-1)x(n-1)
// subblock of the row-major n x n matrix a (i.e. rows/cols 1..n-1), and
// xs, ys are length n-1 slices aligned to that subblock. This is used by
// block Gauss-Seidel/Schwarz sweeps that have already eliminated the
// leading unknown of a node's local system.
func Saturate(n int, a, xs, ys []float64) {
	for r := 1; r < n; r++ {
		var s float64
		row := a[r*n+1 : r*n+n]
		for c := 0; c < n-1; c++ {
			s += row[c] * xs[c]
		}
		ys[r-1] -= s
	}
}

func inverse2(a []float64) bool {
	det := a[0]*a[3] - a[1]*a[2]
	if math.Abs(det) < epsTiny {
		return false
	}
	inv := 1 / det
	a0, a1, a2, a3 := a[0], a[1], a[2], a[3]
	a[0] = a3 * inv
	a[1] = -a1 * inv
	a[2] = -a2 * inv
	a[3] = a0 * inv
	return true
}

func inverse3(a []float64) bool {
	a00, a01, a02 := a[0], a[1], a[2]
	a10, a11, a12 := a[3], a[4], a[5]
	a20, a21, a22 := a[6], a[7], a[8]

	c00 := a11*a22 - a12*a21
	c01 := -(a10*a22 - a12*a20)
	c02 := a10*a21 - a11*a20

	det := a00*c00 + a01*c01 + a02*c02
	if math.Abs(det) < epsTiny {
		return false
	}
	inv := 1 / det

	c10 := -(a01*a22 - a02*a21)
	c11 := a00*a22 - a02*a20
	c12 := -(a00*a21 - a01*a20)
	c20 := a01*a12 - a02*a11
	c21 := -(a00*a12 - a02*a10)
	c22 := a00*a11 - a01*a10

	a[0], a[1], a[2] = c00*inv, c10*inv, c20*inv
	a[3], a[4], a[5] = c01*inv, c11*inv, c21*inv
	a[6], a[7], a[8] = c02*inv, c12*inv, c22*inv
	return true
}

// inverse5 and inverse7 use Gauss-Jordan elimination with partial
// pivoting on a per-call augmented [A | I] buffer instead of going through
// gonum/mat as inverseN does.
func inverse5(a []float64) bool { return gaussJordan(5, a) }
func inverse7(a []float64) bool { return gaussJordan(7, a) }

func gaussJordan(n int, a []float64) bool {
	aug := make([]float64, n*2*n)
	for r := 0; r < n; r++ {
		copy(aug[r*2*n:r*2*n+n], a[r*n:r*n+n])
		aug[r*2*n+n+r] = 1
	}
	for col := 0; col < n; col++ {
		piv := col
		best := math.Abs(aug[col*2*n+col])
		for r := col + 1; r < n; r++ {
			if v := math.Abs(aug[r*2*n+col]); v > best {
				best, piv = v, r
			}
		}
		if best < epsTiny {
			return false
		}
		if piv != col {
			for k := 0; k < 2*n; k++ {
				aug[col*2*n+k], aug[piv*2*n+k] = aug[piv*2*n+k], aug[col*2*n+k]
			}
		}
		pv := aug[col*2*n+col]
		for k := 0; k < 2*n; k++ {
			aug[col*2*n+k] /= pv
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			f := aug[r*2*n+col]
			if f == 0 {
				continue
			}
			for k := 0; k < 2*n; k++ {
				aug[r*2*n+k] -= f * aug[col*2*n+k]
			}
		}
	}
	for r := 0; r < n; r++ {
		copy(a[r*n:r*n+n], aug[r*2*n+n:r*2*n+2*n])
	}
	return true
}

// inverseN is the generic fallback for any block size not given a
// closed-form path: LU with partial pivoting via gonum/mat.
func inverseN(n int, a []float64) bool {
	m := mat.NewDense(n, n, append([]float64(nil), a...))
	var lu mat.LU
	lu.Factorize(m)
	if math.Abs(lu.Det()) < epsTiny {
		return false
	}
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return false
	}
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			a[r*n+c] = inv.At(r, c)
		}
	}
	return true
}

// SolveGeneric solves A*x = b for a general (non-specialized-size) n x n
// system using gonum's partial-pivoted LU, writing the solution into x.
// It returns false if A is numerically singular.
func SolveGeneric(n int, a, b, x []float64) bool {
	m := mat.NewDense(n, n, append([]float64(nil), a...))
	var lu mat.LU
	lu.Factorize(m)
	if math.Abs(lu.Det()) < epsTiny {
		return false
	}
	bv := mat.NewDense(n, 1, append([]float64(nil), b...))
	var xv mat.Dense
	if err := lu.SolveTo(&xv, false, bv); err != nil {
		return false
	}
	for i := 0; i < n; i++ {
		x[i] = xv.At(i, 0)
	}
	return true
}
