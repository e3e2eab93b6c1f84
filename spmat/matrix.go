package spmat

import "gonum.org/v1/gonum/mat"

// Matrix is the contract every sparse format in this package implements:
// enough to plug into a Krylov driver or a smoother without the caller
// knowing the concrete storage format. It embeds mat.Matrix so any of
// these types interoperate with gonum/mat routines directly.
type Matrix interface {
	mat.Matrix

	// NNZ returns the number of stored (structurally non-zero) scalar
	// entries. For BSR this counts scalars, not blocks.
	NNZ() int

	// MulVecTo computes y <- A*x, overwriting y.
	MulVecTo(y *Vector, x *Vector)

	// MulVecAddTo computes y <- alpha*A*x + y.
	MulVecAddTo(y *Vector, alpha float64, x *Vector)

	// MulTransVecTo computes y <- A^T*x, overwriting y.
	MulTransVecTo(y *Vector, x *Vector)

	// DiagTo extracts the main diagonal into d (len(d) == min(rows,cols)).
	DiagTo(d *Vector)
}

// Sparser is implemented by all sparse (non-dense) matrix formats.
type Sparser interface {
	Matrix
}

// COOEntry is a single (row, col, value) triple used to build sparse
// matrices incrementally before compressing to CSR/CSC/BSR.
type COOEntry struct {
	Row, Col int
	Val      float64
}
