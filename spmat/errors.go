// Package spmat provides the sparse and dense matrix/vector types shared by
// the solver: CSR, CSC, block-sparse (BSR) and structured-grid (STR)
// matrices, plus the dense Vector and integer IVector types used for C/F
// markers and permutations.
//
// All floating point values use float64 (R) and all indices use int (I),
// fixed for the build per the "two concrete type parameters" redesign note:
// there is no generic parametrisation over scalar/index width.
package spmat

import "errors"

// Sentinel errors mirror the teacher's panic-on-shape-mismatch convention:
// dimension mismatches are programmer errors and panic at the API boundary,
// these sentinels are what gets wrapped into the panic value so callers can
// still recover() and errors.Is() them in tests.
var (
	ErrShape       = errors.New("spmat: dimension mismatch")
	ErrRowAccess   = errors.New("spmat: row index out of range")
	ErrColAccess   = errors.New("spmat: column index out of range")
	ErrBlockSize   = errors.New("spmat: unsupported or mismatched block size")
	ErrBandOffset  = errors.New("spmat: band offset out of range")
	ErrNotSquare   = errors.New("spmat: matrix must be square")
	ErrEmptyMatrix = errors.New("spmat: empty matrix")
)
