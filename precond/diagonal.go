package precond

import (
	"math"

	"github.com/jbw-sparse/amgsolve/spmat"
)

const epsTiny = 1e-30

// Diagonal is the Jacobi preconditioner z <- D^-1 r, computed once from a
// matrix's diagonal at construction time. It is blockwise for BSR/STR
// inputs in the sense that DiagTo already returns the scalar diagonal of
// their (possibly block-structured) main diagonal.
type Diagonal struct {
	invDiag []float64
}

// NewDiagonal builds a Diagonal preconditioner from a's diagonal. Any
// entry with |d_ii| below epsTiny is treated per spec.md section 4.3's
// smoother failure semantics: reported as a warning substitution rather
// than propagated as a singular pivot.
func NewDiagonal(a spmat.Matrix, warn func(row int)) *Diagonal {
	n, _ := a.Dims()
	d := spmat.NewVector(n, nil)
	a.DiagTo(d)
	inv := make([]float64, n)
	for i, v := range d.Data {
		if math.Abs(v) < epsTiny {
			if warn != nil {
				warn(i)
			}
			v = epsTiny
		}
		inv[i] = 1 / v
	}
	return &Diagonal{invDiag: inv}
}

// Apply computes z <- D^-1 r.
func (d *Diagonal) Apply(r, z *spmat.Vector) error {
	if len(r.Data) != len(d.invDiag) || len(z.Data) != len(d.invDiag) {
		panic(spmat.ErrShape)
	}
	for i, inv := range d.invDiag {
		z.Data[i] = inv * r.Data[i]
	}
	return nil
}
