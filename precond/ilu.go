package precond

import (
	"github.com/jbw-sparse/amgsolve/relax"
	"github.com/jbw-sparse/amgsolve/spmat"
)

// ILU wraps a precomputed incomplete-factorization triangular solve as a
// Preconditioner.
type ILU struct {
	factor *relax.Factor
}

// NewILU builds an ILU(level) preconditioner for a.
func NewILU(a *spmat.CSR, level int, dropTol float64) *ILU {
	return &ILU{factor: relax.Factorize(a, level, dropTol)}
}

// Apply computes z <- (LU)^-1 r via forward/backward substitution.
func (p *ILU) Apply(r, z *spmat.Vector) error {
	p.factor.Solve(r, z)
	return nil
}
