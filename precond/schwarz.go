package precond

import (
	"github.com/jbw-sparse/amgsolve/relax"
	"github.com/jbw-sparse/amgsolve/spmat"
)

// Schwarz wraps a precomputed set of overlapping-block local inverses as
// an additive Schwarz Preconditioner.
type Schwarz struct {
	a      *spmat.CSR
	blocks []relax.SchwarzBlock
	sweeps int
}

// NewSchwarz builds an additive Schwarz preconditioner from a's
// neighbor-overlap blocks.
func NewSchwarz(a *spmat.CSR, neighbors [][]int, sweeps int) *Schwarz {
	if sweeps <= 0 {
		sweeps = 1
	}
	return &Schwarz{a: a, blocks: relax.BuildSchwarz(a, neighbors), sweeps: sweeps}
}

// Apply runs the configured number of additive Schwarz sweeps starting
// from z = 0.
func (p *Schwarz) Apply(r, z *spmat.Vector) error {
	z.Zero()
	relax.Schwarz(p.a, r, z, p.blocks, p.sweeps)
	return nil
}
