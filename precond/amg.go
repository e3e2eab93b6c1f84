package precond

import (
	"github.com/jbw-sparse/amgsolve/multigrid"
	"github.com/jbw-sparse/amgsolve/spmat"
)

// AMGCycle adapts an already-built multigrid.Hierarchy into a
// Preconditioner by running a fixed number of cycles from a zero initial
// guess, per spec.md section 4.8.
type AMGCycle struct {
	inner multigrid.Applier
}

// NewAMGCycle wraps h, running maxItInner cycles (usually 1) per Apply.
func NewAMGCycle(h *multigrid.Hierarchy, maxItInner int) *AMGCycle {
	return &AMGCycle{inner: h.AsPreconditioner(maxItInner)}
}

// Apply runs the wrapped hierarchy's cycles.
func (p *AMGCycle) Apply(r, z *spmat.Vector) error {
	return p.inner.Apply(r, z)
}
