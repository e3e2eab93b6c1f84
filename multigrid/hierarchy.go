// Package multigrid builds and applies the algebraic multigrid hierarchy:
// Setup constructs levels by repeated coarsening + Galerkin coarse
// operators, and Cycle implements the V/W/F/nonlinear-AMLI recursion over
// that hierarchy. It depends on coarsen for C/F splitting and
// interpolation, relax for per-level smoothing, and gonum/mat's dense LU
// for the coarsest-level direct solve.
package multigrid

import (
	"log/slog"

	"github.com/jbw-sparse/amgsolve/coarsen"
	"github.com/jbw-sparse/amgsolve/relax"
	"github.com/jbw-sparse/amgsolve/solver"
	"github.com/jbw-sparse/amgsolve/spmat"
)

// Level owns everything needed to smooth, restrict and prolong at one
// grid: the operator A, prolongation P and restriction R (typically
// P^T), and scratch vectors X, B, W sized for this level (allocated by
// Setup; Cycle allocates its own work vectors and does not use them).
type Level struct {
	A *spmat.CSR
	P *spmat.CSR // stored as CSR; R = P^T is taken as a CSC view, zero-copy
	R *spmat.CSC

	X, B, W *spmat.Vector

	CF []coarsen.Mark

	ILU     *relax.Factor
	Schwarz []relax.SchwarzBlock

	Smoother solver.SmootherKind
	Poly     relax.PolyParam
}

// Hierarchy is the ordered sequence of levels built by Setup, index 0
// being the finest.
type Hierarchy struct {
	Levels []Level
	Param  solver.AMGParam
	Logger *slog.Logger

	// AMLISolve implements the flexible-Krylov inner solve the
	// nonlinear-AMLI cycle needs at each level. It is injected rather
	// than imported so that multigrid does not depend on krylov: Solve
	// in the root package amgsolve wires this to krylov.FGMRES.
	AMLISolve AMLISolver
}

// AMLISolver runs k iterations of a flexible Krylov method to solve
// A*x = b using m as a (possibly nonlinear, i.e. varying between calls)
// preconditioner, starting from x's current value.
type AMLISolver func(a *spmat.CSR, b, x *spmat.Vector, m Applier, k int) error

// Applier is the minimal preconditioner contract multigrid needs,
// structurally identical to precond.Preconditioner but declared locally
// to avoid importing the precond package (which itself depends on
// multigrid for the AMG-cycle preconditioner variant).
type Applier interface {
	Apply(r, z *spmat.Vector) error
}

// NumLevels returns the number of levels actually built (<= configured
// MaxLevels).
func (h *Hierarchy) NumLevels() int { return len(h.Levels) }

// cycleApplier lets a Hierarchy (with a fixed finest level) be used directly
// as an Applier, running MaxItInner cycles starting from zero, per
// spec.md section 4.8's AMG-cycle preconditioner contract.
type cycleApplier struct {
	h         *Hierarchy
	maxItInner int
}

// AsPreconditioner returns an Applier that runs maxItInner V/W/F/AMLI
// cycles (usually 1) starting from x=0 with r as the right-hand side.
func (h *Hierarchy) AsPreconditioner(maxItInner int) Applier {
	if maxItInner <= 0 {
		maxItInner = 1
	}
	return &cycleApplier{h: h, maxItInner: maxItInner}
}

func (c *cycleApplier) Apply(r, z *spmat.Vector) error {
	z.Zero()
	for i := 0; i < c.maxItInner; i++ {
		c.h.Cycle(0, z, r)
	}
	return nil
}
