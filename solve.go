// Package amgsolve is the top-level facade: it wires a Krylov driver
// (package krylov) to an optional preconditioner (package precond),
// building an algebraic multigrid hierarchy (package multigrid) first
// when the preconditioner requests one. It is kept separate from
// package solver (parameter bundles and status codes) and package
// krylov (the drivers) specifically to break the dependency cycle that
// would otherwise arise from krylov needing solver.ITSParam/errors while
// multigrid's nonlinear-AMLI cycle needs to call back into a flexible
// Krylov driver: only this top package imports both krylov and
// multigrid, and it is the one place that wires multigrid.Hierarchy's
// injected AMLISolve field to krylov.FGMRES.
package amgsolve

import (
	"github.com/jbw-sparse/amgsolve/krylov"
	"github.com/jbw-sparse/amgsolve/multigrid"
	"github.com/jbw-sparse/amgsolve/precond"
	"github.com/jbw-sparse/amgsolve/solver"
	"github.com/jbw-sparse/amgsolve/spmat"
)

// PrecondKind selects what Solve builds as the Krylov preconditioner.
type PrecondKind int

const (
	// PrecondNone runs the bare Krylov driver.
	PrecondNone PrecondKind = iota
	// PrecondDiagonal uses a Jacobi (diagonal) preconditioner.
	PrecondDiagonal
	// PrecondILU factorizes an ILU(k) preconditioner.
	PrecondILU
	// PrecondAMG builds and applies an algebraic multigrid hierarchy.
	PrecondAMG
)

// Config bundles everything Solve needs beyond the matrix/vectors: the
// Krylov parameters, which preconditioner to build, and (when
// PrecondKind is PrecondAMG or PrecondILU) the parameters controlling
// that construction.
type Config struct {
	ITS      solver.ITSParam
	Precond  PrecondKind
	AMG      solver.AMGParam
	ILU      solver.ILUParam
	MaxItAMG int // cycles per AMG preconditioner application, default 1
}

// DefaultConfig returns an unpreconditioned CG configuration with the
// spec's default parameters.
func DefaultConfig() Config {
	return Config{
		ITS:      solver.DefaultITSParam(),
		Precond:  PrecondNone,
		AMG:      solver.DefaultAMGParam(),
		ILU:      solver.DefaultILUParam(),
		MaxItAMG: 1,
	}
}

// Result carries the hierarchy built for PrecondAMG, if any, so callers
// can reuse it (e.g. across repeated right-hand sides) instead of paying
// setup cost again.
type Result struct {
	Iterations int
	Hierarchy  *multigrid.Hierarchy
}

// Solve dispatches to the configured Krylov driver over a, correcting x
// in place against b. When cfg.Precond is PrecondAMG, AMG setup runs
// first and the resulting hierarchy's nonlinear-AMLI inner solve (used
// only when cfg.AMG.Cycle is solver.AMLICycle) is wired to krylov.FGMRES.
func Solve(a *spmat.CSR, b, x *spmat.Vector, cfg Config) (Result, error) {
	var m krylov.Preconditioner
	var hierarchy *multigrid.Hierarchy

	switch cfg.Precond {
	case PrecondDiagonal:
		m = precond.NewDiagonal(a, func(row int) {
			if cfg.ITS.Logger != nil {
				cfg.ITS.Logger.Warn("precond: near-singular diagonal entry substituted", "row", row)
			}
		})
	case PrecondILU:
		m = precond.NewILU(a, cfg.ILU.LevelOfFill, cfg.ILU.DropTol)
	case PrecondAMG:
		hierarchy = multigrid.Setup(a, cfg.AMG, cfg.ITS.Logger)
		hierarchy.AMLISolve = func(ah *spmat.CSR, bh, xh *spmat.Vector, inner multigrid.Applier, k int) error {
			innerParam := cfg.ITS
			innerParam.MaxIt = k
			innerParam.PrintLevel = solver.PrintNone
			_, err := krylov.FGMRES(ah, bh, xh, applierAsPreconditioner(inner), innerParam)
			return err
		}
		m = applierAsPreconditioner(hierarchy.AsPreconditioner(cfg.MaxItAMG))
	}

	iter, err := runDriver(a, b, x, m, cfg.ITS)
	return Result{Iterations: iter, Hierarchy: hierarchy}, err
}

func runDriver(a *spmat.CSR, b, x *spmat.Vector, m krylov.Preconditioner, p solver.ITSParam) (int, error) {
	switch p.Kind {
	case solver.BiCGStab:
		return krylov.BiCGStab(a, b, x, m, p)
	case solver.GMRES:
		return krylov.GMRES(a, b, x, m, p)
	case solver.FGMRES:
		return krylov.FGMRES(a, b, x, m, p)
	case solver.GCG:
		return krylov.GCG(a, b, x, m, p)
	default: // CG
		return krylov.PCG(a, b, x, m, p)
	}
}

// applierAsPreconditioner adapts a multigrid.Applier (or precond.*,
// structurally identical) to krylov.Preconditioner. The conversion is a
// no-op at the type level since both interfaces have the same single
// method; it exists purely for readability at call sites.
func applierAsPreconditioner(a multigrid.Applier) krylov.Preconditioner {
	return krylovPreconditionerFunc(a.Apply)
}

type krylovPreconditionerFunc func(r, z *spmat.Vector) error

func (f krylovPreconditionerFunc) Apply(r, z *spmat.Vector) error { return f(r, z) }
