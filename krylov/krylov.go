// Package krylov implements the Krylov-subspace drivers: PCG, BiCGStab
// with safe-net, restarted GMRES/FGMRES and GCG. Every driver shares the
// initialization/stagnation/sol-stagnation spine described in spec.md
// section 4.7. PCG, BiCGStab and GCG re-check the explicit residual when
// the recurred one reports convergence and restart from it when it fails;
// GMRES/FGMRES recompute the explicit residual at the end of every cycle.
// Only PCG honours ITSParam.StopType: BiCGStab, GMRES/FGMRES and GCG
// always use ||r|| / max(eps, ||r0||).
//
// Drivers accept a Preconditioner declared locally (rather than importing
// package precond) so that both precond.Preconditioner and
// multigrid.Applier satisfy it structurally without krylov depending on
// either package — this is what lets the nonlinear-AMLI cycle in
// multigrid call back into a flexible Krylov driver without an import
// cycle (multigrid takes an injected function value that calls into this
// package, wired up by Solve in the root package amgsolve).
package krylov

import (
	"math"

	"github.com/jbw-sparse/amgsolve/internal/floats"
	"github.com/jbw-sparse/amgsolve/solver"
	"github.com/jbw-sparse/amgsolve/spmat"
)

// Preconditioner is the contract "given residual r, produce z ~ A^-1 r".
type Preconditioner interface {
	Apply(r, z *spmat.Vector) error
}

// Operator is the contract every driver needs from a matrix: SpMV and
// (for BiCGStab's shadow residual and GMRES's Arnoldi process nothing
// more is required beyond MulVecTo). Declared so drivers work over any
// spmat.Matrix implementation, not just CSR.
type Operator interface {
	Dims() (int, int)
	MulVecTo(y, x *spmat.Vector)
}

const (
	// smallEpsilon guards every "max(eps, ...)" denominator in the
	// stop-type formulas of spec.md section 4.7.
	smallEpsilon = 1e-20
)

// state carries the shared per-driver bookkeeping (stagnation counters,
// false-convergence restarts) so each algorithm's loop body stays focused
// on its own recurrence.
type state struct {
	p       solver.ITSParam
	stagCnt int
	restart int
}

func newState(p solver.ITSParam) *state {
	if p.MaxStag <= 0 {
		p.MaxStag = 20
	}
	if p.StagRatio <= 0 {
		p.StagRatio = 1e-4
	}
	if p.MaxRestart <= 0 {
		p.MaxRestart = 20
	}
	if p.EpsSol <= 0 {
		p.EpsSol = 1e-20
	}
	if p.BreakdownTol <= 0 {
		p.BreakdownTol = 1e-30
	}
	return &state{p: p}
}

// denom computes the stop-type's relative-residual denominator at
// initialization, per spec.md section 4.7.
func denom(stopType solver.StopType, r0, x0 *spmat.Vector, precRes0 float64) float64 {
	switch stopType {
	case solver.RelPrecRes:
		return floats.MaxDenominator(math.Sqrt(math.Abs(precRes0)), smallEpsilon)
	case solver.ModRelRes:
		return floats.MaxDenominator(x0.Norm2(), smallEpsilon)
	default: // RelRes
		return floats.MaxDenominator(r0.Norm2(), smallEpsilon)
	}
}

// relResNow computes the running relative residual for display/checks
// given the current explicit residual r, solution x and the
// initialization-time denominator d.
func relResNow(stopType solver.StopType, r, x *spmat.Vector, precResNow, d float64) float64 {
	switch stopType {
	case solver.RelPrecRes:
		return math.Sqrt(math.Abs(precResNow)) / d
	case solver.ModRelRes:
		return r.Norm2() / d
	default:
		return r.Norm2() / d
	}
}

// checkSolStag reports whether the solution's infinity norm has collapsed
// to epsSol or below; drivers call it only while the residual has not
// converged and return ErrSolverSolStag when it reports true.
func checkSolStag(x *spmat.Vector, epsSol float64) bool {
	return x.NormInf() <= epsSol
}

func logTermination(p solver.ITSParam, iter int, relres float64, err error) {
	if p.PrintLevel == solver.PrintNone || p.Logger == nil {
		return
	}
	reason := "converged"
	if err != nil {
		reason = err.Error()
	}
	p.Logger.Info("krylov: terminated", "iter", iter, "relres", relres, "reason", reason)
}
