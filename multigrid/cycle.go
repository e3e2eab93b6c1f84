package multigrid

import (
	"github.com/jbw-sparse/amgsolve/relax"
	"github.com/jbw-sparse/amgsolve/solver"
	"github.com/jbw-sparse/amgsolve/spmat"
)

// Cycle runs one V/W/F/nonlinear-AMLI cycle starting at level, correcting
// x in place against right-hand side b. Concurrent Cycle calls on the
// same Hierarchy are not allowed (spec.md section 5): the F-cycle
// temporarily rewrites h.Param.Cycle during the call. The residual and
// coarse-grid vectors are allocated per call; the Level X, B, W vectors
// are not used here.
func (h *Hierarchy) Cycle(level int, x, b *spmat.Vector) {
	if level == len(h.Levels)-1 {
		coarsestSolve(h.Levels[level].A, b, x)
		return
	}

	lvl := &h.Levels[level]
	smoothLevel(lvl, b, x, h.Param.PreSweeps, h.Param)

	// Restrict residual: b_{l+1} <- R_l*(b_l - A_l*x_l).
	r := spmat.NewVector(len(b.Data), nil)
	lvl.A.MulVecTo(r, x)
	r.SubFrom(b, r)

	_, nCoarse := lvl.P.Dims()
	bCoarse := spmat.NewVector(nCoarse, nil)
	lvl.R.MulVecTo(bCoarse, r)
	xCoarse := spmat.NewVector(nCoarse, nil)

	switch h.Param.Cycle {
	case solver.WCycle:
		h.Cycle(level+1, xCoarse, bCoarse)
		h.Cycle(level+1, xCoarse, bCoarse)
	case solver.FCycle:
		h.cycleF(level+1, xCoarse, bCoarse)
		saved := h.Param.Cycle
		h.Param.Cycle = solver.VCycle
		h.Cycle(level+1, xCoarse, bCoarse)
		h.Param.Cycle = saved
	case solver.AMLICycle:
		h.cycleAMLI(level, xCoarse, bCoarse)
	default: // VCycle
		h.Cycle(level+1, xCoarse, bCoarse)
	}

	if h.Param.CoarseScaling {
		applyCoarseScaling(&h.Levels[level+1], xCoarse, bCoarse)
	}

	// Prolong and correct: x_l <- x_l + P_l*x_{l+1}.
	lvl.P.MulVecAddTo(x, 1, xCoarse)

	smoothLevel(lvl, b, x, h.Param.PostSweeps, h.Param)
}

// cycleF implements the F-cycle's "deeper" recursive branch: at level l,
// recurse once with F (one level deeper) and once with V, per spec.md
// section 4.6.
func (h *Hierarchy) cycleF(level int, x, b *spmat.Vector) {
	if level == len(h.Levels)-1 {
		coarsestSolve(h.Levels[level].A, b, x)
		return
	}
	saved := h.Param.Cycle
	h.Param.Cycle = solver.FCycle
	h.Cycle(level, x, b)
	h.Param.Cycle = saved
}

// cycleAMLI runs the nonlinear-AMLI correction at level+1: after the
// plain recursive cycle call, it runs AMLIDegree iterations of a
// flexible Krylov method on level+1, preconditioned by a (nonlinear)
// cycle that starts at level+1 and recurses through level+2, per spec.md
// section 4.6.
func (h *Hierarchy) cycleAMLI(level int, xCoarse, bCoarse *spmat.Vector) {
	next := level + 1
	h.Cycle(next, xCoarse, bCoarse)

	if next+1 >= len(h.Levels) || h.AMLISolve == nil {
		return
	}
	inner := h.Levels[next].asInnerApplier(h)
	_ = h.AMLISolve(h.Levels[next].A, bCoarse, xCoarse, inner, h.Param.AMLIDegree)
}

// asInnerApplier wraps "run one cycle from this level down" as an
// Applier, the nonlinear preconditioner the AMLI inner Krylov solve uses.
func (l *Level) asInnerApplier(h *Hierarchy) Applier {
	levelIdx := -1
	for i := range h.Levels {
		if &h.Levels[i] == l {
			levelIdx = i
			break
		}
	}
	return Applier(applierFunc(func(r, z *spmat.Vector) error {
		z.Zero()
		h.Cycle(levelIdx, z, r)
		return nil
	}))
}

type applierFunc func(r, z *spmat.Vector) error

func (f applierFunc) Apply(r, z *spmat.Vector) error { return f(r, z) }

// applyCoarseScaling applies the optional alpha = <e,b>/<e,Ae> damping of
// the coarse correction e = xCoarse before prolongation, per spec.md
// section 4.6.
func applyCoarseScaling(coarseLvl *Level, e, b *spmat.Vector) {
	ae := spmat.NewVector(len(e.Data), nil)
	coarseLvl.A.MulVecTo(ae, e)
	num := e.Dot(b)
	den := e.Dot(ae)
	if den == 0 {
		return
	}
	alpha := num / den
	for i := range e.Data {
		e.Data[i] *= alpha
	}
}

func smoothLevel(lvl *Level, b, x *spmat.Vector, sweeps int, p solver.AMGParam) {
	if sweeps <= 0 {
		return
	}
	workers := p.Parallelism.Workers()
	switch p.Smoother {
	case solver.SmootherJacobi:
		relax.Jacobi(lvl.A, b, x, p.Relaxation, sweeps, workers, nil)
	case solver.SmootherSOR:
		relax.SOR(lvl.A, b, x, relax.Ascending, nil, p.Relaxation, nil, sweeps)
	case solver.SmootherILU:
		if lvl.ILU == nil {
			relax.GaussSeidel(lvl.A, b, x, relax.Ascending, nil, nil, sweeps)
			return
		}
		iluSmooth(lvl, b, x, sweeps)
	case solver.SmootherPolynomial:
		for s := 0; s < sweeps; s++ {
			relax.Polynomial(lvl.A, b, x, lvl.Poly, workers)
		}
	case solver.SmootherSchwarz:
		relax.Schwarz(lvl.A, b, x, lvl.Schwarz, sweeps)
	default: // SmootherGS
		relax.GaussSeidel(lvl.A, b, x, relax.Ascending, nil, nil, sweeps)
	}
}

// iluSmooth applies sweeps residual-correction steps using the level's
// precomputed ILU factor: x <- x + (LU)^-1*(b - A*x).
func iluSmooth(lvl *Level, b, x *spmat.Vector, sweeps int) {
	n, _ := lvl.A.Dims()
	r := spmat.NewVector(n, nil)
	z := spmat.NewVector(n, nil)
	for s := 0; s < sweeps; s++ {
		lvl.A.MulVecTo(r, x)
		r.SubFrom(b, r)
		lvl.ILU.Solve(r, z)
		x.AXPY(1, z)
	}
}
