package krylov

import (
	"math"

	"github.com/jbw-sparse/amgsolve/solver"
	"github.com/jbw-sparse/amgsolve/spmat"
)

// GCG runs the generalized conjugate gradient method: like PCG, but the
// new search direction is fully orthogonalized against every retained
// previous direction rather than just the last one (so that its image
// A*p is orthogonal to each retained A*p, the residual-minimizing form,
// with step alpha = <r,Ap>/<Ap,Ap>), which keeps it well-defined for nonsymmetric preconditioners
// (e.g. a nonlinear-AMLI cycle) where plain PCG's three-term recurrence
// is not guaranteed to converge. The direction set is truncated to
// p.Restart directions, matching the GMRES(m)-style bound on the
// accompanying memory cost. Per spec.md open question 1, this is the
// least exercised of the drivers and any new evidence about its
// convergence behaviour on a wider test set should adjust the defaults.
func GCG(a Operator, b, x *spmat.Vector, m Preconditioner, p solver.ITSParam) (int, error) {
	st := newState(p)
	n, _ := a.Dims()
	restart := p.Restart
	if restart <= 0 {
		restart = 20
	}

	r := spmat.NewVector(n, nil)
	a.MulVecTo(r, x)
	r.SubFrom(b, r)
	d := floatsMax(r.Norm2(), smallEpsilon)
	if r.Norm2()/d <= p.Tol {
		return 0, nil
	}

	type dir struct {
		p, ap *spmat.Vector
		apNorm2 float64
	}
	var dirs []dir

	z := spmat.NewVector(n, nil)
	prevXNorm := x.Norm2()

	for iter := 1; iter <= p.MaxIt; iter++ {
		if err := applyPrecond(m, r, z); err != nil {
			return iter - 1, err
		}

		newDir := z.Clone()
		ap := spmat.NewVector(n, nil)
		a.MulVecTo(ap, newDir)

		for _, old := range dirs {
			if old.apNorm2 < st.p.BreakdownTol {
				continue
			}
			beta := ap.Dot(old.ap) / old.apNorm2
			newDir.AXPY(-beta, old.p)
			ap.AXPY(-beta, old.ap)
		}

		apNorm2 := ap.Dot(ap)
		if apNorm2 < st.p.BreakdownTol {
			return iter - 1, solver.ErrSolverMisc
		}

		alpha := r.Dot(ap) / apNorm2
		x.AXPY(alpha, newDir)
		r.AXPY(-alpha, ap)

		dirs = append(dirs, dir{p: newDir, ap: ap, apNorm2: apNorm2})
		if len(dirs) > restart {
			dirs = dirs[1:]
		}

		relres := r.Norm2() / d
		logIter(p, iter, relres)
		if relres <= p.Tol {
			if verifyTrueResidual(a, b, x, p, d) {
				logTermination(p, iter, relres, nil)
				return iter, nil
			}
			st.restart++
			if st.restart > st.p.MaxRestart {
				return iter, solver.ErrSolverStag
			}
			// Restart from the explicit residual with an empty direction set.
			a.MulVecTo(r, x)
			r.SubFrom(b, r)
			dirs = nil
		}

		if checkSolStag(x, st.p.EpsSol) {
			return iter, solver.ErrSolverSolStag
		}

		curXNorm := x.Norm2()
		if curXNorm > 0 && math.Abs(curXNorm-prevXNorm)/curXNorm < st.p.StagRatio {
			st.stagCnt++
			if st.stagCnt > st.p.MaxStag {
				return iter, solver.ErrSolverStag
			}
		} else {
			st.stagCnt = 0
		}
		prevXNorm = curXNorm
	}
	return p.MaxIt, solver.ErrSolverMaxit
}
