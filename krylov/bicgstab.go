package krylov

import (
	"math"

	"github.com/jbw-sparse/amgsolve/solver"
	"github.com/jbw-sparse/amgsolve/spmat"
)

// BiCGStab runs the (unpreconditioned or right-preconditioned) stabilized
// biconjugate gradient method. It carries a "safe net": the best iterate
// seen by true relative residual is tracked throughout, and restored into
// x if the method terminates by stagnation or breakdown without ever
// having converged, per spec.md section 4.7's RESTORE_BESTSOL behaviour.
// The canonical relative-residual formula used for bookkeeping here is
// ||r|| / max(eps, ||r0||) uniformly, regardless of matrix storage format
// (spec.md open question 2).
func BiCGStab(a Operator, b, x *spmat.Vector, m Preconditioner, p solver.ITSParam) (int, error) {
	st := newState(p)
	n, _ := a.Dims()

	r := spmat.NewVector(n, nil)
	a.MulVecTo(r, x)
	r.SubFrom(b, r)

	rHat := r.Clone() // shadow residual, reset only by a false-convergence restart
	d := floatsMax(r.Norm2(), smallEpsilon)

	if r.Norm2()/d <= p.Tol {
		return 0, nil
	}

	rho, alpha, omega := 1.0, 1.0, 1.0
	v := spmat.NewVector(n, nil)
	pvec := spmat.NewVector(n, nil)

	best := x.Clone()
	bestRelRes := r.Norm2() / d

	s := spmat.NewVector(n, nil)
	t := spmat.NewVector(n, nil)
	zp := spmat.NewVector(n, nil)
	zs := spmat.NewVector(n, nil)
	av := spmat.NewVector(n, nil)

	prevXNorm := x.Norm2()

	for iter := 1; iter <= p.MaxIt; iter++ {
		rhoNew := rHat.Dot(r)
		if math.Abs(rhoNew) < st.p.BreakdownTol {
			x.CopyFrom(best)
			return iter - 1, solver.ErrSolverMisc
		}
		if iter == 1 {
			pvec.CopyFrom(r)
		} else {
			beta := (rhoNew / rho) * (alpha / omega)
			for i := range pvec.Data {
				pvec.Data[i] = r.Data[i] + beta*(pvec.Data[i]-omega*v.Data[i])
			}
		}
		rho = rhoNew

		if err := applyPrecond(m, pvec, zp); err != nil {
			return iter, err
		}
		a.MulVecTo(v, zp)

		denomAlpha := rHat.Dot(v)
		if math.Abs(denomAlpha) < st.p.BreakdownTol {
			x.CopyFrom(best)
			return iter - 1, solver.ErrSolverMisc
		}
		alpha = rho / denomAlpha

		for i := range s.Data {
			s.Data[i] = r.Data[i] - alpha*v.Data[i]
		}
		if s.Norm2()/d <= p.Tol {
			x.AXPY(alpha, zp)
			logTermination(p, iter, s.Norm2()/d, nil)
			return iter, nil
		}

		if err := applyPrecond(m, s, zs); err != nil {
			return iter, err
		}
		a.MulVecTo(t, zs)

		tt := t.Dot(t)
		if tt < st.p.BreakdownTol {
			x.CopyFrom(best)
			return iter - 1, solver.ErrSolverMisc
		}
		omega = t.Dot(s) / tt

		x.AXPY(alpha, zp)
		x.AXPY(omega, zs)

		if hasNaN(x) {
			x.CopyFrom(best)
			return iter, solver.ErrSolverMisc
		}

		for i := range r.Data {
			r.Data[i] = s.Data[i] - omega*t.Data[i]
		}

		relres := r.Norm2() / d
		logIter(p, iter, relres)
		if relres < bestRelRes {
			bestRelRes = relres
			best.CopyFrom(x)
		}
		if relres <= p.Tol {
			if verifyTrueResidual(a, b, x, p, d) {
				logTermination(p, iter, relres, nil)
				return iter, nil
			}
			st.restart++
			if st.restart > st.p.MaxRestart {
				x.CopyFrom(best)
				return iter, solver.ErrSolverStag
			}
			// Restart from the explicit residual of the current iterate.
			a.MulVecTo(r, x)
			r.SubFrom(b, r)
			rHat.CopyFrom(r)
			rho, alpha, omega = 1, 1, 1
			pvec.Zero()
			v.Zero()
		}

		if checkSolStag(x, st.p.EpsSol) {
			x.CopyFrom(best)
			return iter, solver.ErrSolverSolStag
		}

		curXNorm := x.Norm2()
		if curXNorm > 0 && math.Abs(curXNorm-prevXNorm)/curXNorm < st.p.StagRatio {
			st.stagCnt++
			if st.stagCnt > st.p.MaxStag {
				x.CopyFrom(best)
				return iter, solver.ErrSolverStag
			}
		} else {
			st.stagCnt = 0
		}
		prevXNorm = curXNorm

		if math.Abs(omega) < st.p.BreakdownTol {
			x.CopyFrom(best)
			return iter, solver.ErrSolverMisc
		}
	}
	x.CopyFrom(best)
	return p.MaxIt, solver.ErrSolverMaxit
}

func floatsMax(v, eps float64) float64 {
	if v > eps {
		return v
	}
	return eps
}

func hasNaN(v *spmat.Vector) bool {
	for _, val := range v.Data {
		if math.IsNaN(val) {
			return true
		}
	}
	return false
}
