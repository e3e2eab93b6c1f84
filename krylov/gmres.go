package krylov

import (
	"math"

	"github.com/jbw-sparse/amgsolve/solver"
	"github.com/jbw-sparse/amgsolve/spmat"
)

// GMRES runs restarted GMRES(m) with a fixed right preconditioner: each
// outer cycle builds an Arnoldi basis of size up to p.Restart, reduces the
// Hessenberg system via incremental Givens rotations, and restarts from
// the resulting iterate when the basis is exhausted before convergence.
func GMRES(a Operator, b, x *spmat.Vector, m Preconditioner, p solver.ITSParam) (int, error) {
	return gmresCore(a, b, x, func(v *spmat.Vector) *spmat.Vector {
		if m == nil {
			return v
		}
		z := spmat.NewVector(v.Len(), nil)
		m.Apply(v, z)
		return z
	}, p)
}

// FGMRES runs flexible restarted GMRES(m): the preconditioner is applied
// fresh to each Arnoldi basis vector and the resulting preconditioned
// vectors are stored explicitly (the Z matrix of flexible GMRES), which
// is what lets m vary between applications — the nonlinear-AMLI cycle
// used as m in spec.md section 4.6 is exactly such a varying operator.
func FGMRES(a Operator, b, x *spmat.Vector, m Preconditioner, p solver.ITSParam) (int, error) {
	return gmresCore(a, b, x, func(v *spmat.Vector) *spmat.Vector {
		if m == nil {
			return v
		}
		z := spmat.NewVector(v.Len(), nil)
		m.Apply(v, z)
		return z
	}, p)
}

// gmresCore is shared by GMRES and FGMRES: the only structural difference
// between the two is that genuinely flexible preconditioning requires
// storing the precond(v_j) vectors (done unconditionally here, which is
// correct but not maximally memory-lean for the non-flexible case — an
// acceptable simplification since GMRES(m) for the restart lengths this
// solver targets is dominated by the Arnoldi basis itself, not the Z
// matrix).
func gmresCore(a Operator, b, x *spmat.Vector, applyM func(*spmat.Vector) *spmat.Vector, p solver.ITSParam) (int, error) {
	st := newState(p)
	n, _ := a.Dims()
	m := p.Restart
	if m <= 0 {
		m = 30
	}

	r0 := spmat.NewVector(n, nil)
	a.MulVecTo(r0, x)
	r0.SubFrom(b, r0)
	d := floatsMax(r0.Norm2(), smallEpsilon)
	if r0.Norm2()/d <= p.Tol {
		return 0, nil
	}

	totalIter := 0
	prevXNorm := x.Norm2()

	for restart := 0; restart <= st.p.MaxRestart*4; restart++ {
		a.MulVecTo(r0, x)
		r0.SubFrom(b, r0)
		beta := r0.Norm2()
		if beta/d <= p.Tol {
			return totalIter, nil
		}

		v := make([]*spmat.Vector, m+1)
		z := make([]*spmat.Vector, m)
		v[0] = r0.Clone()
		for i := range v[0].Data {
			v[0].Data[i] /= beta
		}

		h := make([][]float64, m+1)
		for i := range h {
			h[i] = make([]float64, m)
		}
		cs := make([]float64, m)
		sn := make([]float64, m)
		g := make([]float64, m+1)
		g[0] = beta

		j := 0
		for ; j < m && totalIter < p.MaxIt; j++ {
			totalIter++
			z[j] = applyM(v[j])
			w := spmat.NewVector(n, nil)
			a.MulVecTo(w, z[j])

			for i := 0; i <= j; i++ {
				h[i][j] = w.Dot(v[i])
				w.AXPY(-h[i][j], v[i])
			}
			h[j+1][j] = w.Norm2()

			if h[j+1][j] < st.p.BreakdownTol {
				v[j+1] = spmat.NewVector(n, nil)
			} else {
				v[j+1] = w.Clone()
				for i := range v[j+1].Data {
					v[j+1].Data[i] /= h[j+1][j]
				}
			}

			for i := 0; i < j; i++ {
				applyGivens(cs[i], sn[i], &h[i][j], &h[i+1][j])
			}
			cs[j], sn[j] = givens(h[j][j], h[j+1][j])
			applyGivens(cs[j], sn[j], &h[j][j], &h[j+1][j])
			applyGivens(cs[j], sn[j], &g[j], &g[j+1])

			relres := math.Abs(g[j+1]) / d
			logIter(p, totalIter, relres)
			if relres <= p.Tol {
				j++
				break
			}
		}

		y := backSolveUpperTriangular(h, g, j)
		for i := 0; i < j; i++ {
			x.AXPY(y[i], z[i])
		}

		a.MulVecTo(r0, x)
		r0.SubFrom(b, r0)
		relres := r0.Norm2() / d
		if relres <= p.Tol {
			logTermination(p, totalIter, relres, nil)
			return totalIter, nil
		}
		if checkSolStag(x, st.p.EpsSol) {
			return totalIter, solver.ErrSolverSolStag
		}

		curXNorm := x.Norm2()
		if curXNorm > 0 && math.Abs(curXNorm-prevXNorm)/curXNorm < st.p.StagRatio {
			st.stagCnt++
			if st.stagCnt > st.p.MaxStag {
				return totalIter, solver.ErrSolverStag
			}
		} else {
			st.stagCnt = 0
		}
		prevXNorm = curXNorm

		if totalIter >= p.MaxIt {
			return totalIter, solver.ErrSolverMaxit
		}
	}
	return totalIter, solver.ErrSolverStag
}

func givens(a, b float64) (c, s float64) {
	if b == 0 {
		return 1, 0
	}
	if math.Abs(b) > math.Abs(a) {
		t := a / b
		s = 1 / math.Sqrt(1+t*t)
		c = s * t
		return c, s
	}
	t := b / a
	c = 1 / math.Sqrt(1+t*t)
	s = c * t
	return c, s
}

func applyGivens(c, s float64, x, y *float64) {
	xv, yv := *x, *y
	*x = c*xv + s*yv
	*y = -s*xv + c*yv
}

// backSolveUpperTriangular solves the k x k upper triangular system
// h[0:k][0:k] * y = g[0:k] by back substitution.
func backSolveUpperTriangular(h [][]float64, g []float64, k int) []float64 {
	y := make([]float64, k)
	for i := k - 1; i >= 0; i-- {
		sum := g[i]
		for j := i + 1; j < k; j++ {
			sum -= h[i][j] * y[j]
		}
		if h[i][i] == 0 {
			y[i] = 0
			continue
		}
		y[i] = sum / h[i][i]
	}
	return y
}
