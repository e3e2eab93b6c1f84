package relax

import (
	"math"

	"github.com/jbw-sparse/amgsolve/internal/parallel"
	"github.com/jbw-sparse/amgsolve/spmat"
)

// PolyParam configures the Chebyshev-style polynomial smoother. Degree
// selects the fixed polynomial degree; if Degree <= 0, it is estimated
// from KappaOverride (or the smin = smax/8 heuristic in EstimateDegree) per spec.md open
// question 3 — documented as a tunable, not a fixed law.
type PolyParam struct {
	Degree        int
	KappaOverride float64 // if > 0, used in place of the smax/smin=8 heuristic
}

// DefaultPolyParam returns a fixed 3rd-degree polynomial smoother; with
// Degree set, EstimateDegree does no estimation.
func DefaultPolyParam() PolyParam {
	return PolyParam{Degree: 3}
}

// EstimateDegree implements the reference's degree heuristic:
// ndeg0 = floor(log(2*(2+theta+1/theta) / (theta-1/theta)^2) / log(theta) + 1)
// with theta = kappa, kappa = smax/smin and smin = smax/8 as a heuristic
// when KappaOverride is not supplied. This is exposed so callers can
// recompute it against a better conditioning estimate; spec.md flags the
// smin=smax/8 assumption as worth tuning rather than trusting blindly.
func EstimateDegree(smax float64, p PolyParam) int {
	if p.Degree > 0 {
		return p.Degree
	}
	kappa := p.KappaOverride
	if kappa <= 0 {
		smin := smax / 8
		if smin <= 0 {
			return 1
		}
		kappa = smax / smin
	}
	theta := kappa
	if theta <= 1 {
		return 1
	}
	num := 2 * (2 + theta + 1/theta)
	den := (theta - 1/theta) * (theta - 1/theta)
	if num <= 0 || den <= 0 {
		return 1
	}
	deg := int(math.Floor(math.Log(num/den)/math.Log(theta))) + 1
	if deg < 1 {
		deg = 1
	}
	return deg
}

// Polynomial applies a fixed-degree Chebyshev-style polynomial in D^-1*A
// to reduce the residual, using mu0 = 1/||D^-1*A||_inf and mu1 = 4*mu0 as
// the three-term recurrence's starting points (spec.md section 4.3). The
// recurrence itself is sequential across degree steps, but each step's
// per-row work (the residual SpMV and the D^-1/next-correction updates)
// is order-independent and runs chunk-parallel across workers goroutines
// (spec.md section 5). workers <= 1 runs sequentially.
func Polynomial(a *spmat.CSR, b, u *spmat.Vector, p PolyParam, workers int) {
	n, _ := a.Dims()
	diag := spmat.NewVector(n, nil)
	a.DiagTo(diag)

	normInf := dInvANormInf(a, diag.Data)
	if normInf <= 0 {
		return
	}
	mu0 := 1 / normInf
	mu1 := 4 * mu0

	degree := EstimateDegree(normInf, p)

	r := spmat.NewVector(n, nil)
	p0 := spmat.NewVector(n, nil) // previous correction
	p1 := spmat.NewVector(n, nil) // current correction
	dInvR := spmat.NewVector(n, nil)

	computeResidual(a, b, u, r, workers)
	applyDInv(dInvR, r, diag.Data, workers)
	p1.ScaleFrom(mu0, dInvR)

	rho0, rho1 := 1.0, 1/(2*mu1/mu0-1)
	for k := 1; k < degree; k++ {
		computeResidual(a, b, addInto(u, p1), r, workers)
		applyDInv(dInvR, r, diag.Data, workers)

		rho2 := 1 / (2*mu1/mu0*rho1 - rho0)
		coefSelf := rho2 * 2 * mu1 / mu0
		coefPrev := rho2 * rho0
		coefRes := rho2 * 2 * mu1

		next := spmat.NewVector(n, nil)
		parallel.For(workers, n, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				next.Data[i] = coefSelf*p1.Data[i] - coefPrev*p0.Data[i] + coefRes*dInvR.Data[i]
			}
		})
		p0, p1 = p1, next
		rho0, rho1 = rho1, rho2
	}
	u.AXPY(1, p1)
}

// addInto returns a temporary vector equal to u + p without mutating u,
// used only to compute an intermediate residual during the recurrence.
func addInto(u, p *spmat.Vector) *spmat.Vector {
	out := spmat.NewVector(len(u.Data), nil)
	for i := range out.Data {
		out.Data[i] = u.Data[i] + p.Data[i]
	}
	return out
}

func computeResidual(a *spmat.CSR, b, u, r *spmat.Vector, workers int) {
	a.MulVecToWorkers(r, u, workers)
	r.SubFrom(b, r)
}

func applyDInv(out, r *spmat.Vector, diag []float64, workers int) {
	parallel.For(workers, len(diag), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			d := diag[i]
			if math.Abs(d) < epsTiny {
				d = epsTiny
			}
			out.Data[i] = r.Data[i] / d
		}
	})
}

// dInvANormInf estimates ||D^-1*A||_inf by the max absolute row sum of
// D^-1*A.
func dInvANormInf(a *spmat.CSR, diag []float64) float64 {
	n, _ := a.Dims()
	var m float64
	for i := 0; i < n; i++ {
		cols, vals := a.RawRowView(i)
		d := diag[i]
		if math.Abs(d) < epsTiny {
			continue
		}
		var s float64
		for k := range cols {
			s += math.Abs(vals[k] / d)
		}
		if s > m {
			m = s
		}
	}
	return m
}
