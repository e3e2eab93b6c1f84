package coarsen

import (
	"math"

	"github.com/jbw-sparse/amgsolve/spmat"
)

// CRConfig mirrors solver.CRParam without importing the solver package
// (coarsen sits below solver in the dependency graph); callers translate
// solver.CRParam into this struct.
type CRConfig struct {
	ThetaG         float64
	Nu             int
	FirstStageFrac float64
	LaterStageFrac float64
}

// CompatibleRelaxation implements the CR coarsening variant of spec.md
// section 4.4: run Nu Gauss-Seidel sweeps on the F-subsystem (C-values
// held at zero), measure the residual reduction rho, and while rho stays
// above ThetaG, grow the candidate C-set by a maximal independent set
// among high-residual F-nodes.
func CompatibleRelaxation(a *spmat.CSR, cfg CRConfig) []Mark {
	n, _ := a.Dims()
	marks := make([]Mark, n)
	for i := range marks {
		marks[i] = Fine
	}

	stage := 0
	for {
		rho, resid := crRelaxRound(a, marks, cfg.Nu)
		if rho <= cfg.ThetaG {
			break
		}
		frac := cfg.LaterStageFrac
		if stage == 0 {
			frac = cfg.FirstStageFrac
		}
		maxResid := 0.0
		for i, m := range marks {
			if m == Fine {
				if r := math.Abs(resid[i]); r > maxResid {
					maxResid = r
				}
			}
		}
		threshold := frac * maxResid
		candidates := make([]int, 0)
		for i, m := range marks {
			if m == Fine && math.Abs(resid[i]) >= threshold {
				candidates = append(candidates, i)
			}
		}
		mis := maximalIndependentSet(a, candidates)
		if len(mis) == 0 {
			break
		}
		for _, i := range mis {
			marks[i] = Coarse
		}
		stage++
		if stage > n {
			break // pathological non-convergence guard
		}
	}
	return marks
}

// crRelaxRound runs nu zero-forced Gauss-Seidel sweeps on the F-subsystem
// (C rows held at their zero Dirichlet value) starting from the constant
// perturbation 1 on every F row, and returns the residual-norm reduction ratio and
// the final per-row residual.
func crRelaxRound(a *spmat.CSR, marks []Mark, nu int) (rho float64, resid []float64) {
	n, _ := a.Dims()
	u := spmat.NewVector(n, nil)
	for i := 0; i < n; i++ {
		if marks[i] == Fine {
			u.Data[i] = 1 // fixed non-zero seed so relaxation has something to damp
		}
	}
	b := spmat.NewVector(n, nil)

	r0 := residualNormF(a, b, u, marks)
	rLast := r0
	for s := 0; s < nu; s++ {
		gsSweepFSubsystem(a, b, u, marks)
		rLast = residualNormF(a, b, u, marks)
		if r0 == 0 {
			break
		}
	}
	if r0 == 0 {
		rho = 0
	} else {
		rho = rLast / r0
	}
	resid = make([]float64, n)
	full := spmat.NewVector(n, nil)
	a.MulVecTo(full, u)
	for i := 0; i < n; i++ {
		if marks[i] == Fine {
			resid[i] = b.Data[i] - full.Data[i]
		}
	}
	return rho, resid
}

func gsSweepFSubsystem(a *spmat.CSR, b, u *spmat.Vector, marks []Mark) {
	n, _ := a.Dims()
	for i := 0; i < n; i++ {
		if marks[i] != Fine {
			u.Data[i] = 0
			continue
		}
		cols, vals := a.RawRowView(i)
		var sum, aii float64
		for k, j := range cols {
			if j == i {
				aii = vals[k]
				continue
			}
			sum += vals[k] * u.Data[j]
		}
		if math.Abs(aii) < 1e-300 {
			continue
		}
		u.Data[i] = (b.Data[i] - sum) / aii
	}
}

func residualNormF(a *spmat.CSR, b, u *spmat.Vector, marks []Mark) float64 {
	n, _ := a.Dims()
	full := spmat.NewVector(n, nil)
	a.MulVecTo(full, u)
	var s float64
	for i := 0; i < n; i++ {
		if marks[i] == Fine {
			d := b.Data[i] - full.Data[i]
			s += d * d
		}
	}
	return math.Sqrt(s)
}

// maximalIndependentSet greedily selects a maximal independent set among
// candidates with respect to the matrix's adjacency (two candidates
// conflict if they are directly coupled by a non-zero entry).
func maximalIndependentSet(a *spmat.CSR, candidates []int) []int {
	excluded := make(map[int]bool)
	var mis []int
	for _, i := range candidates {
		if excluded[i] {
			continue
		}
		mis = append(mis, i)
		cols, _ := a.RawRowView(i)
		for _, j := range cols {
			if j != i {
				excluded[j] = true
			}
		}
	}
	return mis
}
