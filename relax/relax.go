// Package relax implements the smoother family shared by AMG and the
// preconditioner layer: Jacobi, Gauss-Seidel (four orderings), SOR,
// ILU(k) triangular solve, a Chebyshev-style polynomial smoother and
// block Schwarz. Every smoother operates in place on (A, b, u) and
// performs a bounded number of sweeps; smoothers that need scratch
// vectors (Jacobi, the polynomial smoother) allocate them per call.
package relax

import (
	"log/slog"
	"math"

	"github.com/jbw-sparse/amgsolve/internal/parallel"
	"github.com/jbw-sparse/amgsolve/spmat"
)

// epsTiny is the diagonal-substitution floor: per spec.md section 4.3 a
// zero or sub-epsilon diagonal is a warning, not a fatal error, and the
// diagonal is replaced by epsTiny to avoid propagating NaN.
const epsTiny = 1e-30

// Order selects the sweep direction for Gauss-Seidel/SOR.
type Order int

const (
	Ascending Order = iota
	Descending
	UserOrder
	CFOrder
)

// Workspace holds a scratch residual vector (b - A*u) sized for an
// n-unknown system. No smoother in this package takes a Workspace; each
// allocates its own scratch.
type Workspace struct {
	r *spmat.Vector
}

// NewWorkspace allocates a Workspace sized for an n-unknown system.
func NewWorkspace(n int) *Workspace {
	return &Workspace{r: spmat.NewVector(n, nil)}
}

func warnSingularDiag(logger *slog.Logger, row int, value float64) {
	if logger == nil {
		return
	}
	logger.Warn("relax: near-zero diagonal substituted", "row", row, "value", value)
}

func safeDiag(logger *slog.Logger, row int, d float64) float64 {
	if math.Abs(d) < epsTiny {
		warnSingularDiag(logger, row, d)
		if d < 0 {
			return -epsTiny
		}
		return epsTiny
	}
	return d
}

// Jacobi performs nsweeps of u <- u + omega*D^-1*(b - A*u). It is
// order-independent: every row's update reads only the previous u and
// writes only its own du[i], so it runs chunk-parallel across workers
// goroutines (spec.md section 5). workers <= 1 runs sequentially.
func Jacobi(a *spmat.CSR, b, u *spmat.Vector, omega float64, nsweeps, workers int, logger *slog.Logger) {
	n, _ := a.Dims()
	diag := spmat.NewVector(n, nil)
	a.DiagTo(diag)
	r := spmat.NewVector(n, nil)
	du := make([]float64, n)
	for sweep := 0; sweep < nsweeps; sweep++ {
		a.MulVecToWorkers(r, u, workers)
		parallel.For(workers, n, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				d := safeDiag(logger, i, diag.Data[i])
				du[i] = omega * (b.Data[i] - r.Data[i]) / d
			}
		})
		parallel.For(workers, n, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				u.Data[i] += du[i]
			}
		})
	}
}

// GaussSeidel performs nsweeps of the chosen ordering. UserOrder and
// CFOrder read the visiting sequence from perm (length n); Ascending and
// Descending ignore perm. For CFOrder, the class swept first is whichever
// perm lists first: perm must already hold the C indices followed by the
// F indices (or vice versa); this function does not build that ordering.
func GaussSeidel(a *spmat.CSR, b, u *spmat.Vector, order Order, perm []int, logger *slog.Logger, nsweeps int) {
	n, _ := a.Dims()
	var seq []int
	switch order {
	case Ascending:
		seq = identitySeq(n)
	case Descending:
		seq = identitySeq(n)
		reverse(seq)
	case UserOrder, CFOrder:
		if len(perm) != n {
			panic(spmat.ErrShape)
		}
		seq = perm
	default:
		panic(spmat.ErrShape)
	}

	for sweep := 0; sweep < nsweeps; sweep++ {
		sweepOnce(a, b, u, seq, 1.0, logger)
	}
}

// SOR performs nsweeps of Gauss-Seidel mixed with the previous iterate:
// u <- (1-omega)*u_old + omega*u_new.
func SOR(a *spmat.CSR, b, u *spmat.Vector, order Order, perm []int, omega float64, logger *slog.Logger, nsweeps int) {
	n, _ := a.Dims()
	var seq []int
	switch order {
	case Ascending:
		seq = identitySeq(n)
	case Descending:
		seq = identitySeq(n)
		reverse(seq)
	case UserOrder, CFOrder:
		if len(perm) != n {
			panic(spmat.ErrShape)
		}
		seq = perm
	default:
		panic(spmat.ErrShape)
	}
	for sweep := 0; sweep < nsweeps; sweep++ {
		sweepOnce(a, b, u, seq, omega, logger)
	}
}

// sweepOnce performs one in-place sweep over seq, computing
// u_i <- (1-omega)*u_i + omega*(b_i - sum_{j!=i} a_ij*u_j)/a_ii.
// omega == 1 reduces exactly to Gauss-Seidel.
func sweepOnce(a *spmat.CSR, b, u *spmat.Vector, seq []int, omega float64, logger *slog.Logger) {
	for _, i := range seq {
		cols, vals := a.RawRowView(i)
		var sum float64
		var aii float64
		for k, j := range cols {
			if j == i {
				aii = vals[k]
				continue
			}
			sum += vals[k] * u.Data[j]
		}
		d := safeDiag(logger, i, aii)
		gsVal := (b.Data[i] - sum) / d
		u.Data[i] = (1-omega)*u.Data[i] + omega*gsVal
	}
}

func identitySeq(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
