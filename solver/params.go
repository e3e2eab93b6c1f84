// Package solver defines the parameter bundles and status-code taxonomy
// shared by every driver and the AMG setup/cycle routines. The top-level
// Solve entry point that wires a Krylov driver to an optional
// preconditioner lives in the root package amgsolve.
package solver

import "log/slog"

// SolverKind selects the Krylov driver used by Solve.
type SolverKind int

const (
	CG SolverKind = iota
	BiCGStab
	GMRES
	FGMRES
	GCG
)

func (k SolverKind) String() string {
	switch k {
	case CG:
		return "CG"
	case BiCGStab:
		return "BiCGStab"
	case GMRES:
		return "GMRES"
	case FGMRES:
		return "FGMRES"
	case GCG:
		return "GCG"
	default:
		return "unknown"
	}
}

// Parallelism selects the runtime concurrency behavior of the
// order-independent kernels (Jacobi, the polynomial smoother, SpMV), per
// spec.md section 5. It is a runtime value, not a build tag: the reference
// implementation's FASP_USE_OPENMP compile switch is explicitly retired in
// favor of this field being checked at call time.
type Parallelism struct {
	workers int
}

// Sequential runs the order-independent kernels on the calling goroutine.
// It is the default.
func Sequential() Parallelism { return Parallelism{workers: 1} }

// Parallel runs the order-independent kernels across workers goroutines,
// chunking each kernel's range into contiguous, non-overlapping pieces.
// workers <= 1 behaves identically to Sequential.
func Parallel(workers int) Parallelism { return Parallelism{workers: workers} }

// Workers returns the configured goroutine count, floored at 1.
func (p Parallelism) Workers() int {
	if p.workers < 1 {
		return 1
	}
	return p.workers
}

// StopType selects the denominator used to compute a relative residual,
// per spec.md section 4.7.
type StopType int

const (
	// RelRes uses ||r|| / max(eps, ||r0||).
	RelRes StopType = iota
	// RelPrecRes uses sqrt(|<r,Mr>|) / max(eps, sqrt(|<r0,Mr0>|)).
	RelPrecRes
	// ModRelRes uses ||r|| / max(eps, ||x||).
	ModRelRes
)

// PrintLevel controls how much human-readable diagnostic output a driver
// emits via its logger.
type PrintLevel int

const (
	PrintNone PrintLevel = iota
	PrintSummary
	PrintEveryIter
)

// ITSParam bundles the parameters common to every Krylov driver.
type ITSParam struct {
	Kind       SolverKind
	StopType   StopType
	MaxIt      int
	Tol        float64
	Restart    int // GMRES/FGMRES restart length ("m")
	PrintLevel PrintLevel
	Logger     *slog.Logger

	// MaxStag bounds consecutive stagnation restarts before ErrSolverStag.
	MaxStag int
	// StagRatio is the ||dx||/||x|| threshold below which a step counts
	// as stagnant.
	StagRatio float64
	// MaxRestart bounds false-convergence recompute-and-restart cycles.
	MaxRestart int
	// EpsSol is the ||x||_inf floor below which the solution is treated
	// as essentially zero (ErrSolverSolStag).
	EpsSol float64
	// BreakdownTol is the divide-by-small guard threshold.
	BreakdownTol float64
	// Parallelism selects sequential or chunk-parallel SpMV (spec.md
	// section 5). Zero value is Sequential.
	Parallelism Parallelism
}

// DefaultITSParam returns the spec's default Krylov parameters.
func DefaultITSParam() ITSParam {
	return ITSParam{
		Kind:         CG,
		StopType:     RelRes,
		MaxIt:        500,
		Tol:          1e-8,
		Restart:      30,
		PrintLevel:   PrintNone,
		Logger:       slog.Default(),
		MaxStag:      20,
		StagRatio:    1e-4,
		MaxRestart:   20,
		EpsSol:       1e-20,
		BreakdownTol: 1e-30,
		Parallelism:  Sequential(),
	}
}

// CycleKind selects the AMG cycle shape.
type CycleKind int

const (
	VCycle CycleKind = iota
	WCycle
	FCycle
	AMLICycle
)

// CoarseningKind selects the coarsening algorithm.
type CoarseningKind int

const (
	ClassicalRS CoarseningKind = iota
	CompatibleRelaxation
)

// SmootherKind selects the per-level relaxation method.
type SmootherKind int

const (
	SmootherJacobi SmootherKind = iota
	SmootherGS
	SmootherSOR
	SmootherILU
	SmootherPolynomial
	SmootherSchwarz
)

// AMGParam bundles the parameters controlling hierarchy setup and cycling.
type AMGParam struct {
	Cycle           CycleKind
	Coarsening      CoarseningKind
	StrongThreshold float64
	MaxRowSum       float64
	TruncationTol   float64
	Smoother        SmootherKind
	PreSweeps       int
	PostSweeps      int
	Relaxation      float64 // omega for Jacobi/SOR
	MaxLevels       int
	CoarseCutoff    int
	// AMLIDegree is k, the number of flexible-Krylov iterations run at
	// each level when Cycle == AMLICycle.
	AMLIDegree int
	// CoarseScaling enables the optional alpha = <e,b>/<e,Ae> damping of
	// the coarse-grid correction before prolongation.
	CoarseScaling bool
	// CRParam configures compatible-relaxation coarsening when
	// Coarsening == CompatibleRelaxation.
	CR CRParam
	// Parallelism selects sequential or chunk-parallel Jacobi/polynomial
	// smoothing (spec.md section 5). Zero value is Sequential.
	Parallelism Parallelism
}

// CRParam holds the compatible-relaxation coarsening tunables (spec.md
// open question 4): these were hardcoded constants in the reference
// implementation and are exposed here as configuration with matching
// defaults.
type CRParam struct {
	ThetaG          float64 // stop threshold on residual-reduction rho
	Nu              int     // number of Gauss-Seidel sweeps per round
	FirstStageFrac  float64 // candidate threshold fraction, first stage (0.3^nu)
	LaterStageFrac  float64 // candidate threshold fraction, later stages (0.5)
}

// DefaultAMGParam returns the spec's default AMG parameters.
func DefaultAMGParam() AMGParam {
	return AMGParam{
		Cycle:           VCycle,
		Coarsening:      ClassicalRS,
		StrongThreshold: 0.25,
		MaxRowSum:       0.9,
		TruncationTol:   0.2,
		Smoother:        SmootherGS,
		PreSweeps:       1,
		PostSweeps:      1,
		Relaxation:      1.0,
		MaxLevels:       25,
		CoarseCutoff:    50,
		AMLIDegree:      2,
		CoarseScaling:   false,
		CR: CRParam{
			ThetaG:         0.8,
			Nu:             3,
			FirstStageFrac: 0.027, // 0.3^3
			LaterStageFrac: 0.5,
		},
		Parallelism: Sequential(),
	}
}

// ILUParam bundles level-of-fill ILU factorization parameters.
type ILUParam struct {
	LevelOfFill int
	DropTol     float64
	Relax       float64
	PermTol     float64
}

// DefaultILUParam returns conservative ILU(0) defaults.
func DefaultILUParam() ILUParam {
	return ILUParam{LevelOfFill: 0, DropTol: 0, Relax: 0, PermTol: 0.01}
}
