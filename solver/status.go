package solver

import "errors"

// Status is the return-code taxonomy of spec.md section 6. Drivers return
// (iterations, error): a nil error means SUCCESS and iterations holds the
// iteration count; a non-nil error is always one of the sentinels below
// (or a wrapped matio/allocation error for the resource kinds), never a
// bare process abort — the core never calls os.Exit or panics on a
// numerical or convergence condition.
var (
	// ErrSolverStag: stagnation persisted after MaxStag restarts.
	ErrSolverStag = errors.New("solver: stagnated")
	// ErrSolverSolStag: solution norm collapsed below EpsSol.
	ErrSolverSolStag = errors.New("solver: solution stagnated near zero")
	// ErrSolverTolSmall: requested tolerance is unreachable in floating point.
	ErrSolverTolSmall = errors.New("solver: tolerance too small for floating point")
	// ErrSolverMaxit: iteration budget exhausted without convergence.
	ErrSolverMaxit = errors.New("solver: maximum iterations reached")
	// ErrSolverMisc: numerical breakdown (division by near-zero quantity).
	ErrSolverMisc = errors.New("solver: numerical breakdown")
	// ErrSolverType: unknown solver kind or stop type.
	ErrSolverType = errors.New("solver: unknown method or stop type")
	// ErrAllocMem: a required allocation failed or was refused (e.g. a
	// caller-imposed memory budget).
	ErrAllocMem = errors.New("solver: allocation failed")
	// ErrQuadType and ErrQuadDim are kept as named sentinels even though
	// their producers (quadrature tables) are external collaborators out
	// of this module's scope, so a driver can pass them through
	// unchanged if an adapter surfaces one via a callback.
	ErrQuadType = errors.New("solver: unknown quadrature type")
	ErrQuadDim  = errors.New("solver: invalid quadrature dimension")
)
