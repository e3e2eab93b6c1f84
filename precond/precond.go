// Package precond defines the preconditioner contract shared by every
// Krylov driver and the concrete variants that implement it: identity,
// diagonal (Jacobi), ILU, AMG-cycle, Schwarz and additive/multiplicative
// composites. This replaces the teacher-era "void* state + function
// pointer" pattern (spec.md section 9) with a plain interface; concrete
// variants are exported struct types (Identity, Diagonal, ILU, AMGCycle,
// Schwarz, Composite), and their
// lifetime is simply the lifetime of the Go value the caller holds.
package precond

import "github.com/jbw-sparse/amgsolve/spmat"

// Preconditioner is the contract "given residual r, produce z ~ A^-1 r".
// Implementations must not retain r or z beyond the call.
type Preconditioner interface {
	Apply(r, z *spmat.Vector) error
}

// Func adapts a plain function to the Preconditioner interface, useful
// for tests and for wiring a one-off closure (e.g. a single AMG cycle)
// without declaring a named type.
type Func func(r, z *spmat.Vector) error

// Apply calls f(r, z).
func (f Func) Apply(r, z *spmat.Vector) error { return f(r, z) }

// Identity is the z <- r preconditioner, used as the PCG-equivalence
// baseline (testable property 3 in spec.md section 8) and as a safe
// default when no preconditioner is configured.
type Identity struct{}

// Apply copies r into z.
func (Identity) Apply(r, z *spmat.Vector) error {
	z.CopyFrom(r)
	return nil
}
