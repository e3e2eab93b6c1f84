package precond

import "github.com/jbw-sparse/amgsolve/spmat"

// CompositeKind selects how Composite combines its member preconditioners.
type CompositeKind int

const (
	// Additive applies every member to the same residual and sums the
	// corrections: z = sum_i M_i(r).
	Additive CompositeKind = iota
	// Multiplicative applies members in sequence, each correcting the
	// residual left over by the previous one (a block Gauss-Seidel sweep
	// over preconditioners): z_0 = M_0(r), r_1 = r - A*z_0, ...
	// Multiplicative needs the operator to form the intermediate
	// residuals, so it is supplied at construction time.
	Multiplicative
)

// Composite combines several preconditioners into one, per spec.md
// section 4.8.
type Composite struct {
	kind    CompositeKind
	members []Preconditioner
	a       Operator // only used by Multiplicative
}

// Operator is the minimal SpMV contract Multiplicative composition needs
// to form intermediate residuals between members.
type Operator interface {
	MulVecTo(y, x *spmat.Vector)
}

// NewAdditive returns a preconditioner that sums every member's
// correction for the same residual.
func NewAdditive(members ...Preconditioner) *Composite {
	return &Composite{kind: Additive, members: members}
}

// NewMultiplicative returns a preconditioner that applies members in
// sequence against the residual left over by the previous member, using
// a to recompute intermediate residuals.
func NewMultiplicative(a Operator, members ...Preconditioner) *Composite {
	return &Composite{kind: Multiplicative, members: members, a: a}
}

// Apply runs the configured combination.
func (c *Composite) Apply(r, z *spmat.Vector) error {
	n := r.Len()
	z.Zero()
	if c.kind == Additive {
		tmp := spmat.NewVector(n, nil)
		for _, m := range c.members {
			if err := m.Apply(r, tmp); err != nil {
				return err
			}
			z.AXPY(1, tmp)
		}
		return nil
	}

	cur := r.Clone()
	correction := spmat.NewVector(n, nil)
	ac := spmat.NewVector(n, nil)
	for _, m := range c.members {
		if err := m.Apply(cur, correction); err != nil {
			return err
		}
		z.AXPY(1, correction)
		c.a.MulVecTo(ac, correction)
		cur.SubFrom(cur, ac)
	}
	return nil
}
