package amgsolve

import (
	"testing"

	"github.com/jbw-sparse/amgsolve/solver"
	"github.com/jbw-sparse/amgsolve/spmat"
)

func poisson1D(n int) *spmat.CSR {
	var entries []spmat.COOEntry
	for i := 0; i < n; i++ {
		entries = append(entries, spmat.COOEntry{Row: i, Col: i, Val: 2})
		if i > 0 {
			entries = append(entries, spmat.COOEntry{Row: i, Col: i - 1, Val: -1})
		}
		if i < n-1 {
			entries = append(entries, spmat.COOEntry{Row: i, Col: i + 1, Val: -1})
		}
	}
	return spmat.FromCOO(n, n, entries)
}

func TestSolveDiagonalPreconditioned(t *testing.T) {
	n := 30
	a := poisson1D(n)
	b := spmat.NewVector(n, nil)
	b.Fill(1)
	x := spmat.NewVector(n, nil)

	cfg := DefaultConfig()
	cfg.Precond = PrecondDiagonal
	cfg.ITS.Tol = 1e-10
	cfg.ITS.MaxIt = 200

	res, err := Solve(a, b, x, cfg)
	if err != nil {
		t.Fatalf("Solve returned error %v, want nil", err)
	}
	if res.Iterations <= 0 {
		t.Fatalf("Iterations = %d, want > 0", res.Iterations)
	}

	r := spmat.NewVector(n, nil)
	a.MulVecTo(r, x)
	r.SubFrom(b, r)
	if relres := r.Norm2() / b.Norm2(); relres > 1e-8 {
		t.Fatalf("final relative residual = %v, want <= 1e-8", relres)
	}
}

func TestSolveAMGPreconditioned2DPoisson(t *testing.T) {
	nside := 16
	n := nside * nside
	idx := func(i, j int) int { return i*nside + j }
	var entries []spmat.COOEntry
	for i := 0; i < nside; i++ {
		for j := 0; j < nside; j++ {
			row := idx(i, j)
			entries = append(entries, spmat.COOEntry{Row: row, Col: row, Val: 4})
			if i > 0 {
				entries = append(entries, spmat.COOEntry{Row: row, Col: idx(i-1, j), Val: -1})
			}
			if i < nside-1 {
				entries = append(entries, spmat.COOEntry{Row: row, Col: idx(i+1, j), Val: -1})
			}
			if j > 0 {
				entries = append(entries, spmat.COOEntry{Row: row, Col: idx(i, j-1), Val: -1})
			}
			if j < nside-1 {
				entries = append(entries, spmat.COOEntry{Row: row, Col: idx(i, j+1), Val: -1})
			}
		}
	}
	a := spmat.FromCOO(n, n, entries)
	b := spmat.NewVector(n, nil)
	b.Fill(1)
	x := spmat.NewVector(n, nil)

	cfg := DefaultConfig()
	cfg.Precond = PrecondAMG
	cfg.AMG.MaxLevels = 10
	cfg.AMG.StrongThreshold = 0.25
	cfg.ITS.Tol = 1e-10
	cfg.ITS.MaxIt = 100

	res, err := Solve(a, b, x, cfg)
	if err != nil {
		t.Fatalf("Solve returned error %v, want nil", err)
	}
	if res.Hierarchy == nil || res.Hierarchy.NumLevels() < 2 {
		t.Fatalf("expected a multi-level hierarchy, got %v", res.Hierarchy)
	}

	r := spmat.NewVector(n, nil)
	a.MulVecTo(r, x)
	r.SubFrom(b, r)
	if relres := r.Norm2() / b.Norm2(); relres > 1e-8 {
		t.Fatalf("final relative residual = %v, want <= 1e-8", relres)
	}
}
