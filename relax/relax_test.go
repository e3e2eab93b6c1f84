package relax

import (
	"testing"

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

func residualNorm(a *spmat.CSR, b, u *spmat.Vector) float64 {
	n, _ := a.Dims()
	r := spmat.NewVector(n, nil)
	a.MulVecTo(r, u)
	r.SubFrom(b, r)
	return r.Norm2()
}

func TestGaussSeidelReducesResidual(t *testing.T) {
	n := 20
	a := poisson1D(n)
	b := spmat.NewVector(n, nil)
	b.Fill(1)
	u := spmat.NewVector(n, nil)

	before := residualNorm(a, b, u)
	GaussSeidel(a, b, u, Ascending, nil, nil, 10)
	after := residualNorm(a, b, u)

	if after >= before {
		t.Fatalf("residual did not decrease: before=%v after=%v", before, after)
	}
}

func TestJacobiReducesResidual(t *testing.T) {
	n := 20
	a := poisson1D(n)
	b := spmat.NewVector(n, nil)
	b.Fill(1)
	u := spmat.NewVector(n, nil)

	before := residualNorm(a, b, u)
	Jacobi(a, b, u, 0.8, 20, 1, nil)
	after := residualNorm(a, b, u)

	if after >= before {
		t.Fatalf("residual did not decrease: before=%v after=%v", before, after)
	}
}

func TestJacobiParallelMatchesSequential(t *testing.T) {
	n := 40
	a := poisson1D(n)
	b := spmat.NewVector(n, nil)
	b.Fill(1)

	uSeq := spmat.NewVector(n, nil)
	Jacobi(a, b, uSeq, 0.8, 15, 1, nil)

	uPar := spmat.NewVector(n, nil)
	Jacobi(a, b, uPar, 0.8, 15, 4, nil)

	for i := range uSeq.Data {
		if uSeq.Data[i] != uPar.Data[i] {
			t.Fatalf("workers=4 diverged from workers=1 at %d: %v vs %v", i, uPar.Data[i], uSeq.Data[i])
		}
	}
}

func TestSORMatchesGaussSeidelAtOmegaOne(t *testing.T) {
	n := 10
	a := poisson1D(n)
	b := spmat.NewVector(n, nil)
	b.Fill(1)

	u1 := spmat.NewVector(n, nil)
	GaussSeidel(a, b, u1, Ascending, nil, nil, 5)

	u2 := spmat.NewVector(n, nil)
	SOR(a, b, u2, Ascending, nil, 1.0, nil, 5)

	for i := range u1.Data {
		if u1.Data[i] != u2.Data[i] {
			t.Fatalf("SOR(omega=1) diverged from Gauss-Seidel at %d: %v vs %v", i, u2.Data[i], u1.Data[i])
		}
	}
}
