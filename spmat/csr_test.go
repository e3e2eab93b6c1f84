package spmat

import (
	"math"
	"testing"
)

func poisson1D(n int) *CSR {
	var entries []COOEntry
	for i := 0; i < n; i++ {
		entries = append(entries, COOEntry{Row: i, Col: i, Val: 2})
		if i > 0 {
			entries = append(entries, COOEntry{Row: i, Col: i - 1, Val: -1})
		}
		if i < n-1 {
			entries = append(entries, COOEntry{Row: i, Col: i + 1, Val: -1})
		}
	}
	return FromCOO(n, n, entries)
}

func TestCSRCOORoundTrip(t *testing.T) {
	a := poisson1D(7)
	coo := a.ToCOO()
	back := FromCOO(7, 7, coo)

	for i := 0; i < 7; i++ {
		for j := 0; j < 7; j++ {
			if got, want := back.At(i, j), a.At(i, j); got != want {
				t.Fatalf("At(%d,%d) = %v, want %v", i, j, got, want)
			}
		}
	}
}

func TestFromCOODedupeSums(t *testing.T) {
	entries := []COOEntry{
		{Row: 0, Col: 0, Val: 1},
		{Row: 0, Col: 0, Val: 2},
		{Row: 1, Col: 1, Val: 5},
	}
	a := FromCOO(2, 2, entries)
	if got, want := a.At(0, 0), 3.0; got != want {
		t.Fatalf("At(0,0) = %v, want %v", got, want)
	}
	if a.NNZ() != 2 {
		t.Fatalf("NNZ() = %d, want 2", a.NNZ())
	}
}

func TestTransposeTwiceExact(t *testing.T) {
	var entries []COOEntry
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			if (i+j)%2 == 0 {
				entries = append(entries, COOEntry{Row: i, Col: j, Val: float64(i*5 + j)})
			}
		}
	}
	a := FromCOO(5, 5, entries)
	tt := a.T().(*CSC).T().(*CSR)
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			if got, want := tt.At(i, j), a.At(i, j); got != want {
				t.Fatalf("double transpose At(%d,%d) = %v, want %v (exact)", i, j, got, want)
			}
		}
	}
}

func TestCSRMulVecMatchesDense(t *testing.T) {
	a := poisson1D(6)
	x := NewVector(6, []float64{1, 2, 3, 4, 5, 6})
	y := NewVector(6, nil)
	a.MulVecTo(y, x)

	dense := a.ToDense()
	for i := 0; i < 6; i++ {
		var want float64
		for j := 0; j < 6; j++ {
			want += dense.At(i, j) * x.Data[j]
		}
		if math.Abs(y.Data[i]-want) > 1e-12 {
			t.Fatalf("MulVecTo[%d] = %v, want %v", i, y.Data[i], want)
		}
	}
}

func TestCSRMulVecToWorkersMatchesSequential(t *testing.T) {
	a := poisson1D(37)
	x := NewVector(37, nil)
	for i := range x.Data {
		x.Data[i] = float64(i) - 10
	}
	want := NewVector(37, nil)
	a.MulVecToWorkers(want, x, 1)

	for _, workers := range []int{2, 4, 8} {
		got := NewVector(37, nil)
		a.MulVecToWorkers(got, x, workers)
		for i := range got.Data {
			if math.Abs(got.Data[i]-want.Data[i]) > 1e-12 {
				t.Fatalf("workers=%d: MulVecToWorkers[%d] = %v, want %v", workers, i, got.Data[i], want.Data[i])
			}
		}
	}
}

func TestCSRSetInsertsNewEntry(t *testing.T) {
	a := FromCOO(3, 3, []COOEntry{{Row: 0, Col: 0, Val: 1}})
	a.Set(1, 2, 7)
	if got := a.At(1, 2); got != 7 {
		t.Fatalf("At(1,2) = %v, want 7", got)
	}
	if a.NNZ() != 2 {
		t.Fatalf("NNZ() = %d, want 2", a.NNZ())
	}
}
