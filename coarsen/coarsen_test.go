package coarsen

import (
	"math"
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

func TestCFSplitDisjoint(t *testing.T) {
	a := poisson1D(20)
	g := StrongConnections(a, ModifiedRS, 0.25, 0.9)
	rowNNZ := make([]int, 20)
	for i := 0; i < 20; i++ {
		cols, _ := a.RawRowView(i)
		rowNNZ[i] = len(cols)
	}
	marks := CFSplit(g, rowNNZ)
	if len(marks) != 20 {
		t.Fatalf("len(marks) = %d, want 20", len(marks))
	}
	for i, m := range marks {
		if m != Coarse && m != Fine && m != Isolated {
			t.Fatalf("marks[%d] = %v, want one of {Coarse,Fine,Isolated}", i, m)
		}
	}
}

func TestProlongationRowSumIsOne(t *testing.T) {
	a := poisson1D(20)
	g := StrongConnections(a, ModifiedRS, 0.25, 0.9)
	rowNNZ := make([]int, 20)
	for i := 0; i < 20; i++ {
		cols, _ := a.RawRowView(i)
		rowNNZ[i] = len(cols)
	}
	marks := CFSplit(g, rowNNZ)
	coarseOf, numC := CoarseIndex(marks)
	if numC == 0 || numC == 20 {
		t.Fatalf("coarsening stalled: numC = %d", numC)
	}
	pattern := ProlongationPattern(g, marks, coarseOf)
	_, vals := ClassicalInterpolation(a, g, marks, coarseOf, pattern)

	for i, m := range marks {
		if m != Fine {
			continue
		}
		if len(vals[i]) == 0 {
			continue // isolated-from-coarse F-row, left as zero row
		}
		var sum float64
		for _, v := range vals[i] {
			sum += v
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("F-row %d interpolation weights sum to %v, want 1", i, sum)
		}
	}
}
