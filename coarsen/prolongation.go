package coarsen

import (
	"math"

	"github.com/jbw-sparse/amgsolve/spmat"
)

// CoarseIndex maps fine-grid C vertices to their coarse-grid index
// (0..numC-1, in order of increasing fine index), per spec.md section
// 4.4's "mapped_coarse_index".
func CoarseIndex(marks []Mark) (coarseOf []int, numC int) {
	coarseOf = make([]int, len(marks))
	for i, m := range marks {
		if m == Coarse {
			coarseOf[i] = numC
			numC++
		} else {
			coarseOf[i] = -1
		}
	}
	return coarseOf, numC
}

// ProlongationPattern builds the sparsity pattern of P (spec.md section
// 4.4): a C row gets a single unit entry at its own coarse index, an
// Isolated row is empty, and an F row gets one entry per strong
// C-neighbor (value filled in later by classical interpolation weights).
func ProlongationPattern(g *Graph, marks []Mark, coarseOf []int) (rows [][]int) {
	rows = make([][]int, g.N)
	for i, m := range marks {
		switch m {
		case Coarse:
			rows[i] = []int{coarseOf[i]}
		case Isolated:
			rows[i] = nil
		case Fine:
			for _, j := range g.S[i] {
				if marks[j] == Coarse {
					rows[i] = append(rows[i], coarseOf[j])
				}
			}
		}
	}
	return rows
}

// ClassicalInterpolation computes the standard Ruge-Stuben interpolation
// weights for every F-row of P, given the already-built sparsity pattern
// (rows, from ProlongationPattern). Weak connections are folded into the
// diagonal before distributing strong F-F connections among the row's
// C-supports, and the final weights are sign-preserving scaled so they
// sum to 1 (testable property 7 in spec.md section 8).
func ClassicalInterpolation(a *spmat.CSR, g *Graph, marks []Mark, coarseOf []int, rows [][]int) (rowsOut [][]int, vals [][]float64) {
	n, _ := a.Dims()
	rowsOut = make([][]int, n)
	vals = make([][]float64, n)

	strongSet := make([]map[int]bool, n)
	for i := range g.S {
		strongSet[i] = make(map[int]bool, len(g.S[i]))
		for _, j := range g.S[i] {
			strongSet[i][j] = true
		}
	}

	for i := 0; i < n; i++ {
		switch marks[i] {
		case Coarse:
			rowsOut[i] = []int{coarseOf[i]}
			vals[i] = []float64{1}
		case Isolated:
			rowsOut[i], vals[i] = nil, nil
		case Fine:
			cCols := rows[i]
			if len(cCols) == 0 {
				rowsOut[i], vals[i] = nil, nil
				continue
			}
			w := interpolateRow(a, strongSet, marks, coarseOf, i, cCols)
			rowsOut[i] = append([]int(nil), cCols...)
			vals[i] = w
		}
	}
	return rowsOut, vals
}

// interpolateRow computes the classical RS weights for one F-row i whose
// C-neighbor coarse indices are cCols.
func interpolateRow(a *spmat.CSR, strongSet []map[int]bool, marks []Mark, coarseOf []int, i int, cCols []int) []float64 {
	cols, valsRow := a.RawRowView(i)
	var aii float64
	weakSum := 0.0
	// weight accumulator keyed by coarse column index
	wsum := make(map[int]float64, len(cCols))
	for _, c := range cCols {
		wsum[c] = 0
	}

	for k, j := range cols {
		aij := valsRow[k]
		switch {
		case j == i:
			aii = aij
		case marks[j] == Coarse && strongSet[i][j]:
			wsum[coarseOf[j]] += aij
		case strongSet[i][j]:
			// strong F-F connection: distribute across i's C-supports
			// weighted by how strongly j connects to each of them.
			distributeStrongFF(a, strongSet, marks, coarseOf, i, j, aij, wsum)
		default:
			// weak connection folds into the diagonal.
			weakSum += aij
		}
	}

	aii += weakSum
	if math.Abs(aii) < 1e-300 {
		aii = 1e-300
	}

	out := make([]float64, len(cCols))
	for idx, c := range cCols {
		out[idx] = -wsum[c] / aii
	}
	normalizeToUnitSum(out)
	return out
}

// distributeStrongFF spreads a strong F-F connection's weight across the
// endpoints' common C-neighbors, weighted by the connection strength from
// j to each shared C point, the classical RS "sign-preserving" rule.
func distributeStrongFF(a *spmat.CSR, strongSet []map[int]bool, marks []Mark, coarseOf []int, i, j int, aij float64, wsum map[int]float64) {
	cols, vals := a.RawRowView(j)
	var denom float64
	shared := make([]int, 0)
	shareVal := make([]float64, 0)
	for k, c := range cols {
		if marks[c] == Coarse && strongSet[i][c] {
			denom += vals[k]
			shared = append(shared, c)
			shareVal = append(shareVal, vals[k])
		}
	}
	if denom == 0 || math.Abs(denom) < 1e-300 {
		return
	}
	for idx, c := range shared {
		wsum[coarseOf[c]] += aij * (shareVal[idx] / denom)
	}
}

func normalizeToUnitSum(w []float64) {
	var s float64
	for _, v := range w {
		s += v
	}
	if math.Abs(s) < 1e-300 {
		return
	}
	scale := 1 / s
	for i := range w {
		w[i] *= scale
	}
}
