package multigrid

import (
	"log/slog"

	"github.com/jbw-sparse/amgsolve/coarsen"
	"github.com/jbw-sparse/amgsolve/relax"
	"github.com/jbw-sparse/amgsolve/solver"
	"github.com/jbw-sparse/amgsolve/spmat"
)

// Setup builds an AMG hierarchy for a per spec.md section 4.5: repeated
// strong-graph -> C/F split -> P sparsity -> interpolation weights ->
// Galerkin coarse operator, stopping at the coarse-size cutoff, the
// configured level limit, or stalled coarsening (no new C points).
func Setup(a *spmat.CSR, p solver.AMGParam, logger *slog.Logger) *Hierarchy {
	h := &Hierarchy{Param: p, Logger: logger}
	cur := a

	for len(h.Levels) < p.MaxLevels {
		n, _ := cur.Dims()
		if n <= p.CoarseCutoff || len(h.Levels) == p.MaxLevels-1 {
			h.Levels = append(h.Levels, buildLeafLevel(cur, p))
			break
		}

		marks, coarseOf, numC := splitLevel(cur, p)
		if numC == 0 || numC == n {
			// Coarsening stalled: no new C points, or everything became
			// C (no compression). Report via the leaf level and stop;
			// callers fall back to direct solve / pure smoothing per
			// spec.md section 4.6 failure semantics.
			h.Levels = append(h.Levels, buildLeafLevel(cur, p))
			break
		}

		graph := coarsen.StrongConnections(cur, coarsen.ModifiedRS, p.StrongThreshold, p.MaxRowSum)
		pattern := coarsen.ProlongationPattern(graph, marks, coarseOf)
		prows, pvals := coarsen.ClassicalInterpolation(cur, graph, marks, coarseOf, pattern)

		P := buildP(n, numC, prows, pvals)
		R := P.T().(*spmat.CSC)
		coarseA := galerkin(cur, P, R)

		lvl := Level{A: cur, P: P, R: R, CF: marks}
		lvl.X = spmat.NewVector(n, nil)
		lvl.B = spmat.NewVector(n, nil)
		lvl.W = spmat.NewVector(n, nil)
		buildSmootherData(&lvl, cur, p)
		h.Levels = append(h.Levels, lvl)

		cur = coarseA
		if numC <= p.CoarseCutoff {
			h.Levels = append(h.Levels, buildLeafLevel(cur, p))
			break
		}
	}

	if len(h.Levels) == 1 && logger != nil {
		logger.Warn("multigrid: coarsening stalled immediately, hierarchy has a single level")
	}
	return h
}

func splitLevel(a *spmat.CSR, p solver.AMGParam) (marks []coarsen.Mark, coarseOf []int, numC int) {
	n, _ := a.Dims()
	rowNNZ := make([]int, n)
	for i := 0; i < n; i++ {
		cols, _ := a.RawRowView(i)
		rowNNZ[i] = len(cols)
	}

	if p.Coarsening == solver.CompatibleRelaxation {
		cfg := coarsen.CRConfig{
			ThetaG:         p.CR.ThetaG,
			Nu:             p.CR.Nu,
			FirstStageFrac: p.CR.FirstStageFrac,
			LaterStageFrac: p.CR.LaterStageFrac,
		}
		marks = coarsen.CompatibleRelaxation(a, cfg)
	} else {
		graph := coarsen.StrongConnections(a, coarsen.ModifiedRS, p.StrongThreshold, p.MaxRowSum)
		marks = coarsen.CFSplit(graph, rowNNZ)
	}
	coarseOf, numC = coarsen.CoarseIndex(marks)
	return marks, coarseOf, numC
}

func buildP(nFine, nCoarse int, rows [][]int, vals [][]float64) *spmat.CSR {
	var entries []spmat.COOEntry
	for i, cols := range rows {
		for k, c := range cols {
			entries = append(entries, spmat.COOEntry{Row: i, Col: c, Val: vals[i][k]})
		}
	}
	return spmat.FromCOO(nFine, nCoarse, entries)
}

// galerkin computes A_coarse = R*A*P via the two-product method (AP then
// P^T*(AP)) when R = P^T, per spec.md section 4.5.
func galerkin(a *spmat.CSR, p *spmat.CSR, r *spmat.CSC) *spmat.CSR {
	nFine, _ := a.Dims()
	_, nCoarse := p.Dims()

	// AP = A*P, computed row-by-row: AP[i,:] = sum_k A[i,k] * P[k,:].
	apRows := make([]map[int]float64, nFine)
	for i := 0; i < nFine; i++ {
		acc := make(map[int]float64)
		cols, vals := a.RawRowView(i)
		for ki, k := range cols {
			aik := vals[ki]
			pcols, pvals := p.RawRowView(k)
			for pi, pc := range pcols {
				acc[pc] += aik * pvals[pi]
			}
		}
		apRows[i] = acc
	}

	// A_coarse = P^T * AP: row i of result (coarse row) accumulates over
	// fine rows k where P[k,i] != 0.
	coarseRows := make([]map[int]float64, nCoarse)
	for i := range coarseRows {
		coarseRows[i] = make(map[int]float64)
	}
	for k := 0; k < nFine; k++ {
		pcols, pvals := p.RawRowView(k)
		for pi, pc := range pcols {
			weight := pvals[pi]
			if weight == 0 {
				continue
			}
			dest := coarseRows[pc]
			for j, v := range apRows[k] {
				dest[j] += weight * v
			}
		}
	}

	var entries []spmat.COOEntry
	for i, row := range coarseRows {
		for j, v := range row {
			if v != 0 {
				entries = append(entries, spmat.COOEntry{Row: i, Col: j, Val: v})
			}
		}
	}
	return spmat.FromCOO(nCoarse, nCoarse, entries)
}

func buildSmootherData(lvl *Level, a *spmat.CSR, p solver.AMGParam) {
	switch p.Smoother {
	case solver.SmootherILU:
		lvl.ILU = relax.Factorize(a, 0, 0)
	case solver.SmootherSchwarz:
		n, _ := a.Dims()
		neighbors := make([][]int, n)
		for i := 0; i < n; i++ {
			cols, _ := a.RawRowView(i)
			neighbors[i] = append([]int(nil), cols...)
		}
		lvl.Schwarz = relax.BuildSchwarz(a, neighbors)
	case solver.SmootherPolynomial:
		lvl.Poly = relax.DefaultPolyParam()
	}
}

// buildLeafLevel builds the coarsest level, which is solved directly
// (for small systems) rather than smoothed.
func buildLeafLevel(a *spmat.CSR, p solver.AMGParam) Level {
	n, _ := a.Dims()
	return Level{
		A: a,
		X: spmat.NewVector(n, nil),
		B: spmat.NewVector(n, nil),
		W: spmat.NewVector(n, nil),
	}
}
