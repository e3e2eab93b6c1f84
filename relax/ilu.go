package relax

import (
	"math"

	"github.com/jbw-sparse/amgsolve/spmat"
)

// Factor is a fused upper/lower ILU(k) factorization stored in a single
// CSR-shaped structure (matching the reference's ijlu/luval layout): the
// diagonal entry of each row is the pivot of U, entries left of the
// diagonal belong to L (implicit unit diagonal), entries right belong to
// U. Lifecycle: owned by whichever preconditioner or AMG level built it.
type Factor struct {
	n    int
	ia   []int
	ja   []int
	val  []float64
	diag []int // index within val of the diagonal entry of each row
}

// Factorize computes an ILU(level) factorization of a using the standard
// symbolic level-of-fill growth (IKJ variant) followed by numeric
// factorization. droptol, when > 0, drops any L multiplier (original or
// fill position) whose magnitude falls below droptol*||row||_1, the 1-norm
// of the row before elimination.
func Factorize(a *spmat.CSR, level int, droptol float64) *Factor {
	n, _ := a.Dims()
	ia, ja, _ := symbolicLevels(a, level)
	val := make([]float64, len(ja))
	for i := 0; i < n; i++ {
		cols, vals := a.RawRowView(i)
		for k := ia[i]; k < ia[i+1]; k++ {
			val[k] = 0
		}
		for kk, c := range cols {
			for k := ia[i]; k < ia[i+1]; k++ {
				if ja[k] == c {
					val[k] = vals[kk]
					break
				}
			}
		}
	}

	diag := make([]int, n)
	for i := 0; i < n; i++ {
		for k := ia[i]; k < ia[i+1]; k++ {
			if ja[k] == i {
				diag[i] = k
			}
		}
	}

	for i := 0; i < n; i++ {
		var rowNorm float64
		for k := ia[i]; k < ia[i+1]; k++ {
			rowNorm += math.Abs(val[k])
		}
		for k := ia[i]; k < diag[i]; k++ {
			p := ja[k]
			pivot := val[diag[p]]
			if math.Abs(pivot) < epsTiny {
				pivot = epsTiny
			}
			factor := val[k] / pivot
			if droptol > 0 && math.Abs(factor) < droptol*rowNorm {
				val[k] = 0
				continue
			}
			val[k] = factor
			for kk := diag[p] + 1; kk < ia[p+1]; kk++ {
				c := ja[kk]
				for m := ia[i]; m < ia[i+1]; m++ {
					if ja[m] == c {
						val[m] -= factor * val[kk]
						break
					}
				}
			}
		}
	}
	return &Factor{n: n, ia: ia, ja: ja, val: val, diag: diag}
}

// symbolicLevels computes the ILU(level) fill pattern using the classic
// level-of-fill recursion: fill(i,j) via (i,k) and (k,j) gets
// level = lvl(i,k)+lvl(k,j)+1, kept while <= level.
func symbolicLevels(a *spmat.CSR, level int) (ia, ja []int, lvl [][]int) {
	n, _ := a.Dims()
	rowLevels := make([]map[int]int, n)
	for i := 0; i < n; i++ {
		rowLevels[i] = make(map[int]int)
		cols, _ := a.RawRowView(i)
		for _, c := range cols {
			rowLevels[i][c] = 0
		}
		rowLevels[i][i] = 0 // guarantee a stored diagonal for robustness
	}
	for i := 0; i < n; i++ {
		for k := range rowLevels[i] {
			if k >= i {
				continue
			}
			lik := rowLevels[i][k]
			for j, lkj := range rowLevels[k] {
				if j <= k {
					continue
				}
				nl := lik + lkj + 1
				if nl > level {
					continue
				}
				if cur, ok := rowLevels[i][j]; !ok || nl < cur {
					rowLevels[i][j] = nl
				}
			}
		}
	}
	ia = make([]int, n+1)
	for i := 0; i < n; i++ {
		cols := sortedKeys(rowLevels[i])
		ja = append(ja, cols...)
		ia[i+1] = len(ja)
	}
	return ia, ja, nil
}

func sortedKeys(m map[int]int) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// Solve computes z = (LU)^-1 r via forward then backward substitution
// using the fused factor.
func (f *Factor) Solve(r, z *spmat.Vector) {
	n := f.n
	if len(r.Data) != n || len(z.Data) != n {
		panic(spmat.ErrShape)
	}
	y := make([]float64, n)
	// Forward solve L*y = r (unit diagonal).
	for i := 0; i < n; i++ {
		s := r.Data[i]
		for k := f.ia[i]; k < f.diag[i]; k++ {
			s -= f.val[k] * y[f.ja[k]]
		}
		y[i] = s
	}
	// Backward solve U*z = y.
	for i := n - 1; i >= 0; i-- {
		s := y[i]
		for k := f.diag[i] + 1; k < f.ia[i+1]; k++ {
			s -= f.val[k] * z.Data[f.ja[k]]
		}
		piv := f.val[f.diag[i]]
		if math.Abs(piv) < epsTiny {
			piv = epsTiny
		}
		z.Data[i] = s / piv
	}
}
