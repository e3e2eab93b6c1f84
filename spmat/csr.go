package spmat

import (
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"

	"github.com/jbw-sparse/amgsolve/internal/parallel"
)

// compressedCore is the common structure shared by CSR and CSC: a row (or
// column) pointer array IA of length n+1, paired JA/Val arrays of length
// nnz. Which axis IA indexes depends on which of CSR/CSC wraps it.
//
// Invariants: IA[0] == 0, IA[n] == nnz, IA is non-decreasing, and for each
// i the slice JA[IA[i]:IA[i+1]] lists the column (row, for CSC) indices of
// entries in that row with no duplicates. Entries within a row need not be
// sorted unless a routine's doc comment says otherwise.
type compressedCore struct {
	rows, cols int
	IA         []int
	JA         []int
	Val        []float64
}

func (c *compressedCore) nnz() int { return len(c.Val) }

func (c *compressedCore) at(i, j int) float64 {
	for k := c.IA[i]; k < c.IA[i+1]; k++ {
		if c.JA[k] == j {
			return c.Val[k]
		}
	}
	return 0
}

func (c *compressedCore) set(i, j int, v float64) {
	for k := c.IA[i]; k < c.IA[i+1]; k++ {
		if c.JA[k] == j {
			c.Val[k] = v
			return
		}
		if c.JA[k] > j {
			c.insert(i, j, v, k)
			return
		}
	}
	c.insert(i, j, v, c.IA[i+1])
}

func (c *compressedCore) insert(i, j int, v float64, at int) {
	c.JA = append(c.JA, 0)
	copy(c.JA[at+1:], c.JA[at:])
	c.JA[at] = j

	c.Val = append(c.Val, 0)
	copy(c.Val[at+1:], c.Val[at:])
	c.Val[at] = v

	for n := i + 1; n < len(c.IA); n++ {
		c.IA[n]++
	}
}

// sortRow sorts the column indices (and matching values) of row i in place.
// Most construction paths already produce sorted rows; this exists for the
// ones (FromCOO) that don't guarantee it.
type colVal struct {
	col int
	val float64
}

func (c *compressedCore) sortRow(i int) {
	lo, hi := c.IA[i], c.IA[i+1]
	row := make([]colVal, hi-lo)
	for k := range row {
		row[k] = colVal{c.JA[lo+k], c.Val[lo+k]}
	}
	slices.SortFunc(row, func(a, b colVal) bool { return a.col < b.col })
	for k, cv := range row {
		c.JA[lo+k] = cv.col
		c.Val[lo+k] = cv.val
	}
}

// CSR is a Compressed Sparse Row matrix: IA is the row-pointer array, JA
// the column indices. CSR is efficient for row-oriented SpMV and is the
// canonical operational format for the Krylov drivers and AMG setup; it is
// poor for incremental construction (use FromCOO to build one).
type CSR struct {
	compressedCore
}

var (
	_ Matrix      = (*CSR)(nil)
	_ mat.Mutable = (*CSR)(nil)
)

// NewCSR creates a CSR matrix of the given shape from the row-pointer
// array ia (length rows+1), column-index array ja and values (both length
// nnz). The slices are used directly as backing storage.
func NewCSR(rows, cols int, ia, ja []int, val []float64) *CSR {
	if rows < 0 || cols < 0 {
		panic(ErrShape)
	}
	if len(ia) != rows+1 || len(ja) != len(val) {
		panic(ErrShape)
	}
	return &CSR{compressedCore{rows: rows, cols: cols, IA: ia, JA: ja, Val: val}}
}

// Dims returns the number of rows and columns.
func (c *CSR) Dims() (int, int) { return c.rows, c.cols }

// At returns A[i,j]. Panics if i or j is out of range.
func (c *CSR) At(i, j int) float64 {
	if uint(i) >= uint(c.rows) {
		panic(ErrRowAccess)
	}
	if uint(j) >= uint(c.cols) {
		panic(ErrColAccess)
	}
	return c.at(i, j)
}

// Set assigns A[i,j] = v, inserting a new non-zero if the sparsity
// pattern did not already contain (i,j). Setting to 0 still stores an
// explicit zero (callers that want to drop a structural zero should
// rebuild the matrix).
func (c *CSR) Set(i, j int, v float64) {
	if uint(i) >= uint(c.rows) {
		panic(ErrRowAccess)
	}
	if uint(j) >= uint(c.cols) {
		panic(ErrColAccess)
	}
	c.set(i, j, v)
}

// NNZ returns the number of stored entries.
func (c *CSR) NNZ() int { return c.nnz() }

// T returns the transpose of the receiver as a CSC sharing the same
// backing arrays — no data is copied or recomputed, matching the
// teacher's zero-cost CSR<->CSC transpose.
func (c *CSR) T() mat.Matrix {
	return &CSC{compressedCore{rows: c.cols, cols: c.rows, IA: c.IA, JA: c.JA, Val: c.Val}}
}

// RawRowView returns the column indices and values of row i without
// copying. The caller must not retain the slices past the next mutation
// of the matrix.
func (c *CSR) RawRowView(i int) (cols []int, vals []float64) {
	return c.JA[c.IA[i]:c.IA[i+1]], c.Val[c.IA[i]:c.IA[i+1]]
}

// MulVecTo computes y <- A*x.
func (c *CSR) MulVecTo(y, x *Vector) {
	c.MulVecToWorkers(y, x, 1)
}

// MulVecToWorkers computes y <- A*x, partitioning rows across workers
// goroutines. Each goroutine owns a disjoint row range and writes only
// into its own slice of y, so no reduction step is needed (spec.md
// section 5). workers <= 1 runs sequentially in the calling goroutine.
func (c *CSR) MulVecToWorkers(y, x *Vector, workers int) {
	if len(x.Data) != c.cols || len(y.Data) != c.rows {
		panic(ErrShape)
	}
	parallel.For(workers, c.rows, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			var s float64
			for k := c.IA[i]; k < c.IA[i+1]; k++ {
				s += c.Val[k] * x.Data[c.JA[k]]
			}
			y.Data[i] = s
		}
	})
}

// MulVecAddTo computes y <- alpha*A*x + y.
func (c *CSR) MulVecAddTo(y *Vector, alpha float64, x *Vector) {
	if len(x.Data) != c.cols || len(y.Data) != c.rows {
		panic(ErrShape)
	}
	if alpha == 0 {
		return
	}
	for i := 0; i < c.rows; i++ {
		var s float64
		for k := c.IA[i]; k < c.IA[i+1]; k++ {
			s += c.Val[k] * x.Data[c.JA[k]]
		}
		y.Data[i] += alpha * s
	}
}

// MulTransVecTo computes y <- A^T*x.
func (c *CSR) MulTransVecTo(y, x *Vector) {
	if len(x.Data) != c.rows || len(y.Data) != c.cols {
		panic(ErrShape)
	}
	y.Zero()
	for i := 0; i < c.rows; i++ {
		xi := x.Data[i]
		if xi == 0 {
			continue
		}
		for k := c.IA[i]; k < c.IA[i+1]; k++ {
			y.Data[c.JA[k]] += c.Val[k] * xi
		}
	}
}

// DiagTo extracts the main diagonal of the receiver into d.
func (c *CSR) DiagTo(d *Vector) {
	n := c.rows
	if c.cols < n {
		n = c.cols
	}
	if len(d.Data) != n {
		panic(ErrShape)
	}
	for i := 0; i < n; i++ {
		d.Data[i] = c.at(i, i)
	}
}

// ToCOO returns a COO-triple representation of the receiver's non-zero
// entries. The returned slices do not share storage with the receiver.
func (c *CSR) ToCOO() []COOEntry {
	out := make([]COOEntry, 0, c.nnz())
	for i := 0; i < c.rows; i++ {
		for k := c.IA[i]; k < c.IA[i+1]; k++ {
			out = append(out, COOEntry{Row: i, Col: c.JA[k], Val: c.Val[k]})
		}
	}
	return out
}

// ToDense returns a dense copy of the receiver.
func (c *CSR) ToDense() *mat.Dense {
	d := mat.NewDense(c.rows, c.cols, nil)
	for i := 0; i < c.rows; i++ {
		for k := c.IA[i]; k < c.IA[i+1]; k++ {
			d.Set(i, c.JA[k], c.Val[k])
		}
	}
	return d
}

// FromCOO builds a CSR matrix from unordered (row, col, val) triples,
// summing values of duplicate coordinates (sum-of-duplicates per the
// dense-to-sparse conversion contract).
func FromCOO(rows, cols int, entries []COOEntry) *CSR {
	counts := make([]int, rows+1)
	for _, e := range entries {
		counts[e.Row+1]++
	}
	for i := 0; i < rows; i++ {
		counts[i+1] += counts[i]
	}
	ia := append([]int(nil), counts...)
	ja := make([]int, len(entries))
	val := make([]float64, len(entries))
	cursor := append([]int(nil), counts...)
	for _, e := range entries {
		p := cursor[e.Row]
		ja[p] = e.Col
		val[p] = e.Val
		cursor[e.Row]++
	}

	c := &CSR{compressedCore{rows: rows, cols: cols, IA: ia, JA: ja, Val: val}}
	for i := 0; i < rows; i++ {
		c.sortRow(i)
	}
	return dedupeRows(c)
}

// dedupeRows merges duplicate column entries within each sorted row,
// summing their values, and compacts the backing arrays.
func dedupeRows(c *CSR) *CSR {
	newIA := make([]int, c.rows+1)
	newJA := make([]int, 0, len(c.JA))
	newVal := make([]float64, 0, len(c.Val))
	for i := 0; i < c.rows; i++ {
		newIA[i] = len(newJA)
		lo, hi := c.IA[i], c.IA[i+1]
		for k := lo; k < hi; {
			j := c.JA[k]
			sum := c.Val[k]
			k++
			for k < hi && c.JA[k] == j {
				sum += c.Val[k]
				k++
			}
			newJA = append(newJA, j)
			newVal = append(newVal, sum)
		}
	}
	newIA[c.rows] = len(newJA)
	return &CSR{compressedCore{rows: c.rows, cols: c.cols, IA: newIA, JA: newJA, Val: newVal}}
}

// CSC is a Compressed Sparse Column matrix: IA is the column-pointer
// array, JA the row indices. CSC is the natural transpose partner of CSR
// and is used internally by the Galerkin triple product.
type CSC struct {
	compressedCore
}

var _ Matrix = (*CSC)(nil)

// NewCSC creates a CSC matrix of the given shape from the column-pointer
// array ia (length cols+1), row-index array ja and values.
func NewCSC(rows, cols int, ia, ja []int, val []float64) *CSC {
	if rows < 0 || cols < 0 {
		panic(ErrShape)
	}
	if len(ia) != cols+1 || len(ja) != len(val) {
		panic(ErrShape)
	}
	return &CSC{compressedCore{rows: cols, cols: rows, IA: ia, JA: ja, Val: val}}
}

// Dims returns the number of rows and columns (note: the embedded
// compressedCore stores cols-as-rows internally, mirroring the teacher's
// CSC-is-a-transposed-CSR representation).
func (c *CSC) Dims() (int, int) { return c.cols, c.rows }

// At returns A[i,j].
func (c *CSC) At(i, j int) float64 {
	if uint(j) >= uint(c.rows) {
		panic(ErrColAccess)
	}
	if uint(i) >= uint(c.cols) {
		panic(ErrRowAccess)
	}
	return c.at(j, i)
}

// Set assigns A[i,j] = v.
func (c *CSC) Set(i, j int, v float64) {
	if uint(j) >= uint(c.rows) {
		panic(ErrColAccess)
	}
	if uint(i) >= uint(c.cols) {
		panic(ErrRowAccess)
	}
	c.set(j, i, v)
}

// NNZ returns the number of stored entries.
func (c *CSC) NNZ() int { return c.nnz() }

// T returns the transpose as a CSR sharing backing storage.
func (c *CSC) T() mat.Matrix {
	return &CSR{compressedCore{rows: c.cols, cols: c.rows, IA: c.IA, JA: c.JA, Val: c.Val}}
}

// MulVecTo computes y <- A*x by walking columns and scattering into y.
func (c *CSC) MulVecTo(y, x *Vector) {
	if len(x.Data) != c.rows || len(y.Data) != c.cols {
		panic(ErrShape)
	}
	y.Zero()
	c.MulVecAddTo(y, 1, x)
}

// MulVecAddTo computes y <- alpha*A*x + y.
func (c *CSC) MulVecAddTo(y *Vector, alpha float64, x *Vector) {
	if len(x.Data) != c.rows || len(y.Data) != c.cols {
		panic(ErrShape)
	}
	if alpha == 0 {
		return
	}
	for j := 0; j < c.rows; j++ {
		xj := alpha * x.Data[j]
		if xj == 0 {
			continue
		}
		for k := c.IA[j]; k < c.IA[j+1]; k++ {
			y.Data[c.JA[k]] += c.Val[k] * xj
		}
	}
}

// MulTransVecTo computes y <- A^T*x.
func (c *CSC) MulTransVecTo(y, x *Vector) {
	if len(x.Data) != c.cols || len(y.Data) != c.rows {
		panic(ErrShape)
	}
	for j := 0; j < c.rows; j++ {
		var s float64
		for k := c.IA[j]; k < c.IA[j+1]; k++ {
			s += c.Val[k] * x.Data[c.JA[k]]
		}
		y.Data[j] = s
	}
}

// DiagTo extracts the main diagonal of the receiver into d.
func (c *CSC) DiagTo(d *Vector) {
	n := c.cols
	if c.rows < n {
		n = c.rows
	}
	if len(d.Data) != n {
		panic(ErrShape)
	}
	for j := 0; j < n; j++ {
		d.Data[j] = c.at(j, j)
	}
}
