package spmat

import (
	"gonum.org/v1/gonum/mat"

	"github.com/jbw-sparse/amgsolve/spblas"
)

// StorageManner selects how each BSR tile's rows/columns are ordered; both
// values address the same memory, the distinction only matters when
// interpreting an externally supplied Val buffer.
type StorageManner int

const (
	// RowMajor stores each nb x nb tile in row-major order (default).
	RowMajor StorageManner = iota
	// ColMajor stores each nb x nb tile in column-major order.
	ColMajor
)

// BSR is a Block Sparse Row matrix: like CSR, but every stored entry is a
// dense nb x nb tile rather than a scalar. IA/JA index blocks, not
// scalars; Val has length NNZ*nb*nb.
type BSR struct {
	Row, Col, NNZ_ int // block-grid shape (rows/cols of blocks) and NNZ in blocks
	Nb             int
	Storage        StorageManner
	IA             []int
	JA             []int
	Val            []float64
}

var _ Matrix = (*BSR)(nil)

// NewBSR creates a BSR matrix with blockRows x blockCols blocks of size
// nb x nb, row-pointer array ia (length blockRows+1), block-column index
// array ja (length nnzBlocks) and values (length nnzBlocks*nb*nb).
func NewBSR(blockRows, blockCols, nb int, storage StorageManner, ia, ja []int, val []float64) *BSR {
	if blockRows < 0 || blockCols < 0 || nb <= 0 {
		panic(ErrShape)
	}
	if len(ia) != blockRows+1 {
		panic(ErrShape)
	}
	if len(val) != len(ja)*nb*nb {
		panic(ErrShape)
	}
	return &BSR{Row: blockRows, Col: blockCols, NNZ_: len(ja), Nb: nb, Storage: storage, IA: ia, JA: ja, Val: val}
}

// Dims returns the scalar (unblocked) shape of the matrix.
func (b *BSR) Dims() (int, int) { return b.Row * b.Nb, b.Col * b.Nb }

// At returns the scalar element at (i, j) in unblocked coordinates.
func (b *BSR) At(i, j int) float64 {
	nb := b.Nb
	br, bc := i/nb, j/nb
	lr, lc := i%nb, j%nb
	for k := b.IA[br]; k < b.IA[br+1]; k++ {
		if b.JA[k] == bc {
			tile := b.Val[k*nb*nb : (k+1)*nb*nb]
			if b.Storage == ColMajor {
				return tile[lc*nb+lr]
			}
			return tile[lr*nb+lc]
		}
	}
	return 0
}

// T returns the matrix transpose as a scalar *CSC (BSR transpose is
// not needed on the hot path; AMG setup only transposes CSR/CSC
// prolongation operators). Implemented via ToCSR().T() for correctness.
func (b *BSR) T() mat.Matrix { return b.ToCSR().T() }

// NNZ returns the number of stored scalar entries (NNZ_ blocks * nb^2).
func (b *BSR) NNZ() int { return b.NNZ_ * b.Nb * b.Nb }

// tile returns the raw data of block k in its stored order (see
// orientedTile for a row-major view).
func (b *BSR) tile(k int) []float64 {
	nb := b.Nb
	return b.Val[k*nb*nb : (k+1)*nb*nb]
}

// MulVecTo computes y <- A*x.
func (b *BSR) MulVecTo(y, x *Vector) {
	rows, cols := b.Dims()
	if len(x.Data) != cols || len(y.Data) != rows {
		panic(ErrShape)
	}
	y.Zero()
	b.MulVecAddTo(y, 1, x)
}

// MulVecAddTo computes y <- alpha*A*x + y, dispatching each nonzero block
// to spblas.BlockMulAdd, which itself dispatches on Nb.
func (b *BSR) MulVecAddTo(y *Vector, alpha float64, x *Vector) {
	rows, cols := b.Dims()
	if len(x.Data) != cols || len(y.Data) != rows {
		panic(ErrShape)
	}
	if alpha == 0 {
		return
	}
	nb := b.Nb
	for br := 0; br < b.Row; br++ {
		yr := y.Data[br*nb : br*nb+nb]
		for k := b.IA[br]; k < b.IA[br+1]; k++ {
			bc := b.JA[k]
			xr := x.Data[bc*nb : bc*nb+nb]
			spblas.BlockMulAdd(nb, alpha, b.orientedTile(k), xr, yr)
		}
	}
}

// MulTransVecTo computes y <- A^T*x.
func (b *BSR) MulTransVecTo(y, x *Vector) {
	rows, cols := b.Dims()
	if len(x.Data) != rows || len(y.Data) != cols {
		panic(ErrShape)
	}
	y.Zero()
	nb := b.Nb
	for br := 0; br < b.Row; br++ {
		xr := x.Data[br*nb : br*nb+nb]
		for k := b.IA[br]; k < b.IA[br+1]; k++ {
			bc := b.JA[k]
			yr := y.Data[bc*nb : bc*nb+nb]
			spblas.BlockMulAddTrans(nb, 1, b.orientedTile(k), xr, yr)
		}
	}
}

// orientedTile returns block k's data normalized to row-major, copying
// only when Storage is ColMajor.
func (b *BSR) orientedTile(k int) []float64 {
	tile := b.tile(k)
	if b.Storage == RowMajor {
		return tile
	}
	nb := b.Nb
	out := make([]float64, nb*nb)
	for r := 0; r < nb; r++ {
		for c := 0; c < nb; c++ {
			out[r*nb+c] = tile[c*nb+r]
		}
	}
	return out
}

// DiagTo extracts the scalar main diagonal into d.
func (b *BSR) DiagTo(d *Vector) {
	nb := b.Nb
	n := b.Row
	if b.Col < n {
		n = b.Col
	}
	if len(d.Data) != n*nb {
		panic(ErrShape)
	}
	for br := 0; br < n; br++ {
		for k := b.IA[br]; k < b.IA[br+1]; k++ {
			if b.JA[k] == br {
				tile := b.orientedTile(k)
				for l := 0; l < nb; l++ {
					d.Data[br*nb+l] = tile[l*nb+l]
				}
				break
			}
		}
	}
}

// DiagBlock returns the diagonal block of block-row br, or nil if block
// (br,br) is not stored. The returned slice is row-major regardless of
// Storage and must not be mutated by the caller.
func (b *BSR) DiagBlock(br int) []float64 {
	for k := b.IA[br]; k < b.IA[br+1]; k++ {
		if b.JA[k] == br {
			return b.orientedTile(k)
		}
	}
	return nil
}

// ToCSR expands the BSR matrix into an equivalent scalar CSR matrix. Used
// by routines (transpose, direct coarsest-level solve) that don't need
// block-aware performance.
func (b *BSR) ToCSR() *CSR {
	rows, cols := b.Dims()
	nb := b.Nb
	entries := make([]COOEntry, 0, b.NNZ())
	for br := 0; br < b.Row; br++ {
		for k := b.IA[br]; k < b.IA[br+1]; k++ {
			bc := b.JA[k]
			tile := b.orientedTile(k)
			for lr := 0; lr < nb; lr++ {
				for lc := 0; lc < nb; lc++ {
					v := tile[lr*nb+lc]
					if v != 0 {
						entries = append(entries, COOEntry{Row: br*nb + lr, Col: bc*nb + lc, Val: v})
					}
				}
			}
		}
	}
	return FromCOO(rows, cols, entries)
}
