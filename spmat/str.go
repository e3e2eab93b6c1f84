package spmat

import "gonum.org/v1/gonum/mat"

// STR is a structured-grid operator over an Nx x Ny x Nz grid with Nc
// coupled unknowns per node. Its sparsity pattern is a fixed set of band
// Offsets (in units of grid nodes) rather than an explicit row/column
// index array: node i couples to node i+Offsets[k] for every band k whose
// target node is in range.
type STR struct {
	Nx, Ny, Nz int
	Nc         int
	Offsets    []int
	// Diag has length Ngrid*Nc*Nc, row-major nc x nc block per node.
	Diag []float64
	// OffDiag[k] has length (Ngrid-|Offsets[k]|)*Nc*Nc: the nc x nc block
	// coupling node i to node i+Offsets[k], for i in
	// [max(0,-Offsets[k]), Ngrid-max(0,Offsets[k])).
	OffDiag [][]float64
}

var _ Matrix = (*STR)(nil)

// Ngrid returns the total number of grid nodes.
func (s *STR) Ngrid() int { return s.Nx * s.Ny * s.Nz }

// NewSTR constructs an STR matrix, validating array lengths against the
// format's invariants (spec-mandated shapes for Diag/OffDiag).
func NewSTR(nx, ny, nz, nc int, offsets []int, diag []float64, offdiag [][]float64) *STR {
	ngrid := nx * ny * nz
	if len(diag) != ngrid*nc*nc {
		panic(ErrShape)
	}
	if len(offdiag) != len(offsets) {
		panic(ErrShape)
	}
	for k, off := range offsets {
		want := (ngrid - absInt(off)) * nc * nc
		if want < 0 {
			want = 0
		}
		if len(offdiag[k]) != want {
			panic(ErrBandOffset)
		}
	}
	return &STR{Nx: nx, Ny: ny, Nz: nz, Nc: nc, Offsets: offsets, Diag: diag, OffDiag: offdiag}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Dims returns the scalar shape Ngrid*Nc x Ngrid*Nc (STR operators are
// always square).
func (s *STR) Dims() (int, int) {
	n := s.Ngrid() * s.Nc
	return n, n
}

// At returns the scalar element at (i, j) in unblocked coordinates. This
// walks the band list and is intended for tests/printing, not hot loops.
func (s *STR) At(i, j int) float64 {
	nc := s.Nc
	ni, li := i/nc, i%nc
	nj, lj := j/nc, j%nc
	if ni == nj {
		return s.Diag[ni*nc*nc+li*nc+lj]
	}
	off := nj - ni
	for k, o := range s.Offsets {
		if o == off {
			lo := maxInt(0, -o)
			if ni < lo || ni >= s.Ngrid()-maxInt(0, o) {
				return 0
			}
			idx := ni - lo
			return s.OffDiag[k][idx*nc*nc+li*nc+lj]
		}
	}
	return 0
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// T returns the matrix transpose. STR operators arising from symmetric
// discretizations are self-transpose when every band has a matching
// negated-offset band with the transposed block; this general
// implementation instead expands to CSR and transposes that, since AMG
// setup never needs a fast structured transpose.
func (s *STR) T() mat.Matrix { return s.ToCSR().T() }

// NNZ returns the count of scalar entries that are structurally non-zero
// (diagonal blocks plus every in-range off-diagonal block).
func (s *STR) NNZ() int {
	count := s.Ngrid() * s.Nc * s.Nc
	for k := range s.Offsets {
		count += len(s.OffDiag[k])
	}
	return count
}

// MulVecTo computes y <- A*x.
func (s *STR) MulVecTo(y, x *Vector) {
	n, _ := s.Dims()
	if len(x.Data) != n || len(y.Data) != n {
		panic(ErrShape)
	}
	y.Zero()
	s.MulVecAddTo(y, 1, x)
}

// MulVecAddTo computes y <- alpha*A*x + y. The inner loop walks the
// Nband off-diagonals; any band entry whose target node falls outside
// [0, Ngrid) is skipped (clamped), per the structured-matrix contract.
func (s *STR) MulVecAddTo(y *Vector, alpha float64, x *Vector) {
	n, _ := s.Dims()
	if len(x.Data) != n || len(y.Data) != n {
		panic(ErrShape)
	}
	if alpha == 0 {
		return
	}
	nc := s.Nc
	ngrid := s.Ngrid()
	for i := 0; i < ngrid; i++ {
		tile := s.Diag[i*nc*nc : i*nc*nc+nc*nc]
		applyBlockMulAdd(nc, alpha, tile, x.Data[i*nc:i*nc+nc], y.Data[i*nc:i*nc+nc])
	}
	for k, off := range s.Offsets {
		lo := maxInt(0, -off)
		hi := ngrid - maxInt(0, off)
		blk := s.OffDiag[k]
		for i := lo; i < hi; i++ {
			j := i + off
			tile := blk[(i-lo)*nc*nc : (i-lo)*nc*nc+nc*nc]
			applyBlockMulAdd(nc, alpha, tile, x.Data[j*nc:j*nc+nc], y.Data[i*nc:i*nc+nc])
		}
	}
}

func applyBlockMulAdd(nc int, alpha float64, tile, x, y []float64) {
	if nc == 1 {
		y[0] += alpha * tile[0] * x[0]
		return
	}
	for r := 0; r < nc; r++ {
		var sum float64
		row := tile[r*nc : r*nc+nc]
		for c := 0; c < nc; c++ {
			sum += row[c] * x[c]
		}
		y[r] += alpha * sum
	}
}

// MulTransVecTo computes y <- A^T*x. Because the band structure is
// symmetric in its offsets (band k's transpose couples the same pair of
// nodes with the block transposed), this walks the same band list and
// applies the transposed tile.
func (s *STR) MulTransVecTo(y, x *Vector) {
	n, _ := s.Dims()
	if len(x.Data) != n || len(y.Data) != n {
		panic(ErrShape)
	}
	y.Zero()
	nc := s.Nc
	ngrid := s.Ngrid()
	for i := 0; i < ngrid; i++ {
		tile := s.Diag[i*nc*nc : i*nc*nc+nc*nc]
		applyBlockMulAddT(nc, 1, tile, x.Data[i*nc:i*nc+nc], y.Data[i*nc:i*nc+nc])
	}
	for k, off := range s.Offsets {
		lo := maxInt(0, -off)
		hi := ngrid - maxInt(0, off)
		blk := s.OffDiag[k]
		for i := lo; i < hi; i++ {
			j := i + off
			tile := blk[(i-lo)*nc*nc : (i-lo)*nc*nc+nc*nc]
			// A[i,j] block transposed contributes to y[j] from x[i].
			applyBlockMulAddT(nc, 1, tile, x.Data[i*nc:i*nc+nc], y.Data[j*nc:j*nc+nc])
		}
	}
}

func applyBlockMulAddT(nc int, alpha float64, tile, x, y []float64) {
	for c := 0; c < nc; c++ {
		var sum float64
		for r := 0; r < nc; r++ {
			sum += tile[r*nc+c] * x[r]
		}
		y[c] += alpha * sum
	}
}

// DiagTo extracts the scalar main diagonal into d.
func (s *STR) DiagTo(d *Vector) {
	nc := s.Nc
	ngrid := s.Ngrid()
	if len(d.Data) != ngrid*nc {
		panic(ErrShape)
	}
	for i := 0; i < ngrid; i++ {
		for l := 0; l < nc; l++ {
			d.Data[i*nc+l] = s.Diag[i*nc*nc+l*nc+l]
		}
	}
}

// ToCSR expands the STR matrix into an equivalent scalar CSR matrix.
func (s *STR) ToCSR() *CSR {
	nc := s.Nc
	ngrid := s.Ngrid()
	n := ngrid * nc
	entries := make([]COOEntry, 0, s.NNZ())
	for i := 0; i < ngrid; i++ {
		tile := s.Diag[i*nc*nc : i*nc*nc+nc*nc]
		for lr := 0; lr < nc; lr++ {
			for lc := 0; lc < nc; lc++ {
				if v := tile[lr*nc+lc]; v != 0 {
					entries = append(entries, COOEntry{Row: i*nc + lr, Col: i*nc + lc, Val: v})
				}
			}
		}
	}
	for k, off := range s.Offsets {
		lo := maxInt(0, -off)
		hi := ngrid - maxInt(0, off)
		blk := s.OffDiag[k]
		for i := lo; i < hi; i++ {
			j := i + off
			tile := blk[(i-lo)*nc*nc : (i-lo)*nc*nc+nc*nc]
			for lr := 0; lr < nc; lr++ {
				for lc := 0; lc < nc; lc++ {
					if v := tile[lr*nc+lc]; v != 0 {
						entries = append(entries, COOEntry{Row: i*nc + lr, Col: j*nc + lc, Val: v})
					}
				}
			}
		}
	}
	return FromCOO(n, n, entries)
}
