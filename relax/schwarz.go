package relax

import (
	"github.com/jbw-sparse/amgsolve/densekernel"
	"github.com/jbw-sparse/amgsolve/spmat"
)

// SchwarzBlock is one node's local dense subsystem: Nodes lists the
// global unknown indices covered (the node itself plus its supplied
// neighbor list), and Ainv is the precomputed inverse of A restricted to
// those rows/columns, stored row-major.
type SchwarzBlock struct {
	Nodes []int
	Ainv  []float64 // len(Nodes) x len(Nodes), row-major
}

// BuildSchwarz builds one SchwarzBlock per entry of neighbors (neighbors[i]
// is the full node list for block i, node i plus caller-supplied
// neighbors) by extracting and factoring the corresponding submatrix of a
// once; ill-conditioned blocks (determinant below the densekernel
// epsTiny) are skipped and Ainv left nil, so Schwarz adds no correction
// for that block rather than propagating NaN.
func BuildSchwarz(a *spmat.CSR, neighbors [][]int) []SchwarzBlock {
	blocks := make([]SchwarzBlock, len(neighbors))
	for bi, nodes := range neighbors {
		m := len(nodes)
		sub := make([]float64, m*m)
		for r, gi := range nodes {
			for c, gj := range nodes {
				sub[r*m+c] = a.At(gi, gj)
			}
		}
		ok := densekernel.Inverse(m, sub)
		blk := SchwarzBlock{Nodes: nodes}
		if ok {
			blk.Ainv = sub
		}
		blocks[bi] = blk
	}
	return blocks
}

// Schwarz performs nsweeps of block-additive Schwarz: for each block,
// compute the explicit residual restricted to the block's nodes, solve
// the local system via the precomputed inverse, and add the correction
// into u.
func Schwarz(a *spmat.CSR, b, u *spmat.Vector, blocks []SchwarzBlock, nsweeps int) {
	n, _ := a.Dims()
	r := spmat.NewVector(n, nil)
	for sweep := 0; sweep < nsweeps; sweep++ {
		a.MulVecTo(r, u)
		r.SubFrom(b, r)
		for _, blk := range blocks {
			if blk.Ainv == nil {
				continue
			}
			m := len(blk.Nodes)
			localR := make([]float64, m)
			for i, gi := range blk.Nodes {
				localR[i] = r.Data[gi]
			}
			delta := make([]float64, m)
			densekernel.MulVec(m, blk.Ainv, localR, delta)
			for i, gi := range blk.Nodes {
				u.Data[gi] += delta[i]
			}
		}
	}
}
