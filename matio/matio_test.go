package matio

import (
	"math"
	"strings"
	"testing"

	"github.com/jbw-sparse/amgsolve/spmat"
)

const symmetricMTX = `%%MatrixMarket matrix coordinate real symmetric
3 3 4
1 1 2.0
2 1 -1.0
2 2 2.0
3 3 2.0
`

// S6 (MatrixMarket round-trip): read a symmetric mtx file, write it back
// as CSR, re-read, and check A*x equality with the original for several
// vectors.
func TestMatrixMarketRoundTrip(t *testing.T) {
	a, err := ReadMatrixMarket(strings.NewReader(symmetricMTX))
	if err != nil {
		t.Fatalf("ReadMatrixMarket: %v", err)
	}
	if a.NNZ() != 5 { // 2*4 - 3 diagonal entries (m=3), expansion formula
		t.Fatalf("NNZ() = %d, want 5", a.NNZ())
	}
	if got, want := a.At(0, 1), -1.0; got != want {
		t.Fatalf("A[0][1] = %v, want %v (expanded from symmetric entry)", got, want)
	}

	var buf strings.Builder
	if err := WriteCSR(&buf, a); err != nil {
		t.Fatalf("WriteCSR: %v", err)
	}
	back, err := ReadCSR(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ReadCSR: %v", err)
	}

	vectors := [][]float64{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{1, 1, 1},
		{1, -2, 3},
	}
	for _, data := range vectors {
		x := spmat.NewVector(3, append([]float64(nil), data...))
		y1 := spmat.NewVector(3, nil)
		y2 := spmat.NewVector(3, nil)
		a.MulVecTo(y1, x)
		back.MulVecTo(y2, x)
		for i := 0; i < 3; i++ {
			if math.Abs(y1.Data[i]-y2.Data[i]) > 1e-12 {
				t.Fatalf("A*x mismatch after round-trip at %d: %v vs %v", i, y1.Data[i], y2.Data[i])
			}
		}
	}
}

func TestIJRoundTrip(t *testing.T) {
	entries := []spmat.COOEntry{
		{Row: 0, Col: 0, Val: 1},
		{Row: 0, Col: 2, Val: 2},
		{Row: 1, Col: 1, Val: 3},
	}
	a := spmat.FromCOO(2, 3, entries)
	var buf strings.Builder
	if err := WriteIJ(&buf, a); err != nil {
		t.Fatalf("WriteIJ: %v", err)
	}
	back, err := ReadIJ(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ReadIJ: %v", err)
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			if got, want := back.At(i, j), a.At(i, j); got != want {
				t.Fatalf("At(%d,%d) = %v, want %v", i, j, got, want)
			}
		}
	}
}

func TestVectorRoundTrip(t *testing.T) {
	v := spmat.NewVector(4, []float64{1.5, -2.25, 0, 3.75})
	var buf strings.Builder
	if err := WriteVector(&buf, v); err != nil {
		t.Fatalf("WriteVector: %v", err)
	}
	back, err := ReadVector(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ReadVector: %v", err)
	}
	for i := range v.Data {
		if back.Data[i] != v.Data[i] {
			t.Fatalf("Data[%d] = %v, want %v", i, back.Data[i], v.Data[i])
		}
	}
}
