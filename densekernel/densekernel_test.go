package densekernel

import (
	"math"
	"testing"
)

func TestInverseSpecializedSizesMatchIdentity(t *testing.T) {
	for _, n := range []int{2, 3, 5, 7} {
		a := make([]float64, n*n)
		for i := 0; i < n; i++ {
			a[i*n+i] = 2
			if i > 0 {
				a[i*n+i-1] = -1
			}
			if i < n-1 {
				a[i*n+i+1] = -1
			}
		}
		orig := append([]float64(nil), a...)
		if ok := Inverse(n, a); !ok {
			t.Fatalf("Inverse(%d) reported singular for a well-conditioned matrix", n)
		}
		prod := make([]float64, n*n)
		Mul(n, orig, a, prod)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				want := 0.0
				if i == j {
					want = 1
				}
				if math.Abs(prod[i*n+j]-want) > 1e-8 {
					t.Fatalf("n=%d: (A*Ainv)[%d][%d] = %v, want %v", n, i, j, prod[i*n+j], want)
				}
			}
		}
	}
}

func TestInverseSingularReportsFalse(t *testing.T) {
	a := make([]float64, 4) // 2x2 all zero
	if ok := Inverse(2, a); ok {
		t.Fatalf("Inverse reported success on a singular (zero) matrix")
	}
}
