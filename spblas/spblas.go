// Package spblas provides the low-level sparse BLAS-like kernels used by
// every matrix format in spmat: sparse AXPY/dot/gather/scatter over raw
// index/value slices, and block-tile kernels for BSR with specialized
// unrolled paths for block size nb in {2,3,5,7} and a generic fallback for
// any other size. Kernels here never allocate and never know about the
// higher-level matrix types — they operate on plain slices, mirroring the
// teacher's blas subpackage (Dusmv/Dusaxpy/Dusdot/Dusga/Dussc) generalized
// to cover block and banded structure.
package spblas

import "github.com/jbw-sparse/amgsolve/internal/parallel"

// Dusaxpy (sparse update, y <- alpha*x + y) scales the sparse vector x
// (values val at indices idx) by alpha and scatter-adds into dense y.
func Dusaxpy(alpha float64, val []float64, idx []int, y []float64) {
	if alpha == 0 {
		return
	}
	for i, j := range idx {
		y[j] += alpha * val[i]
	}
}

// Dusdot (sparse dot, r <- x^T*y) computes the inner product of a sparse
// vector (val at idx) against a dense vector y.
func Dusdot(val []float64, idx []int, y []float64) float64 {
	var dot float64
	for i, j := range idx {
		dot += val[i] * y[j]
	}
	return dot
}

// Dusga (sparse gather, x <- y|x) gathers entries from dense y into x at
// the positions given by idx.
func Dusga(y []float64, idx []int, x []float64) {
	for i, j := range idx {
		x[i] = y[j]
	}
}

// Dusgz (sparse gather and zero) gathers as Dusga then zeroes the
// gathered positions of y.
func Dusgz(y []float64, idx []int, x []float64) {
	for i, j := range idx {
		x[i] = y[j]
		y[j] = 0
	}
}

// Dussc (sparse scatter, y|x <- x) scatters sparse values x at positions
// idx into dense y.
func Dussc(x []float64, idx []int, y []float64) {
	for i, j := range idx {
		y[j] = x[i]
	}
}

// Dusmv (sparse matrix-vector multiply, y <- alpha*A*x + y or
// y <- alpha*A^T*x + y) drives a CSR-shaped (ia, ja, val) matrix against
// a dense vector. transA selects A^T. The untransposed path writes each
// y[i] independently and runs chunk-parallel across workers goroutines
// (spec.md section 5); the transposed path scatter-adds into shared
// positions of y across rows and always runs sequentially. workers <= 1
// runs sequentially either way.
func Dusmv(transA bool, alpha float64, rows int, ia, ja []int, val, x, y []float64, workers int) {
	if alpha == 0 {
		return
	}
	if transA {
		for i := 0; i < rows; i++ {
			Dusaxpy(alpha*x[i], val[ia[i]:ia[i+1]], ja[ia[i]:ia[i+1]], y)
		}
		return
	}
	parallel.For(workers, rows, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			y[i] += alpha * Dusdot(val[ia[i]:ia[i+1]], ja[ia[i]:ia[i+1]], x)
		}
	})
}
