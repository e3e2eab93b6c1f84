package spmat

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	_ mat.Matrix = (*Vector)(nil)
	_ mat.Vector = (*Vector)(nil)
)

// Vector is a dense vector of length Len, owned exclusively by its
// producer; consumers receive a borrow and must not retain Data beyond
// the call unless the contract says otherwise.
type Vector struct {
	Data []float64
}

// NewVector returns a new dense vector of the given length. If data is
// non-nil it is used as the backing storage (len(data) must equal n).
func NewVector(n int, data []float64) *Vector {
	if data == nil {
		data = make([]float64, n)
	} else if len(data) != n {
		panic(ErrShape)
	}
	return &Vector{Data: data}
}

// Dims returns the vector's shape as an n x 1 matrix.
func (v *Vector) Dims() (r, c int) { return len(v.Data), 1 }

// At returns the element at row i, column 0.
func (v *Vector) At(i, j int) float64 {
	if j != 0 {
		panic(ErrColAccess)
	}
	return v.AtVec(i)
}

// T returns the transpose of the receiver as a 1 x n matrix.
func (v *Vector) T() mat.Matrix { return mat.TransposeVec{Vector: v} }

// AtVec returns the i'th element of the vector.
func (v *Vector) AtVec(i int) float64 {
	if i < 0 || i >= len(v.Data) {
		panic(ErrRowAccess)
	}
	return v.Data[i]
}

// SetVec sets the i'th element of the vector to val.
func (v *Vector) SetVec(i int, val float64) {
	if i < 0 || i >= len(v.Data) {
		panic(ErrRowAccess)
	}
	v.Data[i] = val
}

// Len returns the length of the vector.
func (v *Vector) Len() int { return len(v.Data) }

// Clone returns a deep copy of the receiver.
func (v *Vector) Clone() *Vector {
	data := make([]float64, len(v.Data))
	copy(data, v.Data)
	return &Vector{Data: data}
}

// CopyFrom copies the contents of src into the receiver; panics if the
// lengths differ.
func (v *Vector) CopyFrom(src *Vector) {
	if len(v.Data) != len(src.Data) {
		panic(ErrShape)
	}
	copy(v.Data, src.Data)
}

// Fill sets every element of the vector to val.
func (v *Vector) Fill(val float64) {
	for i := range v.Data {
		v.Data[i] = val
	}
}

// Zero sets every element of the vector to 0.
func (v *Vector) Zero() { v.Fill(0) }

// Norm2 returns the Euclidean (l2) norm of the vector.
func (v *Vector) Norm2() float64 {
	return floats.Norm(v.Data, 2)
}

// NormInf returns the infinity norm (max absolute value) of the vector.
func (v *Vector) NormInf() float64 {
	var m float64
	for _, x := range v.Data {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}

// Dot returns the inner product of v and w.
func (v *Vector) Dot(w *Vector) float64 {
	if len(v.Data) != len(w.Data) {
		panic(ErrShape)
	}
	return floats.Dot(v.Data, w.Data)
}

// AXPY performs v <- alpha*x + v.
func (v *Vector) AXPY(alpha float64, x *Vector) {
	if len(v.Data) != len(x.Data) {
		panic(ErrShape)
	}
	floats.AddScaled(v.Data, alpha, x.Data)
}

// ScaleFrom sets v <- alpha*x.
func (v *Vector) ScaleFrom(alpha float64, x *Vector) {
	if len(v.Data) != len(x.Data) {
		panic(ErrShape)
	}
	for i, xi := range x.Data {
		v.Data[i] = alpha * xi
	}
}

// SubFrom sets v <- a - b.
func (v *Vector) SubFrom(a, b *Vector) {
	if len(a.Data) != len(b.Data) || len(v.Data) != len(a.Data) {
		panic(ErrShape)
	}
	for i := range v.Data {
		v.Data[i] = a.Data[i] - b.Data[i]
	}
}

// IVector is an integer-valued vector of the same shape convention as
// Vector, used for C/F markers, permutations and pivots.
type IVector struct {
	Data []int
}

// NewIVector returns a new integer vector of length n.
func NewIVector(n int) *IVector {
	return &IVector{Data: make([]int, n)}
}

// Len returns the length of the vector.
func (v *IVector) Len() int { return len(v.Data) }

// Fill sets every element to val.
func (v *IVector) Fill(val int) {
	for i := range v.Data {
		v.Data[i] = val
	}
}
