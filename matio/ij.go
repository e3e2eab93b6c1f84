package matio

import (
	"bufio"
	"fmt"
	"io"

	"github.com/jbw-sparse/amgsolve/spmat"
)

// ReadIJ reads the coordinate format of spec.md section 6: line 1 is
// "nrow ncol nnz"; the remaining lines are "i j v" triples, 0-indexed.
func ReadIJ(r io.Reader) (*spmat.CSR, error) {
	sc := newScanner(r)
	nrow, err := readInt(sc)
	if err != nil {
		return nil, fmt.Errorf("matio: ij: reading nrow: %w", err)
	}
	ncol, err := readInt(sc)
	if err != nil {
		return nil, fmt.Errorf("matio: ij: reading ncol: %w", err)
	}
	nnz, err := readInt(sc)
	if err != nil {
		return nil, fmt.Errorf("matio: ij: reading nnz: %w", err)
	}

	entries := make([]spmat.COOEntry, nnz)
	for k := 0; k < nnz; k++ {
		i, err := readInt(sc)
		if err != nil {
			return nil, fmt.Errorf("matio: ij: reading row %d: %w", k, err)
		}
		j, err := readInt(sc)
		if err != nil {
			return nil, fmt.Errorf("matio: ij: reading col %d: %w", k, err)
		}
		v, err := readFloat(sc)
		if err != nil {
			return nil, fmt.Errorf("matio: ij: reading val %d: %w", k, err)
		}
		entries[k] = spmat.COOEntry{Row: i, Col: j, Val: v}
	}
	return spmat.FromCOO(nrow, ncol, entries), nil
}

// WriteIJ writes a in coordinate format, 0-indexed, per spec.md section 6.
func WriteIJ(w io.Writer, a *spmat.CSR) error {
	nrow, ncol := a.Dims()
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, nrow, ncol, a.NNZ())
	for i := 0; i < nrow; i++ {
		cols, vals := a.RawRowView(i)
		for k, c := range cols {
			fmt.Fprintf(bw, "%d %d %.17e\n", i, c, vals[k])
		}
	}
	return bw.Flush()
}

// ReadVector reads the dense-vector format: line 1 is n, followed by n
// values.
func ReadVector(r io.Reader) (*spmat.Vector, error) {
	sc := newScanner(r)
	n, err := readInt(sc)
	if err != nil {
		return nil, fmt.Errorf("matio: vector: reading n: %w", err)
	}
	data, err := readFloats(sc, n)
	if err != nil {
		return nil, fmt.Errorf("matio: vector: reading values: %w", err)
	}
	return spmat.NewVector(n, data), nil
}

// WriteVector writes v in the dense-vector format.
func WriteVector(w io.Writer, v *spmat.Vector) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, v.Len())
	for _, x := range v.Data {
		fmt.Fprintf(bw, "%.17e\n", x)
	}
	return bw.Flush()
}

// ReadVectorIJ reads the "index value" variant of the dense-vector
// format: line 1 is n, followed by n "index value" pairs (the
// unmentioned entries, if any indices are skipped, default to zero).
func ReadVectorIJ(r io.Reader) (*spmat.Vector, error) {
	sc := newScanner(r)
	n, err := readInt(sc)
	if err != nil {
		return nil, fmt.Errorf("matio: vector-ij: reading n: %w", err)
	}
	v := spmat.NewVector(n, nil)
	for k := 0; k < n; k++ {
		idx, err := readInt(sc)
		if err != nil {
			return nil, fmt.Errorf("matio: vector-ij: reading index %d: %w", k, err)
		}
		val, err := readFloat(sc)
		if err != nil {
			return nil, fmt.Errorf("matio: vector-ij: reading value %d: %w", k, err)
		}
		v.SetVec(idx, val)
	}
	return v, nil
}

// WriteVectorIJ writes v as "index value" pairs for every entry.
func WriteVectorIJ(w io.Writer, v *spmat.Vector) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, v.Len())
	for i, x := range v.Data {
		fmt.Fprintf(bw, "%d %.17e\n", i, x)
	}
	return bw.Flush()
}
