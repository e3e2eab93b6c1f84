package matio

import (
	"bufio"
	"fmt"
	"io"

	"github.com/jbw-sparse/amgsolve/spmat"
)

// ReadCSR reads the CSR text format of spec.md section 6: line 1 is n;
// the next n+1 lines are ia (1-indexed on the wire); the next nnz lines
// are ja (1-indexed); the next nnz lines are values.
func ReadCSR(r io.Reader) (*spmat.CSR, error) {
	sc := newScanner(r)
	n, err := readInt(sc)
	if err != nil {
		return nil, fmt.Errorf("matio: csr: reading n: %w", err)
	}
	ia, err := readInts(sc, n+1)
	if err != nil {
		return nil, fmt.Errorf("matio: csr: reading ia: %w", err)
	}
	nnz := ia[n] - 1 // ia is 1-indexed on the wire
	ja, err := readInts(sc, nnz)
	if err != nil {
		return nil, fmt.Errorf("matio: csr: reading ja: %w", err)
	}
	val, err := readFloats(sc, nnz)
	if err != nil {
		return nil, fmt.Errorf("matio: csr: reading val: %w", err)
	}

	var entries []spmat.COOEntry
	for i := 0; i < n; i++ {
		rowStart, rowEnd := ia[i]-1, ia[i+1]-1
		for k := rowStart; k < rowEnd; k++ {
			entries = append(entries, spmat.COOEntry{Row: i, Col: ja[k] - 1, Val: val[k]})
		}
	}
	return spmat.FromCOO(n, n, entries), nil
}

// WriteCSR writes a as CSR text per spec.md section 6 (1-indexed on the
// wire).
func WriteCSR(w io.Writer, a *spmat.CSR) error {
	n, _ := a.Dims()
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, n)
	offset := 0
	for i := 0; i <= n; i++ {
		if i < n {
			cols, _ := a.RawRowView(i)
			fmt.Fprintln(bw, offset+1)
			offset += len(cols)
		} else {
			fmt.Fprintln(bw, offset+1)
		}
	}
	for i := 0; i < n; i++ {
		cols, _ := a.RawRowView(i)
		for _, c := range cols {
			fmt.Fprintln(bw, c+1)
		}
	}
	for i := 0; i < n; i++ {
		_, vals := a.RawRowView(i)
		for _, v := range vals {
			fmt.Fprintf(bw, "%.17e\n", v)
		}
	}
	return bw.Flush()
}
