package matio

import (
	"bufio"
	"fmt"
	"io"

	"github.com/jbw-sparse/amgsolve/spmat"
)

// ReadBSR reads the BSR format of spec.md section 6: line 1 is
// "ROW COL NNZ" (block-grid shape and block count); then nb; then
// storage_manner; then "|IA|" + IA; then "|JA|" + JA; then "|val|" + val.
func ReadBSR(r io.Reader) (*spmat.BSR, error) {
	sc := newScanner(r)
	row, err := readInt(sc)
	if err != nil {
		return nil, fmt.Errorf("matio: bsr: reading ROW: %w", err)
	}
	col, err := readInt(sc)
	if err != nil {
		return nil, fmt.Errorf("matio: bsr: reading COL: %w", err)
	}
	if _, err := readInt(sc); err != nil { // NNZ (block count); recomputed from IA below
		return nil, fmt.Errorf("matio: bsr: reading NNZ: %w", err)
	}
	nb, err := readInt(sc)
	if err != nil {
		return nil, fmt.Errorf("matio: bsr: reading nb: %w", err)
	}
	storageCode, err := readInt(sc)
	if err != nil {
		return nil, fmt.Errorf("matio: bsr: reading storage_manner: %w", err)
	}
	storage := spmat.RowMajor
	if storageCode != 0 {
		storage = spmat.ColMajor
	}

	lenIA, err := readInt(sc)
	if err != nil {
		return nil, fmt.Errorf("matio: bsr: reading |IA|: %w", err)
	}
	ia, err := readInts(sc, lenIA)
	if err != nil {
		return nil, fmt.Errorf("matio: bsr: reading IA: %w", err)
	}
	lenJA, err := readInt(sc)
	if err != nil {
		return nil, fmt.Errorf("matio: bsr: reading |JA|: %w", err)
	}
	ja, err := readInts(sc, lenJA)
	if err != nil {
		return nil, fmt.Errorf("matio: bsr: reading JA: %w", err)
	}
	lenVal, err := readInt(sc)
	if err != nil {
		return nil, fmt.Errorf("matio: bsr: reading |val|: %w", err)
	}
	val, err := readFloats(sc, lenVal)
	if err != nil {
		return nil, fmt.Errorf("matio: bsr: reading val: %w", err)
	}

	return spmat.NewBSR(row, col, nb, storage, ia, ja, val), nil
}

// WriteBSR writes b in the BSR format of spec.md section 6.
func WriteBSR(w io.Writer, b *spmat.BSR) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, b.Row, b.Col, b.NNZ_)
	fmt.Fprintln(bw, b.Nb)
	storageCode := 0
	if b.Storage == spmat.ColMajor {
		storageCode = 1
	}
	fmt.Fprintln(bw, storageCode)

	fmt.Fprintln(bw, len(b.IA))
	for _, v := range b.IA {
		fmt.Fprintln(bw, v)
	}
	fmt.Fprintln(bw, len(b.JA))
	for _, v := range b.JA {
		fmt.Fprintln(bw, v)
	}
	fmt.Fprintln(bw, len(b.Val))
	for _, v := range b.Val {
		fmt.Fprintf(bw, "%.17e\n", v)
	}
	return bw.Flush()
}
