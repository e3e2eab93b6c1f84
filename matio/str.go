package matio

import (
	"bufio"
	"fmt"
	"io"

	"github.com/jbw-sparse/amgsolve/spmat"
)

// ReadSTR reads the STR format of spec.md section 6: line 1 is
// "nx ny nz"; then nc; then nband; then |diag| followed by diag entries;
// then for each band, "offset length" followed by that many entries.
func ReadSTR(r io.Reader) (*spmat.STR, error) {
	sc := newScanner(r)
	nx, err := readInt(sc)
	if err != nil {
		return nil, fmt.Errorf("matio: str: reading nx: %w", err)
	}
	ny, err := readInt(sc)
	if err != nil {
		return nil, fmt.Errorf("matio: str: reading ny: %w", err)
	}
	nz, err := readInt(sc)
	if err != nil {
		return nil, fmt.Errorf("matio: str: reading nz: %w", err)
	}
	nc, err := readInt(sc)
	if err != nil {
		return nil, fmt.Errorf("matio: str: reading nc: %w", err)
	}
	nband, err := readInt(sc)
	if err != nil {
		return nil, fmt.Errorf("matio: str: reading nband: %w", err)
	}
	ndiag, err := readInt(sc)
	if err != nil {
		return nil, fmt.Errorf("matio: str: reading |diag|: %w", err)
	}
	diag, err := readFloats(sc, ndiag)
	if err != nil {
		return nil, fmt.Errorf("matio: str: reading diag: %w", err)
	}

	offsets := make([]int, nband)
	offdiag := make([][]float64, nband)
	for k := 0; k < nband; k++ {
		off, err := readInt(sc)
		if err != nil {
			return nil, fmt.Errorf("matio: str: reading band %d offset: %w", k, err)
		}
		length, err := readInt(sc)
		if err != nil {
			return nil, fmt.Errorf("matio: str: reading band %d length: %w", k, err)
		}
		vals, err := readFloats(sc, length)
		if err != nil {
			return nil, fmt.Errorf("matio: str: reading band %d entries: %w", k, err)
		}
		offsets[k] = off
		offdiag[k] = vals
	}
	return spmat.NewSTR(nx, ny, nz, nc, offsets, diag, offdiag), nil
}

// WriteSTR writes s in the STR format of spec.md section 6.
func WriteSTR(w io.Writer, s *spmat.STR) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, s.Nx, s.Ny, s.Nz)
	fmt.Fprintln(bw, s.Nc)
	fmt.Fprintln(bw, len(s.Offsets))
	fmt.Fprintln(bw, len(s.Diag))
	for _, v := range s.Diag {
		fmt.Fprintf(bw, "%.17e\n", v)
	}
	for k, off := range s.Offsets {
		entries := s.OffDiag[k]
		fmt.Fprintln(bw, off, len(entries))
		for _, v := range entries {
			fmt.Fprintf(bw, "%.17e\n", v)
		}
	}
	return bw.Flush()
}
