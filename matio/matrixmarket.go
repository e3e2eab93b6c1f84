package matio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/jbw-sparse/amgsolve/spmat"
)

// ReadMatrixMarket reads a MatrixMarket coordinate-format file (NIST
// MatrixMarket, 1-indexed on the wire). A "symmetric" matrix is expanded
// to full general storage on read (nnz -> 2*nnz - m, per spec.md section
// 6), duplicating every off-diagonal entry into its mirror position.
func ReadMatrixMarket(r io.Reader) (*spmat.CSR, error) {
	lr := bufio.NewReader(r)

	header, err := lr.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("matio: mtx: reading header: %w", err)
	}
	symmetric, err := parseMMHeader(header)
	if err != nil {
		return nil, err
	}

	var sizeLine string
	for {
		line, err := lr.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("matio: mtx: reading size line: %w", err)
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "%") {
			continue
		}
		sizeLine = trimmed
		break
	}

	var nrow, ncol, nnz int
	if _, err := fmt.Sscan(sizeLine, &nrow, &ncol, &nnz); err != nil {
		return nil, fmt.Errorf("matio: mtx: parsing size line %q: %w", sizeLine, err)
	}

	entries := make([]spmat.COOEntry, 0, nnz*2)
	sc := newScanner(lr)
	for k := 0; k < nnz; k++ {
		i, err := readInt(sc)
		if err != nil {
			return nil, fmt.Errorf("matio: mtx: reading row %d: %w", k, err)
		}
		j, err := readInt(sc)
		if err != nil {
			return nil, fmt.Errorf("matio: mtx: reading col %d: %w", k, err)
		}
		v, err := readFloat(sc)
		if err != nil {
			return nil, fmt.Errorf("matio: mtx: reading val %d: %w", k, err)
		}
		i--
		j--
		entries = append(entries, spmat.COOEntry{Row: i, Col: j, Val: v})
		if symmetric && i != j {
			entries = append(entries, spmat.COOEntry{Row: j, Col: i, Val: v})
		}
	}
	return spmat.FromCOO(nrow, ncol, entries), nil
}

func parseMMHeader(line string) (symmetric bool, err error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) < 2 || fields[0] != "%%matrixmarket" {
		return false, fmt.Errorf("matio: mtx: missing %%%%MatrixMarket banner")
	}
	for _, f := range fields[2:] {
		switch f {
		case "symmetric":
			symmetric = true
		case "general", "matrix", "coordinate", "real":
		default:
			// Other qualifiers (integer, pattern, complex, skew-symmetric,
			// hermitian) are out of scope for this reader.
		}
	}
	return symmetric, nil
}

// WriteMatrixMarket writes a as a general coordinate-format MatrixMarket
// file, 1-indexed.
func WriteMatrixMarket(w io.Writer, a *spmat.CSR) error {
	nrow, ncol := a.Dims()
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "%%MatrixMarket matrix coordinate real general")
	fmt.Fprintln(bw, nrow, ncol, a.NNZ())
	for i := 0; i < nrow; i++ {
		cols, vals := a.RawRowView(i)
		for k, c := range cols {
			fmt.Fprintf(bw, "%d %d %.17e\n", i+1, c+1, vals[k])
		}
	}
	return bw.Flush()
}
