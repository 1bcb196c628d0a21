// Package report renders assembled models in inspectable forms: the sparse
// stoichiometric matrix as a tab-separated table and a console summary of
// counts. Nothing here modifies a model.
package report

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/specialistvlad/fluxgrid/internal/fba"
	"github.com/specialistvlad/fluxgrid/internal/network"
)

// Header holds the column names of the matrix table.
var Header = []string{"Matrix Index", "Metabolite#", "MetaboliteID", "Reaction#", "ReactionID", "Stoichiometry"}

// WriteMatrix writes the header and one line per matrix entry, numbered from
// 1 in emission order. Metabolite and reaction indices are the model's.
func WriteMatrix(w io.Writer, m *fba.Model) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(Header, "\t") + "\n"); err != nil {
		return err
	}
	for i, e := range m.Entries {
		_, err := fmt.Fprintf(bw, "%d\t%d\t%s\t%d\t%s\t%s\n",
			i+1,
			e.Metabolite, m.Metabolites[e.Metabolite].ID,
			e.Reaction, m.Reactions[e.Reaction].ID,
			strconv.FormatFloat(e.Coefficient, 'g', -1, 64),
		)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FileName returns the report file name for a network.
func FileName(networkID string) string {
	id := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, networkID)
	if id == "" {
		id = "unnamed"
	}
	return "SM_" + id + ".tsv"
}

// WriteMatrixFile writes the matrix of m into dir, creating dir if needed,
// and returns the path written. Failures are io errors.
func WriteMatrixFile(dir string, m *fba.Model) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", network.Errorf(network.ErrIO, "could not create report directory %s: %v", dir, err)
	}
	path := filepath.Join(dir, FileName(m.NetworkID))
	f, err := os.Create(path)
	if err != nil {
		return "", network.Errorf(network.ErrIO, "could not open output file %s: %v", path, err)
	}
	if err := WriteMatrix(f, m); err != nil {
		_ = f.Close()
		return "", network.Errorf(network.ErrIO, "could not write output file %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		return "", network.Errorf(network.ErrIO, "could not close output file %s: %v", path, err)
	}
	return path, nil
}

// ReadMetaboliteIndex rebuilds the metabolite index to id map from a matrix
// table written by WriteMatrix. Metabolites without entries are absent.
func ReadMetaboliteIndex(r io.Reader) (map[int]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = len(Header)
	cr.LazyQuotes = true

	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if strings.Join(head, "\t") != strings.Join(Header, "\t") {
		return nil, fmt.Errorf("unexpected header %q", head)
	}

	out := make(map[int]string)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		idx, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("line %s: bad metabolite index %q", rec[0], rec[1])
		}
		if prev, ok := out[idx]; ok && prev != rec[2] {
			return nil, fmt.Errorf("line %s: metabolite %d is both %q and %q", rec[0], idx, prev, rec[2])
		}
		out[idx] = rec[2]
	}
}
