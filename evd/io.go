// SPDX-License-Identifier: MIT

package evd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/katalvlaran/fphi/fault"
	"github.com/katalvlaran/fphi/matrix"
)

// Artifact file suffixes appended to the base path.
const (
	SuffixIDs     = ".ids"
	SuffixValues  = ".eigenvalues"
	SuffixVectors = ".eigenvectors"
	SuffixNotes   = ".notes"
)

// Notes is the provenance written next to an artifact.
type Notes struct {
	Phenotypes string // phenotype file used for id selection
	Trait      string
	RunID      string
}

// Write persists a under base. Floats use the shortest representation that
// parses back to the same value.
func Write(base string, a *Artifact, notes Notes) error {
	if a == nil || a.Vectors == nil {
		return fmt.Errorf("evd: nil artifact: %w", fault.ErrNoData)
	}
	n := a.N()

	if err := writeFile(base+SuffixIDs, func(w *bufio.Writer) error {
		_, err := w.WriteString(strings.Join(a.IDs, " ") + "\n")
		return err
	}); err != nil {
		return err
	}
	if err := writeFile(base+SuffixNotes, func(w *bufio.Writer) error {
		_, err := fmt.Fprintf(w, "Number of IDs: %d\nPhenotype filename used for ID selection: %s\nTrait used for ID selection: %s\n",
			n, notes.Phenotypes, notes.Trait)
		if err == nil && notes.RunID != "" {
			_, err = fmt.Fprintf(w, "Run ID: %s\n", notes.RunID)
		}
		return err
	}); err != nil {
		return err
	}
	if err := writeFile(base+SuffixValues, func(w *bufio.Writer) error {
		return writeFloats(w, a.Values)
	}); err != nil {
		return err
	}

	return writeFile(base+SuffixVectors, func(w *bufio.Writer) error {
		col := make([]float64, n)
		data := a.Vectors.Data()
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				col[i] = data[i*n+j]
			}
			if j > 0 {
				if err := w.WriteByte(' '); err != nil {
					return err
				}
			}
			if err := writeFloatsNoEOL(w, col); err != nil {
				return err
			}
		}
		return w.WriteByte('\n')
	})
}

// Read loads the ids, eigenvalues and eigenvectors written under base.
// Counts must agree: n ids, n values and n*n vector entries.
func Read(base string) (*Artifact, error) {
	idsRaw, err := readFields(base + SuffixIDs)
	if err != nil {
		return nil, err
	}
	n := len(idsRaw)
	if n == 0 {
		return nil, fmt.Errorf("evd: %s: no ids: %w", base+SuffixIDs, fault.ErrNoData)
	}
	values, err := readFloats(base+SuffixValues, n)
	if err != nil {
		return nil, err
	}
	colMajor, err := readFloats(base+SuffixVectors, n*n)
	if err != nil {
		return nil, err
	}

	rowMajor := make([]float64, n*n)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			rowMajor[i*n+j] = colMajor[j*n+i]
		}
	}
	vectors, err := matrix.NewDenseFrom(n, n, rowMajor)
	if err != nil {
		return nil, err
	}

	return &Artifact{IDs: idsRaw, Values: values, Vectors: vectors}, nil
}

func writeFloats(w *bufio.Writer, xs []float64) error {
	if err := writeFloatsNoEOL(w, xs); err != nil {
		return err
	}

	return w.WriteByte('\n')
}

func writeFloatsNoEOL(w *bufio.Writer, xs []float64) error {
	buf := make([]byte, 0, 32)
	for i, x := range xs {
		if i > 0 {
			if err := w.WriteByte(' '); err != nil {
				return err
			}
		}
		buf = strconv.AppendFloat(buf[:0], x, 'g', -1, 64)
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}

	return nil
}

func writeFile(path string, fill func(*bufio.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("evd: create %s: %v: %w", path, err, fault.ErrIO)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("evd: close %s: %v: %w", path, cerr, fault.ErrIO)
		}
	}()
	w := bufio.NewWriter(f)
	if err = fill(w); err == nil {
		err = w.Flush()
	}
	if err != nil {
		return fmt.Errorf("evd: write %s: %v: %w", path, err, fault.ErrIO)
	}

	return nil
}

func readFields(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("evd: open %s: %v: %w", path, err, fault.ErrIO)
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<30)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	if err := sc.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("evd: read %s: %v: %w", path, err, fault.ErrIO)
	}

	return out, nil
}

func readFloats(path string, want int) ([]float64, error) {
	fields, err := readFields(path)
	if err != nil {
		return nil, err
	}
	if len(fields) != want {
		return nil, fmt.Errorf("evd: %w", &fault.RecordError{
			Source: path, Line: 1,
			Reason: fmt.Sprintf("expected %d values, found %d", want, len(fields)),
		})
	}
	out := make([]float64, want)
	for i, s := range fields {
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("evd: %w", &fault.RecordError{
				Source: path, Line: 1, Reason: fmt.Sprintf("value %d: %q is not a number", i+1, s),
			})
		}
		out[i] = x
	}

	return out, nil
}
