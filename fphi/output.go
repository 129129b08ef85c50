// SPDX-License-Identifier: MIT

package fphi

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/katalvlaran/fphi/fault"
)

// Output file suffixes appended to the base path.
const (
	SuffixResults    = "_fphi_results.out"
	SuffixParameters = "_parameters.out"
)

// FormatPValue renders p with six decimals, or in scientific notation with
// eleven digits after the point when p < 1e-6.
func FormatPValue(p float64) string {
	if p < 1e-6 {
		return fmt.Sprintf("%.11e", p)
	}

	return fmt.Sprintf("%.6f", p)
}

// WriteResults writes the single-row results table to base+SuffixResults.
func WriteResults(base string, r *Result) error {
	if r == nil {
		return fmt.Errorf("fphi: nil result: %w", fault.ErrNoData)
	}
	return writeFile(base+SuffixResults, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Trait,h2r,SE,loglik,sporadic_loglik,p_value,n_subjects\n%s,%.11f,%.11f,%.11f,%.11f,%s,%d\n",
			r.Trait, r.H2r, r.SE, r.LogLik, r.NullLogLik, FormatPValue(r.PValue), r.N)
		return err
	})
}

// WriteParameters writes the parameter table to base+SuffixParameters.
func WriteParameters(base string, r *Result) error {
	if r == nil {
		return fmt.Errorf("fphi: nil result: %w", fault.ErrNoData)
	}
	return writeFile(base+SuffixParameters, func(w io.Writer) error {
		rows := []struct {
			name string
			est  Param
		}{
			{"mean", r.Params.Mean},
			{"e2", r.Params.E2},
			{"h2r", r.Params.H2r},
			{"sd", r.Params.SD},
		}
		if _, err := io.WriteString(w, "Parameter,Value,SE\n"); err != nil {
			return err
		}
		for _, row := range rows {
			if _, err := fmt.Fprintf(w, "%s,%.11f,%.11f\n", row.name, row.est.Value, row.est.SE); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeFile(path string, fill func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("fphi: create %s: %v: %w", path, err, fault.ErrIO)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("fphi: close %s: %v: %w", path, cerr, fault.ErrIO)
		}
	}()
	w := bufio.NewWriter(f)
	if err = fill(w); err == nil {
		err = w.Flush()
	}
	if err != nil {
		return fmt.Errorf("fphi: write %s: %v: %w", path, err, fault.ErrIO)
	}

	return nil
}
