// SPDX-License-Identifier: MIT

package phenotype

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/katalvlaran/fphi/fault"
)

// Table is a phenotype table held in memory.
type Table struct {
	Source  string
	Headers []string
	Rows    [][]string
}

// Read parses a phenotype table. Rows may be ragged; missing cells read as
// missing values. Only a missing header or an I/O failure is fatal.
func Read(r io.Reader, source string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("phenotype: %s: missing header: %w", source, fault.ErrNoData)
	}
	if err != nil {
		return nil, fmt.Errorf("phenotype: %s: read header: %v: %w", source, err, fault.ErrMalformedInput)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	t := &Table{Source: source, Headers: trim(header)}
	var pe *csv.ParseError
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.As(err, &pe) {
			// unparseable row: it cannot contribute a value
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("phenotype: %s: %v: %w", source, err, fault.ErrIO)
		}
		t.Rows = append(t.Rows, trim(rec))
	}

	return t, nil
}

// Load opens and reads the phenotype table at path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("phenotype: open %s: %v: %w", path, err, fault.ErrIO)
	}
	defer f.Close()

	return Read(f, path)
}

// idColumn returns the index of the identifier column or -1.
func (t *Table) idColumn() int {
	for i, h := range t.Headers {
		if strings.EqualFold(h, "id") {
			return i
		}
	}

	return -1
}

// HasTrait reports whether name is a column header.
func (t *Table) HasTrait(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}

	return false
}

// Traits returns every header except the identifier column, in table order.
func (t *Table) Traits() []string {
	id := t.idColumn()
	out := make([]string, 0, len(t.Headers))
	for i, h := range t.Headers {
		if i != id {
			out = append(out, h)
		}
	}

	return out
}

// Columns resolves the identifier and trait column indices.
func (t *Table) Columns(trait string) (idCol, traitCol int, err error) {
	idCol = t.idColumn()
	if idCol < 0 {
		return -1, -1, fmt.Errorf("phenotype: %s: no id column: %w", t.Source, fault.ErrColumnNotFound)
	}
	for i, h := range t.Headers {
		if h == trait && i != idCol {
			return idCol, i, nil
		}
	}

	return -1, -1, fmt.Errorf("phenotype: %s: trait %q not found (available: %s): %w",
		t.Source, trait, strings.Join(t.Traits(), ", "), fault.ErrColumnNotFound)
}

// Values collects the valid (id, value) pairs of trait in row order.
// The first valid occurrence of an id wins.
func (t *Table) Values(trait string) (*Values, error) {
	idCol, traitCol, err := t.Columns(trait)
	if err != nil {
		return nil, err
	}
	v := &Values{Trait: trait, Source: t.Source, index: make(map[string]int)}
	for _, row := range t.Rows {
		if idCol >= len(row) || traitCol >= len(row) {
			continue
		}
		id := row[idCol]
		if id == "" {
			continue
		}
		x, ok := parseValue(row[traitCol])
		if !ok {
			continue
		}
		if _, dup := v.index[id]; dup {
			continue
		}
		v.index[id] = len(v.IDs)
		v.IDs = append(v.IDs, id)
		v.Data = append(v.Data, x)
	}

	return v, nil
}

// parseValue applies the missing-value rule.
func parseValue(s string) (float64, bool) {
	switch s {
	case "", "NA", ".":
		return 0, false
	}
	x, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, false
	}

	return x, true
}

func trim(fields []string) []string {
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	return fields
}
