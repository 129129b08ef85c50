// SPDX-License-Identifier: MIT

package kinship

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/katalvlaran/fphi/fault"
)

// Record is one data row of a kinship table together with its 1-based line.
type Record struct {
	Line   int
	Fields []string
}

// Table is a parsed kinship table prior to clustering.
//
// IDA, IDB and Kin are the resolved column indices, or -1 when the header
// does not carry the column. Rows that the CSV layer itself could not parse
// are kept in Skipped.
type Table struct {
	Source  string
	Header  []string
	Records []Record
	IDA     int
	IDB     int
	Kin     int
	Skipped []fault.RecordError
}

// ReadTable reads a comma-separated kinship table with a header line.
//
// Only an empty input (no header) or an I/O failure is fatal here; column
// presence is checked by Cluster so that FormatAuto can report
// ErrUnsupportedFormat.
func ReadTable(r io.Reader, source string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("kinship: %s: missing header: %w", source, fault.ErrNoData)
	}
	if err != nil {
		return nil, fmt.Errorf("kinship: %s: read header: %w", source, fault.ErrMalformedInput)
	}

	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	t := &Table{Source: source, Header: trimAll(header), IDA: -1, IDB: -1, Kin: -1}
	t.resolveColumns()

	var pe *csv.ParseError
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.As(err, &pe) {
			t.Skipped = append(t.Skipped, fault.RecordError{Source: source, Line: pe.Line, Reason: pe.Err.Error()})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("kinship: %s: %v: %w", source, err, fault.ErrIO)
		}
		line, _ := cr.FieldPos(0)
		t.Records = append(t.Records, Record{Line: line, Fields: trimAll(fields)})
	}

	return t, nil
}

// Empirical reports whether the header carries both id columns and kin.
func (t *Table) Empirical() bool {
	return t.IDA >= 0 && t.IDB >= 0 && t.Kin >= 0
}

// resolveColumns applies the header rule: the first two names starting with
// "id" become IDA and IDB, the column named "kin" is the kinship.
func (t *Table) resolveColumns() {
	for i, name := range t.Header {
		lower := strings.ToLower(name)
		switch {
		case strings.HasPrefix(lower, "id"):
			if t.IDA < 0 {
				t.IDA = i
			} else if t.IDB < 0 {
				t.IDB = i
			}
		case lower == "kin":
			t.Kin = i
		}
	}
}

func trimAll(fields []string) []string {
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	return fields
}
