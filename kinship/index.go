// SPDX-License-Identifier: MIT

package kinship

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/katalvlaran/fphi/fault"
)

// Artifact file names inside the index directory.
const (
	IndexFile      = "pedindex.out"
	KinshipFile    = "phi2"
	KinshipGzFile  = "phi2.gz"
	SummaryCSVFile = "pedigree.csv"
)

var summaryHeader = []string{"source_file", "total_individuals", "total_pedigrees", "total_nuclear_families", "founders"}

// WriteIndex persists p into dir, creating dir if needed. Existing files are
// overwritten. Kinship values are written with 7 decimals, so a pedigree
// read back by OpenIndex carries the rounded values.
func WriteIndex(dir string, p *Pedigree, compress bool) error {
	if p == nil {
		return fmt.Errorf("kinship: nil pedigree: %w", fault.ErrNoData)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ioErr("mkdir", dir, err)
	}
	if err := writeFile(filepath.Join(dir, IndexFile), false, func(w io.Writer) error {
		return writePedindex(w, p)
	}); err != nil {
		return err
	}

	kin := filepath.Join(dir, KinshipFile)
	stale := filepath.Join(dir, KinshipGzFile)
	if compress {
		kin, stale = stale, kin
	}
	if err := writeFile(kin, compress, func(w io.Writer) error {
		return writePhi2(w, p)
	}); err != nil {
		return err
	}
	// OpenIndex prefers phi2.gz, so a leftover from an earlier run must go
	if err := os.Remove(stale); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ioErr("remove", stale, err)
	}

	return writeFile(filepath.Join(dir, SummaryCSVFile), false, func(w io.Writer) error {
		return writeSummaryCSV(w, p.Summary())
	})
}

func writePedindex(w io.Writer, p *Pedigree) error {
	for _, ps := range p.Persons {
		if _, err := fmt.Fprintf(w, "%5d %5d %5d %3d %5d %5d  %s\n",
			ps.SeqID, 0, 0, 0, ps.FamilyID, 1, ps.OriginalID); err != nil {
			return err
		}
	}

	return nil
}

func writePhi2(w io.Writer, p *Pedigree) error {
	for _, e := range p.Entries {
		if _, err := fmt.Fprintf(w, "%7d %7d %.7f\n", e.ID1, e.ID2, e.Kinship); err != nil {
			return err
		}
	}

	return nil
}

func writeSummaryCSV(w io.Writer, s Summary) error {
	cw := csv.NewWriter(w)
	_ = cw.Write(summaryHeader)
	_ = cw.Write([]string{
		s.Source,
		strconv.Itoa(s.Individuals),
		strconv.Itoa(s.Pedigrees),
		strconv.Itoa(s.NuclearFamilies),
		strconv.Itoa(s.Founders),
	})
	cw.Flush()

	return cw.Error()
}

// writeFile creates path and streams fill into it, optionally gzip-compressed.
func writeFile(path string, gz bool, fill func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return ioErr("create", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = ioErr("close", path, cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	var (
		w  io.Writer = bw
		zw *gzip.Writer
	)
	if gz {
		zw = gzip.NewWriter(bw)
		zw.Name = strings.TrimSuffix(filepath.Base(path), ".gz")
		w = zw
	}
	if err = fill(w); err != nil {
		return ioErr("write", path, err)
	}
	if zw != nil {
		if err = zw.Close(); err != nil {
			return ioErr("gzip", path, err)
		}
	}
	if err = bw.Flush(); err != nil {
		return ioErr("flush", path, err)
	}

	return nil
}

// OpenIndex reads a family index written by WriteIndex. It prefers phi2.gz
// and falls back to phi2.
func OpenIndex(dir string) (*Pedigree, error) {
	persons, families, err := readPedindex(filepath.Join(dir, IndexFile))
	if err != nil {
		return nil, err
	}
	entries, err := readPhi2(dir, len(persons))
	if err != nil {
		return nil, err
	}
	source, err := readSummarySource(filepath.Join(dir, SummaryCSVFile))
	if err != nil {
		return nil, err
	}

	return newPedigree(source, persons, entries, families, nil), nil
}

func readPedindex(path string) ([]Person, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, ioErr("open", path, err)
	}
	defer f.Close()

	var (
		persons  []Person
		families int
		line     int
	)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 7 {
			return nil, 0, malformed(path, line, "expected 7 fields")
		}
		seq, err1 := strconv.Atoi(fields[0])
		fam, err2 := strconv.Atoi(fields[4])
		if err1 != nil || err2 != nil || seq != len(persons)+1 || fam < 1 {
			return nil, 0, malformed(path, line, "bad sequence or family id")
		}
		persons = append(persons, Person{OriginalID: strings.Join(fields[6:], " "), SeqID: seq, FamilyID: fam})
		families = max(families, fam)
	}
	if err := sc.Err(); err != nil {
		return nil, 0, ioErr("read", path, err)
	}
	if len(persons) == 0 {
		return nil, 0, fmt.Errorf("kinship: %s: empty index: %w", path, fault.ErrNoData)
	}

	return persons, families, nil
}

func readPhi2(dir string, n int) ([]Entry, error) {
	path := filepath.Join(dir, KinshipGzFile)
	f, err := os.Open(path)
	gz := err == nil
	if errors.Is(err, fs.ErrNotExist) {
		path = filepath.Join(dir, KinshipFile)
		f, err = os.Open(path)
	}
	if err != nil {
		return nil, ioErr("open", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if gz {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, ioErr("gzip", path, err)
		}
		defer zr.Close()
		r = zr
	}

	var (
		entries []Entry
		line    int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return nil, malformed(path, line, "expected 3 fields")
		}
		a, err1 := strconv.Atoi(fields[0])
		b, err2 := strconv.Atoi(fields[1])
		k, err3 := strconv.ParseFloat(fields[2], 64)
		if err1 != nil || err2 != nil || err3 != nil || a < 1 || b < 1 || a > n || b > n {
			return nil, malformed(path, line, "bad entry")
		}
		entries = append(entries, Entry{ID1: a, ID2: b, Kinship: k})
	}
	if err := sc.Err(); err != nil {
		return nil, ioErr("read", path, err)
	}

	return entries, nil
}

func readSummarySource(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", ioErr("open", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil || len(rows) < 2 || len(rows[1]) == 0 {
		return "", malformed(path, 2, "missing summary row")
	}

	return rows[1][0], nil
}

func ioErr(op, path string, err error) error {
	return fmt.Errorf("kinship: %s %s: %v: %w", op, path, err, fault.ErrIO)
}

func malformed(path string, line int, reason string) error {
	return fmt.Errorf("kinship: %w", &fault.RecordError{Source: path, Line: line, Reason: reason})
}
