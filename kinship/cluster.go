// SPDX-License-Identifier: MIT

package kinship

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/katalvlaran/fphi/fault"
)

// Cluster applies the inclusion rule to every record of t and partitions the
// registered persons into families.
//
// Errors:
//   - ErrOptionViolation for invalid options.
//   - ErrUnsupportedFormat (FormatAuto) or fault.ErrColumnNotFound
//     (FormatEmpirical) when the header lacks IDA, IDB or KIN.
//   - fault.ErrNoData when no record was usable.
//
// Complexity: O(R + V + E) with R records, V persons and E accepted entries.
func Cluster(t *Table, opts ...Option) (*Pedigree, error) {
	o, err := buildOptions(opts...)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("kinship: nil table: %w", fault.ErrNoData)
	}
	if !t.Empirical() {
		if o.Format == FormatAuto {
			return nil, fmt.Errorf("kinship: %s: expected IDA,IDB,KIN header: %w: %w",
				t.Source, ErrUnsupportedFormat, fault.ErrColumnNotFound)
		}

		return nil, fmt.Errorf("kinship: %s: missing IDA, IDB or KIN column: %w", t.Source, fault.ErrColumnNotFound)
	}

	need := max(t.IDA, t.IDB, t.Kin)
	skipped := append([]fault.RecordError(nil), t.Skipped...)

	var (
		persons []Person
		entries []Entry
		seq     = make(map[string]int) // original id -> SeqID
		usable  int
	)
	register := func(id string) int {
		if s, ok := seq[id]; ok {
			return s
		}
		s := len(persons) + 1
		seq[id] = s
		persons = append(persons, Person{OriginalID: id, SeqID: s})

		return s
	}

	for _, rec := range t.Records {
		if len(rec.Fields) <= need {
			skipped = append(skipped, fault.RecordError{Source: t.Source, Line: rec.Line, Reason: "insufficient fields"})
			continue
		}
		ida, idb := rec.Fields[t.IDA], rec.Fields[t.IDB]
		if ida == "" || idb == "" {
			skipped = append(skipped, fault.RecordError{Source: t.Source, Line: rec.Line, Reason: "empty identifier"})
			continue
		}
		// Identifiers are stored space separated next to the decomposition.
		if strings.ContainsFunc(ida, unicode.IsSpace) || strings.ContainsFunc(idb, unicode.IsSpace) {
			skipped = append(skipped, fault.RecordError{Source: t.Source, Line: rec.Line, Reason: "identifier contains whitespace"})
			continue
		}
		kin, perr := strconv.ParseFloat(rec.Fields[t.Kin], 64)
		if perr != nil || math.IsNaN(kin) || math.IsInf(kin, 0) {
			skipped = append(skipped, fault.RecordError{
				Source: t.Source, Line: rec.Line,
				Reason: fmt.Sprintf("invalid kinship %q", rec.Fields[t.Kin]),
			})
			continue
		}

		usable++
		a, b := register(ida), register(idb)
		if o.accepts(a == b, kin) {
			entries = append(entries, Entry{ID1: a, ID2: b, Kinship: kin})
		}
	}
	if usable == 0 {
		return nil, fmt.Errorf("kinship: %s: no usable records (%d skipped): %w", t.Source, len(skipped), fault.ErrNoData)
	}

	families := assignFamilies(persons, entries)

	return newPedigree(t.Source, persons, entries, families, skipped), nil
}

// assignFamilies labels connected components in place and returns their count.
// Roots are visited in ascending SeqID; neighbors are discovered breadth-first
// in entry order. Self entries add no edge.
func assignFamilies(persons []Person, entries []Entry) int {
	n := len(persons)
	adj := make([][]int, n)
	for _, e := range entries {
		if e.ID1 == e.ID2 {
			continue
		}
		u, v := e.ID1-1, e.ID2-1
		adj[u] = append(adj[u], v)
		adj[v] = append(adj[v], u)
	}

	seen := make([]bool, n)
	fam := 0
	for root := 0; root < n; root++ {
		if seen[root] {
			continue
		}
		fam++
		queue := []int{root}
		seen[root] = true
		for qi := 0; qi < len(queue); qi++ {
			u := queue[qi]
			persons[u].FamilyID = fam
			for _, v := range adj[u] {
				if !seen[v] {
					seen[v] = true
					queue = append(queue, v)
				}
			}
		}
	}

	return fam
}

// Load reads and clusters the kinship table at path.
func Load(path string, opts ...Option) (*Pedigree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("kinship: open %s: %v: %w", path, err, fault.ErrIO)
	}
	defer f.Close()

	t, err := ReadTable(f, path)
	if err != nil {
		return nil, err
	}

	return Cluster(t, opts...)
}
