// SPDX-License-Identifier: MIT

package kinship

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/fphi/fault"
)

// Person is an individual of the kinship table.
// SeqID is 1-based and follows first-seen order; FamilyID is 1-based.
type Person struct {
	OriginalID string
	SeqID      int
	FamilyID   int
}

// Entry is an accepted kinship observation keyed by sequential ids.
type Entry struct {
	ID1, ID2 int
	Kinship  float64
}

// pairKey is an unordered SeqID pair.
type pairKey struct{ lo, hi int }

func keyOf(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}

	return pairKey{a, b}
}

// Pedigree is the clustered result: persons in SeqID order, accepted entries
// in input order, and the number of families.
// A Pedigree is read-only once returned.
type Pedigree struct {
	Source   string
	Persons  []Person
	Entries  []Entry
	Families int
	Skipped  []fault.RecordError

	byID    map[string]int // original id -> index into Persons
	kinship map[pairKey]float64
}

// newPedigree indexes persons and entries for Lookup/IndexOf.
func newPedigree(source string, persons []Person, entries []Entry, families int, skipped []fault.RecordError) *Pedigree {
	p := &Pedigree{
		Source:   source,
		Persons:  persons,
		Entries:  entries,
		Families: families,
		Skipped:  skipped,
		byID:     make(map[string]int, len(persons)),
		kinship:  make(map[pairKey]float64, len(entries)),
	}
	for i, ps := range persons {
		p.byID[ps.OriginalID] = i
	}
	for _, e := range entries {
		// later duplicates overwrite earlier ones
		p.kinship[keyOf(e.ID1, e.ID2)] = e.Kinship
	}

	return p
}

// Lookup returns the accepted kinship between two sequential ids in either
// order. The boolean is false when no entry was accepted for the pair.
func (p *Pedigree) Lookup(id1, id2 int) (float64, bool) {
	v, ok := p.kinship[keyOf(id1, id2)]

	return v, ok
}

// IndexOf returns the position of originalID in Persons.
func (p *Pedigree) IndexOf(originalID string) (int, bool) {
	i, ok := p.byID[originalID]

	return i, ok
}

// Members returns the persons of family fam in SeqID order.
func (p *Pedigree) Members(fam int) []Person {
	var out []Person
	for _, ps := range p.Persons {
		if ps.FamilyID == fam {
			out = append(out, ps)
		}
	}

	return out
}

// Summary holds the totals reported after clustering.
// In a relatedness-only pedigree every family is a single nuclear family and
// every individual is a founder.
type Summary struct {
	Source          string
	Individuals     int
	Pedigrees       int
	NuclearFamilies int
	Founders        int
	Skipped         int
}

// Summary returns the pedigree totals.
func (p *Pedigree) Summary() Summary {
	return Summary{
		Source:          p.Source,
		Individuals:     len(p.Persons),
		Pedigrees:       p.Families,
		NuclearFamilies: p.Families,
		Founders:        len(p.Persons),
		Skipped:         len(p.Skipped),
	}
}

// String renders the totals block.
func (s Summary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\npedigree data file: %s\n\n", s.Source)
	fmt.Fprintf(&sb, "%5d pedigrees\n", s.Pedigrees)
	fmt.Fprintf(&sb, "%5d nuclear families\n", s.NuclearFamilies)
	fmt.Fprintf(&sb, "%5d individuals\n", s.Individuals)
	fmt.Fprintf(&sb, "%5d founders\n", s.Founders)
	if s.Skipped > 0 {
		fmt.Fprintf(&sb, "%5d records skipped\n", s.Skipped)
	}

	return sb.String()
}
