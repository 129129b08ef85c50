// SPDX-License-Identifier: MIT

package phenotype

// Values holds the valid observations of one trait in table row order.
type Values struct {
	Trait  string
	Source string
	IDs    []string
	Data   []float64

	index map[string]int
}

// NewValues builds Values from parallel slices; later duplicates of an id
// are ignored. It is mainly useful for callers that do not start from a file.
func NewValues(trait string, ids []string, data []float64) *Values {
	v := &Values{Trait: trait, index: make(map[string]int, len(ids))}
	for i, id := range ids {
		if i >= len(data) {
			break
		}
		if _, dup := v.index[id]; dup {
			continue
		}
		v.index[id] = len(v.IDs)
		v.IDs = append(v.IDs, id)
		v.Data = append(v.Data, data[i])
	}

	return v
}

// Len returns the number of valid observations.
func (v *Values) Len() int { return len(v.IDs) }

// Lookup returns the value recorded for id.
func (v *Values) Lookup(id string) (float64, bool) {
	i, ok := v.index[id]
	if !ok {
		return 0, false
	}

	return v.Data[i], true
}
