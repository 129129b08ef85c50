// Package kinship groups individuals into families from a pairwise kinship
// list and persists the normalized family index.
//
// Input is a delimited table whose header carries two identifier columns
// (the first two names starting with "id", case-insensitively) and a "kin"
// column. Each record (id_a, id_b, kinship) registers unseen ids in first-seen
// order, which fixes their 1-based sequential ids.
//
// Inclusion rule:
//
//	id_a == id_b                   always kept (self-kinship)
//	threshold == 0 && kinship > 0  kept
//	threshold != 0 && kinship ≥ t  kept
//
// Families are the connected components of the accepted pairs. Roots are taken
// in ascending sequential id; each component is walked breadth-first and
// family ids 1..k are handed out in root order, so numbering depends only on
// the graph and the first-seen order of ids.
//
// Malformed records are never fatal on their own: they are skipped and
// reported in Pedigree.Skipped as fault.RecordError values. A table without a
// single usable record fails with fault.ErrNoData.
//
// On disk (see WriteIndex / OpenIndex):
//
//	pedindex.out  seq father mother sex family generation id
//	phi2.gz       "%7d %7d %.7f" per accepted entry (gzip); phi2 when uncompressed
//	pedigree.csv  summary counts
package kinship
