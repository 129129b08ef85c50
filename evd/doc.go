// Package evd builds the relatedness matrix of the subjects that have both a
// pedigree entry and a valid trait value, and decomposes it into eigenvalues
// and eigenvectors.
//
// Subjects are taken in pedigree order. Matrix cells are looked up by the
// subjects' pedigree sequential ids, so pairs without an accepted kinship
// entry (including a missing self entry) are 0.
//
// Artifacts keyed by a base path B:
//
//	B.ids           subject ids, space separated, pedigree order
//	B.eigenvalues   ascending eigenvalues, space separated
//	B.eigenvectors  n*n values, column 0 first (column-major)
//	B.notes         count, phenotype source, trait and run id
package evd
