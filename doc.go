// Package fphi estimates the narrow-sense heritability of quantitative traits
// from pairwise kinship and phenotype tables.
//
// 🚀 What is in the box?
//
//	Three stages, each usable on its own or chained through a session:
//		• Family clustering: kinship pairs → persons, families, pedigree index
//		• Relatedness EVD: phenotyped subjects → eigenvalues & eigenvectors
//		• FPHI: reparameterized Newton search for h2r, boundary check,
//		  observed-information standard errors and a likelihood-ratio p-value
//
// Packages:
//
//	kinship/    kinship CSV parsing, BFS family clustering, pedigree index files
//	phenotype/  phenotype CSV and per-trait value selection
//	matrix/     dense row-major matrices, Gauss-Jordan inverse, symmetric eigensolvers
//	evd/        relatedness matrix assembly, decomposition and artifact files
//	fphi/       the estimator and its result tables
//	session/    ordered stage driver with logging, metrics and run ids
//	ledger/     SQLite history of results
//	logger/     zap logger construction
//	cmd/fphi    the command line
//
// Quick start:
//
//	fphi run --pedigree kin.csv --phenotypes phen.csv --trait bmi --out work
//
// writes work/pedindex.out, work/phi2.gz, work/bmi.{ids,eigenvalues,eigenvectors,notes} and
// work/bmi_fphi_results.out.
package fphi
