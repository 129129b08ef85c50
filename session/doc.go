// SPDX-License-Identifier: MIT

// Package session drives the three stages for one analysis context.
//
// A Session owns its pedigree, phenotype table, selected trait, logger and
// metrics; nothing is shared between sessions. The stages are ordered:
//
//	LoadPedigree → LoadPhenotypes → SelectTrait → Run
//
// Calling a stage before its prerequisites returns ErrNotReady. Decompose and
// EstimateFrom run the second and third stage on their own so that a stage
// can be repeated from artifacts already on disk; OpenIndex restores a
// pedigree previously written by LoadPedigree.
//
// Every Decompose, EstimateFrom or Run call gets a fresh run id that is
// carried in log fields, the artifact notes and the ledger.
package session
