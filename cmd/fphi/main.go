// SPDX-License-Identifier: MIT

// Command fphi clusters kinship tables into families, decomposes the
// relatedness of phenotyped subjects and estimates trait heritability.
//
//	fphi cluster  --pedigree kin.csv --out work
//	fphi evd      --out work --phenotypes phen.csv --trait bmi
//	fphi estimate --out work --phenotypes phen.csv --trait bmi
//	fphi run      --pedigree kin.csv --phenotypes phen.csv --trait bmi --out work
//	fphi traits   --phenotypes phen.csv
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fphi:", err)
		os.Exit(1)
	}
}
