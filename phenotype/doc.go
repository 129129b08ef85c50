// Package phenotype reads phenotype tables and extracts the valid values of
// one trait.
//
// A table is comma-separated with a header row. The identifier column is the
// first header equal to "id" ignoring case; trait columns are matched by exact
// name. A trait value is valid when it is present (not empty, "NA" or "."),
// parses as a float and is finite. Invalid values are dropped silently.
package phenotype
