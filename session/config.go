// SPDX-License-Identifier: MIT

package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/katalvlaran/fphi/fphi"
	"github.com/katalvlaran/fphi/kinship"
	"github.com/katalvlaran/fphi/matrix"
)

// Solver names accepted in Config.Solver.
const (
	SolverGonum  = "gonum"
	SolverJacobi = "jacobi"
)

// Config holds the session parameters. Zero values of the optional fields
// fall back to DefaultConfig.
type Config struct {
	// OutputDir receives the pedigree index and the default artifact base.
	OutputDir string `yaml:"output_dir" validate:"required"`
	// Threshold is the minimum kinship kept between distinct persons.
	Threshold float64 `yaml:"threshold" validate:"gte=0"`
	// Format is "auto" or "empirical".
	Format string `yaml:"format" validate:"omitempty,oneof=auto empirical AUTO EMPIRICAL"`
	// Compress writes phi2.gz instead of phi2.
	Compress bool `yaml:"compress"`
	// Precision is the convergence tolerance exponent.
	Precision     int `yaml:"precision" validate:"omitempty,min=1,max=15"`
	MaxIterations int `yaml:"max_iterations" validate:"omitempty,min=1"`
	// Solver is "gonum" or "jacobi".
	Solver string `yaml:"solver" validate:"omitempty,oneof=gonum jacobi"`
	// LedgerPath opens a results ledger owned by the session when set.
	LedgerPath string `yaml:"ledger_path"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		OutputDir:     ".",
		Format:        kinship.FormatAuto.String(),
		Compress:      true,
		Precision:     fphi.DefaultPrecision,
		MaxIterations: fphi.DefaultMaxIterations,
		Solver:        SolverGonum,
	}
}

var validate = validator.New()

// Validate checks the struct tags and reports every failing field.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
	}

	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// withDefaults fills unset optional fields.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Format == "" {
		c.Format = d.Format
	}
	if c.Precision == 0 {
		c.Precision = d.Precision
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.Solver == "" {
		c.Solver = d.Solver
	}

	return c
}

func (c Config) solver() matrix.SymmetricEigensolver {
	if c.Solver == SolverJacobi {
		return matrix.JacobiSolver{}
	}

	return matrix.GonumSolver{}
}
