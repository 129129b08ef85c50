// SPDX-License-Identifier: MIT

package evd

import (
	"fmt"

	"github.com/katalvlaran/fphi/fault"
	"github.com/katalvlaran/fphi/kinship"
	"github.com/katalvlaran/fphi/matrix"
	"github.com/katalvlaran/fphi/phenotype"
)

// Option configures Build.
type Option func(*Options)

// Options holds Build parameters.
type Options struct {
	// Solver performs the decomposition; defaults to matrix.GonumSolver.
	Solver matrix.SymmetricEigensolver

	err error
}

// DefaultOptions returns the gonum-backed solver.
func DefaultOptions() Options {
	return Options{Solver: matrix.GonumSolver{}}
}

// WithSolver selects the eigensolver. A nil solver is rejected.
func WithSolver(s matrix.SymmetricEigensolver) Option {
	return func(o *Options) {
		if s == nil {
			o.err = fmt.Errorf("%w: nil solver", ErrOptionViolation)
			return
		}
		o.Solver = s
	}
}

// Reconcile returns the pedigree ids, in pedigree order, that have a value in v.
func Reconcile(p *kinship.Pedigree, v *phenotype.Values) []string {
	var ids []string
	for _, ps := range p.Persons {
		if _, ok := v.Lookup(ps.OriginalID); ok {
			ids = append(ids, ps.OriginalID)
		}
	}

	return ids
}

// Relatedness assembles the symmetric matrix over ids using the accepted
// kinship entries of p. Every id must belong to p.
func Relatedness(p *kinship.Pedigree, ids []string) (*matrix.Dense, error) {
	n := len(ids)
	if n == 0 {
		return nil, fmt.Errorf("evd: empty subject set: %w", fault.ErrNoOverlap)
	}
	seq := make([]int, n)
	for i, id := range ids {
		idx, ok := p.IndexOf(id)
		if !ok {
			return nil, fmt.Errorf("evd: id %q not in pedigree: %w", id, fault.ErrNoOverlap)
		}
		seq[i] = p.Persons[idx].SeqID
	}

	m, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, err
	}
	data := m.Data()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if k, ok := p.Lookup(seq[i], seq[j]); ok {
				data[i*n+j], data[j*n+i] = k, k
			}
		}
	}

	return m, nil
}

// Build reconciles subjects, assembles their relatedness matrix and
// decomposes it.
//
// Errors:
//   - fault.ErrNoOverlap when no pedigree id has a valid value;
//   - fault.ErrNoData when exactly one does (the estimator needs two);
//   - fault.ErrDecomposition when the solver fails;
//   - ErrOptionViolation for invalid options.
func Build(p *kinship.Pedigree, v *phenotype.Values, opts ...Option) (*Artifact, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
		if o.err != nil {
			return nil, o.err
		}
	}
	if p == nil || v == nil {
		return nil, fmt.Errorf("evd: nil pedigree or phenotype values: %w", fault.ErrNoData)
	}

	ids := Reconcile(p, v)
	switch len(ids) {
	case 0:
		return nil, fmt.Errorf("evd: no pedigree id has a valid %q value: %w", v.Trait, fault.ErrNoOverlap)
	case 1:
		return nil, fmt.Errorf("evd: only subject %q has a valid %q value: %w", ids[0], v.Trait, fault.ErrNoData)
	}

	m, err := Relatedness(p, ids)
	if err != nil {
		return nil, err
	}
	values, vectors, err := o.Solver.EigenSym(m)
	if err != nil {
		return nil, fmt.Errorf("evd: %d subjects: %w: %w", len(ids), fault.ErrDecomposition, err)
	}

	return &Artifact{IDs: ids, Values: values, Vectors: vectors}, nil
}
