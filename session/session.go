// SPDX-License-Identifier: MIT

package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/katalvlaran/fphi/evd"
	"github.com/katalvlaran/fphi/fault"
	"github.com/katalvlaran/fphi/fphi"
	"github.com/katalvlaran/fphi/kinship"
	"github.com/katalvlaran/fphi/ledger"
	"github.com/katalvlaran/fphi/phenotype"
)

// maxSkippedLogged bounds the per-record warnings emitted for one pedigree.
const maxSkippedLogged = 20

// Option configures New.
type Option func(*Session) error

// WithLogger sets the logger; nil is rejected.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) error {
		if l == nil {
			return fmt.Errorf("%w: nil logger", ErrOptionViolation)
		}
		s.log = l
		return nil
	}
}

// WithRegistry registers the session metrics on reg instead of a private
// registry; nil is rejected.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(s *Session) error {
		if reg == nil {
			return fmt.Errorf("%w: nil registry", ErrOptionViolation)
		}
		s.reg = reg
		return nil
	}
}

// WithLedger records every estimate in l. The caller keeps ownership of l.
func WithLedger(l *ledger.Ledger) Option {
	return func(s *Session) error {
		if l == nil {
			return fmt.Errorf("%w: nil ledger", ErrOptionViolation)
		}
		s.ledger = l
		return nil
	}
}

// Session is one analysis context. Its methods are safe for concurrent use
// but stages are serialised.
type Session struct {
	cfg    Config
	format kinship.Format

	log        *zap.Logger
	reg        prometheus.Registerer
	metrics    *metrics
	ledger     *ledger.Ledger
	ownsLedger bool

	mu         sync.Mutex
	pedigree   *kinship.Pedigree
	phenotypes *phenotype.Table
	trait      string
	lastRunID  string
}

// New validates cfg and builds a session. When cfg.LedgerPath is set and no
// ledger option is given, the session opens the ledger and closes it in Close.
func New(cfg Config, opts ...Option) (*Session, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	format, err := kinship.ParseFormat(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	s := &Session{cfg: cfg, format: format, log: zap.NewNop()}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.reg == nil {
		s.reg = prometheus.NewRegistry()
	}
	if s.metrics, err = newMetrics(s.reg); err != nil {
		return nil, err
	}

	if s.ledger == nil && cfg.LedgerPath != "" {
		l, err := ledger.Open(cfg.LedgerPath)
		if err != nil {
			return nil, err
		}
		s.ledger, s.ownsLedger = l, true
	}

	return s, nil
}

// Config returns the effective configuration.
func (s *Session) Config() Config { return s.cfg }

// Registerer returns the registry holding the session metrics.
func (s *Session) Registerer() prometheus.Registerer { return s.reg }

// Close releases a ledger opened by New.
func (s *Session) Close() error {
	if s.ownsLedger && s.ledger != nil {
		err := s.ledger.Close()
		s.ledger = nil
		return err
	}

	return nil
}

// Reset forgets the pedigree, phenotypes and trait selection.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pedigree, s.phenotypes, s.trait = nil, nil, ""
	s.log.Debug("session reset")
}

// Pedigree returns the loaded pedigree or nil.
func (s *Session) Pedigree() *kinship.Pedigree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pedigree
}

// Trait returns the selected trait or "".
func (s *Session) Trait() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trait
}

// LastRunID returns the id of the most recent Decompose, EstimateFrom or Run.
func (s *Session) LastRunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRunID
}

// LoadPedigree clusters the kinship table at path, writes the pedigree index
// into the output directory and makes the pedigree current. A previously
// selected trait stays selected.
func (s *Session) LoadPedigree(ctx context.Context, path string) (kinship.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return kinship.Summary{}, err
	}

	var p *kinship.Pedigree
	err := s.metrics.observe(stageCluster, func() error {
		var err error
		p, err = kinship.Load(path, kinship.WithThreshold(s.cfg.Threshold), kinship.WithFormat(s.format))
		if err != nil {
			return err
		}
		if err = os.MkdirAll(s.cfg.OutputDir, 0o750); err != nil {
			return fmt.Errorf("session: create %s: %v: %w", s.cfg.OutputDir, err, fault.ErrIO)
		}
		return kinship.WriteIndex(s.cfg.OutputDir, p, s.cfg.Compress)
	})
	if err != nil {
		s.log.Error("pedigree load failed", zap.String("stage", stageCluster), zap.String("path", path), zap.Error(err))
		return kinship.Summary{}, err
	}

	s.reportSkipped(p)
	s.pedigree = p
	sum := p.Summary()
	s.log.Info("pedigree loaded",
		zap.String("stage", stageCluster),
		zap.String("path", path),
		zap.Int("individuals", sum.Individuals),
		zap.Int("pedigrees", sum.Pedigrees),
		zap.Int("entries", len(p.Entries)),
		zap.Int("skipped", sum.Skipped))

	return sum, nil
}

// OpenIndex restores the pedigree written to the output directory by an
// earlier LoadPedigree.
func (s *Session) OpenIndex(ctx context.Context) (kinship.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return kinship.Summary{}, err
	}
	p, err := kinship.OpenIndex(s.cfg.OutputDir)
	if err != nil {
		return kinship.Summary{}, err
	}
	s.pedigree = p
	s.log.Info("pedigree index opened", zap.String("dir", s.cfg.OutputDir), zap.Int("individuals", len(p.Persons)))

	return p.Summary(), nil
}

func (s *Session) reportSkipped(p *kinship.Pedigree) {
	if len(p.Skipped) == 0 {
		return
	}
	s.metrics.skipped.Add(float64(len(p.Skipped)))
	for i, rec := range p.Skipped {
		if i == maxSkippedLogged {
			s.log.Warn("further skipped records not logged", zap.Int("remaining", len(p.Skipped)-i))
			break
		}
		s.log.Warn("kinship record skipped",
			zap.String("stage", stageCluster),
			zap.String("source", rec.Source),
			zap.Int("line", rec.Line),
			zap.String("reason", rec.Reason))
	}
}

// LoadPhenotypes reads the phenotype table at path. It requires a pedigree
// and clears the trait selection.
func (s *Session) LoadPhenotypes(path string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pedigree == nil {
		return nil, fmt.Errorf("%w: load a pedigree before phenotypes", ErrNotReady)
	}
	t, err := phenotype.Load(path)
	if err != nil {
		return nil, err
	}
	s.phenotypes, s.trait = t, ""
	traits := t.Traits()
	s.log.Info("phenotypes loaded", zap.String("path", path), zap.Int("rows", len(t.Rows)), zap.Strings("traits", traits))

	return traits, nil
}

// Traits lists the selectable traits of the loaded phenotype table.
func (s *Session) Traits() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phenotypes == nil {
		return nil, fmt.Errorf("%w: no phenotypes loaded", ErrNotReady)
	}

	return s.phenotypes.Traits(), nil
}

// SelectTrait makes name the current trait. An unknown name fails with
// fault.ErrColumnNotFound listing the available traits. A name that is not a
// single path element fails with ErrUnsafeTrait.
func (s *Session) SelectTrait(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phenotypes == nil {
		return fmt.Errorf("%w: load phenotypes before selecting a trait", ErrNotReady)
	}
	if _, _, err := s.phenotypes.Columns(name); err != nil {
		return err
	}
	if !safeFileName(name) {
		return fmt.Errorf("%w: trait %q cannot name an output file", ErrUnsafeTrait, name)
	}
	s.trait = name
	s.log.Info("trait selected", zap.String("trait", name))

	return nil
}

// safeFileName reports whether name is a single path element that stays
// inside the directory it is joined to.
func safeFileName(name string) bool {
	if name == "" || name == "." || name == ".." || strings.Contains(name, "..") {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, filepath.Separator)
}

// base resolves the artifact base path, defaulting to OutputDir/<trait>.
func (s *Session) base(base string) string {
	if base != "" {
		return base
	}
	return filepath.Join(s.cfg.OutputDir, s.trait)
}

func (s *Session) ready() error {
	switch {
	case s.pedigree == nil:
		return fmt.Errorf("%w: no pedigree loaded", ErrNotReady)
	case s.phenotypes == nil:
		return fmt.Errorf("%w: no phenotypes loaded", ErrNotReady)
	case s.trait == "":
		return fmt.Errorf("%w: no trait selected", ErrNotReady)
	}

	return nil
}

func (s *Session) newRun() (string, *zap.Logger) {
	id := uuid.NewString()
	s.lastRunID = id

	return id, s.log.With(zap.String("run_id", id), zap.String("trait", s.trait))
}

// Decompose builds and writes the eigendecomposition for the selected trait
// under base ("" selects OutputDir/<trait>).
func (s *Session) Decompose(ctx context.Context, base string) (*evd.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	runID, log := s.newRun()

	return s.decompose(ctx, runID, log, s.base(base))
}

// EstimateFrom reads the artifact under base and estimates the selected
// trait's heritability from it.
func (s *Session) EstimateFrom(ctx context.Context, base string) (*fphi.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	runID, log := s.newRun()
	base = s.base(base)
	a, err := evd.Read(base)
	if err != nil {
		log.Error("artifact read failed", zap.String("stage", stageEstimate), zap.String("base", base), zap.Error(err))
		return nil, err
	}

	return s.estimate(ctx, runID, log, base, a)
}

// Run decomposes and estimates in one go, writes every artifact under base
// and records the result in the ledger when one is configured.
func (s *Session) Run(ctx context.Context, base string) (*fphi.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	runID, log := s.newRun()
	base = s.base(base)

	a, err := s.decompose(ctx, runID, log, base)
	if err != nil {
		return nil, err
	}

	return s.estimate(ctx, runID, log, base, a)
}

func (s *Session) decompose(ctx context.Context, runID string, log *zap.Logger, base string) (*evd.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := s.phenotypes.Values(s.trait)
	if err != nil {
		return nil, err
	}

	var a *evd.Artifact
	err = s.metrics.observe(stageEVD, func() error {
		var err error
		if a, err = evd.Build(s.pedigree, v, evd.WithSolver(s.cfg.solver())); err != nil {
			return err
		}
		if dir := filepath.Dir(base); dir != "" {
			if err = os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("session: create %s: %v: %w", dir, err, fault.ErrIO)
			}
		}
		return evd.Write(base, a, evd.Notes{Phenotypes: s.phenotypes.Source, Trait: s.trait, RunID: runID})
	})
	if err != nil {
		log.Error("decomposition failed", zap.String("stage", stageEVD), zap.Error(err))
		return nil, err
	}

	s.metrics.subjects.WithLabelValues(s.trait).Set(float64(a.N()))
	log.Info("decomposition written",
		zap.String("stage", stageEVD),
		zap.String("base", base),
		zap.Int("subjects", a.N()),
		zap.Int("phenotyped", v.Len()))

	return a, nil
}

func (s *Session) estimate(ctx context.Context, runID string, log *zap.Logger, base string, a *evd.Artifact) (*fphi.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := s.phenotypes.Values(s.trait)
	if err != nil {
		return nil, err
	}

	var r *fphi.Result
	err = s.metrics.observe(stageEstimate, func() error {
		var err error
		r, err = fphi.Estimate(a, v, s.trait,
			fphi.WithPrecision(s.cfg.Precision),
			fphi.WithMaxIterations(s.cfg.MaxIterations))
		if err != nil {
			return err
		}
		return errors.Join(fphi.WriteResults(base, r), fphi.WriteParameters(base, r))
	})
	if err != nil {
		log.Error("estimation failed", zap.String("stage", stageEstimate), zap.Error(err))
		return nil, err
	}

	s.metrics.lastH2r.WithLabelValues(s.trait).Set(r.H2r)
	s.metrics.lastIter.WithLabelValues(s.trait).Set(float64(r.Iterations))
	fields := []zap.Field{
		zap.String("stage", stageEstimate),
		zap.Float64("h2r", r.H2r),
		zap.Float64("se", r.SE),
		zap.String("p_value", fphi.FormatPValue(r.PValue)),
		zap.Int("n", r.N),
		zap.Int("iterations", r.Iterations),
		zap.Bool("boundary", r.Boundary),
	}
	if !r.Converged {
		log.Warn("estimate did not converge", fields...)
	} else {
		log.Info("estimate written", fields...)
	}
	if r.InformationSingular {
		log.Warn("information matrix singular, standard errors reported as 0", zap.String("stage", stageEstimate))
	}

	if s.ledger != nil {
		if err := s.ledger.Record(ctx, runID, r); err != nil {
			log.Error("ledger record failed", zap.Error(err))
			return r, err
		}
	}

	return r, nil
}

// String renders a one-line state summary.
func (s *Session) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var parts []string
	if s.pedigree != nil {
		parts = append(parts, fmt.Sprintf("pedigree=%s (%d individuals)", s.pedigree.Source, len(s.pedigree.Persons)))
	}
	if s.phenotypes != nil {
		parts = append(parts, "phenotypes="+s.phenotypes.Source)
	}
	if s.trait != "" {
		parts = append(parts, "trait="+s.trait)
	}
	if len(parts) == 0 {
		return "session: empty"
	}

	return "session: " + strings.Join(parts, ", ")
}
