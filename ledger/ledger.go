// SPDX-License-Identifier: MIT

// Package ledger keeps a SQLite record of heritability results across runs.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/katalvlaran/fphi/fault"
	"github.com/katalvlaran/fphi/fphi"
)

// ErrDuplicateRun is returned by Record when the run id is already stored.
var ErrDuplicateRun = errors.New("ledger: run already recorded")

const schema = `
CREATE TABLE IF NOT EXISTS results (
	run_id TEXT PRIMARY KEY,
	trait TEXT NOT NULL,
	h2r REAL NOT NULL,
	se REAL NOT NULL,
	loglik REAL NOT NULL,
	null_loglik REAL NOT NULL,
	p_value REAL NOT NULL,
	n_subjects INTEGER NOT NULL,
	iterations INTEGER NOT NULL,
	converged INTEGER NOT NULL,
	boundary INTEGER NOT NULL,
	recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_trait ON results(trait);
`

// Entry is one stored result.
type Entry struct {
	RunID      string
	Trait      string
	H2r        float64
	SE         float64
	LogLik     float64
	NullLogLik float64
	PValue     float64
	N          int
	Iterations int
	Converged  bool
	Boundary   bool
	RecordedAt time.Time
}

// Ledger is a handle on the results database. It is safe for concurrent use.
type Ledger struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*Ledger, error) {
	if path == "" {
		return nil, fmt.Errorf("ledger: empty path: %w", fault.ErrIO)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("ledger: create dirs: %v: %w", err, fault.ErrIO)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ledger: open %s: %v: %w", path, err, fault.ErrIO)
	}
	// A single connection serialises writers on the file.
	db.SetMaxOpenConns(1)
	if _, err = db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger: create schema: %v: %w", err, fault.ErrIO)
	}

	return &Ledger{db: db, path: path, now: time.Now}, nil
}

// Path returns the database path.
func (l *Ledger) Path() string { return l.path }

// Record stores r under runID.
func (l *Ledger) Record(ctx context.Context, runID string, r *fphi.Result) error {
	if r == nil {
		return fmt.Errorf("ledger: nil result: %w", fault.ErrNoData)
	}
	if runID == "" {
		return fmt.Errorf("ledger: empty run id: %w", fault.ErrNoData)
	}

	var exists int
	err := l.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM results WHERE run_id = ?`, runID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("ledger: lookup %s: %v: %w", runID, err, fault.ErrIO)
	}
	if exists > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateRun, runID)
	}

	_, err = l.db.ExecContext(ctx, `INSERT INTO results(
		run_id, trait, h2r, se, loglik, null_loglik, p_value,
		n_subjects, iterations, converged, boundary, recorded_at
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		runID, r.Trait, r.H2r, r.SE, r.LogLik, r.NullLogLik, r.PValue,
		r.N, r.Iterations, boolInt(r.Converged), boolInt(r.Boundary),
		l.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("ledger: insert %s: %v: %w", runID, err, fault.ErrIO)
	}

	return nil
}

// List returns the stored results in insertion order, restricted to trait
// unless trait is empty.
func (l *Ledger) List(ctx context.Context, trait string) (entries []Entry, err error) {
	q := `SELECT run_id, trait, h2r, se, loglik, null_loglik, p_value,
		n_subjects, iterations, converged, boundary, recorded_at
		FROM results`
	var args []any
	if trait != "" {
		q += ` WHERE trait = ?`
		args = append(args, trait)
	}
	q += ` ORDER BY rowid`

	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger: select: %v: %w", err, fault.ErrIO)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			e          Entry
			conv, bnd  int
			recordedAt string
		)
		if err = rows.Scan(&e.RunID, &e.Trait, &e.H2r, &e.SE, &e.LogLik, &e.NullLogLik, &e.PValue,
			&e.N, &e.Iterations, &conv, &bnd, &recordedAt); err != nil {
			return nil, fmt.Errorf("ledger: scan: %v: %w", err, fault.ErrIO)
		}
		e.Converged, e.Boundary = conv != 0, bnd != 0
		if e.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt); err != nil {
			return nil, fmt.Errorf("ledger: run %s: bad timestamp %q: %w", e.RunID, recordedAt, fault.ErrMalformedInput)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger: rows: %v: %w", err, fault.ErrIO)
	}

	return entries, nil
}

// Close releases the database.
func (l *Ledger) Close() error {
	if err := l.db.Close(); err != nil {
		return fmt.Errorf("ledger: close: %v: %w", err, fault.ErrIO)
	}

	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
