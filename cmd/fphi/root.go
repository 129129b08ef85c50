// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/fphi/logger"
	"github.com/katalvlaran/fphi/session"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	out io.Writer

	configPath  string
	logMode     string
	metricsFile string

	// overrides applied on top of the config file
	outputDir  string
	solver     string
	ledgerPath string

	cfg session.Config
	log *zap.Logger
	reg *prometheus.Registry
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	root := &cobra.Command{
		Use:           "fphi",
		Short:         "Pedigree-based heritability estimation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.teardown()
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML config file")
	pf.StringVar(&a.logMode, "log-mode", logger.ModeNop, "log mode: dev, prod or nop")
	pf.StringVar(&a.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile on exit")
	pf.StringVar(&a.outputDir, "out", "", "output directory (pedigree index and default artifact base)")
	pf.StringVar(&a.solver, "solver", "", "eigensolver: gonum or jacobi")
	pf.StringVar(&a.ledgerPath, "ledger", "", "SQLite results ledger")

	root.AddCommand(
		newClusterCmd(a),
		newEVDCmd(a),
		newEstimateCmd(a),
		newRunCmd(a),
		newTraitsCmd(a),
	)

	return root
}

// setup loads the config file, applies persistent flag overrides and builds
// the logger and registry.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("out") {
		cfg.OutputDir = a.outputDir
	}
	if flags.Changed("solver") {
		cfg.Solver = a.solver
	}
	if flags.Changed("ledger") {
		cfg.LedgerPath = a.ledgerPath
	}
	a.cfg = cfg

	if a.log, err = logger.New(a.logMode); err != nil {
		return err
	}
	a.reg = prometheus.NewRegistry()

	return nil
}

func (a *app) teardown() error {
	if a.log != nil {
		_ = a.log.Sync()
	}
	if a.metricsFile == "" || a.reg == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.metricsFile, a.reg); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}

	return nil
}

// loadConfig reads path over the defaults; an empty path yields the defaults.
func loadConfig(path string) (session.Config, error) {
	cfg := session.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// newSession builds a session from the effective config.
func (a *app) newSession() (*session.Session, error) {
	return session.New(a.cfg, session.WithLogger(a.log), session.WithRegistry(a.reg))
}
