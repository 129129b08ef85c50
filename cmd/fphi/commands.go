// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/fphi/fphi"
	"github.com/katalvlaran/fphi/phenotype"
	"github.com/katalvlaran/fphi/session"
)

func newClusterCmd(a *app) *cobra.Command {
	var (
		pedigree   string
		threshold  float64
		format     string
		noCompress bool
	)
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Cluster a kinship table into families and write the pedigree index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("threshold") {
				a.cfg.Threshold = threshold
			}
			if cmd.Flags().Changed("format") {
				a.cfg.Format = format
			}
			if noCompress {
				a.cfg.Compress = false
			}
			s, err := a.newSession()
			if err != nil {
				return err
			}
			defer s.Close()

			sum, err := s.LoadPedigree(cmd.Context(), pedigree)
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, sum.String())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&pedigree, "pedigree", "", "kinship CSV (IDA,IDB,KIN)")
	f.Float64Var(&threshold, "threshold", 0, "minimum kinship between distinct persons (0: any positive)")
	f.StringVar(&format, "format", "auto", "table format: auto or empirical")
	f.BoolVar(&noCompress, "no-compress", false, "write phi2 instead of phi2.gz")
	_ = cmd.MarkFlagRequired("pedigree")

	return cmd
}

// traitFlags are shared by the stages that need phenotypes.
type traitFlags struct {
	phenotypes string
	trait      string
	base       string
}

func (t *traitFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&t.phenotypes, "phenotypes", "", "phenotype CSV with an id column")
	f.StringVar(&t.trait, "trait", "", "trait column to analyse")
	f.StringVar(&t.base, "base", "", "artifact base path (default <out>/<trait>)")
	_ = cmd.MarkFlagRequired("phenotypes")
	_ = cmd.MarkFlagRequired("trait")
}

// selectTrait loads phenotypes into s and selects the trait.
func (t *traitFlags) selectTrait(s *session.Session) error {
	if _, err := s.LoadPhenotypes(t.phenotypes); err != nil {
		return err
	}

	return s.SelectTrait(t.trait)
}

func newEVDCmd(a *app) *cobra.Command {
	var tf traitFlags
	cmd := &cobra.Command{
		Use:   "evd",
		Short: "Decompose the relatedness of phenotyped subjects from the pedigree index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.newSession()
			if err != nil {
				return err
			}
			defer s.Close()

			if _, err = s.OpenIndex(cmd.Context()); err != nil {
				return err
			}
			if err = tf.selectTrait(s); err != nil {
				return err
			}
			art, err := s.Decompose(cmd.Context(), tf.base)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "eigendecomposition of %d subjects written (run %s)\n", art.N(), s.LastRunID())
			return nil
		},
	}
	tf.bind(cmd)

	return cmd
}

func newEstimateCmd(a *app) *cobra.Command {
	var (
		tf        traitFlags
		precision int
	)
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate heritability from a written eigendecomposition",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("precision") {
				a.cfg.Precision = precision
			}
			s, err := a.newSession()
			if err != nil {
				return err
			}
			defer s.Close()

			if _, err = s.OpenIndex(cmd.Context()); err != nil {
				return err
			}
			if err = tf.selectTrait(s); err != nil {
				return err
			}
			r, err := s.EstimateFrom(cmd.Context(), tf.base)
			if err != nil {
				return err
			}
			printResult(a.out, r)
			return nil
		},
	}
	tf.bind(cmd)
	cmd.Flags().IntVar(&precision, "precision", fphi.DefaultPrecision, "convergence tolerance exponent (1..15)")

	return cmd
}

func newRunCmd(a *app) *cobra.Command {
	var (
		tf       traitFlags
		pedigree string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Cluster, decompose and estimate in one pass",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.newSession()
			if err != nil {
				return err
			}
			defer s.Close()

			sum, err := s.LoadPedigree(cmd.Context(), pedigree)
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, sum.String())
			if err = tf.selectTrait(s); err != nil {
				return err
			}
			r, err := s.Run(cmd.Context(), tf.base)
			if err != nil {
				return err
			}
			printResult(a.out, r)
			return nil
		},
	}
	tf.bind(cmd)
	cmd.Flags().StringVar(&pedigree, "pedigree", "", "kinship CSV (IDA,IDB,KIN)")
	_ = cmd.MarkFlagRequired("pedigree")

	return cmd
}

func newTraitsCmd(a *app) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "traits",
		Short: "List the traits of a phenotype table",
		RunE: func(*cobra.Command, []string) error {
			t, err := phenotype.Load(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "available traits: %s\n", strings.Join(t.Traits(), ", "))
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "phenotypes", "", "phenotype CSV with an id column")
	_ = cmd.MarkFlagRequired("phenotypes")

	return cmd
}

func printResult(w io.Writer, r *fphi.Result) {
	fmt.Fprintf(w, "\n%s: %d subjects\n", r.Trait, r.N)
	fmt.Fprintf(w, "  h2r     %.7f  SE %.7f\n", r.H2r, r.SE)
	fmt.Fprintf(w, "  p       %s\n", fphi.FormatPValue(r.PValue))
	fmt.Fprintf(w, "  loglik  %.4f  (sporadic %.4f)\n", r.LogLik, r.NullLogLik)
	if r.Boundary {
		fmt.Fprintln(w, "  estimate moved to the boundary")
	}
	if !r.Converged {
		fmt.Fprintln(w, "  warning: search stopped before converging")
	}
}
