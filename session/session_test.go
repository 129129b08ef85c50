package session_test

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/katalvlaran/fphi/evd"
	"github.com/katalvlaran/fphi/fault"
	"github.com/katalvlaran/fphi/fphi"
	"github.com/katalvlaran/fphi/kinship"
	"github.com/katalvlaran/fphi/ledger"
	"github.com/katalvlaran/fphi/session"
)

// writeFixtures writes a kinship table of nfam sibships of four and a
// phenotype table with one heritable trait "q" and one empty trait "blank".
func writeFixtures(t *testing.T, dir string, nfam int) (kinPath, phenPath string) {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	const k, h = 4, 0.6

	var kin, phen strings.Builder
	kin.WriteString("IDA,IDB,KIN\n")
	phen.WriteString("id,q,blank\n")
	for f := 0; f < nfam; f++ {
		shared := rng.NormFloat64()
		for i := 0; i < k; i++ {
			id := fmt.Sprintf("p%d_%d", f, i)
			for j := i; j < k; j++ {
				val := 0.5
				if i == j {
					val = 1
				}
				fmt.Fprintf(&kin, "%s,p%d_%d,%.4f\n", id, f, j, val)
			}
			y := 5 + math.Sqrt(h*0.5)*shared + math.Sqrt(h*0.5)*rng.NormFloat64() + math.Sqrt(1-h)*rng.NormFloat64()
			fmt.Fprintf(&phen, "%s,%.6f,NA\n", id, y)
		}
	}
	// One malformed record and one person without a phenotype.
	kin.WriteString("broken,row\n")
	kin.WriteString("lonely,lonely,1\n")

	kinPath = filepath.Join(dir, "kin.csv")
	phenPath = filepath.Join(dir, "phen.csv")
	require.NoError(t, os.WriteFile(kinPath, []byte(kin.String()), 0o600))
	require.NoError(t, os.WriteFile(phenPath, []byte(phen.String()), 0o600))

	return kinPath, phenPath
}

type SessionSuite struct {
	suite.Suite
	dir      string
	out      string
	kinPath  string
	phenPath string
	reg      *prometheus.Registry
	logs     *observer.ObservedLogs
	s        *session.Session
}

func (s *SessionSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.out = filepath.Join(s.dir, "out")
	s.kinPath, s.phenPath = writeFixtures(s.T(), s.dir, 60)
	s.reg = prometheus.NewRegistry()

	core, logs := observer.New(zap.DebugLevel)
	s.logs = logs

	cfg := session.DefaultConfig()
	cfg.OutputDir = s.out
	sess, err := session.New(cfg, session.WithLogger(zap.New(core)), session.WithRegistry(s.reg))
	s.Require().NoError(err)
	s.s = sess
}

func (s *SessionSuite) TearDownTest() {
	s.Require().NoError(s.s.Close())
}

func (s *SessionSuite) prepare() {
	ctx := context.Background()
	_, err := s.s.LoadPedigree(ctx, s.kinPath)
	s.Require().NoError(err)
	_, err = s.s.LoadPhenotypes(s.phenPath)
	s.Require().NoError(err)
	s.Require().NoError(s.s.SelectTrait("q"))
}

func (s *SessionSuite) TestStagesOutOfOrder() {
	ctx := context.Background()
	_, err := s.s.LoadPhenotypes(s.phenPath)
	s.ErrorIs(err, session.ErrNotReady)
	s.ErrorIs(s.s.SelectTrait("q"), session.ErrNotReady)
	_, err = s.s.Traits()
	s.ErrorIs(err, session.ErrNotReady)
	_, err = s.s.Run(ctx, "")
	s.ErrorIs(err, session.ErrNotReady)

	_, err = s.s.LoadPedigree(ctx, s.kinPath)
	s.Require().NoError(err)
	_, err = s.s.Decompose(ctx, "")
	s.ErrorIs(err, session.ErrNotReady)

	_, err = s.s.LoadPhenotypes(s.phenPath)
	s.Require().NoError(err)
	_, err = s.s.EstimateFrom(ctx, "")
	s.ErrorIs(err, session.ErrNotReady)
}

func (s *SessionSuite) TestLoadPedigree() {
	sum, err := s.s.LoadPedigree(context.Background(), s.kinPath)
	s.Require().NoError(err)
	s.Equal(241, sum.Individuals)
	s.Equal(61, sum.Pedigrees)
	s.Equal(1, sum.Skipped)

	for _, name := range []string{kinship.IndexFile, kinship.KinshipGzFile, kinship.SummaryCSVFile} {
		s.FileExists(filepath.Join(s.out, name))
	}
	s.Equal(1, s.logs.FilterMessage("kinship record skipped").Len())
	s.Equal(1, s.logs.FilterMessage("pedigree loaded").Len())
}

func (s *SessionSuite) TestSelectTraitUnknown() {
	s.prepare()
	err := s.s.SelectTrait("weight")
	s.ErrorIs(err, fault.ErrColumnNotFound)
	s.ErrorContains(err, "q, blank")
	s.Equal("q", s.s.Trait(), "selection unchanged")

	traits, err := s.s.Traits()
	s.Require().NoError(err)
	s.Equal([]string{"q", "blank"}, traits)
}

func (s *SessionSuite) TestSelectTraitUnsafeName() {
	raw, err := os.ReadFile(s.phenPath)
	s.Require().NoError(err)
	renamed := strings.Replace(string(raw), "id,q,blank", `id,../escape,sub/dir`, 1)
	path := filepath.Join(s.dir, "renamed.csv")
	s.Require().NoError(os.WriteFile(path, []byte(renamed), 0o600))

	ctx := context.Background()
	_, err = s.s.LoadPedigree(ctx, s.kinPath)
	s.Require().NoError(err)
	_, err = s.s.LoadPhenotypes(path)
	s.Require().NoError(err)

	for _, name := range []string{"../escape", "sub/dir"} {
		err := s.s.SelectTrait(name)
		s.ErrorIs(err, session.ErrUnsafeTrait, name)
		s.Empty(s.s.Trait())
	}

	_, err = s.s.Run(ctx, "")
	s.ErrorIs(err, session.ErrNotReady)
	matches, err := filepath.Glob(filepath.Join(s.dir, "escape*"))
	s.Require().NoError(err)
	s.Empty(matches)
}

func (s *SessionSuite) TestRun() {
	s.prepare()
	r, err := s.s.Run(context.Background(), "")
	s.Require().NoError(err)

	s.Equal("q", r.Trait)
	s.Equal(240, r.N)
	s.GreaterOrEqual(r.H2r, 0.0)
	s.LessOrEqual(r.H2r, 1.0)
	s.False(math.IsNaN(r.LogLik))

	base := filepath.Join(s.out, "q")
	for _, suffix := range []string{evd.SuffixIDs, evd.SuffixValues, evd.SuffixVectors, evd.SuffixNotes,
		fphi.SuffixResults, fphi.SuffixParameters} {
		s.FileExists(base + suffix)
	}
	notes, err := os.ReadFile(base + evd.SuffixNotes)
	s.Require().NoError(err)
	s.Contains(string(notes), "Run ID: "+s.s.LastRunID())
	s.Contains(string(notes), "Trait used for ID selection: q")

	entries := s.logs.FilterMessage("decomposition written").All()
	s.Require().Len(entries, 1)
	s.Equal(s.s.LastRunID(), entries[0].ContextMap()["run_id"])
}

func (s *SessionSuite) TestEmptyTrait() {
	s.prepare()
	s.Require().NoError(s.s.SelectTrait("blank"))
	_, err := s.s.Run(context.Background(), "")
	s.ErrorIs(err, fault.ErrNoOverlap)
}

func (s *SessionSuite) TestStagesRepeatFromDisk() {
	s.prepare()
	ctx := context.Background()
	first, err := s.s.Run(ctx, "")
	s.Require().NoError(err)
	firstID := s.s.LastRunID()

	cfg := session.DefaultConfig()
	cfg.OutputDir = s.out
	again, err := session.New(cfg)
	s.Require().NoError(err)
	defer again.Close()

	sum, err := again.OpenIndex(ctx)
	s.Require().NoError(err)
	s.Equal(241, sum.Individuals)
	_, err = again.LoadPhenotypes(s.phenPath)
	s.Require().NoError(err)
	s.Require().NoError(again.SelectTrait("q"))

	r, err := again.EstimateFrom(ctx, "")
	s.Require().NoError(err)
	s.InDelta(first.H2r, r.H2r, 1e-12)
	s.InDelta(first.LogLik, r.LogLik, 1e-9)
	s.NotEqual(firstID, again.LastRunID())

	a, err := again.Decompose(ctx, filepath.Join(s.dir, "other", "q"))
	s.Require().NoError(err)
	s.Equal(240, a.N())
	s.FileExists(filepath.Join(s.dir, "other", "q"+evd.SuffixValues))
}

func (s *SessionSuite) TestReset() {
	s.prepare()
	s.s.Reset()
	s.Nil(s.s.Pedigree())
	s.Empty(s.s.Trait())
	_, err := s.s.Run(context.Background(), "")
	s.ErrorIs(err, session.ErrNotReady)
	s.Equal("session: empty", s.s.String())
}

func (s *SessionSuite) TestCanceledContext() {
	s.prepare()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.s.Run(ctx, "")
	s.ErrorIs(err, context.Canceled)
	_, err = s.s.LoadPedigree(ctx, s.kinPath)
	s.ErrorIs(err, context.Canceled)
}

func (s *SessionSuite) TestMetrics() {
	s.prepare()
	_, err := s.s.Run(context.Background(), "")
	s.Require().NoError(err)

	families, err := s.reg.Gather()
	s.Require().NoError(err)
	byName := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range m.GetLabel() {
				key += "/" + lp.GetValue()
			}
			switch {
			case m.Counter != nil:
				byName[key] = m.GetCounter().GetValue()
			case m.Gauge != nil:
				byName[key] = m.GetGauge().GetValue()
			case m.Histogram != nil:
				byName[key] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	s.Equal(1.0, byName["fphi_stage_runs_total/cluster"])
	s.Equal(1.0, byName["fphi_stage_runs_total/evd"])
	s.Equal(1.0, byName["fphi_stage_runs_total/estimate"])
	s.Equal(1.0, byName["fphi_kinship_records_skipped_total"])
	s.Equal(1.0, byName["fphi_stage_duration_seconds/estimate"])
	s.Equal(240.0, byName["fphi_last_subjects/q"])
	s.Contains(byName, "fphi_last_h2r/q")
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func TestRun_RecordsInLedger(t *testing.T) {
	dir := t.TempDir()
	kinPath, phenPath := writeFixtures(t, dir, 30)
	l, err := ledger.Open(filepath.Join(dir, "results.db"))
	require.NoError(t, err)
	defer l.Close()

	cfg := session.DefaultConfig()
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.Compress = false
	s, err := session.New(cfg, session.WithLedger(l))
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	_, err = s.LoadPedigree(ctx, kinPath)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(cfg.OutputDir, kinship.KinshipFile))
	_, err = s.LoadPhenotypes(phenPath)
	require.NoError(t, err)
	require.NoError(t, s.SelectTrait("q"))
	r, err := s.Run(ctx, "")
	require.NoError(t, err)

	entries, err := l.List(ctx, "q")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, s.LastRunID(), entries[0].RunID)
	require.Equal(t, r.H2r, entries[0].H2r)
	require.Equal(t, r.N, entries[0].N)
}

func TestNew_OwnsLedgerFromConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := session.DefaultConfig()
	cfg.OutputDir = dir
	cfg.LedgerPath = filepath.Join(dir, "db", "ledger.db")
	s, err := session.New(cfg)
	require.NoError(t, err)
	require.FileExists(t, cfg.LedgerPath)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestNew_Options(t *testing.T) {
	cfg := session.DefaultConfig()
	for _, opt := range []session.Option{
		session.WithLogger(nil),
		session.WithRegistry(nil),
		session.WithLedger(nil),
	} {
		_, err := session.New(cfg, opt)
		require.ErrorIs(t, err, session.ErrOptionViolation)
	}
}

func TestNew_SeparateRegistries(t *testing.T) {
	cfg := session.DefaultConfig()
	a, err := session.New(cfg)
	require.NoError(t, err)
	b, err := session.New(cfg)
	require.NoError(t, err)
	require.NotSame(t, a.Registerer(), b.Registerer())

	reg := prometheus.NewRegistry()
	_, err = session.New(cfg, session.WithRegistry(reg))
	require.NoError(t, err)
	_, err = session.New(cfg, session.WithRegistry(reg))
	require.Error(t, err, "duplicate registration")
}
