package kinship_test

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/fphi/fault"
	"github.com/katalvlaran/fphi/kinship"
)

const threePerson = "IDA,IDB,KIN\nA,A,0.5\nB,B,0.5\nC,C,0.5\nA,B,0.25\n"

func TestWriteIndex_Files(t *testing.T) {
	dir := t.TempDir()
	p := mustCluster(t, threePerson)
	require.NoError(t, kinship.WriteIndex(dir, p, true))

	idx, err := os.ReadFile(filepath.Join(dir, kinship.IndexFile))
	require.NoError(t, err)
	require.Equal(t,
		"    1     0     0   0     1     1  A\n"+
			"    2     0     0   0     1     1  B\n"+
			"    3     0     0   0     2     1  C\n",
		string(idx))

	f, err := os.Open(filepath.Join(dir, kinship.KinshipGzFile))
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	var lines []string
	sc := bufio.NewScanner(zr)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.Equal(t, []string{
		"      1       1 0.5000000",
		"      2       2 0.5000000",
		"      3       3 0.5000000",
		"      1       2 0.2500000",
	}, lines)

	sum, err := os.ReadFile(filepath.Join(dir, kinship.SummaryCSVFile))
	require.NoError(t, err)
	require.Equal(t,
		"source_file,total_individuals,total_pedigrees,total_nuclear_families,founders\n"+
			"test.csv,3,2,2,3\n",
		string(sum))
}

func TestIndex_RoundTrip(t *testing.T) {
	for _, compress := range []bool{true, false} {
		dir := t.TempDir()
		p := mustCluster(t, threePerson+"C,D,0.0625\n")
		require.NoError(t, kinship.WriteIndex(dir, p, compress))

		back, err := kinship.OpenIndex(dir)
		require.NoError(t, err)
		require.Equal(t, p.Persons, back.Persons)
		require.Equal(t, p.Entries, back.Entries)
		require.Equal(t, p.Families, back.Families)
		require.Equal(t, "test.csv", back.Source)

		v, ok := back.Lookup(4, 3)
		require.True(t, ok)
		require.Equal(t, 0.0625, v)
	}
}

func TestWriteIndex_ReplacesStaleKinship(t *testing.T) {
	dir := t.TempDir()
	p := mustCluster(t, threePerson)
	require.NoError(t, kinship.WriteIndex(dir, p, true))

	q := mustCluster(t, "IDA,IDB,KIN\nX,Y,0.5\n")
	require.NoError(t, kinship.WriteIndex(dir, q, false))

	_, err := os.Stat(filepath.Join(dir, kinship.KinshipGzFile))
	require.True(t, os.IsNotExist(err))

	back, err := kinship.OpenIndex(dir)
	require.NoError(t, err)
	require.Len(t, back.Entries, 1)
}

func TestOpenIndex_Errors(t *testing.T) {
	_, err := kinship.OpenIndex(t.TempDir())
	require.ErrorIs(t, err, fault.ErrIO)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, kinship.IndexFile), []byte("    1 0 0 0\n"), 0o644))
	_, err = kinship.OpenIndex(dir)
	require.ErrorIs(t, err, fault.ErrMalformedInput)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kin.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.ReplaceAll(threePerson, ",", ", ")), 0o644))

	p, err := kinship.Load(path, kinship.WithThreshold(0.3))
	require.NoError(t, err)
	require.Equal(t, 3, p.Families)

	_, err = kinship.Load(filepath.Join(t.TempDir(), "missing.csv"))
	require.ErrorIs(t, err, fault.ErrIO)
}
