package phenotype_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/fphi/fault"
	"github.com/katalvlaran/fphi/phenotype"
)

const pheno = `ID,bmi,height
A,21.5,170
B,NA,165
C,.,
D,abc,180
E,,172
F,inf,160
A,99,1
G,-3.25e1,150
`

func mustRead(t *testing.T, text string) *phenotype.Table {
	t.Helper()
	tbl, err := phenotype.Read(strings.NewReader(text), "pheno.csv")
	require.NoError(t, err)

	return tbl
}

func TestValues_Filtering(t *testing.T) {
	v, err := mustRead(t, pheno).Values("bmi")
	require.NoError(t, err)

	require.Equal(t, []string{"A", "G"}, v.IDs)
	require.Equal(t, []float64{21.5, -32.5}, v.Data)

	x, ok := v.Lookup("A")
	require.True(t, ok)
	require.Equal(t, 21.5, x) // first occurrence wins

	_, ok = v.Lookup("B")
	require.False(t, ok)
}

func TestValues_OtherTrait(t *testing.T) {
	v, err := mustRead(t, pheno).Values("height")
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B", "D", "E", "F", "G"}, v.IDs)
	require.Equal(t, 6, v.Len())
}

func TestColumns(t *testing.T) {
	tbl := mustRead(t, "id,Trait\nx,1\n")

	idCol, traitCol, err := tbl.Columns("Trait")
	require.NoError(t, err)
	require.Equal(t, 0, idCol)
	require.Equal(t, 1, traitCol)

	// trait names are case-sensitive
	_, _, err = tbl.Columns("trait")
	require.ErrorIs(t, err, fault.ErrColumnNotFound)
	require.Contains(t, err.Error(), "available: Trait")

	noID := mustRead(t, "subject,Trait\nx,1\n")
	_, _, err = noID.Columns("Trait")
	require.ErrorIs(t, err, fault.ErrColumnNotFound)
}

func TestTraits(t *testing.T) {
	tbl := mustRead(t, pheno)
	require.Equal(t, []string{"bmi", "height"}, tbl.Traits())
	require.True(t, tbl.HasTrait("bmi"))
	require.False(t, tbl.HasTrait("BMI"))
}

func TestRead_RaggedRows(t *testing.T) {
	v, err := mustRead(t, "ID,a,b\nx,1\ny,2,3\n").Values("b")
	require.NoError(t, err)
	require.Equal(t, []string{"y"}, v.IDs)
}

func TestRead_Empty(t *testing.T) {
	_, err := phenotype.Read(strings.NewReader(""), "empty")
	require.ErrorIs(t, err, fault.ErrNoData)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.csv")
	require.NoError(t, os.WriteFile(path, []byte(pheno), 0o644))

	tbl, err := phenotype.Load(path)
	require.NoError(t, err)
	require.Equal(t, path, tbl.Source)
	require.Len(t, tbl.Rows, 8)

	_, err = phenotype.Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.ErrorIs(t, err, fault.ErrIO)
}

func TestNewValues(t *testing.T) {
	v := phenotype.NewValues("t", []string{"a", "b", "a"}, []float64{1, 2, 3})
	require.Equal(t, []string{"a", "b"}, v.IDs)
	x, _ := v.Lookup("a")
	require.Equal(t, 1.0, x)
}
