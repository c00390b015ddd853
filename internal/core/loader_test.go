package core

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ConcatUnionsColumns(t *testing.T) {
	ds := loadFixture(t, false)

	assert.Equal(t,
		[]string{"Unnamed: 0", "MARCA", "EMPRESA", "País", "Categoría", "Score según matriz", "Love brand"},
		ds.Factbook.Columns)
	require.Equal(t, 3, ds.Factbook.Len())

	peru := ds.Factbook.Records[2]
	assert.True(t, strings.HasSuffix(peru.Source, "Factbook_Peru.csv"), "configured order kept")
	assert.Equal(t, "Inca Cola", peru.Get("MARCA"))
	assert.Empty(t, peru.Get("EMPRESA"), "missing column is null")
	assert.Empty(t, peru.Get("Love brand"), "blank cell is null")

	assert.Equal(t, []string{"Name", "Notes", "Tags", "Section/Column", "País"}, ds.Pipeline.Columns)
	assert.Equal(t, 5, ds.Pipeline.Len())
}

func TestLoad_ComputesKeys(t *testing.T) {
	ds := loadFixture(t, false)

	brandA := ds.Factbook.Records[0]
	assert.Equal(t, "BRAND A", brandA.Key)
	assert.Equal(t, "OWNER CO", brandA.AltKey)
	assert.Equal(t, "Brand A (Owner Co)", brandA.Get("MARCA"), "display value untouched")

	owner2 := ds.Pipeline.Records[2]
	assert.Equal(t, "OWNER CO", owner2.Key)
	assert.Equal(t, "Owner Co ", owner2.Get("Name"))

	zeta := ds.Pipeline.Records[3]
	assert.Equal(t, []string{" SNACKS "}, zeta.Text)
}

func TestLoad_Names(t *testing.T) {
	ds := loadFixture(t, false)

	assert.Equal(t,
		[]string{"ACME HOLDINGS", "BRAND A", "BRAND B", "INCA COLA", "OWNER CO", "ZETA"},
		ds.Names())

	stats := ds.Stats()
	assert.Equal(t, 3, stats.FactbookRows)
	assert.Equal(t, 5, stats.PipelineRows)
	assert.Equal(t, 6, stats.Names)
	assert.False(t, stats.LoadedAt.IsZero())
}

func TestLoad_Mapping(t *testing.T) {
	ds := loadFixture(t, true)

	byName := make(map[string]Record)
	for _, r := range ds.Factbook.Records {
		byName[r.Key] = r
	}

	assert.Equal(t, "Owner Co", byName["BRAND A"].Get("EMPRESA"), "existing company kept")
	assert.Equal(t, "Acme Holdings", byName["BRAND B"].Get("EMPRESA"), "first mapping row wins")
	assert.Equal(t, "ACME HOLDINGS", byName["BRAND B"].AltKey)
	assert.Equal(t, "Lindley", byName["INCA COLA"].Get("EMPRESA"), "mapping keys are standardized")

	assert.Contains(t, ds.Names(), "LINDLEY")
}

func TestJoinMapping_AddsCompanyColumn(t *testing.T) {
	ctx := context.Background()

	peru, err := ReadCSV(ctx, "peru", strings.NewReader(factbookPeru))
	require.NoError(t, err)
	mapping, err := ReadCSV(ctx, "mapping", strings.NewReader(mappingCSV))
	require.NoError(t, err)

	fb := Concat(KindFactbook, []*RawTable{peru})
	require.NotContains(t, fb.Columns, "EMPRESA")

	require.NoError(t, JoinMapping(ctx, fb, mapping))
	assert.Equal(t, []string{"MARCA", "País", "Love brand", "EMPRESA"}, fb.Columns)
	assert.Equal(t, "Lindley", fb.Records[0].Get("EMPRESA"))
}

func TestJoinMapping_MissingColumnsSkipped(t *testing.T) {
	ctx := context.Background()

	fbRaw, err := ReadCSV(ctx, "fb", strings.NewReader(factbookPeru))
	require.NoError(t, err)
	bad, err := ReadCSV(ctx, "bad", strings.NewReader("Brand,Owner\nInca Cola,Lindley\n"))
	require.NoError(t, err)

	fb := Concat(KindFactbook, []*RawTable{fbRaw})
	require.NoError(t, JoinMapping(ctx, fb, bad))
	assert.Equal(t, []string{"MARCA", "País", "Love brand"}, fb.Columns)
}

func TestLoad_MissingNameColumn(t *testing.T) {
	dir := t.TempDir()
	plan := LoadPlan{
		Factbook: []Source{&CSVSource{Path: writeFile(t, dir, "fb.csv", "Brand,País\nX,Perú\n")}},
		Pipeline: []Source{&CSVSource{Path: writeFile(t, dir, "pl.csv", pipelineCSV)}},
	}

	ds, err := Load(context.Background(), plan)
	require.NoError(t, err)
	assert.Empty(t, ds.Factbook.Records[0].Key)
	assert.NotContains(t, ds.Names(), "X")
}

func TestLoad_SourceError(t *testing.T) {
	plan := LoadPlan{
		Factbook: []Source{&CSVSource{Path: filepath.Join(t.TempDir(), "missing.csv")}},
		Pipeline: nil,
	}

	_, err := Load(context.Background(), plan)
	assert.ErrorIs(t, err, ErrSourceNotFound)
	assert.Contains(t, err.Error(), "missing.csv")
}

func TestLoad_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plan := fixturePlan(t, false)
	plan.Factbook = append(plan.Factbook, &XLSXSource{Path: createTestXLSX(t, map[string][][]string{"S": {{"MARCA"}, {"X"}}})})

	_, err := Load(ctx, plan)
	assert.ErrorIs(t, err, context.Canceled)
}
