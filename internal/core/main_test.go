package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// The tables package imports core, so core's tests register the same
// schemas themselves.
func TestMain(m *testing.M) {
	registerTestSchemas()
	os.Exit(m.Run())
}

func registerTestSchemas() {
	ClearSchemas()
	RegisterSchema(Schema{Kind: KindFactbook, Label: "Factbook", NameColumn: "MARCA", CompanyColumn: "EMPRESA"})
	RegisterSchema(Schema{Kind: KindPipeline, Label: "Pipeline", NameColumn: "Name", SearchColumns: []string{"Notes", "Tags"}})
	RegisterSchema(Schema{Kind: KindMapping, Label: "Brand mapping", NameColumn: "MARCA", CompanyColumn: "EMPRESA"})
}

const factbookCAM = `,MARCA,EMPRESA,País,Categoría,Score según matriz
0,Brand A (Owner Co),Owner Co,Guatemala,Snacks,8
1,Brand B,,Honduras,Beverages,
`

const factbookPeru = `MARCA,País,Love brand
Inca Cola,Perú,
`

const pipelineCSV = `Name,Notes,Tags,Section/Column,País
Owner Co,Owns Brand A,beverage,M&A,Guatemala
Acme Holdings,Interested in brand b distribution,,Pipeline,
Owner Co ,Second deal,,,
Zeta,, snacks ,,
Zeta,, snacks ,,
`

const mappingCSV = `MARCA,EMPRESA
Brand B,Acme Holdings
brand b,Other Co
Inca Cola (Perú),Lindley
`

// writeFile creates a file under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// fixturePlan writes the standard fixture files and returns a LoadPlan.
func fixturePlan(t *testing.T, withMapping bool) LoadPlan {
	t.Helper()
	dir := t.TempDir()

	plan := LoadPlan{
		Factbook: []Source{
			&CSVSource{Path: writeFile(t, dir, "Factbook_CAM.csv", factbookCAM)},
			&CSVSource{Path: writeFile(t, dir, "Factbook_Peru.csv", factbookPeru)},
		},
		Pipeline: []Source{
			&CSVSource{Path: writeFile(t, dir, "Pipeline.csv", pipelineCSV)},
		},
	}
	if withMapping {
		plan.Mapping = &CSVSource{Path: writeFile(t, dir, "mapping.csv", mappingCSV)}
	}
	return plan
}

// loadFixture loads the standard fixture dataset.
func loadFixture(t *testing.T, withMapping bool) *Dataset {
	t.Helper()
	ds, err := Load(context.Background(), fixturePlan(t, withMapping))
	require.NoError(t, err)
	return ds
}

// defaultViewOptions mirrors the configured defaults.
func defaultViewOptions() ViewOptions {
	return ViewOptions{
		KeyFacts:      []string{"Section/Column", "Categoría", "País", "Love brand", "Score según matriz"},
		HiddenColumns: []string{"Unnamed: 0"},
	}
}
