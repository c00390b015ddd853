package core

import (
	"strings"
	"time"
)

// DatasetKind identifies which logical dataset a table belongs to.
type DatasetKind string

const (
	KindFactbook DatasetKind = "factbook"
	KindPipeline DatasetKind = "pipeline"
	KindMapping  DatasetKind = "mapping"
)

// RawTable is a source read verbatim: cleaned headers plus string rows.
type RawTable struct {
	Source string     // Source label, e.g. "data/Factbook_CAM.csv"
	Header []string   // Column headers after CleanCell
	Rows   [][]string // Data rows; may be shorter or longer than Header
}

// Record is one row of a loaded dataset.
type Record struct {
	Source string            // Originating source label
	Cells  map[string]string // Raw display values by column header
	Key    string            // Standardized primary name
	AltKey string            // Standardized mapped company (Factbook only)
	Text   []string          // Uppercased searchable free text (Pipeline notes/tags)
}

// Get returns the raw value of a column, or "" if absent.
func (r Record) Get(col string) string {
	return r.Cells[col]
}

// Table is a concatenated dataset with a fixed column order.
type Table struct {
	Kind    DatasetKind
	Columns []string
	Records []Record
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// fingerprint identifies a record by its cell content in column order.
// Two records with identical cells are duplicates regardless of source.
func (r Record) fingerprint(cols []string) string {
	var b strings.Builder
	for _, c := range cols {
		b.WriteString(r.Cells[c])
		b.WriteByte(0x1f)
	}
	return b.String()
}

// View is a table prepared for display and export: visible columns only.
type View struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Len returns the number of rows in the view.
func (v *View) Len() int {
	if v == nil {
		return 0
	}
	return len(v.Rows)
}

// Empty reports whether the view has no rows.
func (v *View) Empty() bool {
	return v.Len() == 0
}

// KeyFact is one label/value pair of the key info summary.
type KeyFact struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SearchResult contains everything shown for one selected name.
type SearchResult struct {
	Term     string    `json:"term"`
	Brands   *View     `json:"brands"`
	Pipeline *View     `json:"pipeline"`
	Combined *View     `json:"combined"`
	Fallback bool      `json:"fallback"` // Combined holds pipeline-only matches
	KeyFacts []KeyFact `json:"keyFacts"`
}

// HasMatches reports whether either dataset matched.
func (r *SearchResult) HasMatches() bool {
	return !r.Brands.Empty() || !r.Pipeline.Empty()
}

// DatasetStats summarizes a loaded dataset for health checks and logs.
type DatasetStats struct {
	FactbookRows int       `json:"factbookRows"`
	PipelineRows int       `json:"pipelineRows"`
	Names        int       `json:"names"`
	LoadedAt     time.Time `json:"loadedAt"`
}

// ViewOptions controls how search results are presented.
type ViewOptions struct {
	KeyFacts      []string // Columns listed in the key info summary
	HiddenColumns []string // Columns always removed from views
}
