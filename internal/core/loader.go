package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/buyside/internal/logging"
)

// LoadPlan lists the sources of one dataset load, in concatenation order.
type LoadPlan struct {
	Factbook []Source
	Pipeline []Source
	Mapping  Source // Optional brand -> company table
}

// Dataset is the immutable in-memory result of a load.
type Dataset struct {
	Factbook *Table
	Pipeline *Table
	LoadedAt time.Time

	pipelineByKey map[string][]int
	names         []string
}

// Load reads every source concurrently, concatenates each dataset in the
// configured order, joins the mapping onto the Factbook and computes keys.
func Load(ctx context.Context, plan LoadPlan) (*Dataset, error) {
	log := logging.FromContext(ctx)
	start := time.Now()

	all := make([]Source, 0, len(plan.Factbook)+len(plan.Pipeline)+1)
	all = append(all, plan.Factbook...)
	all = append(all, plan.Pipeline...)
	if plan.Mapping != nil {
		all = append(all, plan.Mapping)
	}

	raws := make([]*RawTable, len(all))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range all {
		g.Go(func() error {
			srcLog := logging.WithFields(gctx, "source", src.Name())
			raw, err := src.Read(gctx)
			if err != nil {
				srcLog.Warn("source read failed", "error", err)
				return fmt.Errorf("load %s: %w", src.Name(), err)
			}
			srcLog.Debug("source read", "rows", len(raw.Rows), "columns", len(raw.Header))
			raws[i] = raw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	nf, np := len(plan.Factbook), len(plan.Pipeline)
	factbook := Concat(KindFactbook, raws[:nf])
	pipeline := Concat(KindPipeline, raws[nf:nf+np])

	if plan.Mapping != nil {
		if err := JoinMapping(ctx, factbook, raws[nf+np]); err != nil {
			return nil, err
		}
	}

	ds, err := NewDataset(ctx, factbook, pipeline)
	if err != nil {
		return nil, err
	}

	log.Info("datasets loaded",
		"factbook_rows", factbook.Len(),
		"pipeline_rows", pipeline.Len(),
		"names", len(ds.names),
		"duration", time.Since(start),
	)

	return ds, nil
}

// Concat stacks raw tables into one. Columns are the union of all headers
// in first-seen order; a row lacking a column has a null cell for it.
func Concat(kind DatasetKind, raws []*RawTable) *Table {
	t := &Table{Kind: kind}
	seen := make(map[string]bool)

	for _, raw := range raws {
		for _, h := range raw.Header {
			if !seen[h] {
				seen[h] = true
				t.Columns = append(t.Columns, h)
			}
		}

		for _, row := range raw.Rows {
			cells := make(map[string]string, len(raw.Header))
			for i, h := range raw.Header {
				if i >= len(row) {
					break
				}
				v := row[i]
				if strings.TrimSpace(v) == "" {
					v = ""
				}
				cells[h] = v
			}
			t.Records = append(t.Records, Record{Source: raw.Source, Cells: cells})
		}
	}

	return t
}

// JoinMapping left-joins a brand -> company mapping onto the Factbook by
// standardized brand name. The first mapping row for a name wins, and an
// existing non-empty company cell is never overwritten.
func JoinMapping(ctx context.Context, factbook *Table, mapping *RawTable) error {
	log := logging.FromContext(ctx)

	fbSchema, ok := SchemaFor(KindFactbook)
	if !ok {
		return fmt.Errorf("no schema registered for %s", KindFactbook)
	}
	mapSchema, ok := SchemaFor(KindMapping)
	if !ok {
		return fmt.Errorf("no schema registered for %s", KindMapping)
	}

	idx := MakeHeaderIndex(mapping.Header)
	nameIdx, okName := idx.Lookup(mapSchema.NameColumn)
	companyIdx, okCompany := idx.Lookup(mapSchema.CompanyColumn)
	if !okName || !okCompany {
		log.Warn("mapping source lacks name or company column; skipping join",
			"source", mapping.Source,
			"name_column", mapSchema.NameColumn,
			"company_column", mapSchema.CompanyColumn,
		)
		return nil
	}

	companies := make(map[string]string, len(mapping.Rows))
	duplicates := 0
	for _, row := range mapping.Rows {
		if nameIdx >= len(row) || companyIdx >= len(row) {
			continue
		}
		key := Standardize(row[nameIdx])
		company := strings.TrimSpace(row[companyIdx])
		if key == "" || company == "" {
			continue
		}
		if _, exists := companies[key]; exists {
			duplicates++
			continue
		}
		companies[key] = company
	}
	if duplicates > 0 {
		log.Warn("mapping has duplicate names; first row kept", "source", mapping.Source, "duplicates", duplicates)
	}

	nameCol, hasName := resolveColumn(factbook.Columns, fbSchema.NameColumn)
	if !hasName {
		return nil
	}
	companyCol, hasCompany := resolveColumn(factbook.Columns, fbSchema.CompanyColumn)
	if !hasCompany {
		companyCol = fbSchema.CompanyColumn
		factbook.Columns = append(factbook.Columns, companyCol)
	}

	filled := 0
	for i := range factbook.Records {
		rec := &factbook.Records[i]
		if rec.Cells[companyCol] != "" {
			continue
		}
		if company, ok := companies[Standardize(rec.Cells[nameCol])]; ok {
			rec.Cells[companyCol] = company
			filled++
		}
	}

	log.Debug("mapping joined", "source", mapping.Source, "mapped_names", len(companies), "filled", filled)
	return nil
}

// NewDataset computes standardized keys and search indexes for loaded tables.
func NewDataset(ctx context.Context, factbook, pipeline *Table) (*Dataset, error) {
	log := logging.FromContext(ctx)

	fbSchema, ok := SchemaFor(KindFactbook)
	if !ok {
		return nil, fmt.Errorf("no schema registered for %s", KindFactbook)
	}
	plSchema, ok := SchemaFor(KindPipeline)
	if !ok {
		return nil, fmt.Errorf("no schema registered for %s", KindPipeline)
	}

	nameCol, hasName := resolveColumn(factbook.Columns, fbSchema.NameColumn)
	if !hasName && factbook.Len() > 0 {
		log.Warn("name column missing; rows will not match", "dataset", fbSchema.Label, "column", fbSchema.NameColumn)
	}
	companyCol, hasCompany := resolveColumn(factbook.Columns, fbSchema.CompanyColumn)

	for i := range factbook.Records {
		rec := &factbook.Records[i]
		if hasName {
			rec.Key = Standardize(rec.Cells[nameCol])
		}
		if hasCompany {
			rec.AltKey = Standardize(rec.Cells[companyCol])
		}
	}

	plName, hasPlName := resolveColumn(pipeline.Columns, plSchema.NameColumn)
	if !hasPlName && pipeline.Len() > 0 {
		log.Warn("name column missing; rows will not match by name", "dataset", plSchema.Label, "column", plSchema.NameColumn)
	}
	var textCols []string
	for _, c := range plSchema.SearchColumns {
		if col, ok := resolveColumn(pipeline.Columns, c); ok {
			textCols = append(textCols, col)
		}
	}

	ds := &Dataset{
		Factbook:      factbook,
		Pipeline:      pipeline,
		LoadedAt:      time.Now(),
		pipelineByKey: make(map[string][]int),
	}

	for i := range pipeline.Records {
		rec := &pipeline.Records[i]
		if hasPlName {
			rec.Key = Standardize(rec.Cells[plName])
		}
		for _, col := range textCols {
			if v := rec.Cells[col]; v != "" {
				rec.Text = append(rec.Text, upperText(v))
			}
		}
		if rec.Key != "" {
			ds.pipelineByKey[rec.Key] = append(ds.pipelineByKey[rec.Key], i)
		}
	}

	ds.names = collectNames(factbook, pipeline)
	return ds, nil
}

// Names returns every searchable canonical name, sorted.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// Stats summarizes the dataset.
func (d *Dataset) Stats() DatasetStats {
	return DatasetStats{
		FactbookRows: d.Factbook.Len(),
		PipelineRows: d.Pipeline.Len(),
		Names:        len(d.names),
		LoadedAt:     d.LoadedAt,
	}
}

func collectNames(factbook, pipeline *Table) []string {
	set := make(map[string]struct{})
	for _, r := range factbook.Records {
		if r.Key != "" {
			set[r.Key] = struct{}{}
		}
		if r.AltKey != "" {
			set[r.AltKey] = struct{}{}
		}
	}
	for _, r := range pipeline.Records {
		if r.Key != "" {
			set[r.Key] = struct{}{}
		}
	}

	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// resolveColumn finds the actual header matching name case-insensitively.
func resolveColumn(columns []string, name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if i, ok := MakeHeaderIndex(columns).Lookup(name); ok {
		return columns[i], true
	}
	return "", false
}
