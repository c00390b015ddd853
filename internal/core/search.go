package core

import (
	"errors"
	"strings"
)

// ErrEmptyTerm is returned when a search term standardizes to nothing.
var ErrEmptyTerm = errors.New("empty search term")

// PipelineSuffix is appended to a Pipeline column whose header collides
// with a Factbook header in the combined view.
const PipelineSuffix = " (Pipeline)"

// Search matches a name against both datasets.
//
// Brand matches are Factbook rows whose name or mapped company equals the
// key. Pipeline matches are rows whose name equals the key, followed by rows
// whose notes or tags contain it, with duplicate rows removed. The combined
// view joins brand matches to the whole Pipeline, or falls back to the
// pipeline matches when no brand matched.
func (d *Dataset) Search(term string, opts ViewOptions) (*SearchResult, error) {
	key := Standardize(term)
	if key == "" {
		return nil, ErrEmptyTerm
	}

	brands := d.matchBrands(key)
	pipeline := d.matchPipeline(key)

	result := &SearchResult{
		Term:     key,
		Brands:   buildView(d.Factbook.Columns, recordRows(d.Factbook.Columns, brands), opts),
		Pipeline: buildView(d.Pipeline.Columns, recordRows(d.Pipeline.Columns, pipeline), opts),
	}

	var cols []string
	var rows [][]string
	if len(brands) > 0 {
		cols, rows = d.joinPipeline(brands)
	} else {
		cols = d.Pipeline.Columns
		rows = recordRows(cols, pipeline)
		result.Fallback = len(pipeline) > 0
	}

	result.Combined = buildView(cols, rows, opts)
	if len(rows) > 0 {
		result.KeyFacts = keyFacts(cols, rows[0], opts.KeyFacts)
	}

	return result, nil
}

func (d *Dataset) matchBrands(key string) []Record {
	var out []Record
	for _, r := range d.Factbook.Records {
		if r.Key == key || r.AltKey == key {
			out = append(out, r)
		}
	}
	return out
}

// matchPipeline returns exact name matches then substring matches, each in
// source order, keeping the first of any rows with identical content.
func (d *Dataset) matchPipeline(key string) []Record {
	var out []Record
	seen := make(map[string]bool)
	add := func(r Record) {
		fp := r.fingerprint(d.Pipeline.Columns)
		if seen[fp] {
			return
		}
		seen[fp] = true
		out = append(out, r)
	}

	for _, i := range d.pipelineByKey[key] {
		add(d.Pipeline.Records[i])
	}
	for _, r := range d.Pipeline.Records {
		for _, text := range r.Text {
			if strings.Contains(text, key) {
				add(r)
				break
			}
		}
	}

	return out
}

// joinPipeline left-joins brand rows to every Pipeline row sharing the
// brand's name or mapped company. A brand without partners appears once
// with empty pipeline cells.
func (d *Dataset) joinPipeline(brands []Record) ([]string, [][]string) {
	fbCols := d.Factbook.Columns
	plCols := make([]string, len(d.Pipeline.Columns))

	taken := make(map[string]bool, len(fbCols))
	for _, c := range fbCols {
		taken[c] = true
	}
	for i, c := range d.Pipeline.Columns {
		if taken[c] {
			c += PipelineSuffix
		}
		plCols[i] = c
	}

	cols := append(append([]string{}, fbCols...), plCols...)

	var rows [][]string
	for _, b := range brands {
		left := recordRow(fbCols, b)
		partners := d.partners(b)
		if len(partners) == 0 {
			rows = append(rows, append(left, make([]string, len(plCols))...))
			continue
		}
		for _, i := range partners {
			right := recordRow(d.Pipeline.Columns, d.Pipeline.Records[i])
			rows = append(rows, append(append([]string{}, left...), right...))
		}
	}

	return cols, rows
}

func (d *Dataset) partners(b Record) []int {
	out := d.pipelineByKey[b.Key]
	if b.AltKey == "" || b.AltKey == b.Key {
		return out
	}
	alt := d.pipelineByKey[b.AltKey]
	if len(alt) == 0 {
		return out
	}

	merged := make([]int, 0, len(out)+len(alt))
	merged = append(merged, out...)
	seen := make(map[int]bool, len(out))
	for _, i := range out {
		seen[i] = true
	}
	for _, i := range alt {
		if !seen[i] {
			merged = append(merged, i)
		}
	}
	return merged
}

func recordRow(cols []string, r Record) []string {
	row := make([]string, len(cols))
	for i, c := range cols {
		row[i] = r.Cells[c]
	}
	return row
}

func recordRows(cols []string, records []Record) [][]string {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = recordRow(cols, r)
	}
	return rows
}

// keyFacts lists the configured columns that have a value in row. A column
// renamed by the join is consulted when the Factbook value is empty.
func keyFacts(cols, row []string, labels []string) []KeyFact {
	pos := MakeHeaderIndex(cols)
	value := func(name string) string {
		if i, ok := pos.Lookup(name); ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	var facts []KeyFact
	for _, label := range labels {
		v := value(label)
		if v == "" {
			v = value(label + PipelineSuffix)
		}
		if v != "" {
			facts = append(facts, KeyFact{Label: label, Value: v})
		}
	}
	return facts
}

// buildView drops hidden columns: blank or generated headers, configured
// columns, and, when there are rows, columns that are null in every row.
func buildView(cols []string, rows [][]string, opts ViewOptions) *View {
	hidden := make(map[string]bool, len(opts.HiddenColumns))
	for _, h := range opts.HiddenColumns {
		hidden[strings.ToLower(strings.TrimSpace(h))] = true
	}

	keep := make([]int, 0, len(cols))
	for i, c := range cols {
		if IsUnnamed(c) || hidden[strings.ToLower(c)] {
			continue
		}
		if len(rows) > 0 && columnEmpty(rows, i) {
			continue
		}
		keep = append(keep, i)
	}

	v := &View{
		Columns: make([]string, len(keep)),
		Rows:    make([][]string, len(rows)),
	}
	for j, i := range keep {
		v.Columns[j] = cols[i]
	}
	for r, row := range rows {
		out := make([]string, len(keep))
		for j, i := range keep {
			if i < len(row) {
				out[j] = row[i]
			}
		}
		v.Rows[r] = out
	}

	return v
}

func columnEmpty(rows [][]string, col int) bool {
	for _, row := range rows {
		if col < len(row) && strings.TrimSpace(row[col]) != "" {
			return false
		}
	}
	return true
}
