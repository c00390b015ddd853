package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// Export file names offered for download.
const (
	ResultsFileName = "search_results.csv"
	TagsFileName    = "added_tags.csv"
)

// TagsHeader is the header row of the tag-log export.
var TagsHeader = []string{"Search Term", "New Tag", "Added At"}

// WriteViewCSV writes a view as CSV: its columns, then one line per row.
func WriteViewCSV(w io.Writer, v *View) error {
	cw := csv.NewWriter(w)

	var cols []string
	if v != nil {
		cols = v.Columns
	}
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if v != nil {
		if err := cw.WriteAll(v.Rows); err != nil {
			return fmt.Errorf("write rows: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTagsCSV writes a tag log as CSV. An empty log yields the header only.
func WriteTagsCSV(w io.Writer, entries []TagEntry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(TagsHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.SearchTerm, e.Tag, e.AddedAt.Format(time.RFC3339)}); err != nil {
			return fmt.Errorf("write tag %s: %w", e.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
