package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/JonMunkholm/buyside/internal/core"
	"github.com/JonMunkholm/buyside/internal/web/templates"
)

var (
	faint = color.New(color.Faint).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
)

// printResult writes the result sections in page order.
func printResult(w io.Writer, res *core.SearchResult, summary string, summaryErr error) {
	fmt.Fprintf(w, "%s %s\n\n", bold("Results for"), cyan(res.Term))

	printView(w, "Factbook Results", res.Brands, templates.NoFactbookNote)

	if len(res.KeyFacts) > 0 {
		fmt.Fprintln(w, bold("Key Info Summary"))
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, f := range res.KeyFacts {
			fmt.Fprintf(tw, "  %s\t%s\n", f.Label+":", f.Value)
		}
		tw.Flush()
		fmt.Fprintln(w)
	}

	printView(w, "Pipeline Results", res.Pipeline, templates.NoPipelineNote)

	if res.Fallback {
		fmt.Fprintln(w, faint(templates.FallbackNote))
	}
	printView(w, "Combined Results", res.Combined, templates.NoMatchNote)

	switch {
	case summaryErr != nil:
		msg := core.MapError(summaryErr)
		fmt.Fprintf(w, "%s\n%s %s %s\n", bold("AI Summary"), red(msg.Message), msg.Action, faint("("+msg.Code+")"))
	case summary != "":
		fmt.Fprintf(w, "%s\n%s\n", bold("AI Summary"), summary)
	}
}

// printView writes a view as an aligned table, or the note when it is empty.
func printView(w io.Writer, heading string, v *core.View, emptyNote string) {
	fmt.Fprintln(w, bold(heading))
	if v.Empty() {
		fmt.Fprintf(w, "  %s\n\n", faint(emptyNote))
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(v.Columns, "\t"))
	for _, row := range v.Rows {
		fmt.Fprintln(tw, strings.Join(flatten(row), "\t"))
	}
	tw.Flush()
	unit := "rows"
	if v.Len() == 1 {
		unit = "row"
	}
	fmt.Fprintf(w, "%s\n\n", faint(fmt.Sprintf("(%d %s)", v.Len(), unit)))
}

// flatten keeps multi-line cells on one table line.
func flatten(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.Join(strings.Fields(c), " ")
	}
	return out
}
