// Package templates holds the templ components of the lookup UI.
//
// Edit the .templ files and run `templ generate`; the *_templ.go files are
// generated from them.
package templates

import (
	"fmt"
	"net/url"
	"time"

	"github.com/JonMunkholm/buyside/internal/core"
)

// Section notes shown when a dataset has no match.
const (
	NoFactbookNote = "No Factbook data found for this brand."
	NoPipelineNote = "No Pipeline data found for this company or related notes/tags."
	FallbackNote   = "No Factbook match; showing Pipeline results only."
	NoMatchNote    = "No results found in either dataset."
)

// SearchPageData is everything the search page renders.
type SearchPageData struct {
	Term           string
	Names          []string
	Result         *core.SearchResult
	Stats          core.DatasetStats
	Tags           []core.TagEntry
	TagMessage     string
	TagError       string
	Summary        string
	SummaryError   string
	SummaryEnabled bool
}

func pageTitle(d SearchPageData) string {
	if d.Result == nil {
		return "Buy-side Search"
	}
	return d.Result.Term + " | Buy-side Search"
}

// searchURL builds a link carrying term as the q parameter.
func searchURL(path, term string) string {
	return path + "?" + url.Values{"q": {term}}.Encode()
}

func pluralRows(n int) string {
	if n == 1 {
		return "1 row"
	}
	return fmt.Sprintf("%d rows", n)
}

func statsLine(s core.DatasetStats) string {
	return fmt.Sprintf("%d Factbook rows, %d Pipeline rows, %d names.", s.FactbookRows, s.PipelineRows, s.Names)
}

func tagTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
