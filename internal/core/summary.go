package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/buyside/internal/anthropic"
	"github.com/JonMunkholm/buyside/internal/logging"
)

// Summary errors.
var (
	ErrSummaryNotConfigured = errors.New("summary not configured")
	ErrSummaryFailed        = errors.New("summary failed")
)

// maxPromptRows bounds how many rows of each view are sent to the model.
const maxPromptRows = 25

// Summarizer produces a short text summary of a search result.
type Summarizer interface {
	Summarize(ctx context.Context, result *SearchResult) (string, error)
}

// ClaudeSummarizer summarizes results with the Anthropic Messages API.
type ClaudeSummarizer struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewClaudeSummarizer creates a summarizer for the given model.
func NewClaudeSummarizer(client anthropic.Client, model string, maxTokens int64) *ClaudeSummarizer {
	return &ClaudeSummarizer{client: client, model: model, maxTokens: maxTokens}
}

const summarySystemPrompt = "You are an M&A analyst on the buy side. " +
	"Summarize what the Factbook and Pipeline data say about the company or brand " +
	"in one short paragraph. Use only the data provided."

// Summarize sends the result to the model. It is called once; failures are
// returned wrapped in ErrSummaryFailed and never retried.
func (s *ClaudeSummarizer) Summarize(ctx context.Context, result *SearchResult) (string, error) {
	resp, err := s.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System:    []anthropic.SystemBlock{{Text: summarySystemPrompt}},
		Messages:  []anthropic.Message{{Role: "user", Content: BuildSummaryPrompt(result)}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSummaryFailed, err)
	}

	resp.Usage.LogCost(logging.FromContext(ctx), s.model)

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty response (stop reason %q)", ErrSummaryFailed, resp.StopReason)
	}
	return text, nil
}

// BuildSummaryPrompt renders the key facts and matched rows as plain text.
func BuildSummaryPrompt(result *SearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search term: %s\n", result.Term)

	if len(result.KeyFacts) > 0 {
		b.WriteString("\nKey facts:\n")
		for _, f := range result.KeyFacts {
			fmt.Fprintf(&b, "- %s: %s\n", f.Label, f.Value)
		}
	}

	writeSection(&b, "Factbook rows", result.Brands)
	writeSection(&b, "Pipeline rows", result.Pipeline)

	return b.String()
}

func writeSection(b *strings.Builder, title string, v *View) {
	if v.Empty() {
		fmt.Fprintf(b, "\n%s: none\n", title)
		return
	}

	fmt.Fprintf(b, "\n%s (CSV):\n", title)
	trimmed := &View{Columns: v.Columns, Rows: v.Rows}
	if len(trimmed.Rows) > maxPromptRows {
		trimmed.Rows = trimmed.Rows[:maxPromptRows]
	}
	// Writing to a strings.Builder cannot fail.
	_ = WriteViewCSV(b, trimmed)
	if v.Len() > maxPromptRows {
		fmt.Fprintf(b, "(%d more rows omitted)\n", v.Len()-maxPromptRows)
	}
}
