package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/buyside/internal/anthropic"
)

// mockClient implements anthropic.Client.
type mockClient struct {
	mock.Mock
}

func (m *mockClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*anthropic.MessageResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestClaudeSummarizer_Summarize(t *testing.T) {
	ds := loadFixture(t, false)
	res, err := ds.Search("Brand A", defaultViewOptions())
	require.NoError(t, err)

	client := &mockClient{}
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == "claude-haiku-4-5-20251001" &&
			req.MaxTokens == 600 &&
			len(req.Messages) == 1 &&
			strings.Contains(req.Messages[0].Content, "Search term: BRAND A")
	})).Return(&anthropic.MessageResponse{
		Content:    []anthropic.ContentBlock{{Type: "text", Text: "Brand A is owned by Owner Co."}},
		StopReason: "end_turn",
		Usage:      anthropic.TokenUsage{InputTokens: 200, OutputTokens: 20},
	}, nil)

	s := NewClaudeSummarizer(client, "claude-haiku-4-5-20251001", 600)
	text, err := s.Summarize(context.Background(), res)
	require.NoError(t, err)
	assert.Equal(t, "Brand A is owned by Owner Co.", text)
	client.AssertExpectations(t)
}

func TestClaudeSummarizer_Errors(t *testing.T) {
	res := &SearchResult{Term: "X", Brands: &View{}, Pipeline: &View{}, Combined: &View{}}

	t.Run("api error", func(t *testing.T) {
		client := &mockClient{}
		client.On("CreateMessage", mock.Anything, mock.Anything).
			Return(nil, errors.New("anthropic: create message: 529 overloaded")).Once()

		_, err := NewClaudeSummarizer(client, "m", 10).Summarize(context.Background(), res)
		assert.ErrorIs(t, err, ErrSummaryFailed)
		assert.Equal(t, "SUM002", MapError(err).Code)
		client.AssertNumberOfCalls(t, "CreateMessage", 1)
	})

	t.Run("deadline", func(t *testing.T) {
		client := &mockClient{}
		client.On("CreateMessage", mock.Anything, mock.Anything).
			Return(nil, context.DeadlineExceeded).Once()

		_, err := NewClaudeSummarizer(client, "m", 10).Summarize(context.Background(), res)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, "SUM003", MapError(err).Code)
	})

	t.Run("empty response", func(t *testing.T) {
		client := &mockClient{}
		client.On("CreateMessage", mock.Anything, mock.Anything).
			Return(&anthropic.MessageResponse{StopReason: "max_tokens"}, nil).Once()

		_, err := NewClaudeSummarizer(client, "m", 10).Summarize(context.Background(), res)
		assert.ErrorIs(t, err, ErrSummaryFailed)
		assert.Contains(t, err.Error(), "max_tokens")
	})
}

func TestBuildSummaryPrompt(t *testing.T) {
	rows := make([][]string, maxPromptRows+5)
	for i := range rows {
		rows[i] = []string{"Zeta"}
	}
	res := &SearchResult{
		Term:     "ZETA",
		Brands:   &View{Columns: []string{"MARCA"}},
		Pipeline: &View{Columns: []string{"Name"}, Rows: rows},
		KeyFacts: []KeyFact{{Label: "País", Value: "Perú"}},
	}

	prompt := BuildSummaryPrompt(res)
	assert.Contains(t, prompt, "Search term: ZETA")
	assert.Contains(t, prompt, "- País: Perú")
	assert.Contains(t, prompt, "Factbook rows: none")
	assert.Contains(t, prompt, "(5 more rows omitted)")
	assert.Equal(t, maxPromptRows, strings.Count(prompt, "Zeta\n"))
}
