package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CreateMessage(t *testing.T) {
	var body map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/messages")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"id":   "msg_test_001",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": "ACME is a regional beverage group."},
			},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": "end_turn",
			"usage": map[string]any{
				"input_tokens":  120,
				"output_tokens": 40,
			},
		})
	}))
	defer ts.Close()

	client := NewClient("test-key", option.WithBaseURL(ts.URL))
	resp, err := client.CreateMessage(context.Background(), MessageRequest{
		Model:     "claude-haiku-4-5-20251001",
		MaxTokens: 600,
		System:    []SystemBlock{{Text: "You are an analyst."}},
		Messages:  []Message{{Role: "user", Content: "Summarize ACME"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "msg_test_001", resp.ID)
	assert.Equal(t, "end_turn", resp.StopReason)
	assert.Equal(t, "ACME is a regional beverage group.", resp.Text())
	assert.Equal(t, int64(120), resp.Usage.InputTokens)
	assert.Equal(t, int64(40), resp.Usage.OutputTokens)

	assert.Equal(t, "claude-haiku-4-5-20251001", body["model"])
	assert.EqualValues(t, 600, body["max_tokens"])
	assert.NotEmpty(t, body["system"])
}

func TestClient_CreateMessage_ErrorNotRetried(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`)) //nolint:errcheck
	}))
	defer ts.Close()

	client := NewClient("test-key", option.WithBaseURL(ts.URL))
	_, err := client.CreateMessage(context.Background(), MessageRequest{
		Model:     "claude-haiku-4-5-20251001",
		MaxTokens: 10,
		Messages:  []Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic: create message")
	assert.Equal(t, 1, calls)
}

func TestMessageResponse_Text(t *testing.T) {
	tests := []struct {
		name string
		resp *MessageResponse
		want string
	}{
		{"nil", nil, ""},
		{"empty", &MessageResponse{}, ""},
		{
			"joins text blocks",
			&MessageResponse{Content: []ContentBlock{
				{Type: "text", Text: "first"},
				{Type: "tool_use"},
				{Type: "text", Text: "second "},
			}},
			"first\nsecond",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.resp.Text())
		})
	}
}

func TestTokenUsage_EstimateCost(t *testing.T) {
	u := TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	assert.InDelta(t, 6.00, u.EstimateCost("claude-haiku-4-5-20251001"), 0.0001)
	assert.Zero(t, u.EstimateCost("unknown-model"))
}

func TestTokenUsage_LogCost(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	TokenUsage{InputTokens: 10, OutputTokens: 5}.LogCost(logger, "claude-haiku-4-5-20251001")
	assert.Contains(t, buf.String(), "input_tokens=10")
	assert.Contains(t, buf.String(), "output_tokens=5")
}
