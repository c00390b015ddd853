// Package anthropic wraps the Anthropic Messages API behind a small interface
// so callers can be tested without network access.
package anthropic

import (
	"context"
	"log/slog"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

// Client defines the Anthropic API operations used by the summary feature.
type Client interface {
	CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error)
}

// MessageRequest is our own request type for CreateMessage.
type MessageRequest struct {
	Model       string
	MaxTokens   int64
	System      []SystemBlock
	Messages    []Message
	Temperature *float64
}

// SystemBlock represents a system prompt block.
type SystemBlock struct {
	Text string
}

// Message represents a single conversational message.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// MessageResponse is our own response type from CreateMessage.
type MessageResponse struct {
	ID         string
	Model      string
	Content    []ContentBlock
	StopReason string
	Usage      TokenUsage
}

// Text joins the text blocks of the response.
func (r *MessageResponse) Text() string {
	if r == nil {
		return ""
	}
	parts := make([]string, 0, len(r.Content))
	for _, b := range r.Content {
		if b.Type == "text" && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// ContentBlock represents a block of content in a response.
type ContentBlock struct {
	Type string
	Text string
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
}

// modelPricing holds per-million-token pricing for known models.
var modelPricing = map[string][2]float64{
	// model → {input $/MTok, output $/MTok}
	"claude-haiku-4-5-20251001":  {1.00, 5.00},
	"claude-sonnet-4-5-20250929": {3.00, 15.00},
}

// EstimateCost computes an estimated cost in USD from a TokenUsage and model ID.
// Returns 0 for unknown models.
func (u TokenUsage) EstimateCost(model string) float64 {
	pricing, ok := modelPricing[model]
	if !ok {
		return 0
	}
	inCost := (float64(u.InputTokens) / 1e6) * pricing[0]
	outCost := (float64(u.OutputTokens) / 1e6) * pricing[1]
	return inCost + outCost
}

// LogCost logs token usage and estimated cost.
func (u TokenUsage) LogCost(logger *slog.Logger, model string) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("summary cost",
		"model", model,
		"input_tokens", u.InputTokens,
		"output_tokens", u.OutputTokens,
		"estimated_cost_usd", u.EstimateCost(model),
	)
}

// sdkClient implements Client using the official anthropic-sdk-go.
type sdkClient struct {
	client sdk.Client
}

// NewClient creates a new Anthropic client backed by the SDK. Requests are
// not retried; callers bound them with a context deadline.
func NewClient(apiKey string, opts ...option.RequestOption) Client {
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	return &sdkClient{
		client: sdk.NewClient(append(base, opts...)...),
	}
}

func (c *sdkClient) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: req.MaxTokens,
		Messages:  toSDKMessages(req.Messages),
	}

	if len(req.System) > 0 {
		params.System = toSDKSystemBlocks(req.System)
	}

	if req.Temperature != nil {
		params.Temperature = sdk.Float(*req.Temperature)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "anthropic: create message")
	}

	return fromSDKMessage(msg), nil
}

// --- SDK type conversion helpers ---

func toSDKMessages(msgs []Message) []sdk.MessageParam {
	out := make([]sdk.MessageParam, len(msgs))
	for i, m := range msgs {
		block := sdk.NewTextBlock(m.Content)
		switch m.Role {
		case "assistant":
			out[i] = sdk.NewAssistantMessage(block)
		default:
			out[i] = sdk.NewUserMessage(block)
		}
	}
	return out
}

func toSDKSystemBlocks(blocks []SystemBlock) []sdk.TextBlockParam {
	out := make([]sdk.TextBlockParam, len(blocks))
	for i, b := range blocks {
		out[i] = sdk.TextBlockParam{Text: b.Text}
	}
	return out
}

func fromSDKMessage(msg *sdk.Message) *MessageResponse {
	blocks := make([]ContentBlock, 0, len(msg.Content))
	for _, b := range msg.Content {
		blocks = append(blocks, ContentBlock{
			Type: b.Type,
			Text: b.Text,
		})
	}

	return &MessageResponse{
		ID:         msg.ID,
		Model:      string(msg.Model),
		Content:    blocks,
		StopReason: string(msg.StopReason),
		Usage: TokenUsage{
			InputTokens:  msg.Usage.InputTokens,
			OutputTokens: msg.Usage.OutputTokens,
		},
	}
}
