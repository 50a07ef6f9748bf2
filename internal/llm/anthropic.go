package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicSystemPrompt = "You are a senior QA engineer designing manual test cases from software requirements. Respond with strict JSON only."

// DefaultAnthropicModel is used when no model is configured for the
// Anthropic provider.
const DefaultAnthropicModel = string(anthropic.ModelClaudeSonnet4_20250514)

// AnthropicMessager is the subset of the Anthropic SDK used by AnthropicCaller.
type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicCaller sends prompts through the Anthropic Messages API.
type AnthropicCaller struct {
	messages  AnthropicMessager
	maxTokens int64
}

// NewAnthropicCaller creates a caller for the given API key.
func NewAnthropicCaller(apiKey string) *AnthropicCaller {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return NewAnthropicCallerWithMessager(&c.Messages)
}

// NewAnthropicCallerWithMessager creates a caller over an existing messager.
func NewAnthropicCallerWithMessager(messages AnthropicMessager) *AnthropicCaller {
	return &AnthropicCaller{messages: messages, maxTokens: 8192}
}

// Call implements Caller.
func (a *AnthropicCaller) Call(ctx context.Context, model, prompt string) (string, error) {
	if model == "" {
		model = DefaultAnthropicModel
	}
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   a.maxTokens,
		System:      []anthropic.TextBlockParam{{Text: anthropicSystemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return "", classifyAnthropicError(err)
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}

func classifyAnthropicError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError()
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &LLMError{
			Type:    ErrorTypeAPI,
			Code:    apiErr.StatusCode,
			Message: fmt.Sprintf("model provider error: status %d", apiErr.StatusCode),
			Err:     err,
		}
	}
	return NewNetworkError(err)
}
