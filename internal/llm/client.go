package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// Caller sends a single prompt to a model and returns the raw text reply.
type Caller interface {
	Call(ctx context.Context, model, prompt string) (string, error)
}

// Client runs structured generations over a Caller, OpenRouter by default.
type Client struct {
	config *Config
	caller Caller
	models map[string]ModelConfig
	logger *slog.Logger
}

// NewClient creates a client backed by OpenRouter.
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	config.SetDefaults()

	caller := &openRouterCaller{
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
	}
	return newClient(config, caller), nil
}

// NewClientWithCaller creates a client that sends prompts through caller.
func NewClientWithCaller(config *Config, caller Caller) (*Client, error) {
	if caller == nil {
		return nil, errors.New("invalid config: caller is required")
	}
	if config.DefaultModel == "" {
		return nil, errors.New("invalid config: DefaultModel is required")
	}
	config.SetDefaults()

	return newClient(config, caller), nil
}

func newClient(config *Config, caller Caller) *Client {
	return &Client{
		config: config,
		caller: caller,
		models: DefaultModels(),
		logger: slog.Default().With("component", "llm"),
	}
}

func (c *Client) DefaultModel() string {
	return c.config.DefaultModel
}

func (c *Client) Models() map[string]ModelConfig {
	return c.models
}

// GenerateStructured asks model for a JSON reply decoded into T. Replies
// that do not parse, or that validate rejects, are retried up to
// MaxRetries times with the failure appended to the original prompt.
// Transport and provider errors are returned at once.
func GenerateStructured[T any](
	client *Client,
	ctx context.Context,
	model string,
	prompt string,
	validate func(*T) error,
) (*T, error) {
	if model == "" {
		model = client.config.DefaultModel
	}

	attemptPrompt := prompt
	var lastErr error

	for attempt := 1; attempt <= client.config.MaxRetries; attempt++ {
		client.logger.Info("LLM generation attempt",
			"attempt", attempt,
			"model", model,
			"prompt_length", len(attemptPrompt),
		)

		result, err := callStructured[T](client, ctx, model, attemptPrompt)
		if err != nil {
			var llmErr *LLMError
			if !errors.As(err, &llmErr) || llmErr.Type != ErrorTypeParse {
				return nil, err
			}
			lastErr = err
			attemptPrompt = withFeedback(prompt, "PREVIOUS ATTEMPT FAILED:\nError: "+err.Error(),
				"Please return valid JSON matching the exact structure requested.")
			continue
		}

		if validate != nil {
			if err := validate(result); err != nil {
				lastErr = NewValidationError(err.Error(), err)
				client.logger.Warn("LLM output validation failed", "attempt", attempt, "error", err.Error())
				attemptPrompt = withFeedback(prompt, "PREVIOUS VALIDATION ERROR:\n"+err.Error(),
					"Please fix the output to pass validation.")
				continue
			}
		}

		client.logger.Info("LLM generation succeeded", "attempt", attempt, "model", model)
		return result, nil
	}

	return nil, fmt.Errorf("validation failed after %d attempts: %w", client.config.MaxRetries, lastErr)
}

func withFeedback(prompt, failure, instruction string) string {
	return prompt + "\n\n" + failure + "\n\n" + instruction
}

// callStructured makes a single model call and decodes its JSON reply.
func callStructured[T any](client *Client, ctx context.Context, model, prompt string) (*T, error) {
	content, err := client.caller.Call(ctx, model, prompt)
	if err != nil {
		var llmErr *LLMError
		switch {
		case errors.As(err, &llmErr):
			return nil, err
		case errors.Is(err, context.DeadlineExceeded):
			return nil, NewTimeoutError()
		default:
			return nil, NewNetworkError(err)
		}
	}

	content = cleanMarkdownCodeBlocks(content)
	if content == "" {
		return nil, NewParseError(content, errors.New("empty response"))
	}

	var result T
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, NewParseError(content, err)
	}
	return &result, nil
}

// cleanMarkdownCodeBlocks strips a ``` or ```json fence around a reply.
func cleanMarkdownCodeBlocks(content string) string {
	content = strings.TrimSpace(content)
	for _, fence := range []string{"```json", "```"} {
		if strings.HasPrefix(content, fence) {
			content = strings.TrimSpace(strings.TrimPrefix(content, fence))
			break
		}
	}
	if strings.HasSuffix(content, "```") {
		content = strings.TrimSpace(strings.TrimSuffix(content, "```"))
	}
	return content
}
