package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 4 << 10

// OpenRouterRequest is an OpenAI-compatible chat completion request.
type OpenRouterRequest struct {
	Model          string          `json:"model"`
	Messages       []OpenRouterMsg `json:"messages"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type OpenRouterMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat asks the provider for a JSON object reply.
type ResponseFormat struct {
	Type string `json:"type"`
}

type OpenRouterChoice struct {
	Message OpenRouterMsg `json:"message"`
}

// OpenRouterResponse is a chat completion reply. Some providers report
// failures as an error object inside a 200 response.
type OpenRouterResponse struct {
	Choices []OpenRouterChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

// openRouterCaller posts prompts to {BaseURL}/chat/completions.
type openRouterCaller struct {
	config *Config
	http   *http.Client
}

func (c *openRouterCaller) Call(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(OpenRouterRequest{
		Model:          model,
		Messages:       []OpenRouterMsg{{Role: "user", Content: prompt}},
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Title", "casegen")

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)
	if err != nil {
		slog.Error("OpenRouter request failed", "model", model, "error", err.Error(), "duration", duration)
		if errors.Is(err, context.DeadlineExceeded) {
			return "", NewTimeoutError()
		}
		return "", NewNetworkError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	slog.Info("OpenRouter request completed", "model", model, "status_code", resp.StatusCode, "duration", duration)

	if resp.StatusCode != http.StatusOK {
		errBody, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if err != nil || len(errBody) == 0 {
			return "", NewAPIError(resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		return "", NewAPIError(resp.StatusCode, string(errBody))
	}

	var completion OpenRouterResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", NewParseError("", fmt.Errorf("decode response: %w", err))
	}
	if completion.Error != nil {
		return "", NewAPIError(0, completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return "", NewAPIError(0, "no choices in response")
	}
	return completion.Choices[0].Message.Content, nil
}
