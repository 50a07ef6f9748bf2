package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/firebase/genkit/go/ai"

	"casegen/internal/llm"
	"casegen/internal/llm/tasks"
	"casegen/pkg/schema"
)

// Gateway turns requirement lines into a categorized test suite.
type Gateway interface {
	Generate(ctx context.Context, requirements []string) (*schema.TestSuite, error)
}

// GatewayFunc adapts a function to the Gateway interface.
type GatewayFunc func(ctx context.Context, requirements []string) (*schema.TestSuite, error)

// Generate implements Gateway.
func (f GatewayFunc) Generate(ctx context.Context, requirements []string) (*schema.TestSuite, error) {
	return f(ctx, requirements)
}

// LLMGateway generates suites through an LLM client with validation and
// retry feedback.
type LLMGateway struct {
	client   *llm.Client
	model    string
	maxCases int
}

// NewLLMGateway creates a gateway over client. An empty model selects the
// client's default.
func NewLLMGateway(client *llm.Client, model string) *LLMGateway {
	return &LLMGateway{
		client:   client,
		model:    model,
		maxCases: tasks.DefaultMaxCasesPerRequirement,
	}
}

// Generate implements Gateway.
func (g *LLMGateway) Generate(ctx context.Context, requirements []string) (*schema.TestSuite, error) {
	output, err := tasks.ExecuteTestSuiteGenTask(g.client, ctx, g.model, &tasks.TestSuiteGenInput{
		Requirements:           requirements,
		MaxCasesPerRequirement: g.maxCases,
	})
	if err != nil {
		return nil, &LLMError{Task: "test_suite_gen", Message: llmMessage(err), Err: err}
	}

	suite, err := tasks.BuildSuite(output)
	if err != nil {
		return nil, &LLMError{Task: "test_suite_gen", Message: err.Error(), Err: err}
	}
	return suite, nil
}

// llmMessage prefers the provider-facing message of an llm.LLMError.
func llmMessage(err error) string {
	var llmErr *llm.LLMError
	if errors.As(err, &llmErr) {
		return llmErr.Message
	}
	return err.Error()
}

// OfflineGateway generates skeleton suites with the local Genkit model.
type OfflineGateway struct {
	model ai.Model
}

// NewOfflineGateway registers the offline model and returns a gateway over it.
func NewOfflineGateway(ctx context.Context) (*OfflineGateway, error) {
	model, err := tasks.RegisterOfflineModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("register offline model: %w", err)
	}
	return &OfflineGateway{model: model}, nil
}

// Generate implements Gateway.
func (g *OfflineGateway) Generate(ctx context.Context, requirements []string) (*schema.TestSuite, error) {
	output, err := tasks.ExecuteOfflineSuiteGen(ctx, g.model, &tasks.TestSuiteGenInput{Requirements: requirements})
	if err != nil {
		return nil, err
	}
	return tasks.BuildSuite(output)
}

// NewGateway builds the gateway selected by cfg.Provider. model overrides
// cfg.DefaultModel when non-empty.
func NewGateway(ctx context.Context, cfg *Config, model string) (Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if model == "" {
		model = cfg.DefaultModel
	}

	switch cfg.Provider {
	case ProviderOpenRouter:
		client, err := llm.NewClient(&llm.Config{
			APIKey:       cfg.OpenRouterAPIKey,
			BaseURL:      cfg.OpenRouterBaseURL,
			DefaultModel: model,
		})
		if err != nil {
			return nil, fmt.Errorf("create openrouter client: %w", err)
		}
		return NewLLMGateway(client, ""), nil

	case ProviderAnthropic:
		// OpenRouter model IDs ("vendor/name") are not Anthropic model IDs.
		if model == "" || strings.Contains(model, "/") {
			model = llm.DefaultAnthropicModel
		}
		client, err := llm.NewClientWithCaller(&llm.Config{DefaultModel: model}, llm.NewAnthropicCaller(cfg.AnthropicAPIKey))
		if err != nil {
			return nil, fmt.Errorf("create anthropic client: %w", err)
		}
		return NewLLMGateway(client, ""), nil

	case ProviderOffline:
		return NewOfflineGateway(ctx)
	}

	return nil, &ValidationError{Field: "CASEGEN_PROVIDER", Message: fmt.Sprintf("unknown provider %q", cfg.Provider)}
}

// MockGateway is a Gateway for testing. When Block is set, Generate waits
// for it to be closed (or for ctx to end) before answering.
type MockGateway struct {
	Suite *schema.TestSuite
	Err   error
	Block chan struct{}

	mu           sync.Mutex
	calls        int
	requirements [][]string
}

// Generate implements Gateway.
func (m *MockGateway) Generate(ctx context.Context, requirements []string) (*schema.TestSuite, error) {
	m.mu.Lock()
	m.calls++
	m.requirements = append(m.requirements, append([]string(nil), requirements...))
	m.mu.Unlock()

	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Suite, nil
}

// Calls returns how many times Generate was invoked.
func (m *MockGateway) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Requirements returns the requirements passed to the most recent call.
func (m *MockGateway) Requirements() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requirements) == 0 {
		return nil
	}
	return m.requirements[len(m.requirements)-1]
}
