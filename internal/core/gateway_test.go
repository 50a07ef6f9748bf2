package core

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casegen/internal/llm"
	"casegen/internal/llm/tasks"
	"casegen/pkg/schema"
)

func suiteReply(t *testing.T) string {
	t.Helper()
	body, err := json.Marshal(&tasks.TestSuiteGenOutput{
		TestCases: []tasks.TestCaseJSON{
			{
				ID:              1,
				Type:            "functional",
				Title:           "Log in with valid credentials",
				Categories:      []string{"functional", "positive"},
				Steps:           []string{"Open login page", "Enter credentials", "Submit"},
				ExpectedResults: []string{"User is logged in"},
			},
			{
				ID:              2,
				Type:            "negative",
				Title:           "Log in with a wrong password",
				Categories:      []string{"negative"},
				Steps:           []string{"Enter a wrong password", "Submit"},
				ExpectedResults: []string{"An error is shown"},
			},
		},
		ExecutionOrder: []uint64{1, 2},
	})
	require.NoError(t, err)
	return string(body)
}

func TestLLMGateway(t *testing.T) {
	caller := &llm.MockCaller{Responses: []string{suiteReply(t)}}
	client, err := llm.NewClientWithCaller(&llm.Config{DefaultModel: "test/model"}, caller)
	require.NoError(t, err)

	gateway := NewLLMGateway(client, "")
	suite, err := gateway.Generate(context.Background(), []string{"As a user I want to log in"})
	require.NoError(t, err)

	assert.Len(t, suite.Functional, 1)
	assert.Len(t, suite.Positive, 1)
	assert.Len(t, suite.Negative, 1)
	assert.Len(t, suite.OrderedSequence, 2)
	assert.NoError(t, schema.ValidateSuite(suite))
}

func TestLLMGatewayFailureMessage(t *testing.T) {
	caller := &llm.MockCaller{Error: llm.NewAPIError(429, "rate limited")}
	client, err := llm.NewClientWithCaller(&llm.Config{DefaultModel: "test/model"}, caller)
	require.NoError(t, err)

	_, err = NewLLMGateway(client, "").Generate(context.Background(), []string{"As a user I want to log in"})
	require.Error(t, err)

	var taskErr *LLMError
	require.True(t, errors.As(err, &taskErr))
	assert.Equal(t, "test_suite_gen", taskErr.Task)
	assert.Equal(t, "model provider error: rate limited", taskErr.Message)

	failure := NewGenerationFailure(err)
	assert.Equal(t, "LLM task test_suite_gen: model provider error: rate limited", failure.Message)
}

func TestOfflineGateway(t *testing.T) {
	gateway, err := NewOfflineGateway(context.Background())
	require.NoError(t, err)

	suite, err := gateway.Generate(context.Background(), []string{
		"As a user I want to log in so I can access my account.",
		"As a user I want to reset my password.",
	})
	require.NoError(t, err)
	assert.Len(t, suite.Functional, 2)
	assert.Len(t, suite.Negative, 2)
	assert.NoError(t, schema.ValidateSuite(suite))
}

func TestNewGateway(t *testing.T) {
	ctx := context.Background()

	gw, err := NewGateway(ctx, &Config{
		Provider:          ProviderOpenRouter,
		OpenRouterAPIKey:  "sk-test",
		OpenRouterBaseURL: "https://openrouter.ai/api/v1",
		DefaultModel:      "anthropic/claude-3.5-sonnet",
	}, "")
	require.NoError(t, err)
	assert.IsType(t, &LLMGateway{}, gw)

	gw, err = NewGateway(ctx, &Config{Provider: ProviderAnthropic, AnthropicAPIKey: "sk-ant-test"}, "")
	require.NoError(t, err)
	require.IsType(t, &LLMGateway{}, gw)
	assert.Equal(t, llm.DefaultAnthropicModel, gw.(*LLMGateway).client.DefaultModel())

	gw, err = NewGateway(ctx, &Config{Provider: ProviderOffline}, "")
	require.NoError(t, err)
	assert.IsType(t, &OfflineGateway{}, gw)

	_, err = NewGateway(ctx, &Config{Provider: ProviderOpenRouter}, "")
	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "OPENROUTER_API_KEY", valErr.Field)
}

func TestMockGateway(t *testing.T) {
	mock := &MockGateway{Suite: &schema.TestSuite{}}
	_, err := mock.Generate(context.Background(), []string{"first requirement"})
	require.NoError(t, err)
	_, err = mock.Generate(context.Background(), []string{"second requirement"})
	require.NoError(t, err)

	assert.Equal(t, 2, mock.Calls())
	assert.Equal(t, []string{"second requirement"}, mock.Requirements())
}
