package llm

import (
	"context"
	"sync"
)

// MockCaller is a Caller for testing. It replays Responses in order; once
// they run out the last one is repeated.
type MockCaller struct {
	Responses []string
	Error     error

	mu      sync.Mutex
	Prompts []string
	Models  []string
}

// Call implements Caller.
func (m *MockCaller) Call(ctx context.Context, model, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)
	m.Models = append(m.Models, model)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Error != nil {
		return "", m.Error
	}
	if len(m.Responses) == 0 {
		return "", nil
	}
	i := len(m.Prompts) - 1
	if i >= len(m.Responses) {
		i = len(m.Responses) - 1
	}
	return m.Responses[i], nil
}

// Calls returns how many prompts were sent.
func (m *MockCaller) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}
