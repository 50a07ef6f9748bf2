package llm

import (
	"errors"
	"sort"
	"time"
)

const (
	DefaultBaseURL    = "https://openrouter.ai/api/v1"
	DefaultTimeout    = 120 * time.Second // a full suite is a long completion
	DefaultMaxRetries = 3
)

// Config configures a Client.
type Config struct {
	APIKey       string // OpenRouter key; unused with a custom Caller
	BaseURL      string // OpenAI-compatible endpoint
	DefaultModel string // used when a task names no model
	Timeout      time.Duration
	MaxRetries   int // attempts per GenerateStructured call
}

// Validate checks the fields NewClient needs.
func (c *Config) Validate() error {
	switch {
	case c.APIKey == "":
		return errors.New("APIKey is required")
	case c.BaseURL == "":
		return errors.New("BaseURL is required")
	case c.DefaultModel == "":
		return errors.New("DefaultModel is required")
	}
	return nil
}

func (c *Config) SetDefaults() {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
}

// ModelConfig describes a model known to work for suite generation.
type ModelConfig struct {
	Name          string // OpenRouter model identifier
	ContextWindow int    // tokens
	Description   string
}

var knownModels = []ModelConfig{
	{Name: "anthropic/claude-3.5-sonnet", ContextWindow: 200000, Description: "Claude 3.5 Sonnet - balanced performance"},
	{Name: "anthropic/claude-sonnet-4", ContextWindow: 200000, Description: "Claude Sonnet 4 - thorough test design"},
	{Name: "google/gemini-2.5-flash", ContextWindow: 1000000, Description: "Gemini 2.5 Flash - fast responses"},
}

// DefaultModels returns the known models keyed by name.
func DefaultModels() map[string]ModelConfig {
	models := make(map[string]ModelConfig, len(knownModels))
	for _, m := range knownModels {
		models[m.Name] = m
	}
	return models
}

// ModelNames returns the known model names in sorted order.
func ModelNames() []string {
	names := make([]string, 0, len(knownModels))
	for _, m := range knownModels {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	return names
}
