package core

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Gateway providers.
const (
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
	ProviderOffline    = "offline"
)

// Config holds the application configuration.
type Config struct {
	LogLevel          string        // DEBUG, INFO, WARN, ERROR
	Provider          string        // openrouter, anthropic or offline
	OpenRouterAPIKey  string        // Required for the openrouter provider
	OpenRouterBaseURL string        // OpenAI-compatible endpoint
	DefaultModel      string        // Default LLM model to use
	AnthropicAPIKey   string        // Required for the anthropic provider
	ProgressTick      time.Duration // Interval of the synthetic extraction progress
	OutputDir         string        // Where artifacts are written
}

// LoadConfig loads configuration from environment variables. Values from a
// .env file (CASEGEN_ENV_FILE, default ".env") are applied first without
// overriding variables that are already set.
func LoadConfig() (*Config, error) {
	envFile := getEnvOrDefault("CASEGEN_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	logLevel := getEnvOrDefault("LOG_LEVEL", "info")

	// DEBUG flag overrides log level
	if os.Getenv("DEBUG") == "1" {
		logLevel = "debug"
	}

	tick := DefaultProgressTick
	if raw := os.Getenv("CASEGEN_PROGRESS_TICK"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("CASEGEN_PROGRESS_TICK: invalid duration %q", raw)
		}
		tick = d
	}

	cfg := &Config{
		LogLevel:          logLevel,
		Provider:          getEnvOrDefault("CASEGEN_PROVIDER", ProviderOpenRouter),
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL: getEnvOrDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		DefaultModel:      getEnvOrDefault("DEFAULT_MODEL", "anthropic/claude-3.5-sonnet"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		ProgressTick:      tick,
		OutputDir:         getEnvOrDefault("CASEGEN_OUTPUT_DIR", "."),
	}

	// API keys are checked by Validate once the provider is known;
	// extract and render work without one.
	return cfg, nil
}

// Validate checks that the selected provider is known and has credentials.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenRouter:
		if c.OpenRouterAPIKey == "" {
			return &ValidationError{Field: "OPENROUTER_API_KEY", Message: "required for the openrouter provider"}
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return &ValidationError{Field: "ANTHROPIC_API_KEY", Message: "required for the anthropic provider"}
		}
	case ProviderOffline:
	default:
		return &ValidationError{Field: "CASEGEN_PROVIDER", Message: fmt.Sprintf("unknown provider %q", c.Provider)}
	}
	return nil
}

// getEnvOrDefault returns the value of an environment variable or a default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
