// Package config loads service configuration from the environment (including
// a local .env file) with an optional YAML overlay for deployments that
// prefer file-based settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider names accepted for the language-model backend.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds all runtime settings for the demo service.
type Config struct {
	// Addr is the listen address for the HTTP server, e.g. ":5000".
	Addr string `yaml:"addr"`

	// Provider selects the language-model backend (gemini, openai, anthropic).
	Provider string `yaml:"provider"`
	// Model is the provider-specific model identifier.
	Model string `yaml:"model"`
	// Temperature is the sampling temperature passed to the backend.
	Temperature float64 `yaml:"temperature"`
	// MaxTokens bounds the completion length.
	MaxTokens int `yaml:"max_tokens"`

	// GeminiAPIKey authenticates against the Gemini API. When empty the
	// agent registry cannot initialize and chat endpoints degrade to
	// explicit error responses.
	GeminiAPIKey string `yaml:"-"`

	// SingleAgentTimeout bounds one agent invocation.
	SingleAgentTimeout time.Duration `yaml:"single_agent_timeout"`
	// MultiAgentTimeout bounds a multi-agent orchestration run.
	MultiAgentTimeout time.Duration `yaml:"multi_agent_timeout"`
	// MaxConcurrentDispatches bounds how many dispatches may wait on the
	// model backend at once.
	MaxConcurrentDispatches int `yaml:"max_concurrent_dispatches"`

	// StreamDelay is the pause inserted between simulated stream chunks.
	StreamDelay time.Duration `yaml:"stream_delay"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the baseline configuration matching the demo's documented
// behavior: 3 dispatch slots, 30s/60s timeouts, 100ms stream chunk delay.
func Default() *Config {
	return &Config{
		Addr:                    ":5000",
		Provider:                ProviderGemini,
		Model:                   "gemini-1.5-flash",
		Temperature:             0.7,
		MaxTokens:               2048,
		SingleAgentTimeout:      30 * time.Second,
		MultiAgentTimeout:       60 * time.Second,
		MaxConcurrentDispatches: 3,
		StreamDelay:             100 * time.Millisecond,
		LogLevel:                "info",
		LogFormat:               "json",
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order of precedence (environment wins). A .env file in
// the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("AGENTDECK_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.Addr = ":" + port
	}
	setString(&c.Addr, "ADDR")
	setString(&c.Provider, "MODEL_PROVIDER")
	setString(&c.Model, "MODEL_NAME")
	setFloat(&c.Temperature, "MODEL_TEMPERATURE")
	setInt(&c.MaxTokens, "MODEL_MAX_TOKENS")
	setString(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setInt(&c.MaxConcurrentDispatches, "MAX_CONCURRENT_DISPATCHES")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown model provider %q", c.Provider)
	}
	if c.MaxConcurrentDispatches < 1 {
		return fmt.Errorf("max_concurrent_dispatches must be at least 1, got %d", c.MaxConcurrentDispatches)
	}
	return nil
}

// APIConfigured reports whether the Gemini API key is present. The OpenAI and
// Anthropic SDKs read their own environment variables, so the check only
// gates the default provider.
func (c *Config) APIConfigured() bool {
	if c.Provider == ProviderGemini {
		return c.GeminiAPIKey != ""
	}
	return true
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
