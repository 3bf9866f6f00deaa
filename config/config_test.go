package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ADDR", "MODEL_PROVIDER", "MODEL_NAME", "MODEL_TEMPERATURE",
		"MODEL_MAX_TOKENS", "GEMINI_API_KEY", "MAX_CONCURRENT_DISPATCHES",
		"LOG_LEVEL", "LOG_FORMAT", "AGENTDECK_CONFIG",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":5000", cfg.Addr)
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "gemini-1.5-flash", cfg.Model)
	assert.InDelta(t, 0.7, cfg.Temperature, 1e-9)
	assert.Equal(t, 2048, cfg.MaxTokens)
	assert.Equal(t, 30*time.Second, cfg.SingleAgentTimeout)
	assert.Equal(t, 60*time.Second, cfg.MultiAgentTimeout)
	assert.Equal(t, 3, cfg.MaxConcurrentDispatches)
	assert.Equal(t, 100*time.Millisecond, cfg.StreamDelay)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("MODEL_NAME", "gemini-1.5-pro")
	t.Setenv("MODEL_TEMPERATURE", "0.2")
	t.Setenv("MODEL_MAX_TOKENS", "512")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("MAX_CONCURRENT_DISPATCHES", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "gemini-1.5-pro", cfg.Model)
	assert.InDelta(t, 0.2, cfg.Temperature, 1e-9)
	assert.Equal(t, 512, cfg.MaxTokens)
	assert.Equal(t, "test-key", cfg.GeminiAPIKey)
	assert.Equal(t, 5, cfg.MaxConcurrentDispatches)
	assert.True(t, cfg.APIConfigured())
}

func TestLoadAddrBeatsPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("ADDR", "127.0.0.1:9000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
}

func TestLoadYAMLOverlay(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "agentdeck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"addr: \":7000\"\nmodel: gemini-1.5-pro\nmax_concurrent_dispatches: 2\n",
	), 0o600))
	t.Setenv("AGENTDECK_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, "gemini-1.5-pro", cfg.Model)
	assert.Equal(t, 2, cfg.MaxConcurrentDispatches)
}

func TestLoadEnvBeatsYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "agentdeck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: from-yaml\n"), 0o600))
	t.Setenv("AGENTDECK_CONFIG", path)
	t.Setenv("MODEL_NAME", "from-env")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Model)
}

func TestLoadMissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("AGENTDECK_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODEL_PROVIDER", "cohere")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown model provider "cohere"`)
}

func TestLoadRejectsZeroDispatchSlots(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_CONCURRENT_DISPATCHES", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_concurrent_dispatches")
}

func TestAPIConfigured(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.APIConfigured())

	cfg.GeminiAPIKey = "key"
	assert.True(t, cfg.APIConfigured())

	// non-default providers manage their own credentials
	cfg = Default()
	cfg.Provider = ProviderOpenAI
	assert.True(t, cfg.APIConfigured())
}
