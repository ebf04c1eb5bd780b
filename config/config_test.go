package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diegetic/artefact"
)

const testConfigJSON = `{
    "current_provider": "ollama",
    "providers": {
        "anthropic": {
            "provider": "anthropic",
            "model": "claude-sonnet-4-20250514",
            "max_tokens": 4000,
            "temperature": 0.7,
            "api_endpoint": "https://api.anthropic.com/v1/messages",
            "api_key_env": "ANTHROPIC_API_KEY",
            "headers": {"anthropic-version": "2023-06-01"}
        },
        "ollama": {
            "model": "llama3.1",
            "max_tokens": 2000,
            "temperature": 0.8,
            "top_p": 0.95,
            "api_endpoint": "http://localhost:11434/api/chat"
        },
        "perplexity": {
            "provider": "perplexity",
            "model": "sonar-pro",
            "max_tokens": 1600,
            "temperature": 0.7,
            "api_endpoint": "https://api.perplexity.ai/chat/completions",
            "api_key_env": "PERPLEXITY_API_KEY"
        }
    }
}`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model_config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeTestConfig(t, testConfigJSON))
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.CurrentProvider)
	require.Len(t, cfg.Providers, 3)

	anthropic := cfg.Providers["anthropic"]
	assert.Equal(t, "claude-sonnet-4-20250514", anthropic.Model)
	assert.Equal(t, 4000, anthropic.MaxTokens)
	assert.Equal(t, "2023-06-01", anthropic.Headers["anthropic-version"])

	ollama := cfg.Providers["ollama"]
	require.NotNil(t, ollama.TopP)
	assert.Equal(t, 0.95, *ollama.TopP)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadEnvOverridesCurrentProvider(t *testing.T) {
	t.Setenv(ProviderEnv, "PERPLEXITY")

	cfg, err := Load(writeTestConfig(t, testConfigJSON))
	require.NoError(t, err)

	assert.Equal(t, "perplexity", cfg.CurrentProvider, "override is lowercased")
}

func TestLoadDefaultsCurrentProvider(t *testing.T) {
	cfg, err := Load(writeTestConfig(t, `{"providers":{"anthropic":{"model":"m","max_tokens":100,"api_endpoint":"http://x"}}}`))
	require.NoError(t, err)

	assert.Equal(t, artefact.ProviderAnthropic, cfg.CurrentProvider)
}

func TestActive(t *testing.T) {
	cfg, err := Load(writeTestConfig(t, testConfigJSON))
	require.NoError(t, err)

	mc, err := cfg.Active()
	require.NoError(t, err)
	assert.Equal(t, "llama3.1", mc.Model)
	// The entry omits its provider field; the map key fills it in.
	assert.Equal(t, "ollama", mc.Provider)
}

func TestActiveUnknownProvider(t *testing.T) {
	cfg := &Config{CurrentProvider: "missing", Providers: map[string]artefact.ModelConfig{}}

	_, err := cfg.Active()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"missing"`)
}

func TestDefault(t *testing.T) {
	cfg := Default()

	mc, err := cfg.Active()
	require.NoError(t, err)
	assert.Equal(t, artefact.ProviderAnthropic, mc.Provider)
	require.NoError(t, mc.Validate())
	assert.Equal(t, "ANTHROPIC_API_KEY", mc.APIKeyEnv)
}

func TestSaveCurrentProvider(t *testing.T) {
	path := writeTestConfig(t, testConfigJSON)

	require.NoError(t, SaveCurrentProvider(path, "perplexity"))

	// The switch is persisted and every provider entry survives.
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "perplexity", cfg.CurrentProvider)
	assert.Len(t, cfg.Providers, 3)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var full map[string]any
	require.NoError(t, json.Unmarshal(raw, &full))
	assert.Equal(t, "perplexity", full["current_provider"])
}

func TestSaveCurrentProviderMissingFile(t *testing.T) {
	err := SaveCurrentProvider(filepath.Join(t.TempDir(), "nope.json"), "ollama")
	assert.Error(t, err)
}

func TestLoadClosingInstruction(t *testing.T) {
	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prompt_instructions.json")
		require.NoError(t, os.WriteFile(path,
			[]byte(`{"closing_instruction":"End with a question."}`), 0o644))

		assert.Equal(t, "End with a question.", LoadClosingInstruction(path))
	})

	t.Run("missing file falls back", func(t *testing.T) {
		got := LoadClosingInstruction(filepath.Join(t.TempDir(), "nope.json"))
		assert.Equal(t, DefaultClosingInstruction, got)
	})

	t.Run("missing key falls back", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prompt_instructions.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"other":"x"}`), 0o644))

		assert.Equal(t, DefaultClosingInstruction, LoadClosingInstruction(path))
	})
}

func TestLoadCategories(t *testing.T) {
	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "categories.json")
		require.NoError(t, os.WriteFile(path,
			[]byte(`{"artefact_types":["Newspaper article","Ticket stub","Protest flyer"]}`), 0o644))

		categories, err := LoadCategories(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"Newspaper article", "Ticket stub", "Protest flyer"}, categories)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCategories(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("empty list", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "categories.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"artefact_types":[]}`), 0o644))

		_, err := LoadCategories(path)
		assert.Error(t, err)
	})
}
