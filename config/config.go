// Package config loads the provider configuration consumed by the
// generation core.
//
// The configuration file maps provider names to model settings and carries a
// current_provider selector. The core only ever reads the resolved
// ModelConfig for the active provider; switching providers and persisting
// that choice stays in this package, outside the generation pipeline.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/diegetic/artefact"
)

// ProviderEnv is the environment variable that overrides current_provider.
const ProviderEnv = "ARTEFACT_PROVIDER"

// DefaultClosingInstruction is used when the prompt-instructions file is
// missing or unreadable.
const DefaultClosingInstruction = "The artefact should reflect the context and show how the architecture serves as a catalyst for change."

// Config is the full provider configuration file.
type Config struct {
	// CurrentProvider selects the active entry in Providers.
	CurrentProvider string `mapstructure:"current_provider"`

	// Providers maps provider names to their model configuration.
	Providers map[string]artefact.ModelConfig `mapstructure:"providers"`
}

// Load reads a provider configuration file (JSON).
//
// The ARTEFACT_PROVIDER environment variable, when set, overrides the file's
// current_provider selector.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if env := os.Getenv(ProviderEnv); env != "" {
		cfg.CurrentProvider = strings.ToLower(env)
	}
	if cfg.CurrentProvider == "" {
		cfg.CurrentProvider = artefact.ProviderAnthropic
	}

	return &cfg, nil
}

// Active resolves the ModelConfig for the current provider.
//
// The map key doubles as the provider tag when an entry omits its own
// provider field.
func (c *Config) Active() (artefact.ModelConfig, error) {
	mc, ok := c.Providers[c.CurrentProvider]
	if !ok {
		return artefact.ModelConfig{}, fmt.Errorf("provider %q not found in configuration", c.CurrentProvider)
	}
	if mc.Provider == "" {
		mc.Provider = c.CurrentProvider
	}
	return mc, nil
}

// Default returns the fallback configuration used when no file is
// available: Anthropic with conservative sampling defaults.
func Default() *Config {
	return &Config{
		CurrentProvider: artefact.ProviderAnthropic,
		Providers: map[string]artefact.ModelConfig{
			artefact.ProviderAnthropic: {
				Provider:        artefact.ProviderAnthropic,
				Model:           "claude-sonnet-4-20250514",
				MaxTokens:       4000,
				Temperature:     0.7,
				TopP:            artefact.Float64Ptr(0.9),
				PresencePenalty: artefact.Float64Ptr(0.1),
				APIEndpoint:     "https://api.anthropic.com/v1/messages",
				APIKeyEnv:       "ANTHROPIC_API_KEY",
				Headers: map[string]string{
					"Content-Type":      "application/json",
					"anthropic-version": "2023-06-01",
				},
			},
		},
	}
}

// SaveCurrentProvider persists a provider switch back to the configuration
// file, preserving every other field.
func SaveCurrentProvider(path, provider string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var full map[string]any
	if err := json.Unmarshal(raw, &full); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	full["current_provider"] = provider

	out, err := json.MarshalIndent(full, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, out, 0o644)
}

// LoadClosingInstruction reads the closing instruction from the prompt
// instructions file (JSON key "closing_instruction"), falling back to the
// default when the file is missing or malformed.
func LoadClosingInstruction(path string) string {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return DefaultClosingInstruction
	}
	if instruction := v.GetString("closing_instruction"); instruction != "" {
		return instruction
	}
	return DefaultClosingInstruction
}

// LoadCategories reads the artefact category list from its JSON file
// (key "artefact_types").
func LoadCategories(path string) ([]string, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read categories file %s: %w", path, err)
	}

	categories := v.GetStringSlice("artefact_types")
	if len(categories) == 0 {
		return nil, fmt.Errorf("no artefact_types in %s", path)
	}
	return categories, nil
}
