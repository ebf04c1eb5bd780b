package artefact

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/diegetic/artefact/images"
)

// HTTPClient defines the interface for HTTP clients.
// This allows injection of custom clients or mocks for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Provider name tags recognized in ModelConfig.Provider.
//
// Any other value falls through to the OpenAI-compatible wire format;
// an unknown provider is a configuration choice, not an error.
const (
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
)

// ModelConfig describes one provider endpoint for a generation call.
//
// The Provider tag determines the shape of every downstream request and
// response; config values for different providers are never mixed.
//
// APIKeyEnv names the environment variable holding the secret. The secret
// itself is never stored in config or written to logs.
type ModelConfig struct {
	// Provider selects the wire dialect ("anthropic", "ollama", or any
	// OpenAI-compatible vendor such as "perplexity").
	Provider string `mapstructure:"provider" json:"provider"`

	// Model is the provider-specific model identifier.
	Model string `mapstructure:"model" json:"model"`

	// MaxTokens is the response token budget. Must be positive.
	MaxTokens int `mapstructure:"max_tokens" json:"max_tokens"`

	// Temperature is the sampling temperature. Valid range is
	// provider-dependent.
	Temperature float64 `mapstructure:"temperature" json:"temperature"`

	// TopP is the nucleus sampling parameter (optional).
	TopP *float64 `mapstructure:"top_p" json:"top_p,omitempty"`

	// PresencePenalty penalizes repeated topics (optional, OpenAI-compatible
	// providers only).
	PresencePenalty *float64 `mapstructure:"presence_penalty" json:"presence_penalty,omitempty"`

	// APIEndpoint is the full URL the request is POSTed to.
	APIEndpoint string `mapstructure:"api_endpoint" json:"api_endpoint"`

	// APIKeyEnv is the name of the environment variable holding the API key.
	APIKeyEnv string `mapstructure:"api_key_env" json:"api_key_env"`

	// Headers are extra request headers (e.g. anthropic-version).
	Headers map[string]string `mapstructure:"headers" json:"headers"`
}

// Validate checks the configuration for values the pipeline cannot work with.
func (c *ModelConfig) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.APIEndpoint == "" {
		return fmt.Errorf("api_endpoint is required")
	}
	return nil
}

// RetryPolicy configures the exponential backoff schedule for one call.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int

	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration

	// MaxDelay caps the backoff delay.
	MaxDelay time.Duration

	// ExponentialBase is the backoff multiplier. Must be > 1.
	ExponentialBase float64
}

// DefaultRetryPolicy returns the retry schedule used when a request does not
// carry its own: 3 retries, 1s base delay, 60s cap, base 2.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		BaseDelay:       1 * time.Second,
		MaxDelay:        60 * time.Second,
		ExponentialBase: 2.0,
	}
}

// DelayFor returns the backoff delay before retry attempt i (0-indexed):
// min(BaseDelay * ExponentialBase^i, MaxDelay).
//
// The schedule is deterministic. Callers that need jitter must add it
// themselves; the generation pipeline does not.
func (p RetryPolicy) DelayFor(attempt int) time.Duration {
	delay := float64(p.BaseDelay) * math.Pow(p.ExponentialBase, float64(attempt))
	if max := float64(p.MaxDelay); delay > max {
		delay = max
	}
	return time.Duration(delay)
}

// Validate checks the policy for values the retry loop cannot work with.
func (p RetryPolicy) Validate() error {
	if p.MaxRetries < 0 {
		return fmt.Errorf("max retries must be non-negative, got %d", p.MaxRetries)
	}
	if p.BaseDelay < 0 {
		return fmt.Errorf("base delay must be non-negative, got %v", p.BaseDelay)
	}
	if p.ExponentialBase <= 1 {
		return fmt.Errorf("exponential base must be > 1, got %f", p.ExponentialBase)
	}
	return nil
}

// ProjectFields holds the structured project inputs collected from the caller.
type ProjectFields struct {
	Description string
	Location    string
	Date        string
	Personas    string
	Themes      string
}

// CombinedLength returns the character length of the fields that drive the
// dynamic max-token heuristic (description, personas, themes).
func (f ProjectFields) CombinedLength() int {
	return len(f.Description) + len(f.Personas) + len(f.Themes)
}

// GenerationRequest is the ephemeral input to one generation call.
//
// It exists only for the duration of the call; nothing in it is retained.
type GenerationRequest struct {
	// Fields are the project inputs embedded in the prompt.
	Fields ProjectFields

	// Category is the selected artefact category.
	Category string

	// ClosingInstruction is appended to the prompt's final instruction.
	ClosingInstruction string

	// Temperature optionally overrides the configured temperature.
	Temperature *float64

	// Images are preprocessed attachments for vision-capable providers.
	Images []images.Asset

	// Retry optionally overrides the default retry policy.
	Retry *RetryPolicy
}

// GenerationResult is the outcome of a successful generation call.
type GenerationResult struct {
	// Content is the generated artefact text with any reasoning block
	// already stripped.
	Content string

	// Reasoning is the model's delimited reasoning segment, if it emitted
	// one. Empty otherwise.
	Reasoning string

	// Provider and Model record which endpoint produced the result.
	Provider string
	Model    string
}

// Text returns the full response as the model produced it, reasoning block
// included. Useful for callers that persist the raw output.
func (r *GenerationResult) Text() string {
	if r.Reasoning == "" {
		return r.Content
	}
	return reasoningStart + "\n" + r.Reasoning + "\n" + reasoningEnd + "\n\n" + r.Content
}

// Float64Ptr returns a pointer to a float64 value.
func Float64Ptr(v float64) *float64 { return &v }

// IntPtr returns a pointer to an int value.
func IntPtr(v int) *int { return &v }
