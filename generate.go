package artefact

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/diegetic/artefact/token"
)

// Default HTTP timeouts. Vision requests carry large base64 payloads and
// slower multimodal inference, so they get double the text budget.
const (
	textTimeout   = 60 * time.Second
	visionTimeout = 120 * time.Second
)

// Generator orchestrates one generation call: prompt composition, driver
// dispatch, the retried HTTP request, and response extraction.
//
// A Generator is safe for concurrent use, though the system's usage model is
// one synchronous request per invocation.
type Generator struct {
	registry     *Registry
	retryPolicy  RetryPolicy
	logger       *slog.Logger
	textClient   HTTPClient
	visionClient HTTPClient
	counter      token.Counter
}

// GeneratorOption is a functional option for configuring a Generator.
type GeneratorOption func(*Generator)

// NewGenerator creates a Generator backed by the given driver registry.
//
// Example:
//
//	reg := provider.DefaultRegistry()
//	gen := artefact.NewGenerator(reg,
//	    artefact.WithLogger(logger),
//	    artefact.WithRetryPolicy(artefact.DefaultRetryPolicy()),
//	)
func NewGenerator(registry *Registry, opts ...GeneratorOption) *Generator {
	g := &Generator{
		registry:     registry,
		retryPolicy:  DefaultRetryPolicy(),
		logger:       slog.Default(),
		textClient:   &http.Client{Timeout: textTimeout},
		visionClient: &http.Client{Timeout: visionTimeout},
		counter:      token.NewCounter(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// WithLogger sets the logger used for retry warnings and diagnostics.
func WithLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithRetryPolicy sets the default retry policy for requests that do not
// carry their own.
func WithRetryPolicy(policy RetryPolicy) GeneratorOption {
	return func(g *Generator) {
		g.retryPolicy = policy
	}
}

// WithHTTPClient sets a custom HTTP client for both text and vision
// requests. Useful for testing or custom transports; the injected client's
// own timeout replaces the per-kind defaults.
func WithHTTPClient(client HTTPClient) GeneratorOption {
	return func(g *Generator) {
		if client != nil {
			g.textClient = client
			g.visionClient = client
		}
	}
}

// Generate produces a diegetic artefact from the project fields in req using
// the provider described by cfg.
//
// The call never panics across this boundary: every failure mode comes back
// as a typed error. Transport failures and HTTP 429/5xx are retried per the
// request's (or the Generator's) retry policy; everything else fails fast.
func (g *Generator) Generate(ctx context.Context, cfg *ModelConfig, req *GenerationRequest) (*GenerationResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, NewConfigError(fmt.Sprintf("invalid model configuration: %v", err), cfg.Provider, err)
	}

	driver, err := g.registry.Get(cfg.Provider)
	if err != nil {
		return nil, NewConfigError(err.Error(), cfg.Provider, err)
	}

	hasImages := len(req.Images) > 0
	if hasImages && !driver.SupportsVision() {
		return nil, NewConfigError(
			fmt.Sprintf("provider %q does not support vision requests", driver.Name()),
			driver.Name(), nil)
	}

	// Resolve the API key before anything touches the network. Local
	// providers skip this entirely.
	apiKey := ""
	if driver.RequiresKey() {
		apiKey = os.Getenv(cfg.APIKeyEnv)
		if apiKey == "" {
			return nil, NewConfigError(
				fmt.Sprintf("%s not found in environment variables", cfg.APIKeyEnv),
				driver.Name(), nil)
		}
	}

	headers := make(http.Header, len(cfg.Headers)+1)
	for k, v := range cfg.Headers {
		headers.Set(k, v)
	}
	driver.Authorize(headers, apiKey)

	genID := uuid.NewString()
	logger := g.logger.With("gen_id", genID, "provider", driver.Name(), "model", cfg.Model)
	logger.Info("generating artefact", "category", req.Category, "images", len(req.Images))

	var prompt string
	if hasImages {
		prompt = ComposeVisionPrompt(req)
	} else {
		prompt = ComposePrompt(req, cfg)
	}

	payload := driver.BuildRequest(&BuildInput{
		Prompt:      prompt,
		Fields:      req.Fields,
		Images:      req.Images,
		Config:      *cfg,
		Temperature: req.Temperature,
	})

	policy := g.retryPolicy
	if req.Retry != nil {
		policy = *req.Retry
	}
	if err := policy.Validate(); err != nil {
		return nil, NewConfigError(fmt.Sprintf("invalid retry policy: %v", err), driver.Name(), err)
	}

	client := g.textClient
	if hasImages {
		client = g.visionClient
	}

	retryer := NewRetryer(policy, logger)
	body, err := retryer.PostJSON(ctx, client, cfg.APIEndpoint, headers, payload, driver.Name())
	if err != nil {
		logger.Error("generation request failed", "error", err)
		return nil, err
	}

	text, err := driver.ExtractText(body)
	if err != nil {
		// Log the response's top-level keys so a shape change is
		// diagnosable without dumping the payload.
		var keys []string
		if extractErr, ok := err.(*ExtractionError); ok {
			keys = extractErr.Keys
		}
		logger.Error("failed to extract response", "error", err, "response_keys", keys)
		return nil, err
	}

	// Character length is a proxy for token count here: true tokenization is
	// provider-specific and unavailable locally.
	if float64(len(text)) > float64(cfg.MaxTokens)*0.9 {
		logger.Warn("response approaching token limit",
			"chars", len(text),
			"approx_tokens", g.counter.CountText(text),
			"max_tokens", cfg.MaxTokens)
	}

	reasoning, content := SplitReasoning(text)
	logger.Info("artefact generated", "chars", len(text), "has_reasoning", reasoning != "")

	return &GenerationResult{
		Content:   content,
		Reasoning: reasoning,
		Provider:  driver.Name(),
		Model:     cfg.Model,
	}, nil
}
