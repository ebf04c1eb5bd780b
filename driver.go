package artefact

import (
	"net/http"

	"github.com/diegetic/artefact/images"
)

// BuildInput is the logical request a driver translates into its provider's
// wire format. It is assembled by the orchestrator; drivers treat it as
// read-only.
type BuildInput struct {
	// Prompt is the fully composed user prompt.
	Prompt string

	// Fields carries the raw project inputs for drivers whose wire format
	// depends on input size (the OpenAI-compatible max-token heuristic).
	Fields ProjectFields

	// Images are preprocessed attachments. Empty for text-only requests.
	Images []images.Asset

	// Config is the active model configuration.
	Config ModelConfig

	// Temperature optionally overrides Config.Temperature.
	Temperature *float64
}

// EffectiveTemperature returns the temperature override if present, the
// configured value otherwise.
func (in *BuildInput) EffectiveTemperature() float64 {
	if in.Temperature != nil {
		return *in.Temperature
	}
	return in.Config.Temperature
}

// Driver translates logical generation requests into one provider's wire
// format and back.
//
// Implementations are pure with respect to BuildRequest: building a request
// cannot fail given well-formed inputs. The closed set of drivers lives in
// the provider subpackages; dispatch happens through provider.Registry with
// the OpenAI-compatible driver as the default branch.
type Driver interface {
	// Name returns the provider tag this driver serves.
	Name() string

	// RequiresKey reports whether the provider needs an API key. Local
	// providers (Ollama) return false and skip key resolution entirely.
	RequiresKey() bool

	// SupportsVision reports whether the driver can attach images.
	SupportsVision() bool

	// Authorize injects the provider-specific authorization header.
	// A no-op for providers without authentication.
	Authorize(headers http.Header, apiKey string)

	// BuildRequest maps the logical request into the provider's wire JSON
	// shape.
	BuildRequest(in *BuildInput) any

	// ExtractText pulls the generated text out of a raw JSON response.
	// A missing path yields an *ExtractionError, never a panic.
	ExtractText(body []byte) (string, error)
}
