// Package ollama implements the driver for Ollama's local chat API.
//
// Ollama runs models locally, requires no authentication, and uses a simpler
// wire format than the hosted providers: a messages array with explicit
// system and user turns, stream disabled, and sampling parameters nested
// under "options".
package ollama

import (
	"net/http"

	"github.com/diegetic/artefact"
)

// systemPrompt instructs the model to emit a delimited reasoning block
// before the final content.
const systemPrompt = `You are a dramatalurgical expert that creates diegetic artefacts for architectural projects.

IMPORTANT: In your response, first share your reasoning process within <think> tags. Use this format:
<think>
Here I analyze what would be most effective for this project...
</think>

Then provide your final output after the thinking section. The <think> section won't be visible to the end user unless they choose to see it.`

// reasoningSuffix is appended to the user turn.
const reasoningSuffix = "\n\nFirst explain your reasoning within <think> tags before creating the final artifact."

// defaultTopP is used when the configuration does not set top_p.
const defaultTopP = 0.9

// Driver implements the artefact.Driver interface for Ollama.
//
// Driver is stateless and safe for concurrent use.
type Driver struct{}

// New creates a new Ollama driver.
func New() *Driver {
	return &Driver{}
}

// Name returns the provider tag "ollama".
func (d *Driver) Name() string {
	return artefact.ProviderOllama
}

// RequiresKey reports that Ollama needs no API key; the orchestrator skips
// key resolution entirely for this driver.
func (d *Driver) RequiresKey() bool {
	return false
}

// SupportsVision reports that this driver does not attach images.
func (d *Driver) SupportsVision() bool {
	return false
}

// Authorize is a no-op: the local server has no authentication.
func (d *Driver) Authorize(headers http.Header, apiKey string) {}
