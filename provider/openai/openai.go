// Package openai implements the driver for OpenAI-compatible chat APIs.
//
// This is the default wire dialect: any provider tag the registry does not
// recognize (Perplexity, Groq, OpenRouter, ...) falls through to this
// format. Unlike the other drivers, the response token budget is computed
// dynamically from the size of the project inputs rather than taken from
// configuration.
package openai

import (
	"net/http"

	"github.com/diegetic/artefact"
)

// systemPrompt instructs the model to structure its response as a reasoning
// block followed by the final content.
const systemPrompt = `You are a dramatalurgical expert that creates diegetic artefacts for architectural projects.

IMPORTANT: Structure your response in exactly two parts:
1. First, a thinking section wrapped in <think> tags that explains your reasoning
2. Then, the final artifact output after a clear closing </think> tag

Example structure:
<think>
Your reasoning here...
</think>

Your final artifact here...`

// visionSystemPrompt is used when images are attached.
const visionSystemPrompt = `You are a dramatalurgical expert that creates diegetic artefacts for architectural projects.

You have been provided with visual materials (sketches, diagrams, photographs, or reference images) along with text descriptions.

IMPORTANT: First, carefully analyze the provided images:
1. Spatial organization, layout, and relationships
2. Annotations, labels, or handwritten notes (OCR)
3. Material indications and aesthetic qualities
4. Scale, proportion, and atmospheric intentions
5. Site context and environmental factors
6. Any diagrams or visual information systems

Then share your visual analysis within <think> tags before creating the final artifact.`

// reasoningSuffix is appended to the user turn.
const reasoningSuffix = "\n\nIMPORTANT: Begin with your reasoning in <think> tags, then close the tag with </think> before providing the final artifact."

// Defaults applied when the configuration leaves the knobs unset.
const (
	defaultTopP            = 0.9
	defaultPresencePenalty = 0.1
)

// Driver implements the artefact.Driver interface for OpenAI-compatible
// endpoints.
//
// Driver is stateless and safe for concurrent use.
type Driver struct{}

// New creates a new OpenAI-compatible driver.
func New() *Driver {
	return &Driver{}
}

// Name returns the provider tag "openai".
func (d *Driver) Name() string {
	return artefact.ProviderOpenAI
}

// RequiresKey reports that OpenAI-compatible providers need an API key.
func (d *Driver) RequiresKey() bool {
	return true
}

// SupportsVision reports that this driver accepts image attachments.
func (d *Driver) SupportsVision() bool {
	return true
}

// Authorize sets the standard Bearer authorization header.
func (d *Driver) Authorize(headers http.Header, apiKey string) {
	headers.Set("Authorization", "Bearer "+apiKey)
}

// DynamicMaxTokens returns the response token budget for a given combined
// input length (description + personas + themes, in characters).
//
// Longer contextual input leaves less budget for generation under a fixed
// total context window: above 1000 characters the budget drops from 1600 to
// 1400.
func DynamicMaxTokens(combinedLength int) int {
	if combinedLength > 1000 {
		return 1400
	}
	return 1600
}
