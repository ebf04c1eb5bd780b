// Package anthropic implements the Anthropic Messages-API driver.
//
// Anthropic requests carry the system prompt as a top-level field and a
// single user turn. Vision requests mix base64 image blocks and one text
// block in the user turn's content, images first.
//
// Basic usage:
//
//	driver := anthropic.New()
//	payload := driver.BuildRequest(&artefact.BuildInput{
//	    Prompt: prompt,
//	    Config: cfg,
//	})
package anthropic

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

// visionSystemPrompt is used when images are attached; it directs the model
// to analyze the visuals before writing.
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

// reasoningSuffix is appended to the user turn of text-only requests.
const reasoningSuffix = "\n\nIMPORTANT: First explain your reasoning within <think> tags before creating the final artifact. This thinking will help me understand your creative process."

// Driver implements the artefact.Driver interface for Anthropic Claude.
//
// Driver is stateless and safe for concurrent use; everything request-scoped
// arrives through BuildInput.
type Driver struct{}

// New creates a new Anthropic driver.
func New() *Driver {
	return &Driver{}
}

// Name returns the provider tag "anthropic".
func (d *Driver) Name() string {
	return artefact.ProviderAnthropic
}

// RequiresKey reports that Anthropic needs an API key.
func (d *Driver) RequiresKey() bool {
	return true
}

// SupportsVision reports that Anthropic accepts image attachments.
func (d *Driver) SupportsVision() bool {
	return true
}

// Authorize sets Anthropic's custom x-api-key header.
// Anthropic does not use Authorization: Bearer.
func (d *Driver) Authorize(headers http.Header, apiKey string) {
	headers.Set("x-api-key", apiKey)
}
