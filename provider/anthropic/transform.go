package anthropic

import (
	"encoding/json"
	"fmt"

	"github.com/diegetic/artefact"
)

// anthropicRequest represents an Anthropic Messages-API request.
type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system"`
	Messages    []anthropicMessage `json:"messages"`
}

// anthropicMessage represents a message in Anthropic format.
type anthropicMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string or []anthropicContentBlock
}

// anthropicContentBlock represents a content block in Anthropic format.
type anthropicContentBlock struct {
	Type   string                `json:"type"`
	Text   string                `json:"text,omitempty"`
	Source *anthropicImageSource `json:"source,omitempty"`
}

// anthropicImageSource represents a base64 image source.
type anthropicImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// anthropicResponse is the subset of the Messages-API response the pipeline
// reads.
type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
}

// BuildRequest maps the logical request into Anthropic's wire shape.
//
// Text-only requests carry the prompt as a plain string user turn. Vision
// requests build a content list with one image block per attachment followed
// by a single text block; images always precede the text.
func (d *Driver) BuildRequest(in *artefact.BuildInput) any {
	req := &anthropicRequest{
		Model:       in.Config.Model,
		MaxTokens:   in.Config.MaxTokens,
		Temperature: in.EffectiveTemperature(),
	}

	if len(in.Images) == 0 {
		req.System = systemPrompt
		req.Messages = []anthropicMessage{
			{Role: "user", Content: in.Prompt + reasoningSuffix},
		}
		return req
	}

	req.System = visionSystemPrompt

	content := make([]anthropicContentBlock, 0, len(in.Images)+1)
	for _, img := range in.Images {
		content = append(content, anthropicContentBlock{
			Type: "image",
			Source: &anthropicImageSource{
				Type:      "base64",
				MediaType: img.MediaType,
				Data:      img.Base64,
			},
		})
	}
	content = append(content, anthropicContentBlock{
		Type: "text",
		Text: visionUserText(len(in.Images), in.Prompt),
	})

	req.Messages = []anthropicMessage{
		{Role: "user", Content: content},
	}
	return req
}

// visionUserText wraps the composed prompt with instructions tying the
// artefact back to the attached visuals.
func visionUserText(imageCount int, prompt string) string {
	return fmt.Sprintf(`Please analyze the %d image(s) I've shared above, then use that visual context along with this project description to create a diegetic artifact:

%s

Remember to:
1. First explain your interpretation of the visual materials in <think> tags
2. Reference specific visual elements you observe (spaces, annotations, materials, etc.)
3. Then create the artifact that reflects both visual and textual context`, imageCount, prompt)
}

// ExtractText pulls content[0].text out of a raw Messages-API response.
//
// A response without that path yields an *artefact.ExtractionError carrying
// the body's top-level keys; extraction never panics.
func (d *Driver) ExtractText(body []byte) (string, error) {
	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", artefact.NewExtractionError(
			fmt.Sprintf("error parsing response: %v", err),
			d.Name(), artefact.TopLevelKeys(body))
	}

	if len(resp.Content) == 0 || resp.Content[0].Text == "" {
		return "", artefact.NewExtractionError(
			"error parsing response: missing content[0].text",
			d.Name(), artefact.TopLevelKeys(body))
	}

	return resp.Content[0].Text, nil
}
