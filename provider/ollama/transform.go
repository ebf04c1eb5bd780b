package ollama

import (
	"encoding/json"
	"fmt"

	"github.com/diegetic/artefact"
)

// ollamaRequest represents an Ollama chat request.
type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

// ollamaMessage represents a single message in Ollama format.
type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ollamaOptions contains generation options for Ollama.
type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"` // max_tokens equivalent
}

// ollamaResponse is the subset of the chat response the pipeline reads.
type ollamaResponse struct {
	Message *ollamaMessage `json:"message"`
}

// BuildRequest maps the logical request into Ollama's wire shape:
// system and user turns, stream always false, sampling parameters under
// "options".
func (d *Driver) BuildRequest(in *artefact.BuildInput) any {
	topP := defaultTopP
	if in.Config.TopP != nil {
		topP = *in.Config.TopP
	}

	return &ollamaRequest{
		Model: in.Config.Model,
		Messages: []ollamaMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: in.Prompt + reasoningSuffix},
		},
		Stream: false,
		Options: ollamaOptions{
			Temperature: in.EffectiveTemperature(),
			TopP:        topP,
			NumPredict:  in.Config.MaxTokens,
		},
	}
}

// ExtractText pulls message.content out of a raw chat response.
//
// A response without that path yields an *artefact.ExtractionError carrying
// the body's top-level keys; extraction never panics.
func (d *Driver) ExtractText(body []byte) (string, error) {
	var resp ollamaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", artefact.NewExtractionError(
			fmt.Sprintf("error parsing response: %v", err),
			d.Name(), artefact.TopLevelKeys(body))
	}

	if resp.Message == nil || resp.Message.Content == "" {
		return "", artefact.NewExtractionError(
			"error parsing response: missing message.content",
			d.Name(), artefact.TopLevelKeys(body))
	}

	return resp.Message.Content, nil
}
