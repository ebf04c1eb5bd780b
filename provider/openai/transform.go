package openai

import (
	"encoding/json"
	"fmt"

	"github.com/diegetic/artefact"
)

// openaiRequest represents an OpenAI-compatible chat completion request.
type openaiRequest struct {
	Model           string          `json:"model"`
	Messages        []openaiMessage `json:"messages"`
	MaxTokens       int             `json:"max_tokens"`
	Temperature     float64         `json:"temperature"`
	TopP            float64         `json:"top_p"`
	PresencePenalty float64         `json:"presence_penalty"`
}

// openaiMessage represents a message; content is a string for text requests
// or a []openaiContentPart for vision requests.
type openaiMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// openaiContentPart represents one element of multimodal message content.
type openaiContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openaiImageURL `json:"image_url,omitempty"`
}

// openaiImageURL carries a data-URI image reference.
type openaiImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// openaiResponse is the subset of the chat completion response the pipeline
// reads.
type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// BuildRequest maps the logical request into the OpenAI-compatible wire
// shape.
//
// max_tokens is computed from the combined input length, overriding the
// configured default. Vision requests replace the user turn's string content
// with a list of data-URI image blocks (detail high) followed by one text
// block.
func (d *Driver) BuildRequest(in *artefact.BuildInput) any {
	topP := defaultTopP
	if in.Config.TopP != nil {
		topP = *in.Config.TopP
	}
	presencePenalty := defaultPresencePenalty
	if in.Config.PresencePenalty != nil {
		presencePenalty = *in.Config.PresencePenalty
	}

	req := &openaiRequest{
		Model:           in.Config.Model,
		MaxTokens:       DynamicMaxTokens(in.Fields.CombinedLength()),
		Temperature:     in.EffectiveTemperature(),
		TopP:            topP,
		PresencePenalty: presencePenalty,
	}

	if len(in.Images) == 0 {
		req.Messages = []openaiMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: in.Prompt + reasoningSuffix},
		}
		return req
	}

	content := make([]openaiContentPart, 0, len(in.Images)+1)
	for _, img := range in.Images {
		content = append(content, openaiContentPart{
			Type: "image_url",
			ImageURL: &openaiImageURL{
				URL:    fmt.Sprintf("data:%s;base64,%s", img.MediaType, img.Base64),
				Detail: "high",
			},
		})
	}
	content = append(content, openaiContentPart{
		Type: "text",
		Text: in.Prompt,
	})

	req.Messages = []openaiMessage{
		{Role: "system", Content: visionSystemPrompt},
		{Role: "user", Content: content},
	}
	return req
}

// ExtractText pulls choices[0].message.content out of a raw chat completion
// response.
//
// A response without that path yields an *artefact.ExtractionError carrying
// the body's top-level keys; extraction never panics.
func (d *Driver) ExtractText(body []byte) (string, error) {
	var resp openaiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", artefact.NewExtractionError(
			fmt.Sprintf("error parsing response: %v", err),
			d.Name(), artefact.TopLevelKeys(body))
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", artefact.NewExtractionError(
			"error parsing response: missing choices[0].message.content",
			d.Name(), artefact.TopLevelKeys(body))
	}

	return resp.Choices[0].Message.Content, nil
}
