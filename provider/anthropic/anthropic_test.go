package anthropic

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diegetic/artefact"
	"github.com/diegetic/artefact/images"
)

func testInput() *artefact.BuildInput {
	return &artefact.BuildInput{
		Prompt: "Create a newspaper article.",
		Config: artefact.ModelConfig{
			Provider:    artefact.ProviderAnthropic,
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   4000,
			Temperature: 0.7,
		},
	}
}

func TestDriverIdentity(t *testing.T) {
	d := New()

	assert.Equal(t, artefact.ProviderAnthropic, d.Name())
	assert.True(t, d.RequiresKey())
	assert.True(t, d.SupportsVision())
}

func TestAuthorizeSetsAPIKeyHeader(t *testing.T) {
	d := New()
	headers := make(http.Header)

	d.Authorize(headers, "sk-ant-test")

	assert.Equal(t, "sk-ant-test", headers.Get("x-api-key"))
	assert.Empty(t, headers.Get("Authorization"))
}

func TestBuildRequestText(t *testing.T) {
	d := New()

	req, ok := d.BuildRequest(testInput()).(*anthropicRequest)
	require.True(t, ok)

	assert.Equal(t, "claude-sonnet-4-20250514", req.Model)
	assert.Equal(t, 4000, req.MaxTokens)
	assert.Equal(t, 0.7, req.Temperature)
	assert.NotEmpty(t, req.System)
	assert.Contains(t, req.System, "dramatalurgical expert")

	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)

	content, ok := req.Messages[0].Content.(string)
	require.True(t, ok, "text requests carry string content")
	assert.Contains(t, content, "Create a newspaper article.")
	assert.Contains(t, content, "<think>", "reasoning instructions are appended")
}

func TestBuildRequestTemperatureOverride(t *testing.T) {
	d := New()
	in := testInput()
	in.Temperature = artefact.Float64Ptr(0.3)

	req := d.BuildRequest(in).(*anthropicRequest)

	assert.Equal(t, 0.3, req.Temperature)
}

func TestBuildRequestVision(t *testing.T) {
	d := New()
	in := testInput()
	in.Images = []images.Asset{
		{Name: "plan.png", Base64: "cGxhbg==", MediaType: "image/png"},
		{Name: "site.jpg", Base64: "c2l0ZQ==", MediaType: "image/jpeg"},
	}

	req := d.BuildRequest(in).(*anthropicRequest)

	assert.Equal(t, visionSystemPrompt, req.System)
	require.Len(t, req.Messages, 1)

	content, ok := req.Messages[0].Content.([]anthropicContentBlock)
	require.True(t, ok, "vision requests carry block content")
	require.Len(t, content, 3, "two image blocks plus one text block")

	// Images come first, each with its own media type.
	assert.Equal(t, "image", content[0].Type)
	assert.Equal(t, "base64", content[0].Source.Type)
	assert.Equal(t, "image/png", content[0].Source.MediaType)
	assert.Equal(t, "cGxhbg==", content[0].Source.Data)
	assert.Equal(t, "image", content[1].Type)
	assert.Equal(t, "image/jpeg", content[1].Source.MediaType)

	assert.Equal(t, "text", content[2].Type)
	assert.Contains(t, content[2].Text, "analyze the 2 image(s)")
	assert.Contains(t, content[2].Text, "Create a newspaper article.")
}

func TestExtractText(t *testing.T) {
	d := New()

	text, err := d.ExtractText([]byte(`{"content":[{"type":"text","text":"The artefact."}]}`))
	require.NoError(t, err)
	assert.Equal(t, "The artefact.", text)
}

func TestExtractTextMissingContent(t *testing.T) {
	d := New()

	tests := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"empty content list", `{"content":[]}`},
		{"block without text", `{"content":[{"type":"text"}]}`},
		{"not json", `upstream proxy error`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.ExtractText([]byte(tt.body))
			require.Error(t, err)

			var extractErr *artefact.ExtractionError
			assert.True(t, errors.As(err, &extractErr))
		})
	}
}

func TestExtractTextReportsResponseKeys(t *testing.T) {
	d := New()

	_, err := d.ExtractText([]byte(`{"id":"msg_1","type":"error","error":{}}`))
	require.Error(t, err)

	var extractErr *artefact.ExtractionError
	require.True(t, errors.As(err, &extractErr))
	assert.ElementsMatch(t, []string{"id", "type", "error"}, extractErr.Keys)
}
