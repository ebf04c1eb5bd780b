// Package provider assembles the closed set of driver implementations.
//
// Each subpackage implements artefact.Driver for one wire dialect:
// anthropic (Messages API), ollama (local chat API), and openai
// (OpenAI-compatible chat completions, which also serves as the default for
// unrecognized provider tags).
package provider

import (
	"github.com/diegetic/artefact"
	"github.com/diegetic/artefact/provider/anthropic"
	"github.com/diegetic/artefact/provider/ollama"
	"github.com/diegetic/artefact/provider/openai"
)

// DefaultRegistry returns a registry holding all built-in drivers.
//
// Example:
//
//	gen := artefact.NewGenerator(provider.DefaultRegistry())
func DefaultRegistry() *artefact.Registry {
	reg := artefact.NewRegistry()

	// Registration of the built-in set cannot collide.
	_ = reg.Register(anthropic.New())
	_ = reg.Register(ollama.New())
	_ = reg.Register(openai.New())

	return reg
}
