// Package artefact generates diegetic artefacts for architectural projects
// by calling heterogeneous LLM provider APIs (Anthropic-style, local Ollama,
// and OpenAI-compatible endpoints) through a shared prompt, retry, and
// response-extraction pipeline.
//
// The package is intentionally synchronous: one generation call performs one
// provider request (with bounded retries) and returns either the generated
// text or a typed error. Provider wire formats live in the provider
// subpackages; image preprocessing for vision requests lives in the images
// package.
package artefact
