// Package model defines the provider-agnostic language model contract used by
// agents. Concrete adapters live in the gemini, openai and anthropic
// subpackages; MockModel backs tests.
package model
