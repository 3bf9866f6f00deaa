package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/agentdeck/agentdeck/core"
)

// Request captures the normalized model input: a system instruction plus the
// ordered, role-tagged conversation ending with the user's current message.
type Request struct {
	Instructions string         `json:"instructions"`
	Messages     []core.Message `json:"messages"`
}

// LastUserText returns the content of the trailing user message, or an empty
// string when the request does not end with one.
func (r Request) LastUserText() string {
	if len(r.Messages) == 0 {
		return ""
	}
	last := r.Messages[len(r.Messages)-1]
	if last.Role != core.RoleUser {
		return ""
	}
	return last.Content
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the complete text produced for a request. Providers that stream
// internally accumulate before returning; the demo's streaming endpoint plays
// back a finished response rather than decoding incrementally.
type Response struct {
	Text         string         `json:"text"`
	FinishReason string         `json:"finish_reason"`
	Usage        *TokenUsage    `json:"usage,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "gemini", "openai", "anthropic", "mock"
}

// Model is the minimal interface agents require to drive generation: given a
// list of role-tagged messages, return text.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests. Responses are
// keyed by the trailing user message; unmatched prompts receive a
// deterministic echo. All received requests are recorded for inspection.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	responses map[string]string
	err       error
	requests  []Request
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// FailWith makes every subsequent Generate call return err.
func (m *MockModel) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Requests returns a copy of all requests received so far, in order.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	if m.err != nil {
		return nil, m.err
	}

	prompt := req.LastUserText()
	text, ok := m.responses[prompt]
	if !ok {
		text = fmt.Sprintf("Mock response to: %s", prompt)
	}

	return &Response{
		Text:         text,
		FinishReason: "stop",
		Metadata:     map[string]any{"provider": "mock"},
	}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
