// Package gemini provides an implementation of model.Model using the Google
// generative language API. It is the default backend for the demo service and
// maps the normalized role-tagged conversation onto a Gemini chat session.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/agentdeck/agentdeck/core"
	"github.com/agentdeck/agentdeck/model"
)

// Options configure the Gemini model adapter.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Model wraps the Gemini API behind the generic model.Model interface.
type Model struct {
	client *genai.Client
	opts   Options
}

// NewModel creates a Gemini model, establishing the API client with the given
// key. The key is required; absence of it must be handled by the caller
// before construction.
func NewModel(ctx context.Context, apiKey string, optFns ...func(o *Options)) (*Model, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return NewModelFromClient(client, optFns...), nil
}

// NewModelFromClient creates a Gemini model from an existing client.
func NewModelFromClient(client *genai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       "gemini-1.5-flash",
		Temperature: 0.7,
		MaxTokens:   2048,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Model{client: client, opts: opts}
}

// Generate implements model.Model. The conversation history (all messages but
// the trailing user message) seeds the chat session; the trailing user
// message is sent as the current turn.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	gm := m.client.GenerativeModel(m.opts.Model)
	gm.SetTemperature(float32(m.opts.Temperature))
	gm.SetMaxOutputTokens(int32(m.opts.MaxTokens))

	if req.Instructions != "" {
		gm.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.Instructions)},
		}
	}

	prompt := req.LastUserText()
	if prompt == "" {
		return nil, fmt.Errorf("gemini: request must end with a user message")
	}

	cs := gm.StartChat()
	cs.History = buildHistory(req.Messages[:len(req.Messages)-1])

	resp, err := cs.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini: generate: %w", err)
	}

	text, finish := collectText(resp)

	out := &model.Response{
		Text:         text,
		FinishReason: finish,
		Metadata: map[string]any{
			"provider": "gemini",
			"model":    m.opts.Model,
		},
	}
	if usage := resp.UsageMetadata; usage != nil {
		out.Usage = &model.TokenUsage{
			PromptTokens:     int(usage.PromptTokenCount),
			CompletionTokens: int(usage.CandidatesTokenCount),
			TotalTokens:      int(usage.TotalTokenCount),
		}
	}
	return out, nil
}

// buildHistory converts normalized messages into Gemini chat history.
// Gemini uses "model" where the rest of the system says "assistant"; system
// messages are carried via SystemInstruction and skipped here.
func buildHistory(messages []core.Message) []*genai.Content {
	history := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		role := "user"
		if msg.Role == core.RoleAssistant {
			role = "model"
		} else if msg.Role == core.RoleSystem {
			continue
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	return history
}

// collectText concatenates the text parts of the first candidate.
func collectText(resp *genai.GenerateContentResponse) (string, string) {
	if len(resp.Candidates) == 0 {
		return "", "stop"
	}

	candidate := resp.Candidates[0]
	finish := strings.ToLower(candidate.FinishReason.String())

	if candidate.Content == nil {
		return "", finish
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String(), finish
}

// Info returns metadata describing this Gemini model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "gemini"}
}

// Close releases the underlying API client.
func (m *Model) Close() error {
	return m.client.Close()
}
