package core

import "time"

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleSystem marks instruction messages that configure agent behavior.
	RoleSystem Role = "system"
	// RoleUser marks messages authored by the end user.
	RoleUser Role = "user"
	// RoleAssistant marks messages authored by an agent.
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged entry in a conversation.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUserMessage creates a user message stamped with the current time.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content, Timestamp: time.Now()}
}

// NewAssistantMessage creates an assistant message stamped with the current time.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content, Timestamp: time.Now()}
}

// Metadata keys attached to normalized responses. MetaSource distinguishes
// text produced by the model from text synthesized by the repair path, so
// callers never need a parallel response type for either case.
const (
	MetaSource      = "source"
	SourceModel     = "model"
	SourceSynthetic = "synthetic"
)

// Response is the normalized envelope every conversational operation returns:
// the response text, the contributing agent, free-form metadata and a
// timestamp generated at assembly time.
type Response struct {
	Text      string         `json:"response"`
	Agent     string         `json:"agent"`
	Metadata  map[string]any `json:"metadata"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewResponse assembles a Response, stamping the current time and
// substituting an empty metadata map for nil.
func NewResponse(text, agent string, metadata map[string]any) Response {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return Response{Text: text, Agent: agent, Metadata: metadata, Timestamp: time.Now()}
}
