package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/agentdeck/agentdeck/core"
	"github.com/agentdeck/agentdeck/logging"
	"github.com/agentdeck/agentdeck/memory"
	"github.com/agentdeck/agentdeck/model"
	"github.com/agentdeck/agentdeck/tool"
)

// Options configure an Agent instance.
//
// Use functional options with New to override defaults.
type Options struct {
	Instruction        string
	MaxHistoryMessages int
	Tools              []tool.Tool
	Memory             memory.Store
	Logger             logging.Logger
}

// Agent is a named conversational entity bound to a system instruction, a
// language-model backend, an independent conversation memory and a set of
// registered tools. Agents sharing one process share the model client but
// keep separate memories.
type Agent struct {
	name        string
	instruction string
	llm         model.Model
	memory      memory.Store
	tools       map[string]tool.Tool
	maxHistory  int
	logger      logging.Logger
}

// Response is the raw output of a single chat turn before dispatch-level
// normalization.
type Response struct {
	Content  string
	Metadata map[string]any
}

// New creates an agent with sensible defaults: an in-memory conversation
// store, a 20-message history window and no tools.
func New(name string, llm model.Model, optFns ...func(o *Options)) *Agent {
	opts := Options{
		Instruction:        fmt.Sprintf("You are %s, a helpful AI assistant.", name),
		MaxHistoryMessages: 20,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Memory == nil {
		opts.Memory = memory.NewInMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	a := &Agent{
		name:        name,
		instruction: opts.Instruction,
		llm:         llm,
		memory:      opts.Memory,
		tools:       make(map[string]tool.Tool),
		maxHistory:  opts.MaxHistoryMessages,
		logger:      opts.Logger,
	}
	a.RegisterTools(opts.Tools...)

	return a
}

// Name returns the agent identifier used in response envelopes.
func (a *Agent) Name() string { return a.name }

// Instruction returns the agent's system instruction.
func (a *Agent) Instruction() string { return a.instruction }

// Model returns the underlying language model backend.
func (a *Agent) Model() model.Model { return a.llm }

// Memory returns the agent's conversation store.
func (a *Agent) Memory() memory.Store { return a.memory }

// RegisterTool adds a tool to the agent's capability set.
func (a *Agent) RegisterTool(t tool.Tool) {
	a.tools[t.Name()] = t
}

// RegisterTools adds multiple tools to the agent's capability set.
func (a *Agent) RegisterTools(tools ...tool.Tool) {
	for _, t := range tools {
		a.RegisterTool(t)
	}
}

// HasTool checks if a tool is registered with the agent.
func (a *Agent) HasTool(name string) bool {
	_, exists := a.tools[name]
	return exists
}

// GetTool retrieves a specific tool by name.
func (a *Agent) GetTool(name string) (tool.Tool, bool) {
	t, exists := a.tools[name]
	return t, exists
}

// ListTools returns the names of all registered tools.
func (a *Agent) ListTools() []string {
	names := make([]string, 0, len(a.tools))
	for name := range a.tools {
		names = append(names, name)
	}
	return names
}

// Chat runs one conversational turn: recent history plus the user message is
// sent to the model, and on success both sides of the turn are appended to
// the agent's memory. The model call performs network I/O; callers bound it
// with a context deadline.
func (a *Agent) Chat(ctx context.Context, sessionID, message string) (*Response, error) {
	history, err := a.memory.Recent(sessionID, a.maxHistory)
	if err != nil {
		return nil, fmt.Errorf("read conversation memory: %w", err)
	}

	userMsg := core.NewUserMessage(message)
	req := model.Request{
		Instructions: a.instruction,
		Messages:     append(history, userMsg),
	}

	start := time.Now()
	resp, err := a.llm.Generate(ctx, req)
	if err != nil {
		a.logger.Error("agent.chat.error", "agent", a.name, "error", err.Error())
		return nil, fmt.Errorf("agent %s: %w", a.name, err)
	}

	a.logger.Info("agent.chat.success",
		"agent", a.name,
		"session", sessionID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	// Memory write failures are logged, not surfaced: losing history must
	// not fail a turn that already produced a response.
	if err := a.memory.Append(sessionID, userMsg); err != nil {
		a.logger.Warn("agent.memory.append_failed", "agent", a.name, "error", err.Error())
	}
	if err := a.memory.Append(sessionID, core.NewAssistantMessage(resp.Text)); err != nil {
		a.logger.Warn("agent.memory.append_failed", "agent", a.name, "error", err.Error())
	}

	return &Response{Content: resp.Text, Metadata: responseMetadata(resp)}, nil
}

func responseMetadata(resp *model.Response) map[string]any {
	md := make(map[string]any, len(resp.Metadata)+2)
	for k, v := range resp.Metadata {
		md[k] = v
	}
	if resp.FinishReason != "" {
		md["finish_reason"] = resp.FinishReason
	}
	if resp.Usage != nil {
		md["usage"] = map[string]any{
			"prompt_tokens":     resp.Usage.PromptTokens,
			"completion_tokens": resp.Usage.CompletionTokens,
			"total_tokens":      resp.Usage.TotalTokens,
		}
	}
	return md
}
