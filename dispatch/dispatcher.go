package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/agentdeck/agentdeck/agent"
	"github.com/agentdeck/agentdeck/core"
	"github.com/agentdeck/agentdeck/logging"
)

// ErrEmptyMessage is returned when a required message field is missing or
// blank. Handlers map it to an input-validation response.
var ErrEmptyMessage = errors.New("message is required")

// Default task/message fallbacks applied by the demo endpoints that accept
// an absent field.
const (
	DefaultToolTask   = "Calculate 25 * 4 + 10"
	DefaultOrchTask   = "Plan a trip to Paris"
	DefaultStreamTask = "Tell me about AI agents"
	DefaultMemoryTask = "Remember that my favorite color is blue"
	defaultSession    = "default"
)

// Options configure a Dispatcher.
type Options struct {
	Logger logging.Logger
	// SingleAgentTimeout bounds one agent invocation (default 30s).
	SingleAgentTimeout time.Duration
	// MultiAgentTimeout bounds an orchestration chain (default 60s).
	MultiAgentTimeout time.Duration
	// MaxConcurrent bounds how many dispatches may block on the model
	// backend at once (default 3).
	MaxConcurrent int64
	// StreamDelay is the pause between simulated stream chunks (default 100ms).
	StreamDelay time.Duration
	// StreamChunkWords is the number of words per simulated chunk (default 3).
	StreamChunkWords int
}

// Dispatcher runs the selection → invocation → repair → normalization
// pipeline over an injected agent registry. Each dispatch acquires one of a
// bounded set of slots before blocking on the model backend, so the HTTP
// layer is never starved by slow upstream calls.
type Dispatcher struct {
	registry      *agent.Registry
	logger        logging.Logger
	slots         *semaphore.Weighted
	singleTimeout time.Duration
	multiTimeout  time.Duration
	streamDelay   time.Duration
	chunkWords    int
}

// New creates a Dispatcher with the documented defaults.
func New(registry *agent.Registry, optFns ...func(o *Options)) *Dispatcher {
	opts := Options{
		Logger:             logging.NoOpLogger{},
		SingleAgentTimeout: 30 * time.Second,
		MultiAgentTimeout:  60 * time.Second,
		MaxConcurrent:      3,
		StreamDelay:        100 * time.Millisecond,
		StreamChunkWords:   3,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Dispatcher{
		registry:      registry,
		logger:        opts.Logger,
		slots:         semaphore.NewWeighted(opts.MaxConcurrent),
		singleTimeout: opts.SingleAgentTimeout,
		multiTimeout:  opts.MultiAgentTimeout,
		streamDelay:   opts.StreamDelay,
		chunkWords:    opts.StreamChunkWords,
	}
}

// Result is the normalized outcome of a dispatch. Orchestrator and Note are
// populated only by multi-agent runs.
type Result struct {
	Response     core.Response
	Orchestrator string
	Note         string
}

// MemoryEntry is one displayed conversation-memory row.
type MemoryEntry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// MemoryResult extends a chat result with the agent's recent memory entries.
type MemoryResult struct {
	Response core.Response
	Entries  []MemoryEntry
}

// Chat runs a plain conversational turn on the assistant agent. An empty
// message is rejected before any agent work happens.
func (d *Dispatcher) Chat(ctx context.Context, message string) (*Result, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	invocationID := uuid.NewString()

	release, err := d.acquireSlot(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, d.singleTimeout)
	defer cancel()

	ag, err := d.registry.Get(AgentAssistant)
	if err != nil {
		return nil, err
	}

	d.logger.Info("dispatch.chat", "invocation_id", invocationID)

	resp, err := ag.Chat(ctx, defaultSession, message)
	if err != nil {
		return nil, err
	}

	md := withSource(resp.Metadata, core.SourceModel, invocationID)

	return &Result{Response: core.NewResponse(resp.Content, AgentAssistant, md)}, nil
}

// ToolTask selects an agent for the task via the ordered keyword rules, runs
// it, and repairs tool-refusal responses. Travel-keyword tasks escalate to
// the multi-agent orchestration chain.
func (d *Dispatcher) ToolTask(ctx context.Context, task string) (*Result, error) {
	if strings.TrimSpace(task) == "" {
		task = DefaultToolTask
	}

	route := Select(task)
	if route == RouteTravel {
		return d.Orchestrate(ctx, task)
	}

	invocationID := uuid.NewString()

	release, err := d.acquireSlot(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, d.singleTimeout)
	defer cancel()

	agentName := route.AgentName()
	ag, err := d.registry.Get(agentName)
	if err != nil {
		return nil, err
	}

	d.logger.Info("dispatch.tool_task",
		"invocation_id", invocationID,
		"route", route.String(),
		"agent", agentName,
	)

	resp, err := ag.Chat(ctx, defaultSession, task)
	if err != nil {
		return nil, err
	}

	text := resp.Content
	synthetic := false
	if rule, ok := repairRules[route]; ok {
		text, synthetic = d.applyRepair(ctx, ag, rule, task, text)
	}

	var md map[string]any
	if synthetic {
		md = withSource(nil, core.SourceSynthetic, invocationID)
	} else {
		md = withSource(resp.Metadata, core.SourceModel, invocationID)
	}

	return &Result{Response: core.NewResponse(text, agentName, md)}, nil
}

// MemoryChat runs a conversational turn on the assistant and returns the last
// stored conversation entries alongside the response.
func (d *Dispatcher) MemoryChat(ctx context.Context, message string) (*MemoryResult, error) {
	if strings.TrimSpace(message) == "" {
		message = DefaultMemoryTask
	}

	invocationID := uuid.NewString()

	release, err := d.acquireSlot(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, d.singleTimeout)
	defer cancel()

	ag, err := d.registry.Get(AgentAssistant)
	if err != nil {
		return nil, err
	}

	resp, err := ag.Chat(ctx, defaultSession, message)
	if err != nil {
		return nil, err
	}

	messages, err := ag.Memory().Messages(defaultSession)
	if err != nil {
		return nil, fmt.Errorf("read conversation memory: %w", err)
	}
	if len(messages) > 10 {
		messages = messages[len(messages)-10:]
	}

	entries := make([]MemoryEntry, 0, len(messages))
	for _, msg := range messages {
		entries = append(entries, MemoryEntry{
			Role:      string(msg.Role),
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		})
	}

	md := withSource(resp.Metadata, core.SourceModel, invocationID)

	return &MemoryResult{
		Response: core.NewResponse(resp.Content, AgentAssistant, md),
		Entries:  entries,
	}, nil
}

// acquireSlot claims one bounded dispatch slot, returning its release func.
func (d *Dispatcher) acquireSlot(ctx context.Context) (func(), error) {
	if err := d.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire dispatch slot: %w", err)
	}
	return func() { d.slots.Release(1) }, nil
}

// withSource copies metadata and tags it with the response source and the
// dispatch invocation id.
func withSource(md map[string]any, source, invocationID string) map[string]any {
	out := make(map[string]any, len(md)+2)
	for k, v := range md {
		out[k] = v
	}
	out[core.MetaSource] = source
	out["invocation_id"] = invocationID
	return out
}
