// Package agentdeck provides a high-level façade over the agent registry and
// the dispatch pipeline enabling rapid construction of the demo service. Most
// applications interact with this package by:
//  1. Creating a Deck via New() from a loaded config
//  2. Calling Init() at startup (best effort; initialization is retried
//     lazily on first use)
//  3. Serving HTTP through the server package, which consumes the Deck
package agentdeck

import (
	"context"
	"fmt"

	"github.com/agentdeck/agentdeck/agent"
	"github.com/agentdeck/agentdeck/config"
	"github.com/agentdeck/agentdeck/dispatch"
	"github.com/agentdeck/agentdeck/logging"
	"github.com/agentdeck/agentdeck/model"
	anthropicmodel "github.com/agentdeck/agentdeck/model/anthropic"
	geminimodel "github.com/agentdeck/agentdeck/model/gemini"
	openaimodel "github.com/agentdeck/agentdeck/model/openai"
	"github.com/agentdeck/agentdeck/tool"
	"github.com/agentdeck/agentdeck/toolkit"
)

// Framework descriptor reported by the info endpoint.
const (
	FrameworkName        = "agentdeck"
	FrameworkVersion     = "0.1.0"
	FrameworkDescription = "A lightweight, composable agent orchestration demo"
)

// Options configure the Deck.
type Options struct {
	// Logger used by all components (defaults to NoOp).
	Logger logging.Logger
	// Model overrides the config-selected backend. Tests inject a
	// model.MockModel here.
	Model model.Model
}

// Deck aggregates the agent registry and the dispatcher for one process.
type Deck struct {
	cfg        *config.Config
	logger     logging.Logger
	registry   *agent.Registry
	dispatcher *dispatch.Dispatcher
}

// New assembles a Deck from the given config. Agent construction is deferred
// to first use so that a missing API key surfaces as a per-request error
// rather than a startup crash.
func New(cfg *config.Config, optFns ...func(o *Options)) *Deck {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	d := &Deck{cfg: cfg, logger: opts.Logger}

	d.registry = agent.NewRegistry(func() (map[string]*agent.Agent, error) {
		llm := opts.Model
		if llm == nil {
			var err error
			llm, err = buildModel(cfg)
			if err != nil {
				return nil, err
			}
		}
		return buildAgents(llm, opts.Logger), nil
	})

	d.dispatcher = dispatch.New(d.registry, func(o *dispatch.Options) {
		o.Logger = opts.Logger
		o.SingleAgentTimeout = cfg.SingleAgentTimeout
		o.MultiAgentTimeout = cfg.MultiAgentTimeout
		o.MaxConcurrent = int64(cfg.MaxConcurrentDispatches)
		o.StreamDelay = cfg.StreamDelay
	})

	return d
}

// buildModel constructs the configured language-model backend. All three
// agents share the one client.
func buildModel(cfg *config.Config) (model.Model, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openaimodel.NewModel(func(o *openaimodel.Options) {
			o.Model = cfg.Model
			o.Temperature = cfg.Temperature
			o.MaxCompletionTokens = int64(cfg.MaxTokens)
		}), nil
	case config.ProviderAnthropic:
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			o.Temperature = cfg.Temperature
			o.MaxTokens = int64(cfg.MaxTokens)
		}), nil
	case config.ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is not set")
		}
		return geminimodel.NewModel(context.Background(), cfg.GeminiAPIKey, func(o *geminimodel.Options) {
			o.Model = cfg.Model
			o.Temperature = cfg.Temperature
			o.MaxTokens = cfg.MaxTokens
		})
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

// buildAgents creates the three fixed demo agents. They share the model
// client but keep independent memories and tool sets.
func buildAgents(llm model.Model, logger logging.Logger) map[string]*agent.Agent {
	assistant := agent.New(dispatch.AgentAssistant, llm, func(o *agent.Options) {
		o.Instruction = "You are a helpful AI assistant with access to tools. " +
			"Available tools: get_weather(location), calculate(expression), get_current_time(), search_web(query). " +
			"Use get_weather for weather questions, calculate for calculations, get_current_time for time questions " +
			"and search_web for searches. Never claim you lack tool access - you have these tools, call them directly."
		o.Tools = toolkit.All()
		o.Logger = logger
	})

	mathematician := agent.New(dispatch.AgentMathematician, llm, func(o *agent.Options) {
		o.Instruction = "You are a mathematics expert with access to the calculate(expression) tool. " +
			"Use the calculate tool for any mathematical operation. " +
			"Never claim you lack calculation tools - you have the calculate tool, use it."
		o.Tools = []tool.Tool{toolkit.Calculator()}
		o.Logger = logger
	})

	weatherAgent := agent.New(dispatch.AgentWeather, llm, func(o *agent.Options) {
		o.Instruction = "You are a weather specialist with direct access to the get_weather(location) tool. " +
			"For any weather question call get_weather with just the location name; the tool provides current " +
			"weather automatically, so never ask for additional information and never claim you cannot access weather data."
		o.Logger = logger
	})
	weatherAgent.RegisterTools(toolkit.Weather(), toolkit.Clock())

	return map[string]*agent.Agent{
		dispatch.AgentAssistant:     assistant,
		dispatch.AgentMathematician: mathematician,
		dispatch.AgentWeather:       weatherAgent,
	}
}

// Init eagerly constructs the agents. Errors are returned but the Deck stays
// usable; request paths will surface the same error.
func (d *Deck) Init() error { return d.registry.Init() }

// Registry returns the agent registry.
func (d *Deck) Registry() *agent.Registry { return d.registry }

// Dispatcher returns the dispatch pipeline.
func (d *Deck) Dispatcher() *dispatch.Dispatcher { return d.dispatcher }

// APIConfigured reports whether the configured backend has credentials.
func (d *Deck) APIConfigured() bool { return d.cfg.APIConfigured() }

// Describe returns the framework information payload: identity plus the live
// agent and tool inventory when the registry is initialized.
func (d *Deck) Describe() map[string]any {
	info := map[string]any{
		"framework":   FrameworkName,
		"version":     FrameworkVersion,
		"description": FrameworkDescription,
		"features": []string{
			"Multi-LLM support (Gemini, OpenAI, Anthropic)",
			"Simulated streaming playback",
			"Per-agent conversation memory",
			"Tool integration made simple",
			"Multi-agent orchestration",
		},
		"performance": map[string]string{
			"startup":      "lazy agent construction, no boot-time API calls",
			"concurrency":  "bounded dispatch slots",
			"memory_usage": "in-process conversation buffers only",
		},
	}

	if d.registry.Initialized() {
		names := d.registry.Names()
		info["active_agents"] = len(names)
		info["agent_names"] = names
		info["available_tools"] = d.registry.ToolNames()
		if a, err := d.registry.Get(dispatch.AgentAssistant); err == nil {
			mi := a.Model().Info()
			info["model"] = map[string]string{"name": mi.Name, "provider": mi.Provider}
		}
		info["status"] = "initialized"
	} else {
		info["status"] = "not initialized"
	}

	return info
}
