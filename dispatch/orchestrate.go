package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/agentdeck/agentdeck/core"
)

// Orchestrator labels identifying which fixed multi-stage chain produced a
// result.
const (
	OrchestratorTravel      = "research → weather → coordination"
	OrchestratorCalculation = "mathematician → assistant verification"
	OrchestratorDefault     = "assistant"
)

// Orchestration uses its own, smaller calculation keyword set than
// single-agent selection does.
var orchestrationCalcKeywords = []string{"calculate", "math", "solve", "compute"}

// Orchestrate runs one of three fixed multi-agent chains chosen by keyword
// category. Every chain is strictly sequential: each stage's prompt is
// constructed only after the previous stage's call has fully returned.
func (d *Dispatcher) Orchestrate(ctx context.Context, task string) (*Result, error) {
	if strings.TrimSpace(task) == "" {
		task = DefaultOrchTask
	}

	invocationID := uuid.NewString()

	release, err := d.acquireSlot(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, d.multiTimeout)
	defer cancel()

	lower := strings.ToLower(task)
	switch {
	case containsAny(lower, travelKeywords):
		return d.travelPipeline(ctx, invocationID, task)
	case containsAny(lower, orchestrationCalcKeywords):
		return d.calculationPipeline(ctx, invocationID, task)
	default:
		return d.defaultPipeline(ctx, invocationID, task)
	}
}

// travelPipeline chains a research call, a weather-insight call and a
// coordination call whose prompt embeds the literal outputs of the first two.
func (d *Dispatcher) travelPipeline(ctx context.Context, invocationID, task string) (*Result, error) {
	d.logger.Info("dispatch.orchestrate.travel", "invocation_id", invocationID, "task", task)

	assistant, err := d.registry.Get(AgentAssistant)
	if err != nil {
		return nil, err
	}
	weatherAgent, err := d.registry.Get(AgentWeather)
	if err != nil {
		return nil, err
	}

	researchPrompt := fmt.Sprintf(
		"Act as a travel research agent. Research %s. Provide information about destinations, attractions, and travel logistics.",
		task,
	)
	research, err := assistant.Chat(ctx, defaultSession, researchPrompt)
	if err != nil {
		return nil, fmt.Errorf("travel research stage: %w", err)
	}

	weatherPrompt := fmt.Sprintf(
		"Act as a weather specialist for travel planning. Based on this task '%s', provide weather insights and recommendations.",
		task,
	)
	insight, err := weatherAgent.Chat(ctx, defaultSession, weatherPrompt)
	if err != nil {
		return nil, fmt.Errorf("travel weather stage: %w", err)
	}

	coordinationPrompt := fmt.Sprintf(
		"Act as a travel coordinator. Create a comprehensive travel plan by combining these inputs:\n\n"+
			"TASK: %s\n\n"+
			"RESEARCH FINDINGS: %s\n\n"+
			"WEATHER INSIGHTS: %s\n\n"+
			"Provide a structured travel plan with recommendations.",
		task, research.Content, insight.Content,
	)
	final, err := assistant.Chat(ctx, defaultSession, coordinationPrompt)
	if err != nil {
		return nil, fmt.Errorf("travel coordination stage: %w", err)
	}

	md := withSource(final.Metadata, core.SourceModel, invocationID)

	return &Result{
		Response:     core.NewResponse(final.Content, AgentAssistant, md),
		Orchestrator: OrchestratorTravel,
		Note:         "Multi-agent travel planning: 3 agents collaborated",
	}, nil
}

// calculationPipeline has the mathematician answer and the assistant verify
// the mathematician's literal output.
func (d *Dispatcher) calculationPipeline(ctx context.Context, invocationID, task string) (*Result, error) {
	d.logger.Info("dispatch.orchestrate.calculation", "invocation_id", invocationID, "task", task)

	mathematician, err := d.registry.Get(AgentMathematician)
	if err != nil {
		return nil, err
	}
	assistant, err := d.registry.Get(AgentAssistant)
	if err != nil {
		return nil, err
	}

	mathResp, err := mathematician.Chat(ctx, defaultSession, task)
	if err != nil {
		return nil, fmt.Errorf("calculation stage: %w", err)
	}

	verification, err := assistant.Chat(ctx, defaultSession,
		fmt.Sprintf("Verify and explain this calculation: %s", mathResp.Content))
	if err != nil {
		return nil, fmt.Errorf("verification stage: %w", err)
	}

	md := withSource(verification.Metadata, core.SourceModel, invocationID)

	return &Result{
		Response:     core.NewResponse(verification.Content, AgentAssistant, md),
		Orchestrator: OrchestratorCalculation,
		Note:         "Multi-agent calculation with verification",
	}, nil
}

// defaultPipeline is a single assistant call with the task wrapped in a
// generic multi-agent prompt.
func (d *Dispatcher) defaultPipeline(ctx context.Context, invocationID, task string) (*Result, error) {
	d.logger.Info("dispatch.orchestrate.default", "invocation_id", invocationID, "task", task)

	assistant, err := d.registry.Get(AgentAssistant)
	if err != nil {
		return nil, err
	}

	resp, err := assistant.Chat(ctx, defaultSession,
		fmt.Sprintf("Handle this multi-agent task: %s", task))
	if err != nil {
		return nil, err
	}

	md := withSource(resp.Metadata, core.SourceModel, invocationID)

	return &Result{
		Response:     core.NewResponse(resp.Content, AgentAssistant, md),
		Orchestrator: OrchestratorDefault,
		Note:         fmt.Sprintf("Single agent handling: %s", task),
	}, nil
}
