package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdeck/agentdeck/agent"
	"github.com/agentdeck/agentdeck/core"
	"github.com/agentdeck/agentdeck/model"
	"github.com/agentdeck/agentdeck/tool"
	"github.com/agentdeck/agentdeck/toolkit"
)

// newTestRegistry builds the three demo agents over a shared mock backend.
func newTestRegistry(llm model.Model) *agent.Registry {
	return agent.NewRegistry(func() (map[string]*agent.Agent, error) {
		assistant := agent.New(AgentAssistant, llm, func(o *agent.Options) {
			o.Tools = toolkit.All()
		})
		mathematician := agent.New(AgentMathematician, llm, func(o *agent.Options) {
			o.Tools = []tool.Tool{toolkit.Calculator()}
		})
		weatherAgent := agent.New(AgentWeather, llm, func(o *agent.Options) {
			o.Tools = []tool.Tool{toolkit.Weather(), toolkit.Clock()}
		})
		return map[string]*agent.Agent{
			AgentAssistant:     assistant,
			AgentMathematician: mathematician,
			AgentWeather:       weatherAgent,
		}, nil
	})
}

func newTestDispatcher(llm model.Model) *Dispatcher {
	return New(newTestRegistry(llm), func(o *Options) {
		o.StreamDelay = time.Millisecond
	})
}

func TestChat(t *testing.T) {
	mock := model.NewMockModel("test")
	mock.AddResponse("hello", "Hi! How can I help?")
	d := newTestDispatcher(mock)

	result, err := d.Chat(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, "Hi! How can I help?", result.Response.Text)
	assert.Equal(t, AgentAssistant, result.Response.Agent)
	assert.Equal(t, core.SourceModel, result.Response.Metadata[core.MetaSource])
	assert.NotEmpty(t, result.Response.Metadata["invocation_id"])
	assert.False(t, result.Response.Timestamp.IsZero())
	assert.Empty(t, result.Orchestrator)
}

func TestChatEmptyMessage(t *testing.T) {
	d := newTestDispatcher(model.NewMockModel("test"))

	_, err := d.Chat(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestChatModelError(t *testing.T) {
	mock := model.NewMockModel("test")
	mock.FailWith(errors.New("backend down"))
	d := newTestDispatcher(mock)

	_, err := d.Chat(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend down")
}

func TestToolTaskRoutesToMathematician(t *testing.T) {
	mock := model.NewMockModel("test")
	mock.AddResponse("Calculate 25 * 4 + 10", "The result is 110.")
	d := newTestDispatcher(mock)

	result, err := d.ToolTask(context.Background(), "Calculate 25 * 4 + 10")
	require.NoError(t, err)

	assert.Equal(t, AgentMathematician, result.Response.Agent)
	assert.Equal(t, "The result is 110.", result.Response.Text)
	assert.Equal(t, core.SourceModel, result.Response.Metadata[core.MetaSource])
}

func TestToolTaskDefaultTask(t *testing.T) {
	mock := model.NewMockModel("test")
	d := newTestDispatcher(mock)

	result, err := d.ToolTask(context.Background(), "")
	require.NoError(t, err)

	// the blank task falls back to the calculation default
	assert.Equal(t, AgentMathematician, result.Response.Agent)
	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, DefaultToolTask, reqs[0].LastUserText())
}

func TestToolTaskRepairsWeatherRefusal(t *testing.T) {
	mock := model.NewMockModel("test")
	mock.AddResponse("What is the weather in Tokyo",
		"I do not have access to real-time weather data.")
	d := newTestDispatcher(mock)

	result, err := d.ToolTask(context.Background(), "What is the weather in Tokyo")
	require.NoError(t, err)

	assert.Equal(t, AgentWeather, result.Response.Agent)
	assert.Contains(t, result.Response.Text, "✅ Weather Tool Executed Successfully!")
	assert.Contains(t, result.Response.Text, "Weather in Tokyo:")
	assert.Equal(t, core.SourceSynthetic, result.Response.Metadata[core.MetaSource])
}

func TestToolTaskRepairsSearchRefusal(t *testing.T) {
	mock := model.NewMockModel("test")
	mock.AddResponse("search for Python tutorials",
		"I do not have access to the internet.")
	d := newTestDispatcher(mock)

	result, err := d.ToolTask(context.Background(), "search for Python tutorials")
	require.NoError(t, err)

	assert.Equal(t, AgentAssistant, result.Response.Agent)
	assert.Contains(t, result.Response.Text, "✅ Search Tool Executed Successfully!")
	assert.Contains(t, result.Response.Text, "Search results for 'Python tutorials':")
	assert.Equal(t, core.SourceSynthetic, result.Response.Metadata[core.MetaSource])
}

func TestToolTaskLeavesCleanResponseAlone(t *testing.T) {
	mock := model.NewMockModel("test")
	mock.AddResponse("What is the weather in Tokyo", "It is sunny and 25°C in Tokyo.")
	d := newTestDispatcher(mock)

	result, err := d.ToolTask(context.Background(), "What is the weather in Tokyo")
	require.NoError(t, err)

	assert.Equal(t, "It is sunny and 25°C in Tokyo.", result.Response.Text)
	assert.Equal(t, core.SourceModel, result.Response.Metadata[core.MetaSource])
}

func TestToolTaskTravelEscalatesToOrchestration(t *testing.T) {
	mock := model.NewMockModel("test")
	d := newTestDispatcher(mock)

	result, err := d.ToolTask(context.Background(), "Plan a trip to Paris")
	require.NoError(t, err)

	assert.Equal(t, OrchestratorTravel, result.Orchestrator)
	assert.Len(t, mock.Requests(), 3)
}

func TestMemoryChat(t *testing.T) {
	mock := model.NewMockModel("test")
	mock.AddResponse("Remember that my favorite color is blue", "Noted: blue.")
	mock.AddResponse("What is my favorite color?", "Your favorite color is blue.")
	d := newTestDispatcher(mock)

	first, err := d.MemoryChat(context.Background(), "Remember that my favorite color is blue")
	require.NoError(t, err)
	require.Len(t, first.Entries, 2)
	assert.Equal(t, "user", first.Entries[0].Role)
	assert.Equal(t, "Remember that my favorite color is blue", first.Entries[0].Content)
	assert.Equal(t, "assistant", first.Entries[1].Role)
	assert.Equal(t, "Noted: blue.", first.Entries[1].Content)

	second, err := d.MemoryChat(context.Background(), "What is my favorite color?")
	require.NoError(t, err)
	assert.Len(t, second.Entries, 4)
	assert.Equal(t, "Your favorite color is blue.", second.Response.Text)

	// the follow-up request carried the stored history
	reqs := mock.Requests()
	require.Len(t, reqs, 2)
	assert.Len(t, reqs[1].Messages, 3)
	assert.Equal(t, "Remember that my favorite color is blue", reqs[1].Messages[0].Content)
}

func TestMemoryChatDefaultMessage(t *testing.T) {
	mock := model.NewMockModel("test")
	d := newTestDispatcher(mock)

	result, err := d.MemoryChat(context.Background(), "")
	require.NoError(t, err)

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, DefaultMemoryTask, reqs[0].LastUserText())
	require.Len(t, result.Entries, 2)
}

func TestMemoryChatEntriesCappedAtTen(t *testing.T) {
	mock := model.NewMockModel("test")
	d := newTestDispatcher(mock)

	var last *MemoryResult
	for i := 0; i < 7; i++ {
		var err error
		last, err = d.MemoryChat(context.Background(), "another message")
		require.NoError(t, err)
	}

	// 7 turns stored 14 messages; only the last 10 are reported
	assert.Len(t, last.Entries, 10)
}
