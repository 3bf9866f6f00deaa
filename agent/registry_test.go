package agent

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdeck/agentdeck/model"
)

func TestRegistryLazyInit(t *testing.T) {
	var builds int32
	r := NewRegistry(func() (map[string]*Agent, error) {
		atomic.AddInt32(&builds, 1)
		return map[string]*Agent{
			"helper": New("helper", model.NewMockModel("test")),
		}, nil
	})

	assert.False(t, r.Initialized())

	a, err := r.Get("helper")
	require.NoError(t, err)
	assert.Equal(t, "helper", a.Name())
	assert.True(t, r.Initialized())

	// repeated access never rebuilds
	_, _ = r.Get("helper")
	require.NoError(t, r.Init())
	assert.Equal(t, int32(1), atomic.LoadInt32(&builds))
}

func TestRegistryGetUnknownAgent(t *testing.T) {
	r := NewRegistry(func() (map[string]*Agent, error) {
		return map[string]*Agent{}, nil
	})

	_, err := r.Get("ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `agent "ghost" not found`)
}

func TestRegistryBuildErrorRetained(t *testing.T) {
	r := NewRegistry(func() (map[string]*Agent, error) {
		return nil, errors.New("GEMINI_API_KEY is not set")
	})

	err := r.Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY is not set")

	// the builder ran once; the error is returned on every later access
	_, err2 := r.Get("helper")
	require.Error(t, err2)
	assert.Contains(t, err2.Error(), "GEMINI_API_KEY is not set")
	assert.False(t, r.Initialized())
}

func TestRegistryConcurrentInit(t *testing.T) {
	var builds int32
	r := NewRegistry(func() (map[string]*Agent, error) {
		atomic.AddInt32(&builds, 1)
		return map[string]*Agent{
			"helper": New("helper", model.NewMockModel("test")),
		}, nil
	})

	wg := sync.WaitGroup{}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Get("helper"); err != nil {
				t.Errorf("get failed: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&builds))
}

func TestRegistryNamesAndToolNames(t *testing.T) {
	r := NewRegistry(func() (map[string]*Agent, error) {
		a := New("alpha", model.NewMockModel("test"))
		a.RegisterTool(echoTool("zulu"))
		a.RegisterTool(echoTool("alpha_tool"))
		b := New("beta", model.NewMockModel("test"))
		b.RegisterTool(echoTool("zulu"))
		return map[string]*Agent{"beta": b, "alpha": a}, nil
	})
	require.NoError(t, r.Init())

	assert.Equal(t, []string{"alpha", "beta"}, r.Names())
	assert.Equal(t, []string{"alpha_tool", "zulu"}, r.ToolNames())
}
