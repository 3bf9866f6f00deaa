package agent

import (
	"fmt"
	"sort"
	"sync"
)

// Builder constructs the full agent set. It runs at most once per Registry;
// construction typically creates the shared model client, so errors (for
// example a missing API key) are retained and returned on every access.
type Builder func() (map[string]*Agent, error)

// Registry owns the process-lifetime agent set. Initialization is lazy and
// guarded by sync.Once, so concurrent first requests cannot build the agents
// twice. The registry is injected into the request-handling context instead
// of living in package-level globals.
type Registry struct {
	once    sync.Once
	build   Builder
	mu      sync.RWMutex
	agents  map[string]*Agent
	initErr error
}

// NewRegistry creates a registry that will construct its agents on first use.
func NewRegistry(build Builder) *Registry {
	return &Registry{build: build}
}

// Init constructs the agents if they have not been constructed yet. Safe to
// call eagerly at startup and again from request paths.
func (r *Registry) Init() error {
	r.once.Do(func() {
		agents, err := r.build()
		r.mu.Lock()
		defer r.mu.Unlock()
		if err != nil {
			r.initErr = fmt.Errorf("initialize agents: %w", err)
			return
		}
		r.agents = agents
	})

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.initErr
}

// Get returns the named agent, initializing the registry if necessary.
func (r *Registry) Get(name string) (*Agent, error) {
	if err := r.Init(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[name]
	if !ok {
		return nil, fmt.Errorf("agent %q not found", name)
	}
	return a, nil
}

// Initialized reports whether the agent set has been successfully built.
func (r *Registry) Initialized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.agents != nil
}

// Names returns the sorted identifiers of all registered agents.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ToolNames returns the sorted union of tool names across all agents.
func (r *Registry) ToolNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, a := range r.agents {
		for _, name := range a.ListTools() {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
