package handlers

import (
	"sync"

	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/auth"
)

// FlowFactory builds a fresh auth flow; the registry calls it once per flow id.
type FlowFactory func() *auth.Flow

// FlowRegistry holds one auth.Flow per client flow id so a web client can
// drive its own two-step state machine across requests. Flows are never
// evicted; they are small and a flow id maps to one auth attempt surface.
type FlowRegistry struct {
	mu      sync.Mutex
	flows   map[string]*auth.Flow
	newFlow FlowFactory
}

// NewFlowRegistry returns an empty registry backed by the given factory.
func NewFlowRegistry(newFlow FlowFactory) *FlowRegistry {
	return &FlowRegistry{flows: make(map[string]*auth.Flow), newFlow: newFlow}
}

// Get returns the flow for id, creating it on first use.
func (r *FlowRegistry) Get(id string) *auth.Flow {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flows[id]
	if !ok {
		f = r.newFlow()
		r.flows[id] = f
	}
	return f
}

// flowKey picks the registry key for a request: explicit flow id, else the
// identifier the attempt is about, else a shared default.
func flowKey(flowID, identifier string) string {
	if flowID != "" {
		return flowID
	}
	if identifier != "" {
		return identifier
	}
	return "default"
}
