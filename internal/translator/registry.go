package translator

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps inbound event types to their mappers.
// It is safe for concurrent reads; Register should only be called at startup.
type Registry struct {
	mu      sync.RWMutex
	mappers map[string]Mapper
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{mappers: make(map[string]Mapper)}
}

// DefaultRegistry holds the Goxgain event table.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(newSignalMapper(typeRegister, EventCompleteRegistration, "Registration", "Registration Success Page"))
	r.Register(newSignalMapper(typeLogin, EventLead, "Login", "Login Page View"))
	r.Register(depositCreatedMapper{})
	r.Register(depositPaidMapper{})
	return r
}

// Register adds a mapper. Panics on duplicate type to surface misconfiguration early.
func (r *Registry) Register(m Mapper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.mappers[m.EventType()]; exists {
		panic(fmt.Sprintf("translator registry: duplicate event type %q", m.EventType()))
	}
	r.mappers[m.EventType()] = m
}

// Get returns the mapper for the given inbound type.
func (r *Registry) Get(eventType string) (Mapper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.mappers[eventType]
	return m, ok
}

// Types returns all registered inbound types, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.mappers))
	for k := range r.mappers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
