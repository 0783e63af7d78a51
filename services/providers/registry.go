package providers

import (
	"errors"
	"sort"
	"sync"
)

var (
	// ErrTransportNotFound is returned when no transport is registered for a kind
	ErrTransportNotFound = errors.New("transport not found")

	// ErrTransportAlreadyRegistered is returned when trying to register a duplicate transport
	ErrTransportAlreadyRegistered = errors.New("transport already registered")
)

// Registry maps a profile kind to the transport that speaks it
type Registry struct {
	mu         sync.RWMutex
	transports map[Kind]Transport
}

// NewRegistry creates a new transport registry
func NewRegistry() *Registry {
	return &Registry{
		transports: make(map[Kind]Transport),
	}
}

// Register registers a transport for a kind
func (r *Registry) Register(kind Kind, transport Transport) error {
	if transport == nil {
		return errors.New("transport cannot be nil")
	}
	if kind == "" {
		return errors.New("transport kind cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transports[kind]; exists {
		return ErrTransportAlreadyRegistered
	}

	r.transports[kind] = transport
	return nil
}

// Get retrieves the transport for a kind
func (r *Registry) Get(kind Kind) (Transport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	transport, exists := r.transports[kind]
	if !exists {
		return nil, ErrTransportNotFound
	}

	return transport, nil
}

// Kinds returns all registered kinds in sorted order
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, 0, len(r.transports))
	for kind := range r.transports {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	return kinds
}

// Count returns the number of registered transports
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.transports)
}
