package factory

import (
	"sync"

	"cachelock-service/pkg/connection"
)

var _ connection.References = (*References)(nil)

// References is a descriptor-keyed registry of collaborators handed to
// components through SetReferences.
type References struct {
	mu      sync.RWMutex
	entries []reference
}

type reference struct {
	descriptor connection.Descriptor
	component  any
}

// NewReferences creates an empty registry.
func NewReferences() *References {
	return &References{}
}

// Put registers component under descriptor.
func (r *References) Put(descriptor connection.Descriptor, component any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, reference{descriptor: descriptor, component: component})
}

// GetOneOptional returns the first component whose descriptor matches
// locator, or nil.
func (r *References) GetOneOptional(locator connection.Descriptor) any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if e.descriptor.Match(locator) {
			return e.component
		}
	}

	return nil
}
