package auth

import (
	"fmt"
	"slices"
)

// Registry is the read-only set of configured providers.
// It is safe for concurrent use because it never changes after construction.
type Registry struct {
	order []*Descriptor
	byID  map[ProviderID]*Descriptor
}

// NewRegistry builds a registry from descriptors in configuration order.
func NewRegistry(descriptors ...*Descriptor) (*Registry, error) {
	r := &Registry{
		order: make([]*Descriptor, 0, len(descriptors)),
		byID:  make(map[ProviderID]*Descriptor, len(descriptors)),
	}
	for _, d := range descriptors {
		if _, err := ParseProviderID(string(d.ID)); err != nil {
			return nil, err
		}
		if _, dup := r.byID[d.ID]; dup {
			return nil, fmt.Errorf("provider %q registered twice", d.ID)
		}
		if d.ClientID == "" {
			return nil, fmt.Errorf("provider %q has no client id", d.ID)
		}
		r.order = append(r.order, d)
		r.byID[d.ID] = d
	}
	return r, nil
}

// Describe returns the descriptor for a raw provider id.
// Unknown or unconfigured ids yield ErrUnsupportedProvider.
func (r *Registry) Describe(raw string) (*Descriptor, error) {
	id, err := ParseProviderID(raw)
	if err != nil {
		return nil, err
	}
	d, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not enabled", ErrUnsupportedProvider, raw)
	}
	return d, nil
}

// List returns the configured providers in configuration order.
func (r *Registry) List() []*Descriptor {
	return slices.Clone(r.order)
}

// Len returns the number of configured providers
func (r *Registry) Len() int {
	return len(r.order)
}
