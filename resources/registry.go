package resources

import (
	"fmt"
)

// Registry maps resource types to their listers, keeping registration order
type Registry struct {
	listers map[Type]Lister
	order   []Type
}

// NewRegistry creates a registry holding the given listers
func NewRegistry(listers ...Lister) *Registry {
	r := &Registry{listers: make(map[Type]Lister)}
	for _, l := range listers {
		r.Register(l)
	}
	return r
}

// Register registers a lister for its resource type, replacing any previous one
func (r *Registry) Register(lister Lister) {
	if _, ok := r.listers[lister.Type()]; !ok {
		r.order = append(r.order, lister.Type())
	}
	r.listers[lister.Type()] = lister
}

// Get retrieves the lister for a specific resource type
func (r *Registry) Get(resourceType Type) (Lister, error) {
	lister, ok := r.listers[resourceType]
	if !ok {
		return nil, fmt.Errorf("lister not found for resource type: %s", resourceType)
	}
	return lister, nil
}

// List returns all registered resource types in registration order
func (r *Registry) List() []Type {
	types := make([]Type, len(r.order))
	copy(types, r.order)
	return types
}
