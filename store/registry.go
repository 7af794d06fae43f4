package store

import "sort"

// Registry maps entity names to their collections. It is filled once at
// startup and only read afterwards.
type Registry struct {
	collections map[string]Collection
}

func NewRegistry() *Registry {
	return &Registry{collections: make(map[string]Collection)}
}

func (r *Registry) Register(entity string, c Collection) {
	r.collections[entity] = c
}

func (r *Registry) Lookup(entity string) (Collection, bool) {
	c, ok := r.collections[entity]
	return c, ok
}

func (r *Registry) Entities() []string {
	names := make([]string, 0, len(r.collections))
	for name := range r.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Subset returns a registry holding only the named entities that r knows.
func (r *Registry) Subset(entities ...string) *Registry {
	sub := NewRegistry()
	for _, name := range entities {
		if c, ok := r.collections[name]; ok {
			sub.Register(name, c)
		}
	}
	return sub
}
