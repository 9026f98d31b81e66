package game

import "fmt"

// Factory constructs a game for the given players, in join order.
type Factory func(players []string) Game

// Registry maps room-type tags to game constructors. The set is closed:
// everything is registered during startup wiring, lookups happen after.
type Registry struct {
	factories map[string]Factory
	names     []string
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds a room-type tag to a constructor. Duplicate tags are a
// wiring mistake and rejected.
func (r *Registry) Register(tag string, f Factory) error {
	if _, exists := r.factories[tag]; exists {
		return fmt.Errorf("game type %q already registered", tag)
	}
	r.factories[tag] = f
	r.names = append(r.names, tag)
	return nil
}

// Has reports whether the tag is a known room type.
func (r *Registry) Has(tag string) bool {
	_, ok := r.factories[tag]
	return ok
}

// Create instantiates the game registered under tag.
func (r *Registry) Create(tag string, players []string) (Game, error) {
	f, ok := r.factories[tag]
	if !ok {
		return nil, fmt.Errorf("unknown game type %q", tag)
	}
	return f(players), nil
}

// Names returns the registered tags in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}
