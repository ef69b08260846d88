package subst

import (
	"sync"
)

// Registry maps command identifiers to their handlers. It is owned by the
// caller and shared by reference with any Resolver built from it; the
// Resolver never mutates it. Identifier uniqueness is enforced by the map
// itself.
type Registry struct {
	sync.RWMutex

	commands map[string]*guarded
}

// guarded pairs a handler with the mutex that serializes calls into it. At
// most one dispatch proceeds per handler instance at a time.
type guarded struct {
	sync.Mutex

	command Command
}

// NewRegistry creates an empty Registry ready for registrations.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]*guarded),
	}
}

// Register adds a handler under the given identifier, replacing any
// previous handler held there. Handlers should be registered by reference
// (a pointer); registering the same instance under several identifiers
// shares one lock across all of them, keeping access to the instance's
// state serialized no matter which identifier reached it.
func (r *Registry) Register(id string, c Command) {
	r.Lock()
	defer r.Unlock()

	for _, g := range r.commands {
		if g.command == c {
			r.commands[id] = g
			return
		}
	}
	r.commands[id] = &guarded{command: c}
}

// Commands returns the registered command identifiers, in no particular
// order.
func (r *Registry) Commands() []string {
	r.RLock()
	defer r.RUnlock()

	ids := make([]string, 0, len(r.commands))
	for id := range r.commands {
		ids = append(ids, id)
	}
	return ids
}

// lookup returns the guarded handler for id, if one is registered.
func (r *Registry) lookup(id string) (*guarded, bool) {
	r.RLock()
	defer r.RUnlock()

	g, ok := r.commands[id]
	return g, ok
}
