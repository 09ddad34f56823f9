package launch

import (
	"fmt"
	"slices"
	"sort"
)

// Resolver maps a server identifier to a launch specification.
type Resolver interface {
	Resolve(id string) (LaunchSpec, error)
}

// Registry is an immutable table of known context servers.
// It is safe for concurrent use.
type Registry struct {
	entries map[string]Entry // server id → entry
}

// NewRegistry builds a registry from the given entries. Every entry needs an
// identifier and an executable, and identifiers must be unique.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if err := validate(e); err != nil {
			return nil, err
		}
		if _, ok := r.entries[e.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateServer, e.ID)
		}
		r.entries[e.ID] = e.clone()
	}
	return r, nil
}

func validate(e Entry) error {
	if e.ID == "" {
		return fmt.Errorf("%w: empty identifier", ErrInvalidEntry)
	}
	if e.Executable == "" {
		return fmt.Errorf("%w: %s has no command", ErrInvalidEntry, e.ID)
	}
	return nil
}

// With returns a new registry containing r's entries overlaid with the given
// ones. An entry whose identifier already exists replaces the old entry.
// Duplicates within entries themselves are rejected.
func (r *Registry) With(entries ...Entry) (*Registry, error) {
	overlay, err := NewRegistry(entries...)
	if err != nil {
		return nil, err
	}
	out := &Registry{entries: make(map[string]Entry, len(r.entries)+len(entries))}
	for id, e := range r.entries {
		out.entries[id] = e
	}
	for id, e := range overlay.entries {
		out.entries[id] = e
	}
	return out, nil
}

// Without returns a new registry lacking the given identifiers. Identifiers
// that are not registered are ignored.
func (r *Registry) Without(ids ...string) *Registry {
	out := &Registry{entries: make(map[string]Entry, len(r.entries))}
	for id, e := range r.entries {
		out.entries[id] = e
	}
	for _, id := range ids {
		delete(out.entries, id)
	}
	return out
}

// Resolve returns the launch spec registered for id, or an
// *UnknownServerError carrying id verbatim.
func (r *Registry) Resolve(id string) (LaunchSpec, error) {
	e, ok := r.entries[id]
	if !ok {
		return LaunchSpec{}, &UnknownServerError{ID: id}
	}
	return e.Spec(), nil
}

// Lookup returns a copy of the entry registered for id.
func (r *Registry) Lookup(id string) (Entry, bool) {
	e, ok := r.entries[id]
	if !ok {
		return Entry{}, false
	}
	return e.clone(), true
}

// IDs returns the registered identifiers in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Entries returns copies of all entries, sorted by identifier.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, id := range r.IDs() {
		out = append(out, r.entries[id].clone())
	}
	return out
}

// Len returns the number of registered servers.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Contains reports whether id is registered.
func (r *Registry) Contains(id string) bool {
	_, ok := r.entries[id]
	return ok
}

// Equal reports whether two specs describe the same command.
func Equal(a, b LaunchSpec) bool {
	if a.Executable != b.Executable || !slices.Equal(a.Args, b.Args) {
		return false
	}
	if len(a.Env) != len(b.Env) {
		return false
	}
	for k, v := range a.Env {
		if bv, ok := b.Env[k]; !ok || bv != v {
			return false
		}
	}
	return true
}
