// Package registry maps operation names to host-supplied callables.
//
// A Registry is always an explicit, caller-constructed instance, never a
// package-level singleton: an embedding program can hold several
// independent registries (one per tenant, one per test case) without any
// cross-talk, and nothing here reads or writes global state.
package registry

import (
	"sync"

	"github.com/aledsdavies/invariant/errs"
	"github.com/aledsdavies/invariant/op"
)

// Registry binds operation names to Op values.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]op.Op
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{entries: make(map[string]op.Op)}
}

// Register binds name to o. Fails with errs.NameInUse if name is already
// bound.
func (r *Registry) Register(name string, o op.Op) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return errs.New(errs.NameInUse, "operation %q is already registered", name)
	}
	r.entries[name] = o
	return nil
}

// Get looks up name. Fails with errs.NameMissing if not bound.
func (r *Registry) Get(name string) (op.Op, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, exists := r.entries[name]
	if !exists {
		return op.Op{}, errs.New(errs.NameMissing, "operation %q is not registered", name)
	}
	return o, nil
}

// Has reports whether name is bound, without returning an error.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.entries[name]
	return exists
}

// RegisterPackage binds every entry in table under "<prefix>:<key>". The
// batch is atomic: if any resulting full name is already bound, nothing in
// table is registered.
func (r *Registry) RegisterPackage(prefix string, table map[string]op.Op) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	fullNames := make(map[string]op.Op, len(table))
	for key, o := range table {
		full := prefix + ":" + key
		if _, exists := r.entries[full]; exists {
			return errs.New(errs.NameInUse, "operation %q is already registered", full)
		}
		fullNames[full] = o
	}
	for full, o := range fullNames {
		r.entries[full] = o
	}
	return nil
}

// Names returns every currently-registered operation name. Order is
// unspecified.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}
