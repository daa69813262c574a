package resource

import (
	"reflect"
	"sync"
)

// TypeTag returns the identity string used to tag native handles of type t.
// Named types carry their package path so equal names in different
// packages never collide.
func TypeTag(t reflect.Type) string {
	if t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// TypeRegistry assigns stable numeric IDs to type tags.
// Safe for concurrent registration and lookup.
type TypeRegistry struct {
	mu     sync.RWMutex
	byTag  map[string]uint32
	nextID uint32
}

// NewTypeRegistry creates an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		byTag:  make(map[string]uint32),
		nextID: 1, // 0 means unregistered
	}
}

// Types is the process-wide registry used by shared handles.
var Types = NewTypeRegistry()

// Register returns the ID for tag, assigning one on first use.
func (r *TypeRegistry) Register(tag string) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byTag[tag]; ok {
		return id
	}

	id := r.nextID
	r.nextID++
	r.byTag[tag] = id
	return id
}

// Lookup returns the ID registered for tag.
func (r *TypeRegistry) Lookup(tag string) (uint32, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byTag[tag]
	return id, ok
}
