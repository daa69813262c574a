package resource

import (
	"sync"
)

// Arena stores handle entries in a LocalBackend. The engine keeps one
// arena per context for every native handle exposed to scripts.
type Arena struct {
	backend   *LocalBackend
	observers []Observer
	obsMu     sync.RWMutex
	closed    bool
	closeMu   sync.RWMutex
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{
		backend: NewLocalBackend(),
	}
}

// Insert adds a value and returns its handle. Returns 0 once closed.
func (a *Arena) Insert(typeID uint32, value any) Handle {
	a.closeMu.RLock()
	if a.closed {
		a.closeMu.RUnlock()
		return 0
	}
	a.closeMu.RUnlock()

	handle, err := a.backend.Create(typeID, value)
	if err != nil {
		return 0
	}

	a.notify(Event{
		Type:   EventCreated,
		Handle: handle,
		TypeID: typeID,
		Value:  value,
	})

	return handle
}

// GetTyped retrieves a value only if it matches the expected type.
func (a *Arena) GetTyped(handle Handle, typeID uint32) (any, bool) {
	actual, ok := a.backend.TypeID(handle)
	if !ok || actual != typeID {
		return nil, false
	}
	return a.backend.Get(handle)
}

// Remove drops an entry, runs its Dropper and returns (value, true) if found.
func (a *Arena) Remove(handle Handle) (any, bool) {
	typeID, _ := a.backend.TypeID(handle)
	value, ok := a.backend.Drop(handle)
	if !ok {
		return nil, false
	}

	if d, ok := value.(Dropper); ok {
		d.Drop()
	}

	a.notify(Event{
		Type:   EventDropped,
		Handle: handle,
		TypeID: typeID,
		Value:  value,
	})

	return value, true
}

// Subscribe adds an observer for lifecycle events.
func (a *Arena) Subscribe(o Observer) {
	a.obsMu.Lock()
	defer a.obsMu.Unlock()
	a.observers = append(a.observers, o)
}

// Len returns the number of live entries.
func (a *Arena) Len() int {
	return a.backend.Len()
}

// drain removes every entry, collecting handles first so Remove runs
// outside the backend lock.
func (a *Arena) drain() {
	var handles []Handle
	a.backend.Each(func(h Handle, _ uint32, _ any) bool {
		handles = append(handles, h)
		return true
	})
	for _, h := range handles {
		a.Remove(h)
	}
}

// Close drops all entries and stops accepting inserts.
func (a *Arena) Close() error {
	a.closeMu.Lock()
	if a.closed {
		a.closeMu.Unlock()
		return nil
	}
	a.closed = true
	a.closeMu.Unlock()

	a.drain()
	return a.backend.Close()
}

func (a *Arena) notify(e Event) {
	a.obsMu.RLock()
	defer a.obsMu.RUnlock()
	for _, o := range a.observers {
		o.OnResourceEvent(e)
	}
}
