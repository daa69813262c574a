// Package resource provides the handle arena behind shared native objects.
//
// When a reference-counted Go value is pushed onto the engine stack, the
// engine does not hold a Go pointer. It holds a Handle into an Arena, and
// the arena entry owns one strong reference on the value's behalf:
//
//	arena := resource.NewArena()
//	id := resource.Types.Register(resource.TypeTag(reflect.TypeOf(v)))
//	h := arena.Insert(id, ref)
//
//	// Type-checked retrieval
//	ref, ok := arena.GetTyped(h, id)
//
//	// Removing the entry runs ref.Drop() when ref implements Dropper
//	arena.Remove(h)
//
// Handles are never reused by the same arena, so a handle whose entry was
// removed keeps failing lookups.
//
// # Observers
//
// Register observers to track lifecycle events:
//
//	arena.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//		log.Printf("handle %d %s", e.Handle, e.Type)
//	}))
//
// Closing the arena removes every live entry, which releases every
// reference the engine still held.
package resource
