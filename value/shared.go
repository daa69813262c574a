package value

import (
	"reflect"
	"sync/atomic"

	"github.com/wippyai/dukt/engine"
	"github.com/wippyai/dukt/errors"
	"github.com/wippyai/dukt/resource"
)

var (
	ptrKey  = engine.HiddenKey("ptr")
	typeKey = engine.HiddenKey("type")
)

// Shared is a reference-counted native value that scripts can hold.
//
// Pushing a Shared hands the caller's reference to the context: the
// pushed object is backed by an entry in the context's handle arena that
// owns that reference until the context closes or the object is popped
// back out. Clone before pushing to keep using the value.
//
// When the last reference is released the value's Drop method runs, if it
// implements resource.Dropper.
type Shared[T any] struct {
	cell *sharedCell[T]
}

type sharedCell[T any] struct {
	value T
	refs  atomic.Int64
}

// sharedRef is the reference held by an arena entry.
type sharedRef[T any] struct {
	cell *sharedCell[T]
}

func (r *sharedRef[T]) Drop() {
	r.cell.release()
}

// NewShared wraps v with a strong count of 1.
func NewShared[T any](v T) Shared[T] {
	c := &sharedCell[T]{value: v}
	c.refs.Store(1)
	return Shared[T]{cell: c}
}

// Valid reports whether s refers to a value.
func (s Shared[T]) Valid() bool {
	return s.cell != nil
}

// Get returns a pointer to the shared value.
func (s Shared[T]) Get() *T {
	if s.cell == nil {
		return nil
	}
	return &s.cell.value
}

// Clone adds a reference.
func (s Shared[T]) Clone() Shared[T] {
	if s.cell != nil {
		s.cell.refs.Add(1)
	}
	return s
}

// Release drops one reference.
func (s Shared[T]) Release() {
	if s.cell != nil {
		s.cell.release()
	}
}

// StrongCount returns the number of live references.
func (s Shared[T]) StrongCount() int {
	if s.cell == nil {
		return 0
	}
	return int(s.cell.refs.Load())
}

func (c *sharedCell[T]) release() {
	for {
		n := c.refs.Load()
		if n <= 0 {
			return
		}
		if c.refs.CompareAndSwap(n, n-1) {
			if n == 1 {
				c.drop()
			}
			return
		}
	}
}

func (c *sharedCell[T]) drop() {
	if d, ok := any(c.value).(resource.Dropper); ok {
		d.Drop()
		return
	}
	if d, ok := any(&c.value).(resource.Dropper); ok {
		d.Drop()
	}
}

func sharedTag[T any]() string {
	return resource.TypeTag(reflect.TypeOf((*T)(nil)).Elem())
}

// PushTo pushes an object carrying the arena handle and the type tag under
// hidden keys. The caller's reference moves into the arena.
func (s Shared[T]) PushTo(c *engine.Context) (int, error) {
	if s.cell == nil {
		return engine.InvalidIndex, errors.NilPointer(errors.PhaseEncode, nil, reflect.TypeOf(s).String())
	}
	tag := sharedTag[T]()
	h := c.Resources().Insert(resource.Types.Register(tag), &sharedRef[T]{cell: s.cell})
	if h == 0 {
		return engine.InvalidIndex, errors.Closed(errors.PhaseEncode, "handle arena")
	}

	obj := c.PushObject()
	c.PushPointer(engine.Pointer(h))
	c.PutPropBytes(obj, ptrKey)
	c.PushString(tag)
	c.PutPropBytes(obj, typeKey)
	return obj, nil
}

// PeekAt reads the handle object at idx and takes a new reference.
func (s *Shared[T]) PeekAt(c *engine.Context, idx int) error {
	cell, _, err := lookupShared[T](c, idx)
	if err != nil {
		return err
	}
	cell.refs.Add(1)
	s.cell = cell
	return nil
}

// PopFrom reads the handle object on top of the stack, pops it and takes
// over the arena's reference. The object no longer resolves afterwards.
func (s *Shared[T]) PopFrom(c *engine.Context) error {
	if c.Top() == 0 {
		return errors.InvalidInput(errors.PhaseDecode, "pop from an empty frame")
	}
	cell, h, err := lookupShared[T](c, -1)
	c.Pop()
	if err != nil {
		return err
	}
	cell.refs.Add(1)
	c.Resources().Remove(h)
	s.cell = cell
	return nil
}

func lookupShared[T any](c *engine.Context, idx int) (*sharedCell[T], resource.Handle, error) {
	want := sharedTag[T]()
	goType := "value.Shared[" + want + "]"
	idx = c.NormalizeIndex(idx)
	if idx == engine.InvalidIndex || !c.IsObject(idx) {
		jsType := engine.TypeNone.String()
		if idx != engine.InvalidIndex {
			jsType = c.Type(idx).String()
		}
		return nil, 0, errors.TypeMismatch(errors.PhaseDecode, nil, goType, jsType)
	}

	tag, ok := hiddenString(c, idx, typeKey)
	if !ok {
		return nil, 0, errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
			GoType(goType).
			JSType("object").
			Detail("object is not a native handle").
			Build()
	}
	if tag != want {
		return nil, 0, errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
			GoType(goType).
			JSType(tag).
			Detail("handle holds %s", tag).
			Build()
	}

	if !c.GetPropBytes(idx, ptrKey) {
		return nil, 0, errors.InvalidData(errors.PhaseDecode, nil, "native handle has no pointer")
	}
	if !c.IsPointer(-1) {
		c.Pop()
		return nil, 0, errors.InvalidData(errors.PhaseDecode, nil, "native handle pointer is corrupt")
	}
	h := resource.Handle(c.GetPointer(-1))
	c.Pop()

	id, _ := resource.Types.Lookup(tag)
	entry, ok := c.Resources().GetTyped(h, id)
	if !ok {
		return nil, 0, errors.StaleHandle(errors.PhaseDecode, uint32(h))
	}
	return entry.(*sharedRef[T]).cell, h, nil
}

func hiddenString(c *engine.Context, idx int, key []byte) (string, bool) {
	if !c.GetPropBytes(idx, key) {
		return "", false
	}
	defer c.Pop()
	if !c.IsString(-1) {
		return "", false
	}
	return c.GetString(-1), true
}
