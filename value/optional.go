package value

import (
	"github.com/wippyai/dukt/engine"
	"github.com/wippyai/dukt/serialize"
)

// Optional is a value that may be absent. Absent values push as undefined;
// null and undefined both read back as absent.
type Optional[T any] struct {
	value T
	ok    bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

func (o Optional[T]) IsSome() bool {
	return o.ok
}

// OrElse returns the value, or def when absent.
func (o Optional[T]) OrElse(def T) T {
	if o.ok {
		return o.value
	}
	return def
}

func (o Optional[T]) PushTo(c *engine.Context) (int, error) {
	if !o.ok {
		return c.PushUndefined(), nil
	}
	return Push(c, o.value)
}

func (o *Optional[T]) PeekAt(c *engine.Context, idx int) error {
	if c.IsNullOrUndefined(idx) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := serialize.Peek(c, idx, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
