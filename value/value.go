package value

import (
	"context"

	"github.com/wippyai/dukt/engine"
	"github.com/wippyai/dukt/serialize"
)

// Producer pushes itself onto the stack and returns the absolute index of
// the pushed value.
type Producer interface {
	PushTo(c *engine.Context) (int, error)
}

// Consumer decodes the slot at idx into itself. Implemented on pointer
// receivers.
type Consumer interface {
	PeekAt(c *engine.Context, idx int) error
}

// Popper is implemented by consumers whose destructive read differs from
// a peek followed by a pop. PopFrom must remove the top slot.
type Popper interface {
	PopFrom(c *engine.Context) error
}

// Push pushes v and returns its absolute index.
func Push(c *engine.Context, v any) (int, error) {
	if p, ok := v.(Producer); ok {
		return p.PushTo(c)
	}
	return serialize.Push(c, v)
}

// Peek decodes the slot at idx without touching the stack.
func Peek[T any](c *engine.Context, idx int) (T, error) {
	var v T
	if cons, ok := any(&v).(Consumer); ok {
		return v, cons.PeekAt(c, idx)
	}
	err := serialize.Peek(c, idx, &v)
	return v, err
}

// Pop decodes the top slot and removes it. The slot is removed whether or
// not decoding succeeds.
func Pop[T any](c *engine.Context) (T, error) {
	var v T
	if p, ok := any(&v).(Popper); ok {
		return v, p.PopFrom(c)
	}
	v, err := Peek[T](c, -1)
	c.Pop()
	return v, err
}

// Eval runs src and pops its completion value as T.
func Eval[T any](c *engine.Context, src string) (T, error) {
	if err := c.Eval(src); err != nil {
		c.Pop()
		var zero T
		return zero, err
	}
	return Pop[T](c)
}

// EvalContext is Eval bounded by ctx.
func EvalContext[T any](ctx context.Context, c *engine.Context, src string) (T, error) {
	if err := c.EvalContext(ctx, src); err != nil {
		c.Pop()
		var zero T
		return zero, err
	}
	return Pop[T](c)
}

// Call invokes the callable at -(nargs+1) and pops the result as T.
func Call[T any](c *engine.Context, nargs int) (T, error) {
	if err := c.Call(nargs); err != nil {
		c.Pop()
		var zero T
		return zero, err
	}
	return Pop[T](c)
}

// CallProp invokes obj[key] with the key at -(nargs+1) and pops the result
// as T.
func CallProp[T any](c *engine.Context, objIdx, nargs int) (T, error) {
	if err := c.CallProp(objIdx, nargs); err != nil {
		c.Pop()
		var zero T
		return zero, err
	}
	return Pop[T](c)
}
