package value

import (
	"github.com/wippyai/dukt/engine"
	"github.com/wippyai/dukt/errors"
	"github.com/wippyai/dukt/serialize"
)

// Buffer travels as a raw engine buffer rather than an array of numbers.
type Buffer []byte

func (b Buffer) PushTo(c *engine.Context) (int, error) {
	return c.PushFixedBuffer(b), nil
}

// PeekAt copies the buffer at idx; the result does not alias engine memory.
func (b *Buffer) PeekAt(c *engine.Context, idx int) error {
	data, ok := c.GetBufferOpt(idx)
	if !ok {
		return errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
			GoType("value.Buffer").
			JSType(c.Type(idx).String()).
			Detail("expected buffer").
			Build()
	}
	*b = append(Buffer(nil), data...)
	if *b == nil {
		*b = Buffer{}
	}
	return nil
}

// View is a borrowed slice pushed as an engine array. It can only be
// produced; reading one back fails with KindUnsupported.
type View[T any] []T

func (v View[T]) PushTo(c *engine.Context) (int, error) {
	return serialize.Push(c, []T(v))
}
