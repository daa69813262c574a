package serialize

import (
	"github.com/wippyai/dukt/engine"
)

var (
	defaultCompiler = NewCompiler()
	defaultEncoder  = NewEncoderWithCompiler(defaultCompiler)
	defaultDecoder  = NewDecoderWithCompiler(defaultCompiler)
)

// DefaultCompiler returns the compiler behind the package-level helpers.
func DefaultCompiler() *Compiler {
	return defaultCompiler
}

// Push encodes v with the shared compiler.
func Push(c *engine.Context, v any) (int, error) {
	return defaultEncoder.Push(c, v)
}

// Peek decodes the slot at idx into dst with the shared compiler.
func Peek(c *engine.Context, idx int, dst any) error {
	return defaultDecoder.Peek(c, idx, dst)
}

// PushRecord pushes the struct v structurally with the shared compiler.
func PushRecord(c *engine.Context, v any) (int, error) {
	return defaultEncoder.PushRecord(c, v)
}

// PeekRecord decodes the object at idx structurally into dst.
func PeekRecord(c *engine.Context, idx int, dst any) error {
	return defaultDecoder.PeekRecord(c, idx, dst)
}
