package engine

import (
	"github.com/dop251/goja"
)

// InvalidIndex is returned by index queries that have no answer.
const InvalidIndex = -1

func (c *Context) push(v goja.Value) int {
	c.live()
	c.stack = append(c.stack, v)
	return len(c.stack) - 1 - c.base
}

// NormalizeIndex resolves idx against the current frame. Non-negative
// indices count from the frame bottom, negative ones from the top.
// Returns InvalidIndex when the slot is not populated.
func (c *Context) NormalizeIndex(idx int) int {
	top := len(c.stack) - c.base
	if idx < 0 {
		idx += top
	}
	if idx < 0 || idx >= top {
		return InvalidIndex
	}
	return idx
}

// IsValidIndex reports whether idx addresses a populated slot.
func (c *Context) IsValidIndex(idx int) bool {
	return c.NormalizeIndex(idx) != InvalidIndex
}

// RequireIndex resolves idx, throwing when the slot is not populated.
func (c *Context) RequireIndex(idx int) int {
	n := c.NormalizeIndex(idx)
	if n == InvalidIndex {
		c.throw("invalid stack index %d", idx)
	}
	return n
}

// get returns the slot at idx or nil when it is not populated.
func (c *Context) get(idx int) goja.Value {
	c.live()
	n := c.NormalizeIndex(idx)
	if n == InvalidIndex {
		return nil
	}
	return c.stack[c.base+n]
}

// require returns the slot at idx, throwing when it is not populated.
func (c *Context) require(idx int) goja.Value {
	c.live()
	return c.stack[c.base+c.RequireIndex(idx)]
}

// Top returns the number of slots in the current frame.
func (c *Context) Top() int {
	return len(c.stack) - c.base
}

// TopIndex returns the index of the topmost slot, or InvalidIndex when the
// frame is empty.
func (c *Context) TopIndex() int {
	if c.Top() == 0 {
		return InvalidIndex
	}
	return c.Top() - 1
}

// StackLen returns the number of slots across every open frame.
func (c *Context) StackLen() int {
	return len(c.stack)
}

// Pop discards the top slot.
func (c *Context) Pop() {
	c.PopN(1)
}

// PopN discards the top n slots.
func (c *Context) PopN(n int) {
	c.live()
	if n < 0 || n > c.Top() {
		c.throw("cannot pop %d slots, frame holds %d", n, c.Top())
	}
	c.truncate(len(c.stack) - n)
}

// truncate shrinks the physical stack to n slots, dropping references.
func (c *Context) truncate(n int) {
	clear(c.stack[n:])
	c.stack = c.stack[:n]
}

// Dup pushes a copy of the slot at idx.
func (c *Context) Dup(idx int) int {
	return c.push(c.require(idx))
}

// Swap exchanges two slots.
func (c *Context) Swap(a, b int) {
	c.live()
	i, j := c.base+c.RequireIndex(a), c.base+c.RequireIndex(b)
	c.stack[i], c.stack[j] = c.stack[j], c.stack[i]
}

// Insert moves the top slot to idx, shifting the slots above it up.
func (c *Context) Insert(idx int) {
	c.live()
	n := c.base + c.RequireIndex(idx)
	top := len(c.stack) - 1
	v := c.stack[top]
	copy(c.stack[n+1:], c.stack[n:top])
	c.stack[n] = v
}

// Remove deletes the slot at idx, shifting the slots above it down.
func (c *Context) Remove(idx int) {
	c.live()
	n := c.base + c.RequireIndex(idx)
	copy(c.stack[n:], c.stack[n+1:])
	c.truncate(len(c.stack) - 1)
}

// PushUndefined pushes undefined.
func (c *Context) PushUndefined() int {
	return c.push(goja.Undefined())
}

// PushNull pushes null.
func (c *Context) PushNull() int {
	return c.push(goja.Null())
}

// PushBool pushes a boolean.
func (c *Context) PushBool(v bool) int {
	return c.push(c.vm.ToValue(v))
}

// PushInt pushes a signed 32-bit integer as a number.
func (c *Context) PushInt(v int32) int {
	return c.push(c.vm.ToValue(v))
}

// PushUint pushes an unsigned 32-bit integer as a number.
func (c *Context) PushUint(v uint32) int {
	return c.push(c.vm.ToValue(v))
}

// PushNumber pushes a float64.
func (c *Context) PushNumber(v float64) int {
	return c.push(c.vm.ToValue(v))
}

// PushString pushes a string.
func (c *Context) PushString(s string) int {
	return c.push(c.vm.ToValue(s))
}

// PushPointer pushes an opaque pointer value.
func (c *Context) PushPointer(p Pointer) int {
	return c.push(c.vm.ToValue(p))
}

// PushFixedBuffer pushes a raw buffer holding a copy of data.
func (c *Context) PushFixedBuffer(data []byte) int {
	buf := make([]byte, len(data))
	copy(buf, data)
	return c.push(c.vm.ToValue(c.vm.NewArrayBuffer(buf)))
}

// PushObject pushes an empty object and returns its index.
func (c *Context) PushObject() int {
	return c.push(c.vm.NewObject())
}

// PushArray pushes an empty array and returns its index.
func (c *Context) PushArray() int {
	return c.push(c.vm.NewArray())
}

// PushThis pushes the this binding of the current native call.
func (c *Context) PushThis() int {
	return c.push(c.this)
}

// PushGlobalObject pushes the global object.
func (c *Context) PushGlobalObject() int {
	return c.push(c.vm.GlobalObject())
}
