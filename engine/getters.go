package engine

import (
	"math"
	"unicode/utf16"

	"github.com/dop251/goja"
)

// Type returns the dynamic type of the slot at idx, TypeNone when the
// index is not populated.
func (c *Context) Type(idx int) Type {
	return typeOf(c.get(idx))
}

// IsUndefined reports whether the slot holds undefined.
func (c *Context) IsUndefined(idx int) bool { return c.Type(idx) == TypeUndefined }

// IsNull reports whether the slot holds null.
func (c *Context) IsNull(idx int) bool { return c.Type(idx) == TypeNull }

// IsNullOrUndefined reports whether the slot holds null or undefined.
func (c *Context) IsNullOrUndefined(idx int) bool {
	t := c.Type(idx)
	return t == TypeNull || t == TypeUndefined
}

// IsBoolean reports whether the slot holds a boolean.
func (c *Context) IsBoolean(idx int) bool { return c.Type(idx) == TypeBoolean }

// IsNumber reports whether the slot holds a number.
func (c *Context) IsNumber(idx int) bool { return c.Type(idx) == TypeNumber }

// IsString reports whether the slot holds a string.
func (c *Context) IsString(idx int) bool { return c.Type(idx) == TypeString }

// IsObject reports whether the slot holds an object, arrays and functions
// included.
func (c *Context) IsObject(idx int) bool { return c.Type(idx) == TypeObject }

// IsBuffer reports whether the slot holds a raw buffer.
func (c *Context) IsBuffer(idx int) bool { return c.Type(idx) == TypeBuffer }

// IsPointer reports whether the slot holds a pointer.
func (c *Context) IsPointer(idx int) bool { return c.Type(idx) == TypePointer }

// IsArray reports whether the slot holds an array.
func (c *Context) IsArray(idx int) bool {
	o, ok := c.get(idx).(*goja.Object)
	return ok && o.ClassName() == "Array"
}

// IsCallable reports whether the slot holds a function.
func (c *Context) IsCallable(idx int) bool {
	v := c.get(idx)
	if v == nil {
		return false
	}
	_, ok := goja.AssertFunction(v)
	return ok
}

// requireType returns the slot at idx, throwing unless it has type t.
func (c *Context) requireType(idx int, t Type) goja.Value {
	v := c.require(idx)
	if got := typeOf(v); got != t {
		c.throw("%s required, found %s (stack index %d)", t, got, idx)
	}
	return v
}

// GetBool reads a boolean. Throws on any other type.
func (c *Context) GetBool(idx int) bool {
	return c.requireType(idx, TypeBoolean).ToBoolean()
}

// GetNumber reads a number. Throws on any other type.
func (c *Context) GetNumber(idx int) float64 {
	return c.requireType(idx, TypeNumber).ToFloat()
}

// GetInt reads a number truncated and clamped to the int32 range.
// NaN reads as 0. Throws on any other type.
func (c *Context) GetInt(idx int) int32 {
	f := c.GetNumber(idx)
	switch {
	case math.IsNaN(f):
		return 0
	case f <= math.MinInt32:
		return math.MinInt32
	case f >= math.MaxInt32:
		return math.MaxInt32
	}
	return int32(f)
}

// GetUint reads a number truncated and clamped to the uint32 range.
// NaN reads as 0. Throws on any other type.
func (c *Context) GetUint(idx int) uint32 {
	f := c.GetNumber(idx)
	switch {
	case math.IsNaN(f), f <= 0:
		return 0
	case f >= math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(f)
}

// GetString reads a string. Throws on any other type.
func (c *Context) GetString(idx int) string {
	return c.requireType(idx, TypeString).String()
}

// GetBuffer returns the bytes backing a raw buffer. The slice aliases
// engine memory and stays valid while the buffer is reachable.
// Throws on any other type.
func (c *Context) GetBuffer(idx int) []byte {
	v := c.requireType(idx, TypeBuffer)
	return v.Export().(goja.ArrayBuffer).Bytes()
}

// GetBufferOpt is GetBuffer without the assertion: it reports false
// instead of throwing when the slot is not a buffer.
func (c *Context) GetBufferOpt(idx int) ([]byte, bool) {
	v := c.get(idx)
	if typeOf(v) != TypeBuffer {
		return nil, false
	}
	return v.Export().(goja.ArrayBuffer).Bytes(), true
}

// GetPointer reads a pointer. Throws on any other type.
func (c *Context) GetPointer(idx int) Pointer {
	return c.requireType(idx, TypePointer).Export().(Pointer)
}

// RequireObject throws unless the slot holds an object.
func (c *Context) RequireObject(idx int) {
	c.requireType(idx, TypeObject)
}

// RequireNull throws unless the slot holds null.
func (c *Context) RequireNull(idx int) {
	c.requireType(idx, TypeNull)
}

// GetLength returns the length of the slot: UTF-16 code units for
// strings, byte size for buffers, the length property for objects and 0
// for everything else.
func (c *Context) GetLength(idx int) uint32 {
	v := c.require(idx)
	switch typeOf(v) {
	case TypeString:
		return uint32(len(utf16.Encode([]rune(v.String()))))
	case TypeBuffer:
		return uint32(len(v.Export().(goja.ArrayBuffer).Bytes()))
	case TypeObject:
		l := v.(*goja.Object).Get("length")
		if l == nil {
			return 0
		}
		return uint32(l.ToInteger())
	}
	return 0
}

// Value returns the engine value at idx, nil when not populated. Meant for
// tooling that renders values; marshaling goes through the typed getters.
func (c *Context) Value(idx int) goja.Value {
	return c.get(idx)
}

// ToString returns the script string conversion of the slot without
// replacing it. Objects go through their toString, which may throw.
func (c *Context) ToString(idx int) string {
	v := c.require(idx)
	if typeOf(v) == TypeSymbol {
		return "Symbol(" + v.String() + ")"
	}
	return v.String()
}
