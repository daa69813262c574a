package engine

import (
	"reflect"

	"github.com/dop251/goja"
)

// Type is the dynamic type of a stack slot.
type Type int

const (
	TypeNone Type = iota // index not populated
	TypeUndefined
	TypeNull
	TypeBoolean
	TypeNumber
	TypeString
	TypeObject
	TypeBuffer
	TypePointer
	TypeSymbol
)

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	case TypeBuffer:
		return "buffer"
	case TypePointer:
		return "pointer"
	case TypeSymbol:
		return "symbol"
	default:
		return "unknown"
	}
}

// RawFunc is the shape of every native function the engine can invoke.
// It reads its arguments from the current frame and returns a code:
// negative for failure, 0 for no result, 1 when the result is on top.
type RawFunc func(c *Context) int

// Function is a registrable native function: a trampoline plus its arity.
type Function interface {
	Args() int
	Ptr() RawFunc
}

const (
	// VarArgs as an arity passes every argument the caller supplied.
	VarArgs = -1

	// ErrorReturn is the return code for a failed native call.
	ErrorReturn = -1
)

// Pointer is an opaque machine word stored in a stack slot.
type Pointer uintptr

// HiddenPrefix marks a property key as hidden.
const HiddenPrefix byte = 0xFF

// HiddenKey returns the hidden property key for name.
func HiddenKey(name string) []byte {
	key := make([]byte, 0, len(name)+1)
	key = append(key, HiddenPrefix)
	return append(key, name...)
}

// IsHiddenKey reports whether key addresses the hidden key space.
func IsHiddenKey(key []byte) bool {
	return len(key) > 0 && key[0] == HiddenPrefix
}

// FuncOf adapts a bare RawFunc with a fixed arity to Function.
func FuncOf(args int, fn RawFunc) Function {
	return rawFunction{args: args, fn: fn}
}

type rawFunction struct {
	fn   RawFunc
	args int
}

func (f rawFunction) Args() int    { return f.args }
func (f rawFunction) Ptr() RawFunc { return f.fn }

var (
	arrayBufferType = reflect.TypeOf(goja.ArrayBuffer{})
	pointerType     = reflect.TypeOf(Pointer(0))
)

func typeOf(v goja.Value) Type {
	if v == nil {
		return TypeNone
	}
	if goja.IsUndefined(v) {
		return TypeUndefined
	}
	if goja.IsNull(v) {
		return TypeNull
	}
	switch o := v.(type) {
	case *goja.Object:
		switch o.ExportType() {
		case arrayBufferType:
			return TypeBuffer
		case pointerType:
			return TypePointer
		}
		return TypeObject
	case *goja.Symbol:
		return TypeSymbol
	}
	t := v.ExportType()
	if t == nil {
		return TypeUndefined
	}
	switch t.Kind() {
	case reflect.Bool:
		return TypeBoolean
	case reflect.String:
		return TypeString
	case reflect.Int64, reflect.Float64:
		return TypeNumber
	}
	return TypeObject
}
