package types

import (
	"reflect"

	"github.com/wippyai/dukt/engine"
)

// CompiledType is the reusable marshaling plan for one Go type.
type CompiledType struct {
	GoType   reflect.Type
	ElemType *CompiledType
	Hook     *Hook
	Fields   []Field
	Length   int // fixed arrays only
	Kind     Kind
}

// Field is one record member and the property key it travels under.
type Field struct {
	Type   *CompiledType
	Name   string
	Key    []byte
	Index  int
	Hidden bool
}

// Hook routes a type through custom push/peek code instead of the
// structural plan.
type Hook struct {
	// Push pushes v and returns its absolute index. Nil when the type
	// cannot be produced.
	Push func(c *engine.Context, v reflect.Value) (int, error)

	// Peek decodes the value at idx into the addressable v. Nil when the
	// type cannot be consumed.
	Peek func(c *engine.Context, idx int, v reflect.Value) error
}

func (ct *CompiledType) IsPrimitive() bool {
	return ct.Kind.IsPrimitive()
}

// CanPush reports whether values of this type can be produced.
func (ct *CompiledType) CanPush() bool {
	switch ct.Kind {
	case KindHook:
		return ct.Hook.Push != nil
	case KindRecord:
		for _, f := range ct.Fields {
			if !f.Type.CanPush() {
				return false
			}
		}
		return true
	case KindList, KindArray, KindOption:
		return ct.ElemType.CanPush()
	default:
		return true
	}
}

// CanPeek reports whether values of this type can be consumed.
func (ct *CompiledType) CanPeek() bool {
	switch ct.Kind {
	case KindHook:
		return ct.Hook.Peek != nil
	case KindRecord:
		for _, f := range ct.Fields {
			if !f.Type.CanPeek() {
				return false
			}
		}
		return true
	case KindList, KindArray, KindOption:
		return ct.ElemType.CanPeek()
	default:
		return true
	}
}
