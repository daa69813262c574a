package serialize

import (
	"reflect"
	"unicode/utf8"

	"github.com/wippyai/dukt/engine"
	"github.com/wippyai/dukt/errors"
)

// Encoder pushes Go values onto an engine stack. It keeps no per-call
// state and may be shared.
type Encoder struct {
	compiler *Compiler
}

func NewEncoder() *Encoder {
	return &Encoder{
		compiler: NewCompiler(),
	}
}

func NewEncoderWithCompiler(c *Compiler) *Encoder {
	return &Encoder{compiler: c}
}

// Push pushes v and returns its absolute index. A nil v pushes undefined.
// On failure the stack is left as it was.
func (e *Encoder) Push(c *engine.Context, v any) (int, error) {
	if v == nil {
		return c.PushUndefined(), nil
	}
	return e.PushValue(c, reflect.ValueOf(v))
}

// PushValue is Push for a reflect.Value.
func (e *Encoder) PushValue(c *engine.Context, rv reflect.Value) (int, error) {
	ct, err := e.compiler.Compile(rv.Type())
	if err != nil {
		return engine.InvalidIndex, err
	}
	return e.pushCompiled(c, ct, rv)
}

// PushRecord pushes the struct v field by field, bypassing any codec
// registered for its type.
func (e *Encoder) PushRecord(c *engine.Context, v any) (int, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return engine.InvalidIndex, errors.TypeMismatch(errors.PhaseEncode, nil, typeName(rv), "struct")
	}
	ct, err := e.compiler.CompileRecord(rv.Type())
	if err != nil {
		return engine.InvalidIndex, err
	}
	return e.pushCompiled(c, ct, rv)
}

func (e *Encoder) pushCompiled(c *engine.Context, ct *CompiledType, rv reflect.Value) (int, error) {
	mark := c.Top()
	if err := e.encode(c, ct, rv, nil); err != nil {
		if n := c.Top() - mark; n > 0 {
			c.PopN(n)
		}
		return engine.InvalidIndex, err
	}
	return c.TopIndex(), nil
}

// encode pushes exactly one value for rv.
func (e *Encoder) encode(c *engine.Context, ct *CompiledType, rv reflect.Value, path []string) error {
	switch ct.Kind {
	case KindBool:
		c.PushBool(rv.Bool())
	case KindS8, KindS16, KindS32:
		c.PushInt(int32(rv.Int()))
	case KindU8, KindU16, KindU32:
		c.PushUint(uint32(rv.Uint()))
	case KindF32, KindF64:
		c.PushNumber(rv.Float())
	case KindString:
		s := rv.String()
		if !utf8.ValidString(s) {
			return errors.InvalidUTF8(errors.PhaseEncode, path, []byte(s))
		}
		c.PushString(s)
	case KindPointer:
		c.PushPointer(engine.Pointer(rv.Uint()))
	case KindUnit:
		c.PushUndefined()
	case KindBuffer:
		c.PushFixedBuffer(rv.Bytes())
	case KindBytes:
		arr := c.PushArray()
		for i, b := range rv.Bytes() {
			c.PushUint(uint32(b))
			c.PutPropIndex(arr, uint32(i))
		}
	case KindOption:
		if rv.IsNil() {
			c.PushUndefined()
			return nil
		}
		return e.encode(c, ct.ElemType, rv.Elem(), path)
	case KindList, KindArray:
		return e.encodeSequence(c, ct, rv, path)
	case KindRecord:
		return e.encodeRecord(c, ct, rv, path)
	case KindHook:
		return e.encodeHook(c, ct, rv, path)
	default:
		return errors.New(errors.PhaseEncode, errors.KindUnsupported).
			Path(path...).
			GoType(ct.GoType.String()).
			Detail("unsupported kind: %s", ct.Kind).
			Build()
	}
	return nil
}

func (e *Encoder) encodeSequence(c *engine.Context, ct *CompiledType, rv reflect.Value, path []string) error {
	arr := c.PushArray()
	n := rv.Len()
	for i := 0; i < n; i++ {
		if err := e.encode(c, ct.ElemType, rv.Index(i), indexPath(path, i)); err != nil {
			return err
		}
		c.PutPropIndex(arr, uint32(i))
	}
	return nil
}

func (e *Encoder) encodeRecord(c *engine.Context, ct *CompiledType, rv reflect.Value, path []string) error {
	obj := c.PushObject()
	for i := range ct.Fields {
		f := &ct.Fields[i]
		if err := e.encode(c, f.Type, rv.Field(f.Index), fieldPath(path, f.Name)); err != nil {
			return err
		}
		c.PutPropBytes(obj, f.Key)
	}
	return nil
}

func (e *Encoder) encodeHook(c *engine.Context, ct *CompiledType, rv reflect.Value, path []string) error {
	if ct.Hook.Push == nil {
		return unsupportedDirection(errors.PhaseEncode, path, ct.GoType)
	}
	before := c.Top()
	if _, err := ct.Hook.Push(c, rv); err != nil {
		return err
	}
	if c.Top() != before+1 {
		return errors.New(errors.PhaseEncode, errors.KindInvalidData).
			Path(path...).
			GoType(ct.GoType.String()).
			Detail("custom push left %d values instead of 1", c.Top()-before).
			Build()
	}
	return nil
}

func typeName(rv reflect.Value) string {
	if !rv.IsValid() {
		return "<nil>"
	}
	return rv.Type().String()
}
