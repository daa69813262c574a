package serialize

import (
	"math"
	"reflect"

	"github.com/wippyai/dukt/engine"
	"github.com/wippyai/dukt/errors"
)

// Decoder reads engine stack slots into Go values. It keeps no per-call
// state and may be shared.
type Decoder struct {
	compiler *Compiler
}

func NewDecoder() *Decoder {
	return &Decoder{
		compiler: NewCompiler(),
	}
}

func NewDecoderWithCompiler(c *Compiler) *Decoder {
	return &Decoder{compiler: c}
}

// Peek decodes the slot at idx into dst, which must be a non-nil pointer.
// The stack is left unchanged.
func (d *Decoder) Peek(c *engine.Context, idx int, dst any) error {
	rv, err := target(dst)
	if err != nil {
		return err
	}
	ct, err := d.compiler.Compile(rv.Type())
	if err != nil {
		return err
	}
	return d.peekCompiled(c, ct, idx, rv)
}

// PeekValue is Peek for an addressable reflect.Value.
func (d *Decoder) PeekValue(c *engine.Context, idx int, rv reflect.Value) error {
	ct, err := d.compiler.Compile(rv.Type())
	if err != nil {
		return err
	}
	return d.peekCompiled(c, ct, idx, rv)
}

// PeekRecord decodes the object at idx into the struct dst points to,
// field by field, bypassing any codec registered for its type.
func (d *Decoder) PeekRecord(c *engine.Context, idx int, dst any) error {
	rv, err := target(dst)
	if err != nil {
		return err
	}
	ct, err := d.compiler.CompileRecord(rv.Type())
	if err != nil {
		return err
	}
	return d.peekCompiled(c, ct, idx, rv)
}

func target(dst any) (reflect.Value, error) {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return reflect.Value{}, errors.InvalidInput(errors.PhaseDecode, "decode target must be a non-nil pointer")
	}
	return rv.Elem(), nil
}

func (d *Decoder) peekCompiled(c *engine.Context, ct *CompiledType, idx int, rv reflect.Value) error {
	n := c.NormalizeIndex(idx)
	if n == engine.InvalidIndex {
		return errors.New(errors.PhaseDecode, errors.KindInvalidInput).
			GoType(ct.GoType.String()).
			Detail("stack index %d is not populated", idx).
			Build()
	}
	mark := c.Top()
	err := d.decode(c, ct, n, rv, nil)
	if extra := c.Top() - mark; extra > 0 {
		c.PopN(extra)
	}
	return err
}

func mismatch(c *engine.Context, ct *CompiledType, idx int, path []string, want string) error {
	return errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
		Path(path...).
		GoType(ct.GoType.String()).
		JSType(c.Type(idx).String()).
		Detail("expected %s", want).
		Build()
}

// decode reads the slot at the absolute index idx into the settable rv.
func (d *Decoder) decode(c *engine.Context, ct *CompiledType, idx int, rv reflect.Value, path []string) error {
	switch ct.Kind {
	case KindBool:
		if !c.IsBoolean(idx) {
			return mismatch(c, ct, idx, path, "boolean")
		}
		rv.SetBool(c.GetBool(idx))
	case KindS8, KindS16, KindS32, KindU8, KindU16, KindU32:
		return d.decodeInteger(c, ct, idx, rv, path)
	case KindF32, KindF64:
		if !c.IsNumber(idx) {
			return mismatch(c, ct, idx, path, "number")
		}
		rv.SetFloat(c.GetNumber(idx))
	case KindString:
		if !c.IsString(idx) {
			return mismatch(c, ct, idx, path, "string")
		}
		rv.SetString(c.GetString(idx))
	case KindPointer:
		if !c.IsPointer(idx) {
			return mismatch(c, ct, idx, path, "pointer")
		}
		rv.SetUint(uint64(c.GetPointer(idx)))
	case KindUnit:
		// carries no data
	case KindBuffer, KindBytes:
		return d.decodeBytes(c, ct, idx, rv, path)
	case KindOption:
		if c.IsNullOrUndefined(idx) {
			rv.Set(reflect.Zero(ct.GoType))
			return nil
		}
		p := reflect.New(ct.ElemType.GoType)
		if err := d.decode(c, ct.ElemType, idx, p.Elem(), path); err != nil {
			return err
		}
		rv.Set(p)
	case KindList, KindArray:
		return d.decodeSequence(c, ct, idx, rv, path)
	case KindRecord:
		return d.decodeRecord(c, ct, idx, rv, path)
	case KindHook:
		if ct.Hook.Peek == nil {
			return unsupportedDirection(errors.PhaseDecode, path, ct.GoType)
		}
		return ct.Hook.Peek(c, idx, rv)
	default:
		return errors.New(errors.PhaseDecode, errors.KindUnsupported).
			Path(path...).
			GoType(ct.GoType.String()).
			Detail("unsupported kind: %s", ct.Kind).
			Build()
	}
	return nil
}

// decodeInteger truncates toward zero and rejects values outside the
// target range. NaN reads as 0.
func (d *Decoder) decodeInteger(c *engine.Context, ct *CompiledType, idx int, rv reflect.Value, path []string) error {
	if !c.IsNumber(idx) {
		return mismatch(c, ct, idx, path, "number")
	}
	f := c.GetNumber(idx)
	if math.IsNaN(f) {
		f = 0
	}
	t := math.Trunc(f)
	lo, hi := ct.Kind.Bounds()
	if t < lo || t > hi {
		return errors.Overflow(errors.PhaseDecode, path, f, ct.GoType.String())
	}
	switch ct.Kind {
	case KindS8, KindS16, KindS32:
		rv.SetInt(int64(t))
	default:
		rv.SetUint(uint64(t))
	}
	return nil
}

// decodeBytes accepts a raw buffer or an array of byte-sized numbers.
// The result never aliases engine memory.
func (d *Decoder) decodeBytes(c *engine.Context, ct *CompiledType, idx int, rv reflect.Value, path []string) error {
	if b, ok := c.GetBufferOpt(idx); ok {
		out := make([]byte, len(b))
		copy(out, b)
		rv.SetBytes(out)
		return nil
	}
	if !c.IsArray(idx) {
		return mismatch(c, ct, idx, path, "buffer or array")
	}

	elem := &CompiledType{GoType: ct.GoType.Elem(), Kind: KindU8}
	n := int(c.GetLength(idx))
	out := reflect.MakeSlice(ct.GoType, n, n)
	for i := 0; i < n; i++ {
		if err := d.decodeElement(c, elem, idx, i, out.Index(i), path); err != nil {
			return err
		}
	}
	rv.Set(out)
	return nil
}

func (d *Decoder) decodeSequence(c *engine.Context, ct *CompiledType, idx int, rv reflect.Value, path []string) error {
	if !c.IsArray(idx) {
		return mismatch(c, ct, idx, path, "array")
	}
	n := int(c.GetLength(idx))

	if ct.Kind == KindArray {
		if n != ct.Length {
			return errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Path(path...).
				GoType(ct.GoType.String()).
				Detail("array length %d, want %d", n, ct.Length).
				Build()
		}
		for i := 0; i < n; i++ {
			if err := d.decodeElement(c, ct.ElemType, idx, i, rv.Index(i), path); err != nil {
				return err
			}
		}
		return nil
	}

	out := reflect.MakeSlice(ct.GoType, n, n)
	for i := 0; i < n; i++ {
		if err := d.decodeElement(c, ct.ElemType, idx, i, out.Index(i), path); err != nil {
			return err
		}
	}
	rv.Set(out)
	return nil
}

// decodeElement reads arr[i]; holes read as undefined.
func (d *Decoder) decodeElement(c *engine.Context, ct *CompiledType, arr, i int, rv reflect.Value, path []string) error {
	if !c.GetPropIndex(arr, uint32(i)) {
		c.PushUndefined()
	}
	err := d.decode(c, ct, c.TopIndex(), rv, indexPath(path, i))
	c.Pop()
	return err
}

func (d *Decoder) decodeRecord(c *engine.Context, ct *CompiledType, idx int, rv reflect.Value, path []string) error {
	if !c.IsObject(idx) {
		return mismatch(c, ct, idx, path, "object")
	}
	for i := range ct.Fields {
		f := &ct.Fields[i]
		if !c.GetPropBytes(idx, f.Key) {
			return errors.FieldMissing(errors.PhaseDecode, path, f.Name)
		}
		err := d.decode(c, f.Type, c.TopIndex(), rv.Field(f.Index), fieldPath(path, f.Name))
		c.Pop()
		if err != nil {
			return err
		}
	}
	return nil
}
