package bind

import (
	"reflect"

	"github.com/wippyai/dukt/engine"
	"github.com/wippyai/dukt/errors"
	"github.com/wippyai/dukt/internal/naming"
	"github.com/wippyai/dukt/serialize"
)

// Record is the derived engine representation of the struct type T.
// Pushed values are plain objects, fields under their plain or hidden
// keys, plus the allow-listed methods bound as functions on the object.
type Record[T any] struct {
	goType  reflect.Type
	methods []boundMethod
	push    bool
	peek    bool
	generic bool
}

type boundMethod struct {
	fn   *Function
	name string
}

type recordOptions struct {
	methods []string
	push    bool
	peek    bool
	generic bool
}

// RecordOption configures DeriveRecord.
type RecordOption func(*recordOptions)

// Methods exposes the named methods on pushed objects. Names are the
// external camelCase form; "getData" resolves to the Go method GetData.
func Methods(names ...string) RecordOption {
	return func(o *recordOptions) {
		o.methods = append(o.methods, names...)
	}
}

// Push derives only the producing side, unless Peek is also given.
func Push() RecordOption {
	return func(o *recordOptions) { o.push = true }
}

// Peek derives only the consuming side, unless Push is also given.
func Peek() RecordOption {
	return func(o *recordOptions) { o.peek = true }
}

// Serialize pushes values through the structural bridge without binding
// methods, as Generic does.
func Serialize() RecordOption {
	return func(o *recordOptions) { o.generic = true }
}

// DeriveRecord derives the representation of T and installs it as the
// serializer codec for T, so T nests inside other values, arguments and
// results.
func DeriveRecord[T any](opts ...RecordOption) (*Record[T], error) {
	goType := reflect.TypeOf((*T)(nil)).Elem()
	if goType.Kind() != reflect.Struct {
		return nil, errors.TypeMismatch(errors.PhaseCompile, nil, goType.String(), "struct")
	}

	var o recordOptions
	for _, opt := range opts {
		opt(&o)
	}
	if !o.push && !o.peek {
		o.push, o.peek = true, true
	}

	if len(o.methods) > 0 && !o.peek {
		return nil, errors.InvalidInput(errors.PhaseHost, goType.String()+": methods read their receiver and need the peek side")
	}

	if _, err := serialize.DefaultCompiler().CompileRecord(goType); err != nil {
		return nil, err
	}

	r := &Record[T]{
		goType:  goType,
		push:    o.push,
		peek:    o.peek,
		generic: o.generic,
	}
	for _, name := range o.methods {
		fn, err := resolveMethod(goType, name)
		if err != nil {
			return nil, err
		}
		r.methods = append(r.methods, boundMethod{fn: fn, name: name})
	}

	codec := serialize.Codec{}
	if r.push {
		codec.Push = func(c *engine.Context, v any) (int, error) {
			return r.Push(c, v.(T))
		}
	}
	if r.peek {
		codec.Peek = func(c *engine.Context, idx int, dst any) error {
			return serialize.PeekRecord(c, idx, dst)
		}
	}
	serialize.Register(goType, codec)
	return r, nil
}

// MustDeriveRecord is DeriveRecord that panics on error.
func MustDeriveRecord[T any](opts ...RecordOption) *Record[T] {
	r, err := DeriveRecord[T](opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// resolveMethod finds the Go method for an external name on T or *T.
func resolveMethod(goType reflect.Type, name string) (*Function, error) {
	goName := naming.Pascal(name)
	m, ok := goType.MethodByName(goName)
	if !ok {
		m, ok = reflect.PointerTo(goType).MethodByName(goName)
	}
	if !ok {
		return nil, errors.NotFound(errors.PhaseHost, "method", goType.String()+"."+goName)
	}
	return Method(name, m.Func.Interface())
}

// Push pushes v as an object with the record's methods bound on it.
func (r *Record[T]) Push(c *engine.Context, v T) (int, error) {
	if !r.push {
		return engine.InvalidIndex, errors.New(errors.PhaseEncode, errors.KindUnsupported).
			GoType(r.goType.String()).
			Detail("record is derived without push").
			Build()
	}
	if r.generic {
		return r.Generic(c, v)
	}
	idx, err := serialize.PushRecord(c, v)
	if err != nil {
		return idx, err
	}
	for _, m := range r.methods {
		m.fn.RegisterOn(c, idx, m.name)
	}
	return idx, nil
}

// Generic pushes v structurally, without methods.
func (r *Record[T]) Generic(c *engine.Context, v T) (int, error) {
	return serialize.PushRecord(c, v)
}

// Peek decodes the object at idx, failing on the first missing field.
func (r *Record[T]) Peek(c *engine.Context, idx int) (T, error) {
	var v T
	if !r.peek {
		return v, errors.New(errors.PhaseDecode, errors.KindUnsupported).
			GoType(r.goType.String()).
			Detail("record is derived without peek").
			Build()
	}
	err := serialize.PeekRecord(c, idx, &v)
	return v, err
}

// Unregister removes the codec installed for T.
func (r *Record[T]) Unregister() {
	serialize.Unregister(r.goType)
}
