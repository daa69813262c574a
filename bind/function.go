package bind

import (
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/dukt/engine"
	"github.com/wippyai/dukt/errors"
	"github.com/wippyai/dukt/serialize"
)

var (
	contextType = reflect.TypeOf((*engine.Context)(nil))
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// Function is a Go function compiled into an engine trampoline. It
// implements engine.Function.
type Function struct {
	argsPool   sync.Pool
	handler    reflect.Value
	encoder    *serialize.Encoder
	decoder    *serialize.Decoder
	recvType   reflect.Type
	restType   reflect.Type
	resultType reflect.Type
	name       string
	argTypes   []reflect.Type
	numIn      int
	nargs      int
	arity      int
	hasCtx     bool
	hasErr     bool
}

// Option configures Func and Method.
type Option func(*Function)

// Variadic registers the function with engine.VarArgs so every argument
// the caller passes reaches the frame. The declared parameters are read
// from the top of the frame and at least that many must be present.
func Variadic() Option {
	return func(f *Function) {
		f.arity = engine.VarArgs
	}
}

// Func compiles fn, whose signature is
//
//	func([*engine.Context,] A1, ..., An) [R] [error]
//
// A Go variadic final parameter collects every argument past the fixed
// ones and implies Variadic.
func Func(name string, fn any, opts ...Option) (*Function, error) {
	return compile(name, fn, false, opts)
}

// MustFunc is Func that panics on error.
func MustFunc(name string, fn any, opts ...Option) *Function {
	f, err := Func(name, fn, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// Method compiles fn as a method. Its first parameter is the receiver,
// decoded from the this binding on every call:
//
//	func(Recv, [*engine.Context,] A1, ..., An) [R] [error]
//
// The arity excludes the receiver.
func Method(name string, fn any, opts ...Option) (*Function, error) {
	return compile(name, fn, true, opts)
}

func compile(name string, fn any, method bool, opts []Option) (*Function, error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		goType := "<nil>"
		if fn != nil {
			goType = reflect.TypeOf(fn).String()
		}
		return nil, errors.New(errors.PhaseHost, errors.KindTypeMismatch).
			GoType(goType).
			Detail("%s: handler must be a function", name).
			Build()
	}
	ft := rv.Type()

	f := &Function{
		name:    name,
		handler: rv,
		encoder: serialize.NewEncoderWithCompiler(serialize.DefaultCompiler()),
		decoder: serialize.NewDecoderWithCompiler(serialize.DefaultCompiler()),
		numIn:   ft.NumIn(),
	}

	in := 0
	if method {
		if ft.NumIn() == 0 {
			return nil, errors.InvalidInput(errors.PhaseHost, name+": method needs a receiver parameter")
		}
		f.recvType = ft.In(0)
		in++
	}
	if in < ft.NumIn() && ft.In(in) == contextType {
		f.hasCtx = true
		in++
	}

	fixed := ft.NumIn()
	if ft.IsVariadic() {
		fixed--
		f.restType = ft.In(fixed).Elem()
	}
	for ; in < fixed; in++ {
		f.argTypes = append(f.argTypes, ft.In(in))
	}
	f.nargs = len(f.argTypes)
	f.arity = f.nargs
	if f.restType != nil {
		f.arity = engine.VarArgs
	}

	if err := f.compileResults(ft); err != nil {
		return nil, err
	}
	if err := f.compileTypes(); err != nil {
		return nil, errors.Registration(errors.PhaseHost, "", name, err)
	}

	for _, opt := range opts {
		opt(f)
	}

	numIn := f.numIn
	f.argsPool = sync.Pool{
		New: func() any {
			s := make([]reflect.Value, numIn)
			return &s
		},
	}
	return f, nil
}

func (f *Function) compileResults(ft reflect.Type) error {
	out := ft.NumOut()
	if out > 0 && ft.Out(out-1) == errorType {
		f.hasErr = true
		out--
	}
	switch out {
	case 0:
	case 1:
		f.resultType = ft.Out(0)
	default:
		return errors.New(errors.PhaseHost, errors.KindUnsupported).
			GoType(ft.String()).
			Detail("%s: at most one result besides error", f.name).
			Build()
	}
	return nil
}

// compileTypes checks every parameter and the result once, up front.
func (f *Function) compileTypes() error {
	compiler := serialize.DefaultCompiler()
	peekable := func(t reflect.Type) error {
		ct, err := compiler.Compile(t)
		if err != nil {
			return err
		}
		if !ct.CanPeek() {
			return errors.New(errors.PhaseCompile, errors.KindUnsupported).
				GoType(t.String()).
				Detail("parameter type cannot be read from the engine").
				Build()
		}
		return nil
	}

	if f.recvType != nil {
		if err := peekable(f.recvType); err != nil {
			return err
		}
	}
	for _, t := range f.argTypes {
		if err := peekable(t); err != nil {
			return err
		}
	}
	if f.restType != nil {
		if err := peekable(f.restType); err != nil {
			return err
		}
	}
	if f.resultType != nil {
		ct, err := compiler.Compile(f.resultType)
		if err != nil {
			return err
		}
		if !ct.CanPush() {
			return errors.New(errors.PhaseCompile, errors.KindUnsupported).
				GoType(f.resultType.String()).
				Detail("result type cannot be pushed to the engine").
				Build()
		}
	}
	return nil
}

func (f *Function) Name() string { return f.name }

// Args returns the arity the engine normalizes calls to.
func (f *Function) Args() int { return f.arity }

// NumArgs returns the number of declared parameters the frame must hold.
func (f *Function) NumArgs() int { return f.nargs }

func (f *Function) IsMethod() bool { return f.recvType != nil }

func (f *Function) Ptr() engine.RawFunc { return f.call }

// RegisterOn binds the function as obj[name].
func (f *Function) RegisterOn(c *engine.Context, objIdx int, name string) {
	obj := c.RequireIndex(objIdx)
	c.PushFunction(f)
	c.PutPropString(obj, name)
}

// call is the trampoline. It decodes the arguments from the frame, pops
// them, decodes the receiver for methods and invokes the handler. Decode
// failures and returned errors are thrown into the engine.
func (f *Function) call(c *engine.Context) int {
	top := c.Top()
	if top < f.nargs {
		c.Logger().Debug("native call with too few arguments",
			zap.String("func", f.name),
			zap.Int("want", f.nargs),
			zap.Int("have", top))
		return engine.ErrorReturn
	}

	argsPtr := f.argsPool.Get().(*[]reflect.Value)
	args := *argsPtr
	defer func() {
		var zero reflect.Value
		for i := range args {
			args[i] = zero
		}
		f.argsPool.Put(argsPtr)
	}()

	in := 0
	if f.recvType != nil {
		in++
	}
	if f.hasCtx {
		args[in] = reflect.ValueOf(c)
		in++
	}

	// Fixed parameters sit at the bottom of the frame when the function
	// collects the rest, otherwise at the top.
	first := top - f.nargs
	if f.restType != nil {
		first = 0
	}
	for i, t := range f.argTypes {
		arg, err := f.decodeArg(c, first+i, t)
		if err != nil {
			release(args[:in])
			f.throw(c, err)
		}
		args[in] = arg
		in++
	}

	var rest []reflect.Value
	if f.restType != nil {
		for i := f.nargs; i < top; i++ {
			arg, err := f.decodeArg(c, i, f.restType)
			if err != nil {
				release(args[:in])
				release(rest)
				f.throw(c, err)
			}
			rest = append(rest, arg)
		}
	}
	c.PopN(c.Top() - first)

	if f.recvType != nil {
		c.PushThis()
		recv, err := f.decodeArg(c, -1, f.recvType)
		c.Pop()
		if err != nil {
			release(args[:in])
			release(rest)
			f.throw(c, err)
		}
		args[0] = recv
	}

	var results []reflect.Value
	if f.restType != nil {
		results = f.handler.Call(append(args[:in:in], rest...))
	} else {
		results = f.handler.Call(args)
	}

	if f.hasErr {
		if err, _ := results[len(results)-1].Interface().(error); err != nil {
			f.throw(c, err)
		}
	}
	if f.resultType == nil {
		return 0
	}
	if _, err := f.encoder.PushValue(c, results[0]); err != nil {
		f.throw(c, err)
	}
	return 1
}

func (f *Function) decodeArg(c *engine.Context, idx int, t reflect.Type) (reflect.Value, error) {
	rv := reflect.New(t).Elem()
	if err := f.decoder.PeekValue(c, idx, rv); err != nil {
		return reflect.Value{}, err
	}
	return rv, nil
}

// releaser is implemented by decoded values that hold a reference, such
// as shared handles.
type releaser interface {
	Release()
}

// release gives back the references held by arguments decoded before a
// failed call.
func release(vals []reflect.Value) {
	for _, v := range vals {
		if !v.IsValid() || !v.CanInterface() {
			continue
		}
		if r, ok := v.Interface().(releaser); ok {
			r.Release()
		}
	}
}

func (f *Function) throw(c *engine.Context, err error) {
	msg := err.Error()
	if e, ok := err.(*errors.Error); ok {
		msg = e.Message()
	}
	c.Logger().Debug("native call failed", zap.String("func", f.name), zap.Error(err))
	c.Throw(f.name + ": " + msg)
}

// Register compiles fn and binds it to the global name.
func Register(c *engine.Context, name string, fn any, opts ...Option) error {
	f, err := Func(name, fn, opts...)
	if err != nil {
		return err
	}
	c.RegisterFunction(name, f)
	return nil
}
