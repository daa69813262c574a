package engine

import (
	"context"
	"strconv"
	"sync"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/wippyai/dukt/errors"
)

// native adapts f to a function the engine can call. Each invocation opens
// a frame whose index 0 is the first argument, with the argument count
// normalized to the declared arity.
func (c *Context) native(f Function) func(goja.FunctionCall) goja.Value {
	fn, nargs := f.Ptr(), f.Args()
	return func(call goja.FunctionCall) goja.Value {
		c.live()
		savedBase, savedThis, savedLen := c.base, c.this, len(c.stack)
		defer func() {
			c.truncate(savedLen)
			c.base, c.this = savedBase, savedThis
		}()

		c.base = savedLen
		c.this = call.This
		if nargs == VarArgs {
			c.stack = append(c.stack, call.Arguments...)
		} else {
			for i := 0; i < nargs; i++ {
				c.stack = append(c.stack, call.Argument(i))
			}
		}

		rc := fn(c)
		switch {
		case rc < 0:
			c.log.Debug("native function failed", zap.Int("rc", rc))
			panic(c.newError("native function failed (rc " + strconv.Itoa(rc) + ")"))
		case rc == 0 || len(c.stack) == c.base:
			return goja.Undefined()
		default:
			return c.stack[len(c.stack)-1]
		}
	}
}

// PushFunction pushes a function object that runs f when called.
func (c *Context) PushFunction(f Function) int {
	return c.push(c.vm.ToValue(c.native(f)))
}

// RegisterFunction binds f to a global name.
func (c *Context) RegisterFunction(name string, f Function) {
	c.PushFunction(f)
	c.PutGlobalString(name)
	c.log.Debug("registered function", zap.String("name", name), zap.Int("args", f.Args()))
}

// render returns the text the engine shows for a failure.
func render(err error) string {
	switch e := err.(type) {
	case *goja.Exception:
		if v := e.Value(); v != nil {
			return v.String()
		}
	case *goja.InterruptedError:
		return e.Error()
	}
	return err.Error()
}

// fail replaces the consumed slots with the rendered failure and builds
// the error returned to the caller.
func (c *Context) fail(phase errors.Phase, err error) error {
	msg := render(err)
	c.push(c.vm.ToValue(msg))
	c.log.Debug("engine call failed", zap.String("phase", string(phase)), zap.String("error", msg))
	if ie, ok := err.(*goja.InterruptedError); ok {
		return errors.New(phase, errors.KindTimeout).Detail("%s", msg).Cause(ie.Unwrap()).Build()
	}
	if _, ok := err.(*goja.Exception); ok {
		// the exception text is already in msg
		return errors.Execution(phase, msg)
	}
	return errors.New(phase, errors.KindExecution).Detail("%s", msg).Cause(err).Build()
}

func (c *Context) notCallable(what string) error {
	msg := "TypeError: " + what + " is not a function"
	c.push(c.vm.ToValue(msg))
	return errors.Execution(errors.PhaseCall, msg)
}

// Call invokes the callable at -(nargs+1) with the nargs slots above it.
// The callable and arguments are replaced by the result, or by the
// rendered exception when the call throws.
func (c *Context) Call(nargs int) error {
	c.live()
	fnIdx := c.RequireIndex(-nargs - 1)
	abs := c.base + fnIdx
	fn := c.stack[abs]
	args := append([]goja.Value(nil), c.stack[abs+1:]...)
	c.truncate(abs)

	callable, ok := goja.AssertFunction(fn)
	if !ok {
		return c.notCallable(fn.String())
	}
	res, err := callable(goja.Undefined(), args...)
	if err != nil {
		return c.fail(errors.PhaseCall, err)
	}
	c.push(res)
	return nil
}

// CallProp invokes obj[key] with this bound to obj. The key sits at
// -(nargs+1) with the arguments above it; all of them are replaced by the
// result or the rendered exception.
func (c *Context) CallProp(objIdx, nargs int) error {
	c.live()
	obj := c.object(objIdx)
	keyIdx := c.RequireIndex(-nargs - 1)
	abs := c.base + keyIdx
	key := c.stack[abs].String()
	args := append([]goja.Value(nil), c.stack[abs+1:]...)
	c.truncate(abs)

	fn := obj.Get(key)
	callable, ok := goja.AssertFunction(fn)
	if fn == nil || !ok {
		return c.notCallable(key)
	}
	res, err := callable(obj, args...)
	if err != nil {
		return c.fail(errors.PhaseCall, err)
	}
	c.push(res)
	return nil
}

// CallFunction runs the trampoline of f directly on the current frame.
// A negative return code reports an arity failure; an exception raised by
// the trampoline is reported as an execution failure.
func (c *Context) CallFunction(f Function) (err error) {
	c.live()
	defer func() {
		if r := recover(); r != nil {
			switch x := r.(type) {
			case *goja.Exception:
				err = errors.Execution(errors.PhaseCall, render(x))
			case goja.Value:
				err = errors.Execution(errors.PhaseCall, x.String())
			default:
				panic(r)
			}
		}
	}()
	top := c.Top()
	if rc := f.Ptr()(c); rc < 0 {
		name := "function"
		if n, ok := f.(interface{ Name() string }); ok {
			name = n.Name()
		}
		return errors.Arity(name, max(f.Args(), 0), top)
	}
	return nil
}

// Eval runs src and pushes its completion value. On failure the rendered
// exception is pushed instead.
func (c *Context) Eval(src string) error {
	c.live()
	v, err := c.vm.RunString(src)
	if err != nil {
		return c.fail(errors.PhaseEval, err)
	}
	c.push(v)
	return nil
}

// EvalContext is Eval bounded by ctx: cancellation interrupts the running
// script and reports KindTimeout.
func (c *Context) EvalContext(ctx context.Context, src string) error {
	c.live()
	if err := ctx.Err(); err != nil {
		c.push(c.vm.ToValue(err.Error()))
		return errors.New(errors.PhaseEval, errors.KindTimeout).Detail("%s", err.Error()).Cause(err).Build()
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
			c.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	v, err := c.vm.RunString(src)
	close(done)
	wg.Wait()
	c.vm.ClearInterrupt()

	if err != nil {
		return c.fail(errors.PhaseEval, err)
	}
	c.push(v)
	return nil
}
