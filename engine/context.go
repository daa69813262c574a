package engine

import (
	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/wippyai/dukt/errors"
	"github.com/wippyai/dukt/resource"
)

// Config holds configuration for context creation
type Config struct {
	// Logger overrides the package logger for this context.
	Logger *zap.Logger

	// MaxCallStackSize bounds script call depth. 0 keeps the engine default.
	MaxCallStackSize int
}

// Context owns one engine heap and the value stack layered over it.
//
// A Context is not safe for concurrent use. Every index handed out by it
// is invalidated by Close.
type Context struct {
	vm       *goja.Runtime
	errorCtr goja.Value
	this     goja.Value
	log      *zap.Logger
	arena    *resource.Arena
	hidden   map[string]*goja.Symbol
	stack    []goja.Value
	base     int
	closed   bool
}

// New creates a context with a fresh heap.
func New(cfg *Config) *Context {
	if cfg == nil {
		cfg = &Config{}
	}
	log := cfg.Logger
	if log == nil {
		log = Logger()
	}

	vm := goja.New()
	if cfg.MaxCallStackSize > 0 {
		vm.SetMaxCallStackSize(cfg.MaxCallStackSize)
	}

	c := &Context{
		vm:       vm,
		errorCtr: vm.Get("Error"),
		this:     goja.Undefined(),
		log:      log,
		arena:    resource.NewArena(),
		hidden:   make(map[string]*goja.Symbol),
		stack:    make([]goja.Value, 0, 32),
	}
	c.arena.Subscribe(resource.ObserverFunc(func(e resource.Event) {
		c.log.Debug("handle arena",
			zap.Stringer("event", e.Type),
			zap.Uint32("handle", uint32(e.Handle)),
			zap.Uint32("type_id", e.TypeID))
	}))
	return c
}

// Close destroys the heap. Entries left in the handle arena are dropped,
// which releases the references the engine held. Calling Close twice is a
// no-op.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	err := c.arena.Close()
	c.vm.Interrupt(errors.Closed(errors.PhaseRuntime, "context"))
	clear(c.stack)
	c.stack = nil
	c.base = 0
	c.hidden = nil
	c.this = nil
	return err
}

// Closed reports whether Close has been called.
func (c *Context) Closed() bool {
	return c.closed
}

// Resources returns the arena holding native handles exposed to scripts.
func (c *Context) Resources() *resource.Arena {
	return c.arena
}

// Logger returns the logger this context reports through.
func (c *Context) Logger() *zap.Logger {
	return c.log
}

// live panics when the context has been closed.
func (c *Context) live() {
	if c.closed {
		panic(errors.Closed(errors.PhaseRuntime, "context"))
	}
}

// throw raises a TypeError in the engine. Outside a script frame it
// surfaces as a Go panic carrying the error object.
func (c *Context) throw(format string, args ...any) {
	panic(c.vm.NewTypeError(append([]any{format}, args...)...))
}

// newError builds a plain Error object with the given message.
func (c *Context) newError(msg string) goja.Value {
	obj, err := c.vm.New(c.errorCtr, c.vm.ToValue(msg))
	if err != nil {
		return c.vm.ToValue(msg)
	}
	return obj
}

// Throw raises an Error carrying msg from inside a native function.
func (c *Context) Throw(msg string) {
	panic(c.newError(msg))
}

// symbol returns the per-heap symbol backing a hidden key name.
func (c *Context) symbol(name string) *goja.Symbol {
	sym, ok := c.hidden[name]
	if !ok {
		sym = goja.NewSymbol(name)
		c.hidden[name] = sym
	}
	return sym
}
