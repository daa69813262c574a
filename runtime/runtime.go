package runtime

import (
	"context"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/dukt/engine"
	"github.com/wippyai/dukt/errors"
	"github.com/wippyai/dukt/value"
)

// Runtime owns one engine context together with its host functions and
// builtins.
type Runtime struct {
	ctx    *engine.Context
	hosts  *HostRegistry
	cfg    *Config
	log    *zap.Logger
	output io.Writer
}

// Option adjusts a Runtime before builtins are installed.
type Option func(*Runtime)

// WithOutput sets the writer print writes to. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runtime) { r.output = w }
}

// WithLogger overrides the logger built from Config.LogLevel.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runtime) { r.log = l }
}

func New(cfg *Config, opts ...Option) (*Runtime, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Runtime{
		hosts:  NewHostRegistry(),
		cfg:    cfg,
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		log, err := cfg.NewLogger()
		if err != nil {
			return nil, err
		}
		r.log = log
	}

	r.ctx = engine.New(&engine.Config{
		Logger:           r.log,
		MaxCallStackSize: cfg.MaxCallStack,
	})

	if cfg.builtinEnabled(BuiltinPrint) {
		r.ctx.RegisterFunction("print", printFunc(r.output, " "))
	}
	if cfg.builtinEnabled(BuiltinCBOR) {
		installCBOR(r.ctx)
	}

	for _, path := range cfg.Preload {
		if err := r.RunFile(context.Background(), path); err != nil {
			_ = r.ctx.Close()
			return nil, err
		}
	}

	r.log.Debug("runtime ready",
		zap.Duration("timeout", cfg.Timeout),
		zap.Int("preloaded", len(cfg.Preload)))
	return r, nil
}

// Close releases the engine context and every native handle it holds.
func (r *Runtime) Close() error {
	return r.ctx.Close()
}

// Context returns the underlying engine context.
func (r *Runtime) Context() *engine.Context {
	return r.ctx
}

func (r *Runtime) Config() *Config {
	return r.cfg
}

func (r *Runtime) Logger() *zap.Logger {
	return r.log
}

// RegisterHost registers all exported methods of h and binds them into
// the context. Method names are converted from PascalCase to camelCase
// (GetValue -> getValue).
func (r *Runtime) RegisterHost(h Host) error {
	if err := r.hosts.RegisterHost(h); err != nil {
		return err
	}
	return r.hosts.BindNamespace(r.ctx, h.Namespace())
}

// RegisterFunc registers fn as namespace.name, or as a global when
// namespace is empty.
func (r *Runtime) RegisterFunc(namespace, name string, fn any) error {
	if err := r.hosts.RegisterFunc(namespace, name, fn); err != nil {
		return err
	}
	return r.hosts.BindNamespace(r.ctx, namespace)
}

func (r *Runtime) Hosts() *HostRegistry {
	return r.hosts
}

// withTimeout applies the configured evaluation timeout to ctx.
func (r *Runtime) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, r.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

// Run evaluates src and leaves its completion value on top of the stack.
// On failure the rendered exception is left there instead.
func (r *Runtime) Run(ctx context.Context, src string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.ctx.EvalContext(ctx, src)
}

// Exec evaluates src and discards its result.
func (r *Runtime) Exec(ctx context.Context, src string) error {
	err := r.Run(ctx, src)
	r.ctx.Pop()
	return err
}

// RunFile evaluates the script at path and discards its result.
func (r *Runtime) RunFile(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.PhaseEval, errors.KindNotFound, err, "read "+path)
	}
	if err := r.Exec(ctx, string(src)); err != nil {
		if e, ok := err.(*errors.Error); ok {
			e.Path = append(e.Path, path)
		}
		return err
	}
	return nil
}

// Eval evaluates src under the runtime's timeout and decodes the result.
func Eval[T any](ctx context.Context, r *Runtime, src string) (T, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return value.EvalContext[T](ctx, r.ctx, src)
}
