package runtime

import (
	"reflect"
	"sort"
	"sync"

	"github.com/wippyai/dukt/bind"
	"github.com/wippyai/dukt/engine"
	"github.com/wippyai/dukt/errors"
	"github.com/wippyai/dukt/internal/naming"
)

// Host is the interface for struct-based host modules.
// All exported methods (except Namespace and Register) are exposed as
// functions on a global object named by Namespace. An empty namespace
// binds them as globals.
type Host interface {
	Namespace() string
}

// ExplicitRegistrar lets a host supply exact script names instead of the
// automatic PascalCase to camelCase conversion.
type ExplicitRegistrar interface {
	Register() map[string]any
}

type HostRegistry struct {
	funcs map[string]map[string]*bind.Function
	mu    sync.RWMutex
}

func NewHostRegistry() *HostRegistry {
	return &HostRegistry{
		funcs: make(map[string]map[string]*bind.Function),
	}
}

func (r *HostRegistry) RegisterHost(h Host) error {
	ns := h.Namespace()

	if er, ok := h.(ExplicitRegistrar); ok {
		for name, handler := range er.Register() {
			if err := r.add(ns, name, handler); err != nil {
				return err
			}
		}
		return nil
	}

	rv := reflect.ValueOf(h)
	rt := rv.Type()

	for i := 0; i < rt.NumMethod(); i++ {
		method := rt.Method(i)
		if !method.IsExported() || method.Name == "Namespace" || method.Name == "Register" {
			continue
		}
		if err := r.add(ns, naming.LowerCamel(method.Name), rv.Method(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

func (r *HostRegistry) RegisterFunc(namespace, name string, fn any) error {
	if name == "" {
		return errors.InvalidInput(errors.PhaseHost, "function name cannot be empty")
	}
	return r.add(namespace, name, fn)
}

// add compiles handler eagerly so signature problems surface at
// registration rather than at bind time.
func (r *HostRegistry) add(namespace, name string, handler any) error {
	if rv := reflect.ValueOf(handler); rv.Kind() != reflect.Func {
		goType := "<nil>"
		if handler != nil {
			goType = rv.Type().String()
		}
		return errors.New(errors.PhaseHost, errors.KindTypeMismatch).
			GoType(goType).
			Detail("handler must be a function").
			Build()
	}

	fn, err := bind.Func(name, handler)
	if err != nil {
		return errors.Registration(errors.PhaseHost, namespace, name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.funcs[namespace] == nil {
		r.funcs[namespace] = make(map[string]*bind.Function)
	}
	r.funcs[namespace][name] = fn
	return nil
}

// Lookup returns the function registered under namespace and name.
func (r *HostRegistry) Lookup(namespace, name string) (*bind.Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[namespace][name]
	return fn, ok
}

// Names returns the registered function names of namespace, sorted.
func (r *HostRegistry) Names(namespace string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs[namespace]))
	for name := range r.funcs[namespace] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Namespaces returns the registered namespaces, sorted.
func (r *HostRegistry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.funcs))
	for ns := range r.funcs {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// Bind installs every registered function into c. Namespace objects that
// already exist as globals are extended rather than replaced.
func (r *HostRegistry) Bind(c *engine.Context) error {
	for _, ns := range r.Namespaces() {
		if err := r.BindNamespace(c, ns); err != nil {
			return err
		}
	}
	return nil
}

// BindNamespace installs the functions of one namespace into c.
func (r *HostRegistry) BindNamespace(c *engine.Context, namespace string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	funcs, ok := r.funcs[namespace]
	if !ok {
		return errors.NotFound(errors.PhaseHost, "namespace", namespace)
	}
	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	sort.Strings(names)

	if namespace == "" {
		for _, name := range names {
			c.RegisterFunction(name, funcs[name])
		}
		return nil
	}

	mark := c.Top()
	if !c.GetGlobalString(namespace) || !c.IsObject(-1) {
		c.PopN(c.Top() - mark)
		c.PushObject()
	}
	obj := c.TopIndex()
	for _, name := range names {
		funcs[name].RegisterOn(c, obj, name)
	}
	c.PutGlobalString(namespace)
	return nil
}
