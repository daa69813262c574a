package serialize

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/wippyai/dukt/engine"
	"github.com/wippyai/dukt/errors"
	"github.com/wippyai/dukt/serialize/internal/types"
)

// producer and consumer mirror the value protocol. Types implementing them
// are pushed and read through their own methods wherever they nest.
type producer interface {
	PushTo(c *engine.Context) (int, error)
}

type consumer interface {
	PeekAt(c *engine.Context, idx int) error
}

var (
	producerType = reflect.TypeOf((*producer)(nil)).Elem()
	consumerType = reflect.TypeOf((*consumer)(nil)).Elem()
	pointerType  = reflect.TypeOf(engine.Pointer(0))
)

// Codec is a custom push/peek pair for one Go type. Either side may be nil
// when the type only travels in one direction.
type Codec struct {
	// Push receives the value to push and returns its absolute index.
	Push func(c *engine.Context, v any) (int, error)

	// Peek receives a non-nil pointer to decode into.
	Peek func(c *engine.Context, idx int, dst any) error
}

var (
	codecs   sync.Map // reflect.Type -> Codec
	codecGen atomic.Uint64
)

// Register installs codec for goType. Plans compiled before the call are
// recompiled on next use.
func Register(goType reflect.Type, codec Codec) {
	codecs.Store(goType, codec)
	codecGen.Add(1)
}

// Unregister removes the codec for goType.
func Unregister(goType reflect.Type) {
	if _, ok := codecs.LoadAndDelete(goType); ok {
		codecGen.Add(1)
	}
}

// hookFor returns the hook for t: a registered codec first, then the value
// protocol methods. Returns nil when t marshals structurally.
func hookFor(t reflect.Type) *types.Hook {
	if v, ok := codecs.Load(t); ok {
		return codecHook(t, v.(Codec))
	}

	ptr := reflect.PointerTo(t)
	canPush := t.Implements(producerType) || ptr.Implements(producerType)
	canPeek := ptr.Implements(consumerType)
	if !canPush && !canPeek {
		return nil
	}

	h := &types.Hook{}
	if canPush {
		valueRecv := t.Implements(producerType)
		h.Push = func(c *engine.Context, v reflect.Value) (int, error) {
			if valueRecv {
				return v.Interface().(producer).PushTo(c)
			}
			if !v.CanAddr() {
				tmp := reflect.New(t).Elem()
				tmp.Set(v)
				v = tmp
			}
			return v.Addr().Interface().(producer).PushTo(c)
		}
	}
	if canPeek {
		h.Peek = func(c *engine.Context, idx int, v reflect.Value) error {
			return v.Addr().Interface().(consumer).PeekAt(c, idx)
		}
	}
	return h
}

func codecHook(t reflect.Type, codec Codec) *types.Hook {
	h := &types.Hook{}
	if codec.Push != nil {
		h.Push = func(c *engine.Context, v reflect.Value) (int, error) {
			return codec.Push(c, v.Interface())
		}
	}
	if codec.Peek != nil {
		h.Peek = func(c *engine.Context, idx int, v reflect.Value) error {
			return codec.Peek(c, idx, v.Addr().Interface())
		}
	}
	return h
}

func unsupportedDirection(phase errors.Phase, path []string, t reflect.Type) error {
	verb := "pushed"
	if phase == errors.PhaseDecode {
		verb = "read"
	}
	return errors.New(phase, errors.KindUnsupported).
		Path(path...).
		GoType(t.String()).
		Detail("values of this type cannot be %s", verb).
		Build()
}
