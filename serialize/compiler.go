package serialize

import (
	"reflect"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/wippyai/dukt/engine"
	"github.com/wippyai/dukt/errors"
	"github.com/wippyai/dukt/internal/naming"
)

// TagName is the struct tag read by the compiler:
//
//	Name  string `dukt:"name"`          // property key
//	Tag   string `dukt:"type,hidden"`   // hidden property key
//	Data  []byte `dukt:"data,buffer"`   // raw buffer instead of an array
//	Skip  int    `dukt:"-"`             // never marshaled
const TagName = "dukt"

// Compiler turns Go types into marshaling plans. Plans are cached per
// type and safe for concurrent use.
type Compiler struct {
	cache   sync.Map // reflect.Type -> *CompiledType
	records sync.Map // reflect.Type -> *CompiledType, hooks bypassed
	gen     atomic.Uint64
	mu      sync.Mutex
}

func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile returns the plan for goType.
func (c *Compiler) Compile(goType reflect.Type) (*CompiledType, error) {
	if goType == nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindNilPointer).
			Detail("Go type cannot be nil").
			Build()
	}

	c.refresh()

	if cached, ok := c.cache.Load(goType); ok {
		return cached.(*CompiledType), nil
	}

	ct, err := c.compile(goType, nil, map[reflect.Type]bool{})
	if err != nil {
		return nil, err
	}

	c.cache.Store(goType, ct)
	return ct, nil
}

// CompileRecord returns the structural plan for the struct type goType,
// ignoring any codec or value protocol methods on goType itself. Members
// still use theirs. Custom codecs call this to marshal their fields.
func (c *Compiler) CompileRecord(goType reflect.Type) (*CompiledType, error) {
	if goType == nil || goType.Kind() != reflect.Struct {
		name := "<nil>"
		if goType != nil {
			name = goType.String()
		}
		return nil, errors.TypeMismatch(errors.PhaseCompile, nil, name, "struct")
	}

	c.refresh()

	if cached, ok := c.records.Load(goType); ok {
		return cached.(*CompiledType), nil
	}

	ct, err := c.compileRecord(goType, nil, map[reflect.Type]bool{})
	if err != nil {
		return nil, err
	}

	c.records.Store(goType, ct)
	return ct, nil
}

// refresh drops cached plans once the codec registry has changed.
func (c *Compiler) refresh() {
	g := codecGen.Load()
	if c.gen.Load() == g {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen.Load() != g {
		c.cache.Clear()
		c.records.Clear()
		c.gen.Store(g)
	}
}

func (c *Compiler) compile(goType reflect.Type, path []string, visiting map[reflect.Type]bool) (*CompiledType, error) {
	if cached, ok := c.cache.Load(goType); ok {
		return cached.(*CompiledType), nil
	}

	if h := hookFor(goType); h != nil {
		return &CompiledType{GoType: goType, Hook: h, Kind: KindHook}, nil
	}

	if goType == pointerType {
		return &CompiledType{GoType: goType, Kind: KindPointer}, nil
	}

	switch goType.Kind() {
	case reflect.Bool:
		return primitive(KindBool, goType), nil
	case reflect.Int8:
		return primitive(KindS8, goType), nil
	case reflect.Uint8:
		return primitive(KindU8, goType), nil
	case reflect.Int16:
		return primitive(KindS16, goType), nil
	case reflect.Uint16:
		return primitive(KindU16, goType), nil
	case reflect.Int32:
		return primitive(KindS32, goType), nil
	case reflect.Uint32:
		return primitive(KindU32, goType), nil
	case reflect.Float32:
		return primitive(KindF32, goType), nil
	case reflect.Float64:
		return primitive(KindF64, goType), nil
	case reflect.String:
		return primitive(KindString, goType), nil
	case reflect.Int, reflect.Uint, reflect.Int64, reflect.Uint64, reflect.Uintptr:
		return nil, errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Path(path...).
			GoType(goType.String()).
			Detail("64-bit integers do not fit an engine number; use int32, uint32 or float64").
			Build()
	case reflect.Pointer:
		return c.compileOption(goType, path, visiting)
	case reflect.Slice:
		if goType.Elem().Kind() == reflect.Uint8 && hookFor(goType.Elem()) == nil {
			return primitive(KindBytes, goType), nil
		}
		return c.compileSequence(KindList, goType, path, visiting)
	case reflect.Array:
		return c.compileSequence(KindArray, goType, path, visiting)
	case reflect.Struct:
		if goType.NumField() == 0 {
			return primitive(KindUnit, goType), nil
		}
		return c.compileRecord(goType, path, visiting)
	default:
		return nil, errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Path(path...).
			GoType(goType.String()).
			Detail("%s values are not supported", goType.Kind()).
			Build()
	}
}

func primitive(kind TypeKind, goType reflect.Type) *CompiledType {
	return &CompiledType{GoType: goType, Kind: kind}
}

func (c *Compiler) compileOption(goType reflect.Type, path []string, visiting map[reflect.Type]bool) (*CompiledType, error) {
	elem, err := c.nested(goType.Elem(), path, visiting)
	if err != nil {
		return nil, err
	}
	return &CompiledType{GoType: goType, ElemType: elem, Kind: KindOption}, nil
}

func (c *Compiler) compileSequence(kind TypeKind, goType reflect.Type, path []string, visiting map[reflect.Type]bool) (*CompiledType, error) {
	elemPath := append(append([]string{}, path...), "[elem]")
	elem, err := c.nested(goType.Elem(), elemPath, visiting)
	if err != nil {
		return nil, err
	}
	ct := &CompiledType{GoType: goType, ElemType: elem, Kind: kind}
	if kind == KindArray {
		ct.Length = goType.Len()
	}
	return ct, nil
}

// nested compiles a member type, refusing types that contain themselves.
func (c *Compiler) nested(goType reflect.Type, path []string, visiting map[reflect.Type]bool) (*CompiledType, error) {
	if visiting[goType] {
		return nil, errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Path(path...).
			GoType(goType.String()).
			Detail("recursive types are not supported").
			Build()
	}
	return c.compile(goType, path, visiting)
}

func (c *Compiler) compileRecord(goType reflect.Type, path []string, visiting map[reflect.Type]bool) (*CompiledType, error) {
	visiting[goType] = true
	defer delete(visiting, goType)

	fields := make([]CompiledField, 0, goType.NumField())
	for i := 0; i < goType.NumField(); i++ {
		sf := goType.Field(i)
		if !sf.IsExported() {
			continue
		}
		opts, skip := parseTag(sf)
		if skip {
			continue
		}

		fieldPath := append(append([]string{}, path...), opts.name)
		var ft *CompiledType
		if opts.buffer {
			if sf.Type.Kind() != reflect.Slice || sf.Type.Elem().Kind() != reflect.Uint8 {
				return nil, errors.TypeMismatch(errors.PhaseCompile, fieldPath, sf.Type.String(), "buffer")
			}
			ft = primitive(KindBuffer, sf.Type)
		} else {
			var err error
			ft, err = c.nested(sf.Type, fieldPath, visiting)
			if err != nil {
				return nil, err
			}
		}

		key := []byte(opts.name)
		if opts.hidden {
			key = engine.HiddenKey(opts.name)
		}
		fields = append(fields, CompiledField{
			Type:   ft,
			Name:   opts.name,
			Key:    key,
			Index:  i,
			Hidden: opts.hidden,
		})
	}

	return &CompiledType{GoType: goType, Fields: fields, Kind: KindRecord}, nil
}

type tagOptions struct {
	name   string
	hidden bool
	buffer bool
}

// parseTag reads the dukt tag. Untagged fields use the lowerCamel form of
// the Go name.
func parseTag(sf reflect.StructField) (tagOptions, bool) {
	tag := sf.Tag.Get(TagName)
	if tag == "-" {
		return tagOptions{}, true
	}

	opts := tagOptions{name: naming.LowerCamel(sf.Name)}
	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		opts.name = parts[0]
	}
	for _, p := range parts[1:] {
		switch strings.TrimSpace(p) {
		case "hidden":
			opts.hidden = true
		case "buffer":
			opts.buffer = true
		}
	}
	return opts, false
}
