package runtime

import (
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/dukt/engine"
	"github.com/wippyai/dukt/errors"
)

// maxDepth bounds nesting when converting values for CBOR; deeper values
// are assumed to be cyclic.
const maxDepth = 64

var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("runtime: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em

	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("runtime: failed to create CBOR dec mode: %v", err))
	}
	cborDecMode = dm
}

// printFunc writes its arguments joined by sep and a newline to w.
func printFunc(w io.Writer, sep string) engine.Function {
	return engine.FuncOf(engine.VarArgs, func(c *engine.Context) int {
		parts := make([]string, c.Top())
		for i := range parts {
			parts[i] = c.ToString(i)
		}
		fmt.Fprintln(w, strings.Join(parts, sep))
		return 0
	})
}

// cborEncode converts the first argument to CBOR and returns a buffer.
var cborEncode = engine.FuncOf(1, func(c *engine.Context) int {
	v, err := exportValue(c, 0, 0)
	if err != nil {
		c.Throw("CBOR.encode: " + err.Error())
	}
	data, err := cborEncMode.Marshal(v)
	if err != nil {
		c.Throw("CBOR.encode: " + err.Error())
	}
	c.PushFixedBuffer(data)
	return 1
})

// cborDecode parses the buffer argument and returns the decoded value.
var cborDecode = engine.FuncOf(1, func(c *engine.Context) int {
	data, ok := c.GetBufferOpt(0)
	if !ok {
		c.Throw("CBOR.decode: buffer required, found " + c.Type(0).String())
	}
	var v any
	if err := cborDecMode.Unmarshal(data, &v); err != nil {
		c.Throw("CBOR.decode: " + err.Error())
	}
	if err := importValue(c, v, 0); err != nil {
		c.Throw("CBOR.decode: " + err.Error())
	}
	return 1
})

// installCBOR binds the CBOR global with encode and decode.
func installCBOR(c *engine.Context) {
	obj := c.PushObject()
	c.PushFunction(cborEncode)
	c.PutPropString(obj, "encode")
	c.PushFunction(cborDecode)
	c.PutPropString(obj, "decode")
	c.PutGlobalString("CBOR")
}

// exportValue walks the slot at idx into a CBOR-friendly Go tree.
func exportValue(c *engine.Context, idx, depth int) (any, error) {
	if depth > maxDepth {
		return nil, errors.InvalidData(errors.PhaseEncode, nil, "value nested too deeply or cyclic")
	}
	switch c.Type(idx) {
	case engine.TypeUndefined, engine.TypeNull:
		return nil, nil
	case engine.TypeBoolean:
		return c.GetBool(idx), nil
	case engine.TypeNumber:
		f := c.GetNumber(idx)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f), nil
		}
		return f, nil
	case engine.TypeString:
		return c.GetString(idx), nil
	case engine.TypeBuffer:
		return append([]byte(nil), c.GetBuffer(idx)...), nil
	case engine.TypePointer:
		return uint64(c.GetPointer(idx)), nil
	case engine.TypeObject:
		if c.IsCallable(idx) {
			return nil, errors.Unsupported(errors.PhaseEncode, "functions cannot be encoded")
		}
		if c.IsArray(idx) {
			n := int(c.GetLength(idx))
			out := make([]any, n)
			for i := 0; i < n; i++ {
				if !c.GetPropIndex(idx, uint32(i)) {
					continue
				}
				v, err := exportValue(c, c.TopIndex(), depth+1)
				c.Pop()
				if err != nil {
					return nil, err
				}
				out[i] = v
			}
			return out, nil
		}
		out := make(map[string]any)
		for _, key := range c.Keys(idx) {
			if !c.GetProp(idx, key) {
				continue
			}
			v, err := exportValue(c, c.TopIndex(), depth+1)
			c.Pop()
			if err != nil {
				return nil, err
			}
			out[key] = v
		}
		return out, nil
	default:
		return nil, errors.Unsupported(errors.PhaseEncode, c.Type(idx).String()+" values cannot be encoded")
	}
}

// importValue pushes a decoded CBOR tree.
func importValue(c *engine.Context, v any, depth int) error {
	if depth > maxDepth {
		return errors.InvalidData(errors.PhaseDecode, nil, "value nested too deeply")
	}
	switch x := v.(type) {
	case nil:
		c.PushNull()
	case bool:
		c.PushBool(x)
	case uint64:
		c.PushNumber(float64(x))
	case int64:
		c.PushNumber(float64(x))
	case float64:
		c.PushNumber(x)
	case float32:
		c.PushNumber(float64(x))
	case string:
		c.PushString(x)
	case []byte:
		c.PushFixedBuffer(x)
	case []any:
		arr := c.PushArray()
		for i, e := range x {
			if err := importValue(c, e, depth+1); err != nil {
				return err
			}
			c.PutPropIndex(arr, uint32(i))
		}
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := c.PushObject()
		for _, k := range keys {
			if err := importValue(c, x[k], depth+1); err != nil {
				return err
			}
			c.PutPropString(obj, k)
		}
	case cbor.Tag:
		return importValue(c, x.Content, depth+1)
	default:
		return errors.Unsupported(errors.PhaseDecode, fmt.Sprintf("CBOR value of type %T", v))
	}
	return nil
}
