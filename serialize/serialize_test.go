package serialize

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wippyai/dukt/engine"
	"github.com/wippyai/dukt/errors"
)

type greeting struct {
	Hello string `dukt:"hello"`
	Num   int32  `dukt:"num"`
}

type withOptional struct {
	Name  string `dukt:"name"`
	Count *int32 `dukt:"count"`
}

// pushOnly produces a fixed string and cannot be read back.
type pushOnly struct{}

func (pushOnly) PushTo(c *engine.Context) (int, error) {
	return c.PushString("write-only"), nil
}

// celsius travels as a "<n>C" string through its own methods.
type celsius float32

func (v celsius) PushTo(c *engine.Context) (int, error) {
	return c.PushString(fmt.Sprintf("%gC", float32(v))), nil
}

func (v *celsius) PeekAt(c *engine.Context, idx int) error {
	if !c.IsString(idx) {
		return errors.TypeMismatch(errors.PhaseDecode, nil, "celsius", c.Type(idx).String())
	}
	var f float32
	if _, err := fmt.Sscanf(c.GetString(idx), "%gC", &f); err != nil {
		return err
	}
	*v = celsius(f)
	return nil
}

func newContext(t *testing.T) *engine.Context {
	t.Helper()
	c := engine.New(nil)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// eval runs src and returns the index of its result.
func eval(t *testing.T, c *engine.Context, src string) int {
	t.Helper()
	require.NoError(t, c.Eval(src))
	return c.TopIndex()
}

// inspect publishes the top value as the global obj, then evaluates src.
func inspect(t *testing.T, c *engine.Context, src string) string {
	t.Helper()
	c.PutGlobalString("obj")
	require.NoError(t, c.Eval(src))
	s := c.GetString(-1)
	c.Pop()
	return s
}

func requireKind(t *testing.T, err error, kind errors.Kind) *errors.Error {
	t.Helper()
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, kind, e.Kind, "error: %v", err)
	return e
}

func TestPushRecord(t *testing.T) {
	c := newContext(t)

	idx, err := Push(c, greeting{Hello: "world", Num: 42})
	require.NoError(t, err)
	require.Equal(t, 0, idx)
	require.Equal(t, 1, c.Top())

	require.Equal(t, `{"hello":"world","num":42}`, inspect(t, c, "JSON.stringify(obj)"))
}

func TestPeekRecord(t *testing.T) {
	c := newContext(t)
	idx := eval(t, c, `({hello: "world", num: 42, extra: true})`)

	var g greeting
	require.NoError(t, Peek(c, idx, &g))
	require.Equal(t, greeting{Hello: "world", Num: 42}, g)
	require.Equal(t, 1, c.Top(), "peek leaves the stack unchanged")
}

func TestRoundTrip(t *testing.T) {
	c := newContext(t)

	in := struct {
		Points []point   `dukt:"points"`
		Fixed  [2]uint16 `dukt:"fixed"`
		Ratio  float64   `dukt:"ratio"`
		Flag   bool      `dukt:"flag"`
		Small  int8      `dukt:"small"`
		Ptr    engine.Pointer
		Unit   struct{}
	}{
		Points: []point{{1, 2}, {-3, 4}},
		Fixed:  [2]uint16{7, 65535},
		Ratio:  0.25,
		Flag:   true,
		Small:  -128,
		Ptr:    engine.Pointer(0xbeef),
	}

	idx, err := Push(c, in)
	require.NoError(t, err)

	out := in
	out.Points = nil
	out.Fixed = [2]uint16{}
	out.Ratio = 0
	require.NoError(t, Peek(c, idx, &out))
	require.Equal(t, in, out)
}

func TestPeekFloat(t *testing.T) {
	c := newContext(t)
	var f float64
	require.NoError(t, Peek(c, eval(t, c, "42.0"), &f))
	require.Equal(t, 42.0, f)
}

func TestPeekIntegers(t *testing.T) {
	tests := []struct {
		name string
		src  string
		dst  any
		want any
		kind errors.Kind
	}{
		{name: "truncates", src: "3.7", dst: new(int32), want: int32(3)},
		{name: "truncates negative", src: "-3.7", dst: new(int32), want: int32(-3)},
		{name: "NaN reads as zero", src: "NaN", dst: new(int32), want: int32(0)},
		{name: "uint8 max", src: "255", dst: new(uint8), want: uint8(255)},
		{name: "uint8 overflow", src: "300", dst: new(uint8), kind: errors.KindOverflow},
		{name: "negative unsigned", src: "-1", dst: new(uint32), kind: errors.KindOverflow},
		{name: "int16 underflow", src: "-40000", dst: new(int16), kind: errors.KindOverflow},
		{name: "infinity", src: "Infinity", dst: new(int32), kind: errors.KindOverflow},
		{name: "string", src: `"7"`, dst: new(int32), kind: errors.KindTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newContext(t)
			err := Peek(c, eval(t, c, tt.src), tt.dst)
			if tt.kind != "" {
				requireKind(t, err, tt.kind)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, reflect.ValueOf(tt.dst).Elem().Interface())
		})
	}
}

func TestTypeMismatchNamesTypes(t *testing.T) {
	c := newContext(t)
	var n int32
	e := requireKind(t, Peek(c, eval(t, c, `"hello"`), &n), errors.KindTypeMismatch)
	require.Equal(t, "string", e.JSType)
	require.Equal(t, "int32", e.GoType)
}

func TestSixtyFourBitUnsupported(t *testing.T) {
	c := newContext(t)

	_, err := Push(c, int64(1))
	requireKind(t, err, errors.KindUnsupported)
	require.Equal(t, 0, c.Top())

	var n uint64
	requireKind(t, Peek(c, eval(t, c, "1"), &n), errors.KindUnsupported)
}

func TestOptional(t *testing.T) {
	c := newContext(t)

	for _, src := range []string{"null", "undefined"} {
		v := new(int32)
		require.NoError(t, Peek(c, eval(t, c, src), &v), src)
		require.Nil(t, v, src)
	}

	var v *int32
	require.NoError(t, Peek(c, eval(t, c, "5"), &v))
	require.NotNil(t, v)
	require.Equal(t, int32(5), *v)

	idx, err := Push(c, (*int32)(nil))
	require.NoError(t, err)
	require.True(t, c.IsUndefined(idx))
}

func TestMissingField(t *testing.T) {
	c := newContext(t)

	var g greeting
	e := requireKind(t, Peek(c, eval(t, c, `({hello: "x"})`), &g), errors.KindFieldMissing)
	require.Equal(t, "num", e.Value)

	var o withOptional
	e = requireKind(t, Peek(c, eval(t, c, `({name: "x"})`), &o), errors.KindFieldMissing)
	require.Equal(t, "count", e.Value)

	for _, src := range []string{`({name: "x", count: null})`, `({name: "x", count: undefined})`} {
		o = withOptional{}
		require.NoError(t, Peek(c, eval(t, c, src), &o), src)
		require.Equal(t, "x", o.Name)
		require.Nil(t, o.Count)
	}

	var u struct {
		Unit struct{} `dukt:"unit"`
	}
	requireKind(t, Peek(c, eval(t, c, "({})"), &u), errors.KindFieldMissing)
}

func TestRecordRequiresObject(t *testing.T) {
	c := newContext(t)
	var g greeting
	requireKind(t, Peek(c, eval(t, c, "42"), &g), errors.KindTypeMismatch)
}

func TestHiddenFields(t *testing.T) {
	c := newContext(t)

	in := tagged{FirstName: "Ada", Label: "l", Kind: "secret", Data: []byte{1, 2}}
	_, err := Push(c, in)
	require.NoError(t, err)
	c.Dup(-1)
	require.Equal(t, "firstName,label,data", inspect(t, c, "Object.keys(obj).join()"))

	var out tagged
	require.NoError(t, Peek(c, -1, &out))
	require.Equal(t, "secret", out.Kind)
	require.Equal(t, in.Data, out.Data)
}

func TestBuffers(t *testing.T) {
	c := newContext(t)

	_, err := Push(c, tagged{Data: []byte{0, 1, 2, 3}})
	require.NoError(t, err)
	require.Equal(t, "true 4", inspect(t, c, "(obj.data instanceof ArrayBuffer) + ' ' + obj.data.byteLength"))

	_, err = Push(c, []byte{9, 8})
	require.NoError(t, err)
	require.Equal(t, "true", inspect(t, c, "String(Array.isArray(obj))"))

	var b []byte
	require.NoError(t, Peek(c, eval(t, c, "[1, 2, 3]"), &b))
	require.Equal(t, []byte{1, 2, 3}, b)

	require.NoError(t, Peek(c, eval(t, c, "new Uint8Array([4, 5]).buffer"), &b))
	require.Equal(t, []byte{4, 5}, b)

	requireKind(t, Peek(c, eval(t, c, "[256]"), &b), errors.KindOverflow)
	requireKind(t, Peek(c, eval(t, c, `"abc"`), &b), errors.KindTypeMismatch)
}

func TestDecodedBytesDoNotAlias(t *testing.T) {
	c := newContext(t)
	idx := c.PushFixedBuffer([]byte{1, 2, 3})

	var b []byte
	require.NoError(t, Peek(c, idx, &b))
	c.GetBuffer(idx)[0] = 42
	require.Equal(t, byte(1), b[0])
}

func TestFixedArrayLength(t *testing.T) {
	c := newContext(t)
	var a [3]int32
	requireKind(t, Peek(c, eval(t, c, "[1, 2]"), &a), errors.KindInvalidData)
	require.NoError(t, Peek(c, eval(t, c, "[1, 2, 3]"), &a))
	require.Equal(t, [3]int32{1, 2, 3}, a)
}

func TestSequenceRequiresArray(t *testing.T) {
	c := newContext(t)
	var s []int32
	requireKind(t, Peek(c, eval(t, c, "({length: 2})"), &s), errors.KindTypeMismatch)
}

func TestSequenceHoles(t *testing.T) {
	c := newContext(t)
	var s []*int32
	require.NoError(t, Peek(c, eval(t, c, "[1, , 3]"), &s))
	require.Len(t, s, 3)
	require.Nil(t, s[1])
}

func TestInvalidUTF8(t *testing.T) {
	c := newContext(t)
	_, err := Push(c, greeting{Hello: "\xff\xfe"})
	e := requireKind(t, err, errors.KindInvalidUTF8)
	require.Equal(t, []string{"hello"}, e.Path)
	require.Equal(t, 0, c.Top(), "failed push leaves the stack as it was")
}

func TestErrorPaths(t *testing.T) {
	c := newContext(t)
	var v struct {
		Points []point `dukt:"points"`
	}
	e := requireKind(t, Peek(c, eval(t, c, `({points: [{x: 1, y: 2}, {x: 1}]})`), &v), errors.KindFieldMissing)
	require.Equal(t, []string{"points", "[1]"}, e.Path)
	require.Equal(t, "y", e.Value)
}

func TestPushNil(t *testing.T) {
	c := newContext(t)
	idx, err := Push(c, nil)
	require.NoError(t, err)
	require.True(t, c.IsUndefined(idx))
}

func TestPeekTarget(t *testing.T) {
	c := newContext(t)
	idx := eval(t, c, "1")

	var n int32
	requireKind(t, Peek(c, idx, n), errors.KindInvalidInput)
	requireKind(t, Peek(c, idx, (*int32)(nil)), errors.KindInvalidInput)
	requireKind(t, Peek(c, 5, &n), errors.KindInvalidInput)
}

func TestMethodHooks(t *testing.T) {
	c := newContext(t)

	in := struct {
		Temp celsius   `dukt:"temp"`
		Log  []celsius `dukt:"log"`
	}{Temp: 21.5, Log: []celsius{1, 2}}

	_, err := Push(c, in)
	require.NoError(t, err)
	c.Dup(-1)
	require.Equal(t, `{"temp":"21.5C","log":["1C","2C"]}`, inspect(t, c, "JSON.stringify(obj)"))

	out := in
	out.Temp, out.Log = 0, nil
	require.NoError(t, Peek(c, -1, &out))
	require.Equal(t, in, out)
}

func TestPushOnlyHook(t *testing.T) {
	c := newContext(t)

	idx, err := Push(c, pushOnly{})
	require.NoError(t, err)
	require.Equal(t, "write-only", c.GetString(idx))

	var p pushOnly
	requireKind(t, Peek(c, idx, &p), errors.KindUnsupported)
}

func TestHookFieldMissing(t *testing.T) {
	c := newContext(t)
	var v struct {
		Temp celsius `dukt:"temp"`
	}
	e := requireKind(t, Peek(c, eval(t, c, "({})"), &v), errors.KindFieldMissing)
	require.Equal(t, "temp", e.Value)
	require.NoError(t, Peek(c, eval(t, c, `({temp: "20C"})`), &v))
	require.Equal(t, celsius(20), v.Temp)
}

type version struct {
	Major int32
	Minor int32
}

func TestRegisteredCodec(t *testing.T) {
	c := newContext(t)
	typ := reflect.TypeOf(version{})

	enc := NewEncoder()
	_, err := enc.Push(c, version{1, 2})
	require.NoError(t, err)
	require.Equal(t, `{"major":1,"minor":2}`, inspect(t, c, "JSON.stringify(obj)"))

	Register(typ, Codec{
		Push: func(c *engine.Context, v any) (int, error) {
			ver := v.(version)
			return c.PushString(fmt.Sprintf("v%d.%d", ver.Major, ver.Minor)), nil
		},
		Peek: func(c *engine.Context, idx int, dst any) error {
			ver := dst.(*version)
			_, err := fmt.Sscanf(c.GetString(idx), "v%d.%d", &ver.Major, &ver.Minor)
			return err
		},
	})
	t.Cleanup(func() { Unregister(typ) })

	idx, err := enc.Push(c, version{1, 2})
	require.NoError(t, err)
	require.Equal(t, "v1.2", c.GetString(idx))

	var out version
	require.NoError(t, NewDecoder().Peek(c, idx, &out))
	require.Equal(t, version{1, 2}, out)

	rec, err := enc.PushRecord(c, version{3, 4})
	require.NoError(t, err)
	require.True(t, c.IsObject(rec))

	var back version
	require.NoError(t, PeekRecord(c, rec, &back))
	require.Equal(t, version{3, 4}, back)
}

func TestHookMustPushOneValue(t *testing.T) {
	c := newContext(t)
	type twice struct{ A int32 }
	typ := reflect.TypeOf(twice{})
	Register(typ, Codec{
		Push: func(c *engine.Context, v any) (int, error) {
			c.PushNull()
			return c.PushNull(), nil
		},
	})
	t.Cleanup(func() { Unregister(typ) })

	_, err := Push(c, []twice{{1}})
	requireKind(t, err, errors.KindInvalidData)
	require.Equal(t, 0, c.Top())
}
