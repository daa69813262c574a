package runtime

import (
	"context"
	"strings"
	"testing"

	"github.com/wippyai/dukt/engine"
)

type point struct {
	X int32 `dukt:"x"`
	Y int32 `dukt:"y"`
}

type mathHost struct {
	calls int
}

func (h *mathHost) Namespace() string { return "math2" }

func (h *mathHost) Add(a, b int32) int32 {
	h.calls++
	return a + b
}

func (h *mathHost) SumFields(p point) int32 {
	return p.X + p.Y
}

func (h *mathHost) GetHTTPCode() int32 { return 200 }

type explicitHost struct{}

func (explicitHost) Namespace() string { return "" }

func (explicitHost) Register() map[string]any {
	return map[string]any{
		"shout": strings.ToUpper,
	}
}

func TestHost_NameConversion(t *testing.T) {
	r := NewHostRegistry()
	if err := r.RegisterHost(&mathHost{}); err != nil {
		t.Fatalf("RegisterHost error: %v", err)
	}

	names := r.Names("math2")
	want := []string{"add", "getHTTPCode", "sumFields"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("Names = %v, want %v", names, want)
	}
	if _, ok := r.Lookup("math2", "namespace"); ok {
		t.Error("Namespace should not be registered")
	}
	fn, ok := r.Lookup("math2", "add")
	if !ok || fn.Name() != "add" || fn.Args() != 2 {
		t.Errorf("Lookup(add) = %v, %v", fn, ok)
	}
}

func TestHost_Bind(t *testing.T) {
	rt := newRuntime(t, nil)
	h := &mathHost{}
	if err := rt.RegisterHost(h); err != nil {
		t.Fatalf("RegisterHost error: %v", err)
	}

	ctx := context.Background()
	n, err := Eval[int32](ctx, rt, "math2.add(2, 3) + math2.sumFields({x: 10, y: 20}) + math2.getHTTPCode()")
	if err != nil {
		t.Fatalf("Eval error: %v", err)
	}
	if n != 235 {
		t.Errorf("result = %d, want 235", n)
	}
	if h.calls != 1 {
		t.Errorf("calls = %d", h.calls)
	}
}

func TestHost_ExplicitGlobal(t *testing.T) {
	rt := newRuntime(t, nil)
	if err := rt.RegisterHost(explicitHost{}); err != nil {
		t.Fatalf("RegisterHost error: %v", err)
	}

	s, err := Eval[string](context.Background(), rt, `shout("hi")`)
	if err != nil || s != "HI" {
		t.Errorf("shout = %q, %v", s, err)
	}
}

func TestHost_RegisterFuncExtendsNamespace(t *testing.T) {
	rt := newRuntime(t, nil)
	ctx := context.Background()

	if err := rt.Exec(ctx, "var util = {version: 7};"); err != nil {
		t.Fatal(err)
	}
	if err := rt.RegisterFunc("util", "double", func(x int32) int32 { return 2 * x }); err != nil {
		t.Fatalf("RegisterFunc error: %v", err)
	}
	if err := rt.RegisterFunc("util", "half", func(x float64) float64 { return x / 2 }); err != nil {
		t.Fatalf("RegisterFunc error: %v", err)
	}

	n, err := Eval[float64](ctx, rt, "util.double(4) + util.half(3) + util.version")
	if err != nil || n != 16.5 {
		t.Errorf("result = %v, %v", n, err)
	}
}

func TestHost_RegisterFuncErrors(t *testing.T) {
	r := NewHostRegistry()
	if err := r.RegisterFunc("ns", "", func() {}); err == nil {
		t.Error("expected error for empty name")
	}
	if err := r.RegisterFunc("ns", "f", 42); err == nil {
		t.Error("expected error for non-function")
	}
	if err := r.RegisterFunc("ns", "f", func(map[string]int32) {}); err == nil {
		t.Error("expected error for unsupported parameter")
	}

	c := engine.New(nil)
	defer c.Close()
	if err := r.BindNamespace(c, "nope"); err == nil {
		t.Error("expected error for unknown namespace")
	}
}
