package runtime

import (
	"context"
	"testing"
)

type benchHost struct{}

func (benchHost) Namespace() string { return "bench" }

func (benchHost) Compute(a, b uint32) uint32 { return a*2 + b }

func (benchHost) Describe(p point) string {
	if p.X > p.Y {
		return "wide"
	}
	return "tall"
}

func newBenchRuntime(b *testing.B) *Runtime {
	b.Helper()
	rt, err := New(&Config{Builtins: []string{}})
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = rt.Close() })
	if err := rt.RegisterHost(benchHost{}); err != nil {
		b.Fatal(err)
	}
	return rt
}

// BenchmarkCall_Primitive measures a script-to-Go call with scalar
// arguments, including evaluation overhead.
func BenchmarkCall_Primitive(b *testing.B) {
	ctx := context.Background()
	rt := newBenchRuntime(b)

	if _, err := Eval[uint32](ctx, rt, "bench.compute(5, 3)"); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Eval[uint32](ctx, rt, "bench.compute(5, 3)"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkCall_Loop keeps the loop inside the script so the numbers
// reflect trampoline cost rather than parsing.
func BenchmarkCall_Loop(b *testing.B) {
	ctx := context.Background()
	rt := newBenchRuntime(b)
	if err := rt.Exec(ctx, "function loop(n) { var s = 0; for (var i = 0; i < n; i++) s = bench.compute(i, s) & 0xffff; return s; }"); err != nil {
		b.Fatal(err)
	}

	c := rt.Context()
	b.ResetTimer()
	c.GetGlobalString("loop")
	c.PushInt(int32(b.N))
	if err := c.Call(1); err != nil {
		b.Fatal(err)
	}
	c.Pop()
}

// BenchmarkCall_Record measures decoding a struct argument.
func BenchmarkCall_Record(b *testing.B) {
	ctx := context.Background()
	rt := newBenchRuntime(b)
	if err := rt.Exec(ctx, "function loop(n) { var r; for (var i = 0; i < n; i++) r = bench.describe({x: i, y: 100}); return r; }"); err != nil {
		b.Fatal(err)
	}

	c := rt.Context()
	b.ResetTimer()
	c.GetGlobalString("loop")
	c.PushInt(int32(b.N))
	if err := c.Call(1); err != nil {
		b.Fatal(err)
	}
	c.Pop()
}
