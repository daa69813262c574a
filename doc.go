// Package dukt binds Go to a JavaScript engine through a Duktape-style
// value stack.
//
// Native code never touches engine values directly. It pushes and reads
// stack slots, and the layers above turn Go values into slot operations.
//
// # Architecture Overview
//
//	dukt/
//	├── engine/      Stack machine adapter over goja: push, get, props, calls
//	├── value/       Push/Peek/Pop protocol, Optional, Buffer, Shared handles
//	├── serialize/   Compiled reflection plans encoding Go values as JS values
//	├── bind/        Function and method trampolines, derived records
//	├── resource/    Handle arena backing shared native objects
//	├── runtime/     Context lifecycle, host registry, builtins, TOML config
//	├── errors/      Structured error types for debugging
//	└── cmd/dukt/    Script runner and interactive REPL
//
// # Quick Start
//
// Evaluate a script and decode its result:
//
//	rt, err := runtime.New(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	n, err := runtime.Eval[int32](ctx, rt, "6 * 7")
//	fmt.Println(n) // 42
//
// # Native Functions
//
// Any Go function whose parameters and result the serializer supports can
// be exposed. Arguments are decoded from the top of the call frame and the
// result is pushed back:
//
//	rt.RegisterFunc("", "adder", func(a, b int32) int32 { return a + b })
//	n, _ := runtime.Eval[int32](ctx, rt, "adder(1, 2)") // 3
//
// A returned error becomes a script exception. A leading *engine.Context
// parameter receives the calling context.
//
// # Records
//
// Structs cross the boundary as plain objects keyed by their dukt tags:
//
//	type Item struct {
//	    Data  string `dukt:"data"`
//	    Count uint32 `dukt:"count"`
//	}
//
//	rec := bind.MustDeriveRecord[Item](bind.Methods("getData"))
//	rec.Push(c, Item{Data: "hello"}) // { data: "hello", count: 0, getData() }
//
// # Shared Handles
//
// value.Shared[T] moves a refcounted Go object into the context's handle
// arena. Scripts see an opaque object; native code gets the same pointer
// back when it peeks the slot. Closing the context drops every handle it
// still holds.
//
// # Thread Safety
//
// An engine context and everything pushed onto it belong to one goroutine.
// Compiled type plans, the codec registry and Shared reference counts are
// safe for concurrent use.
package dukt
