// Package runtime provides the high-level API around an engine context.
//
// # Quick Start
//
//	rt, err := runtime.New(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	n, err := runtime.Eval[int32](ctx, rt, "1 + 2")
//
// # Host Functions
//
// Register Go functions under a namespace object:
//
//	rt.RegisterFunc("greeter", "greet", func(name string) string {
//	    return "Hello, " + name
//	})
//
//	// or expose every exported method of a struct
//	rt.RegisterHost(myHost) // MyMethod becomes namespace.myMethod
//
// # Builtins
//
//	print(a, b, ...)        writes its arguments, space separated
//	CBOR.encode(value)      returns an ArrayBuffer
//	CBOR.decode(buffer)     returns the decoded value
//
// # Configuration
//
// Config is loaded from TOML with LoadConfig and controls the evaluation
// timeout, call stack depth, log level, installed builtins and preloaded
// scripts.
package runtime
