// Package bind turns Go functions into native functions the engine can
// call.
//
// Func inspects a signature once and builds a trampoline that decodes the
// arguments from the call frame, pops them, invokes the function and
// pushes its result:
//
//	bind.Register(c, "adder", func(a, b int32) int32 { return a + b })
//
// A frame holding fewer values than the declared parameters makes the
// trampoline return engine.ErrorReturn without running the function.
// Decode failures and returned errors are thrown as script exceptions.
//
// Method binds a function whose first parameter is decoded from this.
// DeriveRecord goes further for struct types: pushed values carry
// allow-listed methods, and the derived form becomes the codec for the
// type wherever it nests.
//
//	type Item struct{ Data string }
//	func (i Item) GetData() string { return i.Data }
//
//	items := bind.MustDeriveRecord[Item](bind.Methods("getData"))
//	items.Push(c, Item{Data: "hello"})
//
// Arguments that hold references, such as value.Shared, belong to the
// function once decoded.
package bind
