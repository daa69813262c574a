// Package value is the typed face of the engine stack.
//
// Any Go value the serialize package understands can be pushed with Push
// and read back with Peek, Pop, Eval or Call. Types with special engine
// representations implement the protocol themselves:
//
//	Producer   PushTo(c) (int, error)    push, return the absolute index
//	Consumer   PeekAt(c, idx) error      decode into the receiver
//	Popper     PopFrom(c) error          destructive read
//
// The package ships four such types: Optional, Buffer (raw engine buffer),
// View (produce-only slice) and Shared (reference-counted native handle).
//
//	n, err := value.Eval[int32](c, "1 + 2")
//
//	h := value.NewShared(&Counter{})
//	value.Push(c, h.Clone())        // the context owns one reference
//	c.PutGlobalString("counter")
package value
