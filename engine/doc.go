// Package engine exposes an embedded JavaScript heap as a stack machine.
//
// A Context owns one heap and a value stack layered over it. Values are
// pushed, read and consumed by index: non-negative indices count from the
// bottom of the current frame, negative ones from the top.
//
//	c := engine.New(nil)
//	defer c.Close()
//
//	c.PushObject()          // [ {} ]
//	c.PushString("world")   // [ {} "world" ]
//	c.PutPropString(-2, "hello")
//	c.GetProp(-1, "hello")  // [ {hello:"world"} "world" ]
//	s := c.GetString(-1)
//	c.PopN(2)
//
// # Failure layers
//
// Typed getters assert: reading the wrong type, or an index that is not
// populated, throws a TypeError into the engine (a Go panic when no
// script is running). Code that needs to branch checks Type first.
//
// Calls and evaluation report failures as *errors.Error with
// KindExecution and leave the rendered exception text on the stack in
// place of the result.
//
// # Native functions
//
// A Function pairs a RawFunc with its arity. When a script calls it, the
// context opens a new frame holding exactly Args() arguments (missing ones
// read as undefined, extras are dropped; VarArgs keeps them all), binds
// this, runs the RawFunc and maps its return code:
//
//	< 0   throw Error("native function failed (rc N)")
//	  0   return undefined
//	  1   return the top of the frame
//
// # Hidden keys
//
// Keys starting with HiddenPrefix (0xFF) live outside the enumerable
// string key space: Keys and Object.keys never report them and scripts
// cannot name them.
package engine
