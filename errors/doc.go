// Package errors provides structured error types for the dukt binding layer.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, Go/JS type names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
//		Path("user", "age").
//		GoType("uint32").
//		JSType("string").
//		Detail("cannot convert string to integer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeMismatch(errors.PhaseDecode, path, "uint32", "string")
//	err := errors.FieldMissing(errors.PhaseDecode, path, "hello")
//
// Failures raised by the engine itself (a script throwing, a native function
// returning a negative code) are reported with KindExecution and carry the
// engine's rendered exception text in Detail.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
