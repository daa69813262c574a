// Package types defines the compiled plans the serializer walks.
//
// CompiledType holds the per-type metadata (kind, record fields and their
// property keys, element plans, hooks) computed once per Go type so the
// encoder and decoder never inspect struct tags on the hot path.
//
// This package is internal to serialize.
package types
