// Package serialize maps Go values onto the engine stack and back.
//
// Plans are compiled once per Go type by a Compiler and walked by the
// Encoder (Go to stack) and Decoder (stack to Go). Only primitive stack
// operations of engine.Context are used.
//
// # Type Mapping
//
//	Go type                     Engine value
//	─────────────────────────────────────────────────────────
//	bool                        boolean
//	int8/16/32, uint8/16/32     number (decode truncates, range checked)
//	float32/float64             number
//	string                      string (UTF-8 checked on push)
//	engine.Pointer              pointer
//	struct{}                    undefined
//	[]byte                      array of numbers; decodes from buffer too
//	[]byte `dukt:",buffer"`     raw buffer
//	[]T, [N]T                   array
//	*T                          T, or undefined for nil
//	struct                      object
//
// int, uint, int64, uint64, maps, interfaces, channels and functions are
// rejected at compile time with KindUnsupported.
//
// # Struct Tags
//
//	type Item struct {
//		Name  string `dukt:"name"`
//		Kind  string `dukt:"kind,hidden"`
//		Data  []byte `dukt:"data,buffer"`
//		Cache []byte `dukt:"-"`
//	}
//
// Untagged fields use the lowerCamel form of the Go name. Hidden fields
// are stored under engine.HiddenKey and never show up in Object.keys.
// Decoding needs every field's property to exist; an optional field set
// to null or undefined reads as nil, an absent one is KindFieldMissing.
//
// # Hooks
//
// A type with a PushTo(*engine.Context) (int, error) method, or whose
// pointer has PeekAt(*engine.Context, int) error, is marshaled through
// those methods wherever it appears. Register installs a Codec for types
// that cannot carry methods.
package serialize
