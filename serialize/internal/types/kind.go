package types

type Kind uint8

const (
	KindBool Kind = iota
	KindS8
	KindU8
	KindS16
	KindU16
	KindS32
	KindU32
	KindF32
	KindF64
	KindString
	KindPointer
	KindUnit
	KindBytes
	KindBuffer
	KindRecord
	KindList
	KindArray
	KindOption
	KindHook
)

var kindNames = [...]string{
	KindBool:    "bool",
	KindS8:      "s8",
	KindU8:      "u8",
	KindS16:     "s16",
	KindU16:     "u16",
	KindS32:     "s32",
	KindU32:     "u32",
	KindF32:     "f32",
	KindF64:     "f64",
	KindString:  "string",
	KindPointer: "pointer",
	KindUnit:    "unit",
	KindBytes:   "bytes",
	KindBuffer:  "buffer",
	KindRecord:  "record",
	KindList:    "list",
	KindArray:   "array",
	KindOption:  "option",
	KindHook:    "hook",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsPrimitive reports whether values of this kind fit in one stack slot
// without nested pushes.
func (k Kind) IsPrimitive() bool {
	return k <= KindUnit
}

// IsInteger reports whether this kind is a bounded integer.
func (k Kind) IsInteger() bool {
	return k >= KindS8 && k <= KindU32
}

// Bounds returns the inclusive range of an integer kind.
func (k Kind) Bounds() (lo, hi float64) {
	switch k {
	case KindS8:
		return -1 << 7, 1<<7 - 1
	case KindU8:
		return 0, 1<<8 - 1
	case KindS16:
		return -1 << 15, 1<<15 - 1
	case KindU16:
		return 0, 1<<16 - 1
	case KindS32:
		return -1 << 31, 1<<31 - 1
	case KindU32:
		return 0, 1<<32 - 1
	}
	return 0, 0
}
