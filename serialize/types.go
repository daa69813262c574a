package serialize

import (
	"github.com/wippyai/dukt/serialize/internal/types"
)

type TypeKind = types.Kind

const (
	KindBool    = types.KindBool
	KindS8      = types.KindS8
	KindU8      = types.KindU8
	KindS16     = types.KindS16
	KindU16     = types.KindU16
	KindS32     = types.KindS32
	KindU32     = types.KindU32
	KindF32     = types.KindF32
	KindF64     = types.KindF64
	KindString  = types.KindString
	KindPointer = types.KindPointer
	KindUnit    = types.KindUnit
	KindBytes   = types.KindBytes
	KindBuffer  = types.KindBuffer
	KindRecord  = types.KindRecord
	KindList    = types.KindList
	KindArray   = types.KindArray
	KindOption  = types.KindOption
	KindHook    = types.KindHook
)

type CompiledType = types.CompiledType
type CompiledField = types.Field
