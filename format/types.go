package format

// DataType is the wire tag of a property value. The on-disk tag additionally
// carries ArrayFlag in its high bit; ParseDataType splits that off.
type DataType uint32

const (
	TypeBool DataType = iota
	TypeInt8
	TypeInt16
	TypeInt32
	typeInt32Alt // legacy alias for TypeInt32, seen in old files
	TypeInt64
	TypeUInt8
	TypeUInt16
	TypeUInt32
	TypeUInt64
	TypeFloat32
	TypeFloat64
	TypeString
	TypeGUID
	TypeLocale
	TypeReference
	TypeVec3
	TypeVec4
	TypeEnum
	TypeVec2
	TypeStruct
)

// ArrayFlag marks a tag as an array of the masked element type.
const ArrayFlag = 0x80000000

// ParseDataType splits a raw tag into its element type and array flag.
// Unrecognized tags are returned unchanged; the decoder decides whether that
// is fatal (strict) or becomes an Unknown value (lenient).
func ParseDataType(raw uint32) (typ DataType, isArray bool) {
	if raw&ArrayFlag != 0 {
		isArray = true
		raw &^= ArrayFlag
	}
	typ = DataType(raw)
	if typ == typeInt32Alt {
		typ = TypeInt32
	}
	return typ, isArray
}

// Known reports whether the tag is part of the supported type system.
func (d DataType) Known() bool {
	return d <= TypeStruct
}

// FixedSize returns the encoded size in bytes for fixed-width types.
// Variable-width types (arrays, embedded structs) return ok=false.
func (d DataType) FixedSize() (n int, ok bool) {
	switch d {
	case TypeBool, TypeInt8, TypeUInt8:
		return 1, true
	case TypeInt16, TypeUInt16:
		return 2, true
	case TypeInt32, TypeUInt32, TypeFloat32, TypeString, TypeEnum:
		return 4, true
	case TypeInt64, TypeUInt64, TypeFloat64, TypeVec2, TypeLocale:
		return 8, true
	case TypeVec3:
		return 12, true
	case TypeVec4, TypeGUID, TypeReference:
		return 16, true
	default:
		return 0, false
	}
}

func (d DataType) String() string {
	switch d {
	case TypeBool:
		return "bool"
	case TypeInt8:
		return "int8"
	case TypeInt16:
		return "int16"
	case TypeInt32, typeInt32Alt:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeUInt8:
		return "uint8"
	case TypeUInt16:
		return "uint16"
	case TypeUInt32:
		return "uint32"
	case TypeUInt64:
		return "uint64"
	case TypeFloat32:
		return "float32"
	case TypeFloat64:
		return "float64"
	case TypeString:
		return "string"
	case TypeGUID:
		return "guid"
	case TypeLocale:
		return "locale"
	case TypeReference:
		return "reference"
	case TypeVec3:
		return "vec3"
	case TypeVec4:
		return "vec4"
	case TypeEnum:
		return "enum"
	case TypeVec2:
		return "vec2"
	case TypeStruct:
		return "struct"
	default:
		return "unknown"
	}
}
