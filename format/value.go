package format

import (
	"encoding/json"
	"fmt"
)

// Kind discriminates the variants of a decoded Value.
type Kind uint8

const (
	KindBool Kind = iota
	KindInt
	KindUint
	KindFloat
	KindString
	KindEnum
	KindLocale
	KindGUID
	KindReference
	KindVec2
	KindVec3
	KindVec4
	KindStruct
	KindArray
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindEnum:
		return "enum"
	case KindLocale:
		return "locale"
	case KindGUID:
		return "guid"
	case KindReference:
		return "reference"
	case KindVec2:
		return "vec2"
	case KindVec3:
		return "vec3"
	case KindVec4:
		return "vec4"
	case KindStruct:
		return "struct"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is one node of a decoded record tree. Decoding is a pure function of
// bytes plus schema, so values are logically immutable once produced; callers
// must not mutate them.
//
// Signed integers of any width land in I64, unsigned in U64, both float
// widths in F64. Enum symbols and locale strings resolve through the string
// table at decode time. References carry the raw target GUID only.
type Value struct {
	Kind Kind

	B   bool
	I64 int64
	U64 uint64
	F64 float64
	Str string
	Key string // locale key, set for KindLocale

	Guid GUID       // KindGUID and KindReference
	Vec  [4]float32 // KindVec2/3/4 use the first 2/3/4 components

	Fields map[string]*Value // KindStruct
	Elems  []*Value          // KindArray

	RawTag uint32 // KindUnknown: the unrecognized wire tag
}

// Get returns the named field of a struct value.
func (v *Value) Get(name string) (*Value, bool) {
	if v == nil || v.Kind != KindStruct {
		return nil, false
	}
	f, ok := v.Fields[name]
	return f, ok
}

// Has reports whether a struct value carries the named field.
func (v *Value) Has(name string) bool {
	_, ok := v.Get(name)
	return ok
}

// PropertyNames returns the field names of a struct value.
func (v *Value) PropertyNames() []string {
	if v == nil || v.Kind != KindStruct {
		return nil
	}
	names := make([]string, 0, len(v.Fields))
	for name := range v.Fields {
		names = append(names, name)
	}
	return names
}

// GetString returns a string-like field (string, enum symbol, locale text).
func (v *Value) GetString(name string) (string, bool) {
	f, ok := v.Get(name)
	if !ok {
		return "", false
	}
	switch f.Kind {
	case KindString, KindEnum, KindLocale:
		return f.Str, true
	}
	return "", false
}

// GetInt returns an integer field, converting between widths and signedness.
func (v *Value) GetInt(name string) (int64, bool) {
	f, ok := v.Get(name)
	if !ok {
		return 0, false
	}
	switch f.Kind {
	case KindInt:
		return f.I64, true
	case KindUint:
		return int64(f.U64), true
	case KindBool:
		if f.B {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// GetFloat returns a numeric field as float64.
func (v *Value) GetFloat(name string) (float64, bool) {
	f, ok := v.Get(name)
	if !ok {
		return 0, false
	}
	switch f.Kind {
	case KindFloat:
		return f.F64, true
	case KindInt:
		return float64(f.I64), true
	case KindUint:
		return float64(f.U64), true
	}
	return 0, false
}

// GetBool returns a boolean field; integers convert as non-zero = true.
func (v *Value) GetBool(name string) (bool, bool) {
	f, ok := v.Get(name)
	if !ok {
		return false, false
	}
	switch f.Kind {
	case KindBool:
		return f.B, true
	case KindInt:
		return f.I64 != 0, true
	case KindUint:
		return f.U64 != 0, true
	}
	return false, false
}

// GetVec3 returns a vec3 field.
func (v *Value) GetVec3(name string) ([3]float32, bool) {
	f, ok := v.Get(name)
	if !ok || f.Kind != KindVec3 {
		return [3]float32{}, false
	}
	return [3]float32{f.Vec[0], f.Vec[1], f.Vec[2]}, true
}

// GetReference returns the target GUID of a reference field.
func (v *Value) GetReference(name string) (GUID, bool) {
	f, ok := v.Get(name)
	if !ok || f.Kind != KindReference {
		return NilGUID, false
	}
	return f.Guid, true
}

// Equal reports deep equality of two value trees.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindBool:
		return v.B == o.B
	case KindInt:
		return v.I64 == o.I64
	case KindUint:
		return v.U64 == o.U64
	case KindFloat:
		return v.F64 == o.F64
	case KindString, KindEnum:
		return v.Str == o.Str
	case KindLocale:
		return v.Key == o.Key && v.Str == o.Str
	case KindGUID, KindReference:
		return v.Guid == o.Guid
	case KindVec2, KindVec3, KindVec4:
		return v.Vec == o.Vec
	case KindStruct:
		if len(v.Fields) != len(o.Fields) {
			return false
		}
		for name, f := range v.Fields {
			of, ok := o.Fields[name]
			if !ok || !f.Equal(of) {
				return false
			}
		}
		return true
	case KindArray:
		if len(v.Elems) != len(o.Elems) {
			return false
		}
		for i := range v.Elems {
			if !v.Elems[i].Equal(o.Elems[i]) {
				return false
			}
		}
		return true
	case KindUnknown:
		return v.RawTag == o.RawTag
	}
	return false
}

// MarshalJSON projects the value tree to JSON for downstream exporters.
// GUIDs and references render as canonical GUID strings, vectors as arrays,
// locale strings as {key, value} objects.
func (v *Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindBool:
		return json.Marshal(v.B)
	case KindInt:
		return json.Marshal(v.I64)
	case KindUint:
		return json.Marshal(v.U64)
	case KindFloat:
		return json.Marshal(v.F64)
	case KindString, KindEnum:
		return json.Marshal(v.Str)
	case KindLocale:
		return json.Marshal(map[string]string{"key": v.Key, "value": v.Str})
	case KindGUID:
		return json.Marshal(v.Guid.String())
	case KindReference:
		return json.Marshal(map[string]string{"ref": v.Guid.String()})
	case KindVec2:
		return json.Marshal(v.Vec[:2])
	case KindVec3:
		return json.Marshal(v.Vec[:3])
	case KindVec4:
		return json.Marshal(v.Vec[:])
	case KindStruct:
		return json.Marshal(v.Fields)
	case KindArray:
		if v.Elems == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Elems)
	case KindUnknown:
		return json.Marshal(map[string]uint32{"unknown_tag": v.RawTag})
	}
	return nil, fmt.Errorf("unhandled value kind %d", v.Kind)
}
