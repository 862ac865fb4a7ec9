package format

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DefaultMaxDepth bounds nested struct/array recursion while decoding.
// Well-formed files stay in single digits; the bound exists so malformed or
// adversarial schemas cannot blow the call stack.
const DefaultMaxDepth = 32

// UnknownTypeError reports an unrecognized wire tag in strict mode.
type UnknownTypeError struct {
	Tag      uint32
	Property string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("property %q: unknown data type tag 0x%08X", e.Property, e.Tag)
}

// NestingTooDeepError reports that decoding exceeded the configured depth.
type NestingTooDeepError struct {
	MaxDepth int
}

func (e *NestingTooDeepError) Error() string {
	return fmt.Sprintf("value nesting exceeds maximum depth %d", e.MaxDepth)
}

// Decoder turns a record's value bytes into a Value tree, driven by the
// schema catalog. It holds no mutable state, so a single Decoder is safe for
// concurrent use.
type Decoder struct {
	Catalog *Catalog
	Strings *StringTable

	// MaxDepth bounds nested struct/array recursion; 0 means DefaultMaxDepth.
	MaxDepth int

	// Lenient turns unrecognized type tags into KindUnknown placeholder
	// values instead of failing the record.
	Lenient bool
}

// Decode decodes the value region of one record of the given struct type.
// The window must start at the record's value offset; a window shorter than
// the encoded value fails with ErrTruncated.
func (d *Decoder) Decode(structID uint32, window []byte) (*Value, error) {
	r := &byteCursor{b: window}
	v, err := d.decodeStruct(structID, r, 0)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (d *Decoder) maxDepth() int {
	if d.MaxDepth > 0 {
		return d.MaxDepth
	}
	return DefaultMaxDepth
}

func (d *Decoder) decodeStruct(structID uint32, r *byteCursor, depth int) (*Value, error) {
	if depth >= d.maxDepth() {
		return nil, &NestingTooDeepError{MaxDepth: d.maxDepth()}
	}
	flat, ok := d.Catalog.Flattened(structID)
	if !ok {
		return nil, &DanglingStructError{Referrer: "record", StructID: structID}
	}

	v := &Value{Kind: KindStruct, Fields: make(map[string]*Value, len(flat))}
	for _, idx := range flat {
		prop := d.Catalog.Property(idx)
		fv, err := d.decodeProperty(prop, r, depth)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", prop.Name, err)
		}
		v.Fields[prop.Name] = fv
	}
	return v, nil
}

func (d *Decoder) decodeProperty(prop *PropertyDef, r *byteCursor, depth int) (*Value, error) {
	if !prop.IsArray {
		return d.decodeScalar(prop, r, depth)
	}
	b, err := r.take(4)
	if err != nil {
		return nil, err
	}
	count := binary.LittleEndian.Uint32(b)
	v := &Value{Kind: KindArray}
	if count > 0 {
		// Cap the preallocation; a hostile count must not allocate gigabytes
		// before the bounds-checked reads run out of window.
		v.Elems = make([]*Value, 0, min(count, 1024))
	}
	for i := uint32(0); i < count; i++ {
		ev, err := d.decodeScalar(prop, r, depth+1)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		v.Elems = append(v.Elems, ev)
	}
	return v, nil
}

func (d *Decoder) decodeScalar(prop *PropertyDef, r *byteCursor, depth int) (*Value, error) {
	switch prop.Type {
	case TypeBool:
		b, err := r.take(1)
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindBool, B: b[0] != 0}, nil

	case TypeInt8:
		b, err := r.take(1)
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindInt, I64: int64(int8(b[0]))}, nil
	case TypeInt16:
		b, err := r.take(2)
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindInt, I64: int64(int16(binary.LittleEndian.Uint16(b)))}, nil
	case TypeInt32:
		b, err := r.take(4)
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindInt, I64: int64(int32(binary.LittleEndian.Uint32(b)))}, nil
	case TypeInt64:
		b, err := r.take(8)
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindInt, I64: int64(binary.LittleEndian.Uint64(b))}, nil

	case TypeUInt8:
		b, err := r.take(1)
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindUint, U64: uint64(b[0])}, nil
	case TypeUInt16:
		b, err := r.take(2)
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindUint, U64: uint64(binary.LittleEndian.Uint16(b))}, nil
	case TypeUInt32:
		b, err := r.take(4)
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindUint, U64: uint64(binary.LittleEndian.Uint32(b))}, nil
	case TypeUInt64:
		b, err := r.take(8)
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindUint, U64: binary.LittleEndian.Uint64(b)}, nil

	case TypeFloat32:
		b, err := r.take(4)
		if err != nil {
			return nil, err
		}
		f := math.Float32frombits(binary.LittleEndian.Uint32(b))
		return &Value{Kind: KindFloat, F64: float64(f)}, nil
	case TypeFloat64:
		b, err := r.take(8)
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindFloat, F64: math.Float64frombits(binary.LittleEndian.Uint64(b))}, nil

	case TypeString, TypeEnum:
		b, err := r.take(4)
		if err != nil {
			return nil, err
		}
		s, err := d.Strings.Lookup(binary.LittleEndian.Uint32(b))
		if err != nil {
			return nil, err
		}
		kind := KindString
		if prop.Type == TypeEnum {
			kind = KindEnum
		}
		return &Value{Kind: kind, Str: s}, nil

	case TypeLocale:
		b, err := r.take(8)
		if err != nil {
			return nil, err
		}
		key, err := d.Strings.Lookup(binary.LittleEndian.Uint32(b[0:4]))
		if err != nil {
			return nil, err
		}
		s, err := d.Strings.Lookup(binary.LittleEndian.Uint32(b[4:8]))
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindLocale, Key: key, Str: s}, nil

	case TypeGUID, TypeReference:
		b, err := r.take(16)
		if err != nil {
			return nil, err
		}
		var g GUID
		copy(g[:], b)
		kind := KindGUID
		if prop.Type == TypeReference {
			// References stay unresolved; the caller resolves GUIDs through
			// the record index, never during decode.
			kind = KindReference
		}
		return &Value{Kind: kind, Guid: g}, nil

	case TypeVec2, TypeVec3, TypeVec4:
		n := 2
		kind := KindVec2
		switch prop.Type {
		case TypeVec3:
			n, kind = 3, KindVec3
		case TypeVec4:
			n, kind = 4, KindVec4
		}
		b, err := r.take(n * 4)
		if err != nil {
			return nil, err
		}
		v := &Value{Kind: kind}
		for i := 0; i < n; i++ {
			v.Vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
		}
		return v, nil

	case TypeStruct:
		return d.decodeStruct(prop.StructID, r, depth+1)

	default:
		if d.Lenient {
			// Unknown tags have unknown width, so nothing is consumed; any
			// following properties of this record decode from the same spot.
			return &Value{Kind: KindUnknown, RawTag: prop.RawType}, nil
		}
		return nil, &UnknownTypeError{Tag: prop.RawType, Property: prop.Name}
	}
}

// byteCursor is a bounds-checked cursor over a record's value window.
type byteCursor struct {
	b   []byte
	off int
}

func (r *byteCursor) take(n int) ([]byte, error) {
	if r.off+n > len(r.b) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, window has %d", ErrTruncated, n, r.off, len(r.b))
	}
	b := r.b[r.off : r.off+n]
	r.off += n
	return b, nil
}
