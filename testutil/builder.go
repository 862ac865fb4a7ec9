// Package testutil builds DCB images in memory for tests: schema, string
// table, records, and value bytes assembled into a well-formed blob. Tests
// that need malformed images patch the returned bytes directly.
//
// This package is intended for use in tests and benchmarks only.
package testutil

import (
	"encoding/binary"
	"math"

	"github.com/hupe1980/dcbgo/blobstore"
	"github.com/hupe1980/dcbgo/format"
)

// Prop declares one property of a struct under construction.
type Prop struct {
	Name       string
	Type       format.DataType
	IsArray    bool
	StructID   uint32
	Conversion uint32

	// RawTag, when non-zero, overrides the encoded type tag. Used to plant
	// unrecognized tags.
	RawTag uint32
}

// P declares a scalar property.
func P(name string, typ format.DataType) Prop {
	return Prop{Name: name, Type: typ, StructID: format.NoneID}
}

// ArrP declares an array property.
func ArrP(name string, typ format.DataType) Prop {
	return Prop{Name: name, Type: typ, IsArray: true, StructID: format.NoneID}
}

// StructP declares an embedded-struct property.
func StructP(name string, structID uint32) Prop {
	return Prop{Name: name, Type: format.TypeStruct, StructID: structID}
}

// RawP declares a property with an arbitrary wire tag.
func RawP(name string, rawTag uint32) Prop {
	return Prop{Name: name, RawTag: rawTag, StructID: format.NoneID}
}

type structEntry struct {
	nameOff   uint32
	parentID  uint32
	propStart uint32
	propCount uint32
	size      uint32
	flags     uint32
}

type propEntry struct {
	nameOff    uint32
	typeTag    uint32
	structID   uint32
	conversion uint32
}

type recordEntry struct {
	structID uint32
	nameOff  uint32
	guid     format.GUID
	valueOff uint32 // relative to the start of the value region
}

// Builder assembles a DCB image. Strings intern on first use, so offsets are
// stable as soon as a name or value string is added.
type Builder struct {
	stringIndex map[string]uint32
	stringOrder []uint32
	stringBlob  []byte

	structs []structEntry
	props   []propEntry
	records []recordEntry
	values  []byte
}

// NewBuilder creates an empty image builder.
func NewBuilder() *Builder {
	return &Builder{stringIndex: make(map[string]uint32)}
}

// Intern adds a string to the pool and returns its blob offset.
func (b *Builder) Intern(s string) uint32 {
	if off, ok := b.stringIndex[s]; ok {
		return off
	}
	off := uint32(len(b.stringBlob))
	b.stringBlob = append(b.stringBlob, s...)
	b.stringBlob = append(b.stringBlob, 0)
	b.stringIndex[s] = off
	b.stringOrder = append(b.stringOrder, off)
	return off
}

// AddStruct declares a struct and its own (non-inherited) properties,
// returning the struct id. Pass format.NoneID for parentID on root structs.
func (b *Builder) AddStruct(name string, parentID, flags uint32, props ...Prop) uint32 {
	id := uint32(len(b.structs))
	b.structs = append(b.structs, structEntry{
		nameOff:   b.Intern(name),
		parentID:  parentID,
		propStart: uint32(len(b.props)),
		propCount: uint32(len(props)),
		flags:     flags,
	})
	for _, p := range props {
		tag := p.RawTag
		if tag == 0 {
			tag = uint32(p.Type)
			if p.IsArray {
				tag |= format.ArrayFlag
			}
		}
		b.props = append(b.props, propEntry{
			nameOff:    b.Intern(p.Name),
			typeTag:    tag,
			structID:   p.StructID,
			conversion: p.Conversion,
		})
	}
	return id
}

// AddRecord appends a record of the given struct type with the given value
// bytes, returning the record id. Value regions are laid out in insertion
// order.
func (b *Builder) AddRecord(structID uint32, name string, guid format.GUID, value []byte) uint32 {
	id := uint32(len(b.records))
	b.records = append(b.records, recordEntry{
		structID: structID,
		nameOff:  b.Intern(name),
		guid:     guid,
		valueOff: uint32(len(b.values)),
	})
	b.values = append(b.values, value...)
	return id
}

// Build lays out and returns the complete image:
// header | string table | struct defs | property defs | record headers | values.
func (b *Builder) Build() []byte {
	stringTableSize := 4 + 4*len(b.stringOrder) + 4 + len(b.stringBlob)
	stringOff := format.HeaderSize
	structOff := stringOff + stringTableSize
	propOff := structOff + len(b.structs)*format.StructDefSize
	recordOff := propOff + len(b.props)*format.PropertyDefSize
	valueOff := recordOff + len(b.records)*format.RecordHeaderSize

	out := make([]byte, 0, valueOff+len(b.values))
	le := binary.LittleEndian

	var scratch [8]byte
	u32 := func(v uint32) {
		le.PutUint32(scratch[:4], v)
		out = append(out, scratch[:4]...)
	}
	u64 := func(v uint64) {
		le.PutUint64(scratch[:8], v)
		out = append(out, scratch[:8]...)
	}

	u32(format.Magic)
	u32(format.Version)
	u32(uint32(len(b.structs)))
	u32(uint32(len(b.props)))
	u32(uint32(len(b.records)))
	u32(uint32(stringOff))
	u32(uint32(structOff))
	u32(uint32(propOff))
	u32(uint32(recordOff))

	u32(uint32(len(b.stringOrder)))
	for _, off := range b.stringOrder {
		u32(off)
	}
	u32(uint32(len(b.stringBlob)))
	out = append(out, b.stringBlob...)

	for _, s := range b.structs {
		u32(s.nameOff)
		u32(s.parentID)
		u32(s.propStart)
		u32(s.propCount)
		u32(s.size)
		u32(s.flags)
	}

	for _, p := range b.props {
		u32(p.nameOff)
		u32(p.typeTag)
		u32(p.structID)
		u32(p.conversion)
	}

	for _, r := range b.records {
		u32(r.structID)
		u32(r.nameOff)
		out = append(out, r.guid[:]...)
		u64(uint64(valueOff) + uint64(r.valueOff))
	}

	out = append(out, b.values...)
	return out
}

// Blob builds the image and wraps it in an in-memory blob.
func (b *Builder) Blob() blobstore.Blob {
	return blobstore.NewMemoryBlob(b.Build())
}

// ValueWriter encodes a record's value bytes, interning strings through the
// builder so offsets land in the shared pool.
type ValueWriter struct {
	b   *Builder
	buf []byte
}

// NewValue starts encoding one record value.
func (b *Builder) NewValue() *ValueWriter {
	return &ValueWriter{b: b}
}

// Bytes returns the encoded value.
func (w *ValueWriter) Bytes() []byte { return w.buf }

func (w *ValueWriter) u32(v uint32) *ValueWriter {
	var s [4]byte
	binary.LittleEndian.PutUint32(s[:], v)
	w.buf = append(w.buf, s[:]...)
	return w
}

func (w *ValueWriter) u64(v uint64) *ValueWriter {
	var s [8]byte
	binary.LittleEndian.PutUint64(s[:], v)
	w.buf = append(w.buf, s[:]...)
	return w
}

// Bool appends a one-byte boolean.
func (w *ValueWriter) Bool(v bool) *ValueWriter {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
	return w
}

// Int8 appends a signed 8-bit integer.
func (w *ValueWriter) Int8(v int8) *ValueWriter {
	w.buf = append(w.buf, byte(v))
	return w
}

// Int16 appends a signed 16-bit integer.
func (w *ValueWriter) Int16(v int16) *ValueWriter {
	var s [2]byte
	binary.LittleEndian.PutUint16(s[:], uint16(v))
	w.buf = append(w.buf, s[:]...)
	return w
}

// Int32 appends a signed 32-bit integer.
func (w *ValueWriter) Int32(v int32) *ValueWriter { return w.u32(uint32(v)) }

// Int64 appends a signed 64-bit integer.
func (w *ValueWriter) Int64(v int64) *ValueWriter { return w.u64(uint64(v)) }

// Uint8 appends an unsigned 8-bit integer.
func (w *ValueWriter) Uint8(v uint8) *ValueWriter {
	w.buf = append(w.buf, v)
	return w
}

// Uint16 appends an unsigned 16-bit integer.
func (w *ValueWriter) Uint16(v uint16) *ValueWriter {
	var s [2]byte
	binary.LittleEndian.PutUint16(s[:], v)
	w.buf = append(w.buf, s[:]...)
	return w
}

// Uint32 appends an unsigned 32-bit integer.
func (w *ValueWriter) Uint32(v uint32) *ValueWriter { return w.u32(v) }

// Uint64 appends an unsigned 64-bit integer.
func (w *ValueWriter) Uint64(v uint64) *ValueWriter { return w.u64(v) }

// Float32 appends a 32-bit float.
func (w *ValueWriter) Float32(v float32) *ValueWriter {
	return w.u32(math.Float32bits(v))
}

// Float64 appends a 64-bit float.
func (w *ValueWriter) Float64(v float64) *ValueWriter {
	return w.u64(math.Float64bits(v))
}

// String interns s and appends its string-table offset.
func (w *ValueWriter) String(s string) *ValueWriter {
	return w.u32(w.b.Intern(s))
}

// Enum encodes like String; the schema's type tag makes the difference.
func (w *ValueWriter) Enum(s string) *ValueWriter {
	return w.String(s)
}

// Locale appends a locale string as key and value offsets.
func (w *ValueWriter) Locale(key, value string) *ValueWriter {
	return w.u32(w.b.Intern(key)).u32(w.b.Intern(value))
}

// GUID appends 16 raw GUID bytes. Reference fields encode identically.
func (w *ValueWriter) GUID(g format.GUID) *ValueWriter {
	w.buf = append(w.buf, g[:]...)
	return w
}

// Vec2 appends two float32 components.
func (w *ValueWriter) Vec2(x, y float32) *ValueWriter {
	return w.Float32(x).Float32(y)
}

// Vec3 appends three float32 components.
func (w *ValueWriter) Vec3(x, y, z float32) *ValueWriter {
	return w.Float32(x).Float32(y).Float32(z)
}

// Vec4 appends four float32 components.
func (w *ValueWriter) Vec4(x, y, z, t float32) *ValueWriter {
	return w.Float32(x).Float32(y).Float32(z).Float32(t)
}

// Count appends an array element count.
func (w *ValueWriter) Count(n uint32) *ValueWriter {
	return w.u32(n)
}

// Raw appends arbitrary bytes.
func (w *ValueWriter) Raw(b []byte) *ValueWriter {
	w.buf = append(w.buf, b...)
	return w
}
