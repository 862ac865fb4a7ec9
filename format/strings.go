package format

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// StringTable is the interned string pool of a DCB file. It is decoded once
// at open time and immutable afterwards; lookups are by byte offset into the
// string blob, exactly as they appear in schema definitions and record values.
type StringTable struct {
	offsets []uint32
	blob    []byte
}

// StringOffsetError reports a string reference outside the string blob.
type StringOffsetError struct {
	Offset uint32
	Size   int
}

func (e *StringOffsetError) Error() string {
	return fmt.Sprintf("string offset %d out of range (blob size %d)", e.Offset, e.Size)
}

// DecodeStringTable parses the string table section:
// u32 count, count*u32 offsets, u32 blobLen, blobLen bytes of NUL-terminated
// strings.
func DecodeStringTable(b []byte) (*StringTable, error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("%w: string table count", ErrTruncated)
	}
	count := binary.LittleEndian.Uint32(b)
	b = b[4:]

	need := int64(count) * 4
	if int64(len(b)) < need+4 {
		return nil, fmt.Errorf("%w: string table declares %d offsets, have %d bytes", ErrTruncated, count, len(b))
	}

	offsets := make([]uint32, count)
	for i := range offsets {
		offsets[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	b = b[need:]

	blobLen := binary.LittleEndian.Uint32(b)
	b = b[4:]
	if int64(len(b)) < int64(blobLen) {
		return nil, fmt.Errorf("%w: string blob declares %d bytes, have %d", ErrTruncated, blobLen, len(b))
	}

	t := &StringTable{
		offsets: offsets,
		blob:    b[:blobLen],
	}
	for i, off := range offsets {
		if int64(off) >= int64(blobLen) {
			return nil, fmt.Errorf("string table entry %d: %w", i, &StringOffsetError{Offset: off, Size: int(blobLen)})
		}
	}
	return t, nil
}

// Lookup resolves a byte offset to its NUL-terminated string.
func (t *StringTable) Lookup(off uint32) (string, error) {
	if int64(off) >= int64(len(t.blob)) {
		return "", &StringOffsetError{Offset: off, Size: len(t.blob)}
	}
	rest := t.blob[off:]
	if i := bytes.IndexByte(rest, 0); i >= 0 {
		rest = rest[:i]
	}
	return string(rest), nil
}

// Count returns the number of interned strings.
func (t *StringTable) Count() int {
	return len(t.offsets)
}

// BlobSize returns the size of the string blob in bytes.
func (t *StringTable) BlobSize() int {
	return len(t.blob)
}
