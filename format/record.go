package format

import (
	"encoding/binary"
	"fmt"
)

// RecordHeader is the fixed-size on-disk header of one record. It carries
// metadata only; the value bytes live elsewhere in the blob, at ValueOffset.
type RecordHeader struct {
	StructID    uint32
	NameOffset  uint32
	Guid        GUID
	ValueOffset uint64
}

// DecodeRecordHeader parses one 32-byte record header.
func DecodeRecordHeader(b []byte) (RecordHeader, error) {
	if len(b) < RecordHeaderSize {
		return RecordHeader{}, fmt.Errorf("%w: record header needs %d bytes, have %d", ErrTruncated, RecordHeaderSize, len(b))
	}
	var h RecordHeader
	h.StructID = binary.LittleEndian.Uint32(b[0:4])
	h.NameOffset = binary.LittleEndian.Uint32(b[4:8])
	copy(h.Guid[:], b[8:24])
	h.ValueOffset = binary.LittleEndian.Uint64(b[24:32])
	return h, nil
}
