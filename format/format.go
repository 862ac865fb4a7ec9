package format

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// Magic identifies DCB files (ASCII "DCB1" read as little-endian uint32).
	Magic = 0x31424344
	// Version is the only supported file format version.
	Version = 1

	// HeaderSize is the fixed size of the file header in bytes.
	HeaderSize = 36
	// StructDefSize is the on-disk size of one struct definition.
	StructDefSize = 24
	// PropertyDefSize is the on-disk size of one property definition.
	PropertyDefSize = 16
	// RecordHeaderSize is the on-disk size of one record header.
	RecordHeaderSize = 32

	// NoneID is the sentinel for "no parent struct" / "no referenced struct".
	NoneID = 0xFFFFFFFF
)

var (
	// ErrInvalidMagic is returned when the file does not start with "DCB1".
	ErrInvalidMagic = errors.New("invalid magic number")
	// ErrInvalidVersion is returned for format versions this decoder does not support.
	ErrInvalidVersion = errors.New("unsupported version")
	// ErrTruncated is returned when a section or value region is shorter than
	// its declared contents.
	ErrTruncated = errors.New("truncated data")
)

// Header is the decoded 36-byte file header. Section offsets are absolute
// byte positions in the underlying blob.
type Header struct {
	Version        uint32
	StructCount    uint32
	PropertyCount  uint32
	RecordCount    uint32
	StringOffset   uint32
	StructOffset   uint32
	PropertyOffset uint32
	RecordOffset   uint32
}

// DecodeHeader parses the file header and validates magic, version, and that
// every section offset lies within a blob of the given size.
func DecodeHeader(b []byte, blobSize int64) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncated, HeaderSize, len(b))
	}

	magic := binary.LittleEndian.Uint32(b[0:4])
	if magic != Magic {
		return Header{}, fmt.Errorf("%w: 0x%08X", ErrInvalidMagic, magic)
	}

	h := Header{
		Version:        binary.LittleEndian.Uint32(b[4:8]),
		StructCount:    binary.LittleEndian.Uint32(b[8:12]),
		PropertyCount:  binary.LittleEndian.Uint32(b[12:16]),
		RecordCount:    binary.LittleEndian.Uint32(b[16:20]),
		StringOffset:   binary.LittleEndian.Uint32(b[20:24]),
		StructOffset:   binary.LittleEndian.Uint32(b[24:28]),
		PropertyOffset: binary.LittleEndian.Uint32(b[28:32]),
		RecordOffset:   binary.LittleEndian.Uint32(b[32:36]),
	}

	if h.Version != Version {
		return Header{}, fmt.Errorf("%w: %d (expected %d)", ErrInvalidVersion, h.Version, Version)
	}

	sections := []struct {
		name   string
		offset uint32
		length int64
	}{
		{"string table", h.StringOffset, 0},
		{"struct definitions", h.StructOffset, int64(h.StructCount) * StructDefSize},
		{"property definitions", h.PropertyOffset, int64(h.PropertyCount) * PropertyDefSize},
		{"record headers", h.RecordOffset, int64(h.RecordCount) * RecordHeaderSize},
	}
	for _, s := range sections {
		if int64(s.offset) < HeaderSize || int64(s.offset) > blobSize {
			return Header{}, fmt.Errorf("%s section offset %d outside blob of %d bytes", s.name, s.offset, blobSize)
		}
		if int64(s.offset)+s.length > blobSize {
			return Header{}, fmt.Errorf("%w: %s section of %d bytes at offset %d exceeds blob of %d bytes",
				ErrTruncated, s.name, s.length, s.offset, blobSize)
		}
	}

	return h, nil
}
