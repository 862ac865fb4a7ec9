// Package format implements the DCB binary format: the file header, the
// interned string table, struct/property schema definitions, record headers,
// and the schema-driven value decoder.
//
// Everything in this package is a pure function of bytes plus schema. No I/O
// happens here; callers hand in byte windows read from a blobstore.Blob and
// get back immutable decoded structures. This keeps the decoder trivially
// safe to run from many goroutines at once.
//
// # Layout
//
//	┌──────────────────────────────────────────────┐
//	│ Header (36 bytes)                            │
//	│   magic "DCB1", version, counts, offsets     │
//	├──────────────────────────────────────────────┤
//	│ String table                                 │
//	│   count, offsets, NUL-terminated blob        │
//	├──────────────────────────────────────────────┤
//	│ Struct definitions (24 bytes each)           │
//	├──────────────────────────────────────────────┤
//	│ Property definitions (16 bytes each)         │
//	├──────────────────────────────────────────────┤
//	│ Record headers (32 bytes each)               │
//	├──────────────────────────────────────────────┤
//	│ Record value regions                         │
//	└──────────────────────────────────────────────┘
//
// All integers are little-endian.
package format
