// Package index provides the metadata-only record catalog of an open DCB
// database: every record's identity and value offset, plus lookup tables by
// struct type, GUID, and lowercased name.
//
// The index is built once during open from record headers alone, never
// touching value bytes, and is immutable afterwards, so it is shared across
// goroutines without synchronization.
package index

import (
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/dcbgo/format"
)

// Meta is the immutable metadata of one record. Size is the length of the
// record's value region, derived from the gap to the next region at build
// time so single-record loads read exactly one bounded window.
type Meta struct {
	ID       uint32
	Name     string
	Guid     format.GUID
	StructID uint32
	Offset   uint64
	Size     int64
}

// Warning is a non-fatal irregularity found while building the index.
// Duplicate GUIDs fall in this bucket: the first occurrence wins, later ones
// are reported here and stay reachable by id.
type Warning struct {
	RecordID uint32
	Guid     format.GUID
	Message  string
}

// Index is the record catalog. Postings per struct and per name are kept as
// roaring bitmaps; record ids are dense, so the bitmaps stay tiny while
// unions for substring search remain cheap.
type Index struct {
	metas    []Meta
	byGUID   map[format.GUID]uint32
	byStruct map[uint32]*roaring.Bitmap
	byName   map[string]*roaring.Bitmap
	warnings []Warning
}

// Build constructs the index from decoded record metadata. Metas must be in
// record-id order.
func Build(metas []Meta) *Index {
	x := &Index{
		metas:    metas,
		byGUID:   make(map[format.GUID]uint32, len(metas)),
		byStruct: make(map[uint32]*roaring.Bitmap),
		byName:   make(map[string]*roaring.Bitmap),
	}

	for i := range metas {
		m := &metas[i]

		if prev, ok := x.byGUID[m.Guid]; ok {
			x.warnings = append(x.warnings, Warning{
				RecordID: m.ID,
				Guid:     m.Guid,
				Message:  "duplicate GUID, first occurrence retained (record " + x.metas[prev].Name + ")",
			})
		} else {
			x.byGUID[m.Guid] = m.ID
		}

		bm := x.byStruct[m.StructID]
		if bm == nil {
			bm = roaring.New()
			x.byStruct[m.StructID] = bm
		}
		bm.Add(m.ID)

		if m.Name != "" {
			lower := strings.ToLower(m.Name)
			nbm := x.byName[lower]
			if nbm == nil {
				nbm = roaring.New()
				x.byName[lower] = nbm
			}
			nbm.Add(m.ID)
		}
	}
	return x
}

// Len returns the number of indexed records.
func (x *Index) Len() int { return len(x.metas) }

// Meta returns the metadata for a record id.
func (x *Index) Meta(id uint32) (*Meta, bool) {
	if int64(id) >= int64(len(x.metas)) {
		return nil, false
	}
	return &x.metas[id], true
}

// ByGUID resolves a GUID to its record. Duplicate GUIDs resolve to the first
// occurrence.
func (x *Index) ByGUID(g format.GUID) (*Meta, bool) {
	id, ok := x.byGUID[g]
	if !ok {
		return nil, false
	}
	return &x.metas[id], true
}

// ByStruct returns the record ids of all records of the given struct type,
// in record order.
func (x *Index) ByStruct(structID uint32) []uint32 {
	bm, ok := x.byStruct[structID]
	if !ok {
		return nil
	}
	return bm.ToArray()
}

// ByName returns the first record with the given name (case-insensitive
// exact match).
func (x *Index) ByName(name string) (*Meta, bool) {
	bm, ok := x.byName[strings.ToLower(name)]
	if !ok || bm.IsEmpty() {
		return nil, false
	}
	return &x.metas[bm.Minimum()], true
}

// SearchName returns the ids of all records whose lowercased name contains
// the query substring, in record order.
func (x *Index) SearchName(query string) []uint32 {
	query = strings.ToLower(query)
	acc := roaring.New()
	keys := make([]string, 0, len(x.byName))
	for name := range x.byName {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	for _, name := range keys {
		if strings.Contains(name, query) {
			acc.Or(x.byName[name])
		}
	}
	if acc.IsEmpty() {
		return nil
	}
	return acc.ToArray()
}

// Warnings returns the non-fatal irregularities recorded during the build.
func (x *Index) Warnings() []Warning { return x.warnings }
