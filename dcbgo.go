package dcbgo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync/atomic"
	"time"

	"github.com/hupe1980/dcbgo/blobstore"
	"github.com/hupe1980/dcbgo/format"
	"github.com/hupe1980/dcbgo/index"
)

// RecordMeta is the immutable metadata of one record, handed out by the
// lookup methods and consumed by LoadRecord.
type RecordMeta = index.Meta

// IndexWarning is a non-fatal irregularity found while indexing records,
// such as a duplicate GUID.
type IndexWarning = index.Warning

// DataCore is a lazily loading view over one DCB database blob. Opening
// parses metadata only; record values decode on first access and stay cached
// until unloaded.
//
// All methods are safe for concurrent use. Metadata is immutable after Open;
// the per-record value cache uses atomic cells, so concurrent loads of the
// same record may decode redundantly but never observe torn values.
type DataCore struct {
	blob    blobstore.Blob
	header  format.Header
	strings *format.StringTable
	catalog *format.Catalog
	idx     *index.Index
	decoder *format.Decoder

	// cells is the per-record value cache, indexed by record id. nil means
	// not loaded.
	cells []atomic.Pointer[format.Value]

	closed atomic.Bool

	logger  *Logger
	metrics MetricsCollector
	opts    *options
}

// Open constructs a DataCore from a blob. It reads and validates the header,
// string table, schema catalog, and record headers in one synchronous pass;
// no record value bytes are touched.
//
// Failures return *StructuralError for file-level problems and *SchemaError
// for inconsistent schemas. In both cases no DataCore is returned and the
// blob is left open for the caller.
func Open(ctx context.Context, blob blobstore.Blob, optFns ...Option) (*DataCore, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(opts)
	}

	start := time.Now()

	if opts.blockCacheCapacity > 0 {
		blob = blobstore.NewCachingBlob(blob, opts.blockCacheCapacity, opts.blockCacheBlockSize)
	}

	dc, err := open(ctx, blob, opts)

	duration := time.Since(start)
	opts.metrics.RecordOpen(duration, err)
	if err != nil {
		opts.logger.LogOpen(ctx, 0, 0, 0, duration, err)
		return nil, err
	}
	opts.logger.LogOpen(ctx, dc.idx.Len(), dc.catalog.NumStructs(), len(dc.idx.Warnings()), duration, nil)
	for _, w := range dc.idx.Warnings() {
		opts.logger.WithRecord(w.RecordID, w.Guid).Warn("index warning", "message", w.Message)
	}

	return dc, nil
}

func open(ctx context.Context, blob blobstore.Blob, opts *options) (*DataCore, error) {
	size := blob.Size()

	headerBytes, err := readSection(ctx, blob, 0, format.HeaderSize, size)
	if err != nil {
		return nil, &StructuralError{Reason: "read header: " + err.Error(), cause: err}
	}
	header, err := format.DecodeHeader(headerBytes, size)
	if err != nil {
		return nil, translateOpenError(err)
	}

	stringBytes, err := readSection(ctx, blob, int64(header.StringOffset),
		sectionWindow(header, size, header.StringOffset), size)
	if err != nil {
		return nil, &StructuralError{Reason: "read string table: " + err.Error(), cause: err}
	}
	strings, err := format.DecodeStringTable(stringBytes)
	if err != nil {
		return nil, translateOpenError(err)
	}

	structBytes, err := readSection(ctx, blob, int64(header.StructOffset),
		int64(header.StructCount)*format.StructDefSize, size)
	if err != nil {
		return nil, &StructuralError{Reason: "read struct definitions: " + err.Error(), cause: err}
	}
	propBytes, err := readSection(ctx, blob, int64(header.PropertyOffset),
		int64(header.PropertyCount)*format.PropertyDefSize, size)
	if err != nil {
		return nil, &StructuralError{Reason: "read property definitions: " + err.Error(), cause: err}
	}
	catalog, err := format.DecodeCatalog(structBytes, propBytes, strings)
	if err != nil {
		return nil, translateOpenError(err)
	}

	recordBytes, err := readSection(ctx, blob, int64(header.RecordOffset),
		int64(header.RecordCount)*format.RecordHeaderSize, size)
	if err != nil {
		return nil, &StructuralError{Reason: "read record headers: " + err.Error(), cause: err}
	}
	metas, err := decodeRecordMetas(recordBytes, header, strings, catalog, size)
	if err != nil {
		return nil, translateOpenError(err)
	}

	return &DataCore{
		blob:    blob,
		header:  header,
		strings: strings,
		catalog: catalog,
		idx:     index.Build(metas),
		decoder: &format.Decoder{
			Catalog:  catalog,
			Strings:  strings,
			MaxDepth: opts.maxDepth,
			Lenient:  opts.lenientTypes,
		},
		cells:   make([]atomic.Pointer[format.Value], len(metas)),
		logger:  opts.logger,
		metrics: opts.metrics,
		opts:    opts,
	}, nil
}

// readSection reads exactly length bytes at off, failing on truncation.
func readSection(ctx context.Context, blob blobstore.Blob, off, length, size int64) ([]byte, error) {
	if length == 0 {
		return nil, nil
	}
	if off < 0 || off+length > size {
		return nil, fmt.Errorf("%w: section [%d,%d) outside blob of %d bytes", format.ErrTruncated, off, off+length, size)
	}
	buf := make([]byte, length)
	n, err := blob.ReadAt(ctx, buf, off)
	if err != nil && !(errors.Is(err, io.EOF) && int64(n) == length) {
		return nil, err
	}
	if int64(n) < length {
		return nil, fmt.Errorf("%w: section at %d: got %d of %d bytes", format.ErrTruncated, off, n, length)
	}
	return buf, nil
}

// sectionWindow returns the byte length from off to the start of the nearest
// following section, or to the end of the blob. Used for the string table,
// whose on-disk length is self-describing but unknown before parsing.
func sectionWindow(h format.Header, size int64, off uint32) int64 {
	end := size
	for _, o := range []uint32{h.StringOffset, h.StructOffset, h.PropertyOffset, h.RecordOffset} {
		if int64(o) > int64(off) && int64(o) < end {
			end = int64(o)
		}
	}
	return end - int64(off)
}

// decodeRecordMetas parses record headers into index metadata. Each record's
// value-region size derives from the gap to the next value offset (or the end
// of the blob), so a single load reads one bounded window.
func decodeRecordMetas(b []byte, h format.Header, strings *format.StringTable, catalog *format.Catalog, blobSize int64) ([]index.Meta, error) {
	metas := make([]index.Meta, h.RecordCount)

	offsets := make([]uint64, 0, h.RecordCount)
	for i := range metas {
		rh, err := format.DecodeRecordHeader(b[i*format.RecordHeaderSize:])
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if _, ok := catalog.Struct(rh.StructID); !ok {
			return nil, &format.DanglingStructError{Referrer: fmt.Sprintf("record %d", i), StructID: rh.StructID}
		}
		if rh.ValueOffset > uint64(blobSize) {
			return nil, fmt.Errorf("record %d: value offset %d outside blob of %d bytes", i, rh.ValueOffset, blobSize)
		}
		name, err := strings.Lookup(rh.NameOffset)
		if err != nil {
			return nil, fmt.Errorf("record %d name: %w", i, err)
		}
		metas[i] = index.Meta{
			ID:       uint32(i),
			Name:     name,
			Guid:     rh.Guid,
			StructID: rh.StructID,
			Offset:   rh.ValueOffset,
		}
		offsets = append(offsets, rh.ValueOffset)
	}

	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })
	for i := range metas {
		m := &metas[i]
		// First offset strictly greater than ours bounds the value region.
		j := sort.Search(len(offsets), func(k int) bool { return offsets[k] > m.Offset })
		if j < len(offsets) {
			m.Size = int64(offsets[j] - m.Offset)
		} else {
			m.Size = blobSize - int64(m.Offset)
		}
	}

	return metas, nil
}

// RecordCount returns the number of records in the database.
func (dc *DataCore) RecordCount() int {
	return dc.idx.Len()
}

// FindByStruct returns the metadata of all records whose struct type has the
// given name, in record order. Unknown struct names return nil.
func (dc *DataCore) FindByStruct(name string) []*RecordMeta {
	def, ok := dc.catalog.StructByName(name)
	if !ok {
		return nil
	}
	ids := dc.idx.ByStruct(def.ID)
	metas := make([]*RecordMeta, 0, len(ids))
	for _, id := range ids {
		m, _ := dc.idx.Meta(id)
		metas = append(metas, m)
	}
	return metas
}

// FindByName returns all records whose lowercased name contains the query
// substring, in record order.
func (dc *DataCore) FindByName(query string) []*RecordMeta {
	ids := dc.idx.SearchName(query)
	metas := make([]*RecordMeta, 0, len(ids))
	for _, id := range ids {
		m, _ := dc.idx.Meta(id)
		metas = append(metas, m)
	}
	return metas
}

// GetRecord resolves a GUID to its record metadata. Duplicate GUIDs resolve
// to the first occurrence in record order.
func (dc *DataCore) GetRecord(guid format.GUID) (*RecordMeta, bool) {
	return dc.idx.ByGUID(guid)
}

// GetRecordByName returns the first record with the given name
// (case-insensitive exact match).
func (dc *DataCore) GetRecordByName(name string) (*RecordMeta, bool) {
	return dc.idx.ByName(name)
}

// StructNames returns all schema struct names in definition order.
func (dc *DataCore) StructNames() []string {
	return dc.catalog.StructNames()
}

// GetStruct returns the schema definition with the given name.
func (dc *DataCore) GetStruct(name string) (*format.StructDef, bool) {
	return dc.catalog.StructByName(name)
}

// IndexWarnings returns the non-fatal irregularities found while indexing,
// such as duplicate GUIDs.
func (dc *DataCore) IndexWarnings() []IndexWarning {
	return dc.idx.Warnings()
}

// LoadRecord returns the decoded value of a record, decoding it on first
// access and caching it until unloaded. Read failures return *IOError and
// malformed value bytes return *DecodeError; both are local to this record,
// all metadata and sibling records stay usable.
func (dc *DataCore) LoadRecord(ctx context.Context, meta *RecordMeta) (*format.Value, error) {
	start := time.Now()
	v, cacheHit, err := dc.loadRecord(ctx, meta)
	dc.metrics.RecordLoad(time.Since(start), cacheHit, err)
	dc.logger.LogLoad(ctx, meta.ID, cacheHit, err)
	return v, err
}

func (dc *DataCore) loadRecord(ctx context.Context, meta *RecordMeta) (*format.Value, bool, error) {
	if int64(meta.ID) >= int64(len(dc.cells)) {
		return nil, false, fmt.Errorf("record id %d out of range", meta.ID)
	}
	if v := dc.cells[meta.ID].Load(); v != nil {
		return v, true, nil
	}
	if dc.closed.Load() {
		return nil, false, &IOError{RecordID: meta.ID, Offset: meta.Offset, cause: ErrDatabaseClosed}
	}

	buf := make([]byte, meta.Size)
	n, err := dc.blob.ReadAt(ctx, buf, int64(meta.Offset))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, false, &IOError{RecordID: meta.ID, Offset: meta.Offset, cause: err}
	}

	v, err := dc.decoder.Decode(meta.StructID, buf[:n])
	if err != nil {
		return nil, false, &DecodeError{RecordID: meta.ID, Guid: meta.Guid, Offset: meta.Offset, cause: err}
	}

	// Last write wins; a racing load of the same record produced an equal
	// value from the same immutable bytes.
	dc.cells[meta.ID].Store(v)
	return v, false, nil
}

// IsLoaded reports whether the record's value is currently cached.
func (dc *DataCore) IsLoaded(meta *RecordMeta) bool {
	if int64(meta.ID) >= int64(len(dc.cells)) {
		return false
	}
	return dc.cells[meta.ID].Load() != nil
}

// Unload drops the record's cached value. Metadata is untouched; the next
// LoadRecord decodes from the byte source again.
func (dc *DataCore) Unload(meta *RecordMeta) {
	if int64(meta.ID) >= int64(len(dc.cells)) {
		return
	}
	if dc.cells[meta.ID].Swap(nil) != nil {
		dc.metrics.RecordUnload(1)
	}
}

// UnloadAll drops every cached value, returning the engine to its
// just-opened footprint.
func (dc *DataCore) UnloadAll() {
	count := 0
	for i := range dc.cells {
		if dc.cells[i].Swap(nil) != nil {
			count++
		}
	}
	dc.metrics.RecordUnload(count)
	dc.logger.LogUnload(context.Background(), count)
}

// LoadedCount returns the number of currently cached record values.
func (dc *DataCore) LoadedCount() int {
	count := 0
	for i := range dc.cells {
		if dc.cells[i].Load() != nil {
			count++
		}
	}
	return count
}

// Close releases the byte source. It is idempotent. Cached values and all
// metadata remain readable; loads that would touch the byte source fail with
// *IOError afterwards.
func (dc *DataCore) Close() error {
	if dc.closed.Swap(true) {
		return nil
	}
	return dc.blob.Close()
}
