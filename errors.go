package dcbgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/dcbgo/format"
)

var (
	// ErrDatabaseClosed is returned for loads after Close.
	ErrDatabaseClosed = errors.New("database is closed")
)

// StructuralError reports a file-level problem found at open time: bad
// magic, unsupported version, section offsets outside the blob. It always
// aborts construction; no partially usable DataCore is returned.
//
// The underlying error can be accessed via errors.Unwrap.
type StructuralError struct {
	Reason string
	cause  error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error: %s", e.Reason)
}

func (e *StructuralError) Unwrap() error { return e.cause }

// SchemaError reports an inconsistent schema found at open time: cyclic
// inheritance, dangling struct references, property ranges outside the
// table. Like StructuralError it aborts construction.
//
// The underlying error can be accessed via errors.Unwrap.
type SchemaError struct {
	Reason string
	cause  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error: %s", e.Reason)
}

func (e *SchemaError) Unwrap() error { return e.cause }

// DecodeError reports a failure decoding one record's value bytes. It is
// local to that record: sibling records and all metadata stay usable.
//
// The underlying error can be accessed via errors.Unwrap.
type DecodeError struct {
	RecordID uint32
	Guid     format.GUID
	Offset   uint64
	cause    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode record %d (%s) at offset %d: %v", e.RecordID, e.Guid, e.Offset, e.cause)
}

func (e *DecodeError) Unwrap() error { return e.cause }

// IOError reports a byte-source failure while loading one record, tagged
// with the record and offset it happened at.
//
// The underlying error can be accessed via errors.Unwrap.
type IOError struct {
	RecordID uint32
	Offset   uint64
	cause    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("read record %d at offset %d: %v", e.RecordID, e.Offset, e.cause)
}

func (e *IOError) Unwrap() error { return e.cause }

// translateOpenError wraps open-time failures into the structural/schema
// taxonomy. Decode-layer sentinels from the format package map to
// StructuralError for section-level problems and SchemaError for catalog
// problems.
func translateOpenError(err error) error {
	if err == nil {
		return nil
	}

	var cycle *format.SchemaCycleError
	var dangling *format.DanglingStructError
	var prange *format.PropertyRangeError
	if errors.As(err, &cycle) || errors.As(err, &dangling) || errors.As(err, &prange) {
		return &SchemaError{Reason: err.Error(), cause: err}
	}

	return &StructuralError{Reason: err.Error(), cause: err}
}
