package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// ErrClosed is returned for reads on a closed blob.
var ErrClosed = errors.New("blob is closed")

// BlobStore is an abstraction for locating immutable data blobs.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
}

// Blob is a read-only handle to a data blob. ReadAt is a positioned read and
// must be safe for concurrent use; there is no shared cursor.
type Blob interface {
	// ReadAt reads len(p) bytes starting at off. It returns io.EOF when the
	// read extends past the end of the blob.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	// Size returns the size of the blob in bytes.
	Size() int64
	io.Closer
}

// Mappable is an optional interface for Blobs that expose their contents as
// a byte slice without copying.
type Mappable interface {
	// Bytes returns the underlying byte slice.
	// The slice is valid until the Blob is closed.
	Bytes() ([]byte, error)
}

// Reader adapts a Blob section to io.Reader, binding the context once.
type Reader struct {
	blob  Blob
	ctx   context.Context
	off   int64
	limit int64
}

// NewReader returns an io.Reader over blob[off, off+length).
func NewReader(ctx context.Context, blob Blob, off, length int64) *Reader {
	return &Reader{blob: blob, ctx: ctx, off: off, limit: off + length}
}

func (r *Reader) Read(p []byte) (int, error) {
	if r.off >= r.limit {
		return 0, io.EOF
	}
	if remaining := r.limit - r.off; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := r.blob.ReadAt(r.ctx, p, r.off)
	r.off += int64(n)
	return n, err
}
