package blobstore

import (
	"context"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
)

// OpenCompressed opens a blob and, if it carries a zstd or lz4 frame,
// inflates it fully into memory and returns the decompressed bytes as a
// Blob. Plain blobs are returned unchanged. Archive extractors commonly hand
// over compressed DCB images; decoding needs random access, so inflation
// happens up front rather than per read.
func OpenCompressed(ctx context.Context, store BlobStore, name string) (Blob, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	var magic [4]byte
	if _, err := blob.ReadAt(ctx, magic[:], 0); err != nil {
		// Shorter than a frame header: nothing to inflate.
		return blob, nil //nolint:nilerr
	}

	switch {
	case magic == [4]byte(zstdMagic):
		return inflate(ctx, blob, func(r io.Reader) (io.Reader, error) {
			zr, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}
			return zr.IOReadCloser(), nil
		})
	case magic == [4]byte(lz4Magic):
		return inflate(ctx, blob, func(r io.Reader) (io.Reader, error) {
			return lz4.NewReader(r), nil
		})
	default:
		return blob, nil
	}
}

func inflate(ctx context.Context, blob Blob, wrap func(io.Reader) (io.Reader, error)) (Blob, error) {
	defer blob.Close()

	r, err := wrap(NewReader(ctx, blob, 0, blob.Size()))
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	if c, ok := r.(io.Closer); ok {
		_ = c.Close()
	}
	return NewMemoryBlob(data), nil
}
