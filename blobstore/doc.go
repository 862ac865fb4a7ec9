// Package blobstore abstracts the seekable byte source a DCB database is
// decoded from.
//
// A Blob is a read-only, positioned-read handle: every ReadAt carries its own
// offset, so concurrent record loads never contend on a shared cursor. Stores
// exist for the local file system (memory-mapped), plain memory (tests), S3
// and MinIO object storage (ranged reads), plus decorators for block caching
// and rate limiting. OpenCompressed transparently inflates zstd- or
// lz4-compressed images handed over by an archive extractor.
package blobstore
