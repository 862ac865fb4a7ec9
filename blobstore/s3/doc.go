// Package s3 provides a read-only blobstore backed by Amazon S3. Record
// loads translate to ranged GetObject requests; combine with the caching
// store to amortize round trips.
package s3
