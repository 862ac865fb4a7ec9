package blobstore

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedStore wraps a BlobStore and throttles read throughput. Eager
// materialization of a large database issues thousands of ranged reads in a
// short window; against shared object storage that wants a ceiling.
type RateLimitedStore struct {
	inner   BlobStore
	limiter *rate.Limiter
}

// NewRateLimitedStore creates a store limited to bytesPerSec read throughput
// with the given burst size.
func NewRateLimitedStore(inner BlobStore, bytesPerSec float64, burst int) *RateLimitedStore {
	return &RateLimitedStore{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSec), burst),
	}
}

// Open opens a blob whose reads count against the shared limiter.
func (s *RateLimitedStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &rateLimitedBlob{inner: b, limiter: s.limiter}, nil
}

type rateLimitedBlob struct {
	inner   Blob
	limiter *rate.Limiter
}

func (b *rateLimitedBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	n := len(p)
	if burst := b.limiter.Burst(); n > burst {
		n = burst
	}
	if n > 0 {
		if err := b.limiter.WaitN(ctx, n); err != nil {
			return 0, err
		}
	}
	return b.inner.ReadAt(ctx, p, off)
}

func (b *rateLimitedBlob) Size() int64 {
	return b.inner.Size()
}

func (b *rateLimitedBlob) Close() error {
	return b.inner.Close()
}
