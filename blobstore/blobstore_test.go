package blobstore_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dcbgo/blobstore"
	"github.com/hupe1980/dcbgo/internal/cache"
)

// countingStore wraps a store and counts ReadAt calls on its blobs.
type countingStore struct {
	inner blobstore.BlobStore
	reads atomic.Int64
}

func (s *countingStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &countingBlob{Blob: b, reads: &s.reads}, nil
}

type countingBlob struct {
	blobstore.Blob
	reads *atomic.Int64
}

func (b *countingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	b.reads.Add(1)
	return b.Blob.ReadAt(ctx, p, off)
}

func testData(n int) []byte {
	rng := rand.New(rand.NewSource(42))
	data := make([]byte, n)
	rng.Read(data)
	return data
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	data := testData(256)
	require.NoError(t, store.Put(ctx, "test.dcb", data))

	t.Run("read", func(t *testing.T) {
		blob, err := store.Open(ctx, "test.dcb")
		require.NoError(t, err)
		defer blob.Close()

		require.Equal(t, int64(256), blob.Size())

		p := make([]byte, 16)
		n, err := blob.ReadAt(ctx, p, 100)
		require.NoError(t, err)
		require.Equal(t, 16, n)
		require.Equal(t, data[100:116], p)
	})

	t.Run("read past end", func(t *testing.T) {
		blob, err := store.Open(ctx, "test.dcb")
		require.NoError(t, err)
		defer blob.Close()

		p := make([]byte, 16)
		n, err := blob.ReadAt(ctx, p, 250)
		require.ErrorIs(t, err, io.EOF)
		require.Equal(t, 6, n)

		_, err = blob.ReadAt(ctx, p, 1000)
		require.ErrorIs(t, err, io.EOF)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := store.Open(ctx, "missing.dcb")
		require.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("put does not mutate open blobs", func(t *testing.T) {
		blob, err := store.Open(ctx, "test.dcb")
		require.NoError(t, err)
		defer blob.Close()

		require.NoError(t, store.Put(ctx, "test.dcb", []byte{0xFF}))

		p := make([]byte, 1)
		_, err = blob.ReadAt(ctx, p, 0)
		require.NoError(t, err)
		require.Equal(t, data[0], p[0])
	})
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	data := testData(1024)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "game.dcb"), data, 0o600))

	store := blobstore.NewLocalStore(dir)

	t.Run("mapped reads", func(t *testing.T) {
		blob, err := store.Open(ctx, "game.dcb")
		require.NoError(t, err)
		defer blob.Close()

		require.Equal(t, int64(1024), blob.Size())

		p := make([]byte, 64)
		n, err := blob.ReadAt(ctx, p, 512)
		require.NoError(t, err)
		require.Equal(t, 64, n)
		require.Equal(t, data[512:576], p)
	})

	t.Run("zero copy access", func(t *testing.T) {
		blob, err := store.Open(ctx, "game.dcb")
		require.NoError(t, err)
		defer blob.Close()

		m, ok := blob.(blobstore.Mappable)
		require.True(t, ok)

		raw, err := m.Bytes()
		require.NoError(t, err)
		require.Equal(t, data, raw)
	})

	t.Run("read after close", func(t *testing.T) {
		blob, err := store.Open(ctx, "game.dcb")
		require.NoError(t, err)
		require.NoError(t, blob.Close())

		p := make([]byte, 8)
		_, err = blob.ReadAt(ctx, p, 0)
		require.ErrorIs(t, err, blobstore.ErrClosed)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := store.Open(ctx, "missing.dcb")
		require.ErrorIs(t, err, blobstore.ErrNotFound)
	})
}

func TestCachingStore(t *testing.T) {
	ctx := context.Background()
	data := testData(10_000)

	inner := blobstore.NewMemoryStore()
	require.NoError(t, inner.Put(ctx, "test.dcb", data))

	t.Run("reads are byte-identical to direct reads", func(t *testing.T) {
		store := blobstore.NewCachingStore(inner, cache.NewLRUBlockCache(1<<20), 128)
		blob, err := store.Open(ctx, "test.dcb")
		require.NoError(t, err)
		defer blob.Close()

		require.Equal(t, int64(len(data)), blob.Size())

		// Unaligned offsets, block-spanning lengths, and the ragged tail.
		cases := []struct{ off, n int }{
			{0, 1}, {0, 128}, {1, 128}, {127, 2}, {100, 1000},
			{9_990, 10}, {9_000, 1000}, {5_000, 4},
		}
		for _, c := range cases {
			p := make([]byte, c.n)
			n, err := blob.ReadAt(ctx, p, int64(c.off))
			require.NoError(t, err, "off=%d n=%d", c.off, c.n)
			require.Equal(t, c.n, n)
			require.Equal(t, data[c.off:c.off+c.n], p)
		}

		p := make([]byte, 100)
		n, err := blob.ReadAt(ctx, p, int64(len(data)-50))
		require.ErrorIs(t, err, io.EOF)
		require.Equal(t, 50, n)
		require.Equal(t, data[len(data)-50:], p[:50])
	})

	t.Run("repeat reads hit the cache", func(t *testing.T) {
		counting := &countingStore{inner: inner}
		store := blobstore.NewCachingStore(counting, cache.NewLRUBlockCache(1<<20), 128)

		blob, err := store.Open(ctx, "test.dcb")
		require.NoError(t, err)
		defer blob.Close()

		p := make([]byte, 64)
		_, err = blob.ReadAt(ctx, p, 200)
		require.NoError(t, err)
		fetched := counting.reads.Load()
		require.Positive(t, fetched)

		for i := 0; i < 10; i++ {
			_, err = blob.ReadAt(ctx, p, 200)
			require.NoError(t, err)
		}
		require.Equal(t, fetched, counting.reads.Load())
	})

	t.Run("concurrent readers", func(t *testing.T) {
		store := blobstore.NewCachingStore(inner, cache.NewLRUBlockCache(4096), 128)
		blob, err := store.Open(ctx, "test.dcb")
		require.NoError(t, err)
		defer blob.Close()

		var wg sync.WaitGroup
		errs := make(chan error, 8)
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func(seed int64) {
				defer wg.Done()
				rng := rand.New(rand.NewSource(seed))
				for i := 0; i < 50; i++ {
					off := rng.Intn(len(data) - 64)
					p := make([]byte, 64)
					if _, err := blob.ReadAt(ctx, p, int64(off)); err != nil {
						errs <- err
						return
					}
					if !bytes.Equal(data[off:off+64], p) {
						errs <- fmt.Errorf("mismatch at offset %d", off)
						return
					}
				}
			}(int64(g))
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}
	})
}

func TestRateLimitedStore(t *testing.T) {
	ctx := context.Background()
	data := testData(1024)

	inner := blobstore.NewMemoryStore()
	require.NoError(t, inner.Put(ctx, "test.dcb", data))

	store := blobstore.NewRateLimitedStore(inner, 1<<30, 1<<20)

	blob, err := store.Open(ctx, "test.dcb")
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(1024), blob.Size())

	p := make([]byte, 256)
	n, err := blob.ReadAt(ctx, p, 100)
	require.NoError(t, err)
	require.Equal(t, 256, n)
	require.Equal(t, data[100:356], p)

	t.Run("not found passes through", func(t *testing.T) {
		_, err := store.Open(ctx, "missing.dcb")
		require.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("canceled context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := blob.ReadAt(canceled, p, 0)
		require.Error(t, err)
	})
}

func TestOpenCompressed(t *testing.T) {
	ctx := context.Background()
	data := testData(4096)

	t.Run("plain passes through", func(t *testing.T) {
		store := blobstore.NewMemoryStore()
		require.NoError(t, store.Put(ctx, "test.dcb", data))

		blob, err := blobstore.OpenCompressed(ctx, store, "test.dcb")
		require.NoError(t, err)
		defer blob.Close()

		require.Equal(t, int64(len(data)), blob.Size())
	})

	t.Run("zstd inflates", func(t *testing.T) {
		var buf bytes.Buffer
		zw, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		_, err = zw.Write(data)
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		store := blobstore.NewMemoryStore()
		require.NoError(t, store.Put(ctx, "test.dcb.zst", buf.Bytes()))

		blob, err := blobstore.OpenCompressed(ctx, store, "test.dcb.zst")
		require.NoError(t, err)
		defer blob.Close()

		require.Equal(t, int64(len(data)), blob.Size())
		p := make([]byte, len(data))
		_, err = blob.ReadAt(ctx, p, 0)
		require.NoError(t, err)
		require.Equal(t, data, p)
	})

	t.Run("lz4 inflates", func(t *testing.T) {
		var buf bytes.Buffer
		lw := lz4.NewWriter(&buf)
		_, err := lw.Write(data)
		require.NoError(t, err)
		require.NoError(t, lw.Close())

		store := blobstore.NewMemoryStore()
		require.NoError(t, store.Put(ctx, "test.dcb.lz4", buf.Bytes()))

		blob, err := blobstore.OpenCompressed(ctx, store, "test.dcb.lz4")
		require.NoError(t, err)
		defer blob.Close()

		p := make([]byte, len(data))
		_, err = blob.ReadAt(ctx, p, 0)
		require.NoError(t, err)
		require.Equal(t, data, p)
	})

	t.Run("tiny blob passes through", func(t *testing.T) {
		store := blobstore.NewMemoryStore()
		require.NoError(t, store.Put(ctx, "tiny", []byte{1, 2}))

		blob, err := blobstore.OpenCompressed(ctx, store, "tiny")
		require.NoError(t, err)
		defer blob.Close()
		require.Equal(t, int64(2), blob.Size())
	})
}

func TestReader(t *testing.T) {
	ctx := context.Background()
	data := testData(100)
	blob := blobstore.NewMemoryBlob(data)

	r := blobstore.NewReader(ctx, blob, 10, 30)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, data[10:40], got)
}
