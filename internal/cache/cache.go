// Package cache provides the block cache used by the caching blob store.
package cache

// Key identifies one cached block of one blob.
type Key struct {
	Name  string
	Block int64
}

// BlockCache caches fixed-size blocks of blob data. Implementations must be
// safe for concurrent use.
type BlockCache interface {
	// Get returns a cached block.
	Get(key Key) ([]byte, bool)
	// Set caches a block. The cache takes ownership of b.
	Set(key Key, b []byte)
	// Len returns the number of cached blocks.
	Len() int
}
