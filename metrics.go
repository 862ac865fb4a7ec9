package dcbgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordOpen is called after opening a database.
	RecordOpen(duration time.Duration, err error)

	// RecordLoad is called after each record load. cacheHit reports whether
	// the value came from the cache without touching the byte source.
	RecordLoad(duration time.Duration, cacheHit bool, err error)

	// RecordUnload is called after unload operations with the number of
	// cache cells cleared.
	RecordUnload(count int)

	// RecordEager is called after an eager materialization.
	// loaded and failed count records; duration is the total time taken.
	RecordEager(loaded, failed int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordOpen(time.Duration, error)       {}
func (NoopMetricsCollector) RecordLoad(time.Duration, bool, error) {}
func (NoopMetricsCollector) RecordUnload(int)                      {}
func (NoopMetricsCollector) RecordEager(int, int, time.Duration)   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	OpenCount      atomic.Int64
	OpenErrors     atomic.Int64
	LoadCount      atomic.Int64
	LoadErrors     atomic.Int64
	LoadCacheHits  atomic.Int64
	LoadTotalNanos atomic.Int64
	UnloadedCells  atomic.Int64
	EagerCount     atomic.Int64
	EagerLoaded    atomic.Int64
	EagerFailed    atomic.Int64
}

// RecordOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOpen(duration time.Duration, err error) {
	b.OpenCount.Add(1)
	if err != nil {
		b.OpenErrors.Add(1)
	}
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(duration time.Duration, cacheHit bool, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if cacheHit {
		b.LoadCacheHits.Add(1)
	}
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// RecordUnload implements MetricsCollector.
func (b *BasicMetricsCollector) RecordUnload(count int) {
	b.UnloadedCells.Add(int64(count))
}

// RecordEager implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEager(loaded, failed int, duration time.Duration) {
	b.EagerCount.Add(1)
	b.EagerLoaded.Add(int64(loaded))
	b.EagerFailed.Add(int64(failed))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		OpenCount:     b.OpenCount.Load(),
		OpenErrors:    b.OpenErrors.Load(),
		LoadCount:     b.LoadCount.Load(),
		LoadErrors:    b.LoadErrors.Load(),
		LoadCacheHits: b.LoadCacheHits.Load(),
		LoadAvgNanos:  b.avgLoadNanos(),
		UnloadedCells: b.UnloadedCells.Load(),
		EagerCount:    b.EagerCount.Load(),
		EagerLoaded:   b.EagerLoaded.Load(),
		EagerFailed:   b.EagerFailed.Load(),
	}
}

func (b *BasicMetricsCollector) avgLoadNanos() int64 {
	count := b.LoadCount.Load()
	if count == 0 {
		return 0
	}
	return b.LoadTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	OpenCount     int64
	OpenErrors    int64
	LoadCount     int64
	LoadErrors    int64
	LoadCacheHits int64
	LoadAvgNanos  int64
	UnloadedCells int64
	EagerCount    int64
	EagerLoaded   int64
	EagerFailed   int64
}
