package dcbgo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/dcbgo/format"
)

// RecordError pairs one record with the error that kept it from
// materializing.
type RecordError struct {
	RecordID uint32
	Guid     format.GUID
	Err      error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("record %d (%s): %v", e.RecordID, e.Guid, e.Err)
}

func (e RecordError) Unwrap() error { return e.Err }

// EagerView is a fully materialized snapshot of the database: every record
// that decoded successfully, addressable by id. It shares values with the
// lazy cache, so holding the view keeps them alive across UnloadAll.
type EagerView struct {
	values []*format.Value
}

// Value returns the materialized value for a record id, or nil if that
// record failed to load.
func (v *EagerView) Value(id uint32) *format.Value {
	if int64(id) >= int64(len(v.values)) {
		return nil
	}
	return v.values[id]
}

// Len returns the number of successfully materialized records.
func (v *EagerView) Len() int {
	count := 0
	for _, val := range v.values {
		if val != nil {
			count++
		}
	}
	return count
}

// ToEager materializes every record with bounded parallelism (see
// WithLoadConcurrency). Failures are collected per record and do not stop
// the rest; the returned view holds whatever loaded.
//
// Canceling the context stops at record granularity: records not yet visited
// report the context error, records already decoded stay cached and appear
// in the view.
func (dc *DataCore) ToEager(ctx context.Context) (*EagerView, []RecordError) {
	start := time.Now()

	n := dc.idx.Len()
	view := &EagerView{values: make([]*format.Value, n)}

	var mu sync.Mutex
	var recordErrs []RecordError

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dc.opts.loadConcurrency)

	for id := uint32(0); int(id) < n; id++ {
		meta, _ := dc.idx.Meta(id)

		if err := ctx.Err(); err != nil {
			mu.Lock()
			recordErrs = append(recordErrs, RecordError{RecordID: meta.ID, Guid: meta.Guid, Err: err})
			mu.Unlock()
			continue
		}

		g.Go(func() error {
			v, _, err := dc.loadRecord(gctx, meta)
			if err != nil {
				mu.Lock()
				recordErrs = append(recordErrs, RecordError{RecordID: meta.ID, Guid: meta.Guid, Err: err})
				mu.Unlock()
				return nil // record failures never abort the group
			}
			view.values[meta.ID] = v
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	loaded := view.Len()
	duration := time.Since(start)
	dc.metrics.RecordEager(loaded, len(recordErrs), duration)
	dc.logger.LogEager(ctx, loaded, len(recordErrs), duration)

	return view, recordErrs
}
