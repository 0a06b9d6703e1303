package storage

import (
	"context"
	"fmt"
	"time"

	"salesetl/internal/diag"
)

// CopyFn abstracts a backend's bulk insert capability. It inserts the rows
// (aligned to columns) and returns the number acknowledged.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadStats summarizes one LoadBatches call.
type LoadStats struct {
	Rows    int64
	Batches int
	Elapsed time.Duration
}

// LoadBatches writes rows in chunks of batchSize, in order, calling copyFn
// once per chunk and moving on only after it returns. The first failing
// chunk stops the load; chunks already written stay written. Progress is
// reported to sink after every chunk.
func LoadBatches(
	ctx context.Context,
	columns []string,
	rows [][]any,
	batchSize int,
	copyFn CopyFn,
	sink diag.Sink,
) (LoadStats, error) {
	if batchSize <= 0 {
		return LoadStats{}, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return LoadStats{}, fmt.Errorf("copyFn must not be nil")
	}
	if sink == nil {
		sink = diag.Discard
	}

	var (
		st       LoadStats
		start    = time.Now()
		lastTS   = start
		lastRows int64
	)
	for i, chunk := range Chunk(rows, batchSize) {
		n, err := copyFn(ctx, columns, chunk)
		st.Rows += n
		if err != nil {
			st.Elapsed = time.Since(start)
			sink.Record(diag.LevelError, "batch write failed", diag.Fields{
				"batch": i + 1, "rows": len(chunk), "total_inserted": st.Rows, "error": err.Error(),
			})
			return st, fmt.Errorf("chunk %d: %w", i+1, err)
		}
		st.Batches++

		now := time.Now()
		since := now.Sub(lastTS)
		rps := float64(0)
		if since > 0 {
			rps = float64(st.Rows-lastRows) / since.Seconds()
		}
		sink.Record(diag.LevelDebug, "batch written", diag.Fields{
			"batch":          st.Batches,
			"rows":           len(chunk),
			"inserted":       n,
			"total_inserted": st.Rows,
			"rps":            int64(rps),
			"elapsed":        now.Sub(start).Truncate(time.Millisecond).String(),
		})
		lastTS, lastRows = now, st.Rows
	}
	st.Elapsed = time.Since(start)
	return st, nil
}

// Chunk splits items into consecutive slices of at most size elements. The
// chunks alias items.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for len(items) > size {
		out = append(out, items[:size:size])
		items = items[size:]
	}
	return append(out, items)
}
