// This file implements a generic, batched loader that walks the cleaned
// table and invokes a provided bulk-insert function (CopyFn) per batch.
//
// Backends implement CopyFn using their most efficient primitive (Postgres
// COPY, SQLite transactional INSERT). On every successful flush a concise
// progress line is emitted with running totals and instantaneous rows/sec.
package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/rajpat739407/Sales-Data-Processor/pkg/records"
)

// CopyFn abstracts a backend's bulk insert capability. Implementations
// insert the provided rows (aligned to the columns order) and return the
// number of rows inserted.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadTable inserts the table through copyFn in batches of batchSize rows.
// Cells are read per the landing columns; cells absent from a row become
// NULL. It returns the total number of rows reported by copyFn and the first
// error encountered.
func LoadTable(
	ctx context.Context,
	t *records.Table,
	columns []string,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}

	var (
		total       int64
		batches     int64
		batch       = make([][]any, 0, batchSize)
		start       = time.Now()
		lastFlushTS = start
		lastTotal   int64
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		total += n

		// Reuse allocated slice; keep capacity to avoid churn.
		batch = batch[:0]

		if err != nil {
			log.Printf("loader: copy failed after=%d total=%d err=%v", n, total, err)
			return err
		}

		batches++
		now := time.Now()
		sinceLast := now.Sub(lastFlushTS)
		insertedSinceLast := total - lastTotal
		rps := float64(0)
		if sinceLast > 0 {
			rps = float64(insertedSinceLast) / sinceLast.Seconds()
		}
		log.Printf(
			"batch #%d: rps=%.0f inserted=%d total_inserted=%d elapsed=%s since_last=%s",
			batches,
			rps,
			n,
			total,
			now.Sub(start).Truncate(time.Millisecond),
			sinceLast.Truncate(time.Millisecond),
		)
		lastFlushTS = now
		lastTotal = total

		return nil
	}

	for _, r := range t.Rows {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		batch = append(batch, rowValues(r, columns))
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := flush(); err != nil {
		return total, err
	}

	log.Printf("loader: done total_inserted=%d elapsed=%s",
		total, time.Since(start).Truncate(time.Millisecond))
	return total, nil
}

// rowValues aligns one record to the landing columns. Missing cells stay nil
// so they land as NULL.
func rowValues(r records.Record, columns []string) []any {
	row := make([]any, len(columns))
	for i, c := range columns {
		row[i] = r[c]
	}
	return row
}
