package storage

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/rajpat739407/Sales-Data-Processor/pkg/records"
)

// loadTestTable builds a two-column table with n rows. Odd rows omit c2 so
// the loader has missing cells to align.
func loadTestTable(n int) *records.Table {
	t := records.NewTable([]string{"c1", "c2"})
	for i := 0; i < n; i++ {
		r := records.Record{"c1": fmt.Sprintf("r%d", i)}
		if i%2 == 0 {
			r["c2"] = float64(i)
		}
		t.Rows = append(t.Rows, r)
	}
	return t
}

// TestLoadTable_Batching verifies rows are grouped into batches of the
// requested size, the remainder is flushed, and the total equals the sum of
// all copyFn returns. It also checks cell alignment: values follow the
// columns order and missing cells land as nil.
func TestLoadTable_Batching(t *testing.T) {
	t.Parallel()

	tbl := loadTestTable(7)
	columns := []string{"c1", "c2"}

	var sizes []int
	var first [][]any
	copyFn := func(_ context.Context, cols []string, rows [][]any) (int64, error) {
		if !reflect.DeepEqual(cols, columns) {
			t.Errorf("copyFn columns = %v, want %v", cols, columns)
		}
		sizes = append(sizes, len(rows))
		if first == nil {
			for _, r := range rows {
				cp := make([]any, len(r))
				copy(cp, r)
				first = append(first, cp)
			}
		}
		return int64(len(rows)), nil
	}

	total, err := LoadTable(context.Background(), tbl, columns, 3, copyFn)
	if err != nil {
		t.Fatalf("LoadTable error: %v", err)
	}
	if total != 7 {
		t.Fatalf("total rows %d, want 7", total)
	}
	if want := []int{3, 3, 1}; !reflect.DeepEqual(sizes, want) {
		t.Fatalf("batch sizes %v, want %v", sizes, want)
	}

	wantFirst := [][]any{
		{"r0", 0.0},
		{"r1", nil},
		{"r2", 2.0},
	}
	if !reflect.DeepEqual(first, wantFirst) {
		t.Fatalf("first batch rows = %v, want %v", first, wantFirst)
	}
}

// TestLoadTable_ErrorPropagation ensures the first copy error is propagated
// and processing stops after that batch.
func TestLoadTable_ErrorPropagation(t *testing.T) {
	t.Parallel()

	tbl := loadTestTable(5)
	wantErr := errors.New("copy failed")

	var batches int
	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		batches++
		if batches == 2 {
			return 0, wantErr
		}
		return int64(len(rows)), nil
	}

	total, err := LoadTable(context.Background(), tbl, []string{"c1", "c2"}, 2, copyFn)
	if !errors.Is(err, wantErr) {
		t.Fatalf("want error %v, got %v", wantErr, err)
	}
	if batches != 2 {
		t.Fatalf("copyFn calls %d, want 2 (stop on first failure)", batches)
	}
	// Total counts rows from the successful first batch only.
	if total != 2 {
		t.Fatalf("total rows %d, want 2", total)
	}
}

// TestLoadTable_ContextCancel checks a canceled context stops the walk before
// copyFn runs again.
func TestLoadTable_ContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int
	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		calls++
		return int64(len(rows)), nil
	}

	total, err := LoadTable(ctx, loadTestTable(4), []string{"c1"}, 2, copyFn)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("copyFn calls %d, want 0", calls)
	}
	if total != 0 {
		t.Fatalf("total rows %d, want 0", total)
	}
}

// TestLoadTable_BadArgs covers the argument guards.
func TestLoadTable_BadArgs(t *testing.T) {
	t.Parallel()

	noop := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		return int64(len(rows)), nil
	}

	if _, err := LoadTable(context.Background(), loadTestTable(1), []string{"c1"}, 0, noop); err == nil {
		t.Fatalf("expected error for batchSize=0")
	}
	if _, err := LoadTable(context.Background(), loadTestTable(1), []string{"c1"}, 2, nil); err == nil {
		t.Fatalf("expected error for nil copyFn")
	}
}

// TestLoadTable_Empty verifies an empty table loads zero rows without ever
// calling copyFn.
func TestLoadTable_Empty(t *testing.T) {
	t.Parallel()

	var calls int
	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		calls++
		return int64(len(rows)), nil
	}

	total, err := LoadTable(context.Background(), records.NewTable([]string{"c1"}), []string{"c1"}, 3, copyFn)
	if err != nil {
		t.Fatalf("LoadTable error: %v", err)
	}
	if total != 0 || calls != 0 {
		t.Fatalf("total=%d calls=%d, want 0 and 0", total, calls)
	}
}

// TestRowValues checks record-to-slice alignment against the columns order.
func TestRowValues(t *testing.T) {
	t.Parallel()

	r := records.Record{"b": 2.0, "a": "one"}
	got := rowValues(r, []string{"a", "b", "c"})
	want := []any{"one", 2.0, nil}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("rowValues = %v, want %v", got, want)
	}
}
