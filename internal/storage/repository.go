// Package storage contains backend-agnostic contracts and utilities for
// landing the cleaned sales table in a database. Concrete backends register
// themselves with the factory at init time; callers select one by kind and
// stay otherwise backend-agnostic.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rajpat739407/Sales-Data-Processor/internal/cleaning"
)

// Repository is the storage contract the loader works against.
type Repository interface {
	// EnsureTable creates the destination table when it does not exist.
	EnsureTable(ctx context.Context) error

	// CopyFrom bulk-inserts rows aligned to the columns order and returns
	// the number of rows written. Implementations should cancel promptly
	// when ctx is done.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)

	// Exec runs a single SQL statement, typically DDL.
	Exec(ctx context.Context, sql string) error

	// Close releases the underlying connection(s).
	Close()
}

// Config holds backend-independent repository settings.
type Config struct {
	// Kind selects the registered backend, e.g. "postgres" or "sqlite".
	// "none" and "" mean no storage.
	Kind string

	// DSN is the backend connection string.
	DSN string

	// Table is the destination table name. Empty means DefaultTable.
	Table string
}

// DefaultTable is the destination table when the pipeline names none.
const DefaultTable = "cleaned_sales"

// Columns is the fixed landing column order: the seven reconciled input
// columns followed by the two derived ones. Extra pass-through columns are
// not landed.
func Columns() []string {
	return append(cleaning.RequiredColumns(), cleaning.ColPriceUSD, cleaning.ColTotalUSD)
}

// Factory constructs a Repository for a validated Config.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under the given kind. It is called from
// backend packages' init functions; the storage/all package imports them all.
func Register(kind string, fn Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = fn
}

// Kinds lists registered backend kinds, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New opens a Repository for cfg.Kind. Unknown kinds are an error naming the
// registered ones.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	fn, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown kind %q (registered: %s)",
			cfg.Kind, strings.Join(Kinds(), ", "))
	}
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}
	return fn(ctx, cfg)
}
