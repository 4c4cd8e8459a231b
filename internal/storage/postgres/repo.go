// Package postgres implements a Postgres repository using pgx v5. Rows land
// through the native COPY protocol; the destination table is the fixed
// cleaned-sales schema.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN   string // connection string for pgxpool
	Table string // target table name, optionally schema-qualified, e.g. "public.cleaned_sales"
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository constructs a Repository and returns a Close function for
// cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	closeFn := func() { pool.Close() }
	return &Repository{pool: pool, cfg: cfg}, closeFn, nil
}

// columnTypes is the cleaned-sales DDL in landing-column order.
var columnTypes = []struct {
	name string
	typ  string
}{
	{"order_id", "text"},
	{"date", "date"},
	{"product", "text"},
	{"price", "double precision"},
	{"currency", "text"},
	{"quantity", "double precision"},
	{"customer_id", "text"},
	{"price_usd", "double precision"},
	{"total_sale_usd", "double precision"},
}

// CreateTableSQL returns the CREATE TABLE IF NOT EXISTS statement for the
// configured table.
func (r *Repository) CreateTableSQL() string {
	cols := make([]string, len(columnTypes))
	for i, c := range columnTypes {
		cols[i] = pgIdent(c.name) + " " + c.typ
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		pgFQN(r.cfg.Table), strings.Join(cols, ", "))
}

// EnsureTable creates the destination table when it does not exist.
func (r *Repository) EnsureTable(ctx context.Context) error {
	if err := r.Exec(ctx, r.CreateTableSQL()); err != nil {
		return fmt.Errorf("ensure table %s: %w", r.cfg.Table, err)
	}
	return nil
}

// CopyFrom bulk-inserts rows via the COPY protocol.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	n, err := r.pool.CopyFrom(ctx, splitFQN(r.cfg.Table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return n, fmt.Errorf("copy into %s: %s (%s)", r.cfg.Table, pgErr.Detail, pgErr.SQLState())
		}
		return n, fmt.Errorf("copy into %s: %w", r.cfg.Table, err)
	}
	return n, nil
}

// Exec implements storage.Repository.Exec for Postgres.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	_, err := r.pool.Exec(ctx, sql)
	return err
}

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// pgFQN quotes a possibly schema-qualified name like "public.cleaned_sales"
// to "public"."cleaned_sales". If no dot is present, returns a single quoted
// ident.
func pgFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pgIdent(p)
	}
	return strings.Join(parts, ".")
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
// If no dot is present, returns {"table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}
