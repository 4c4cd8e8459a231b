// Package mysql implements a MySQL-backed storage.Repository using
// database/sql and go-sql-driver. Like the SQLite backend it lands rows with
// a prepared INSERT inside a transaction; MySQL's LOAD DATA bulk path needs
// server-side file access we cannot assume.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // registered as "mysql"
)

// Config holds MySQL repository configuration.
type Config struct {
	// DSN is passed directly to database/sql; for example:
	//
	//	"user:pass@tcp(localhost:3306)/sales"
	DSN string

	// Table is the target table name.
	Table string
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens a MySQL connection pool and returns a Repository plus a
// Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("mysql: DSN must not be empty")
	}

	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql: open: %w", err)
	}

	// Fail fast on unreachable servers and bad credentials.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("mysql: ping: %w", err)
	}

	closeFn := func() { db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// columnTypes is the cleaned-sales DDL in landing-column order.
var columnTypes = []struct {
	name string
	typ  string
}{
	{"order_id", "TEXT"},
	{"date", "DATE"},
	{"product", "TEXT"},
	{"price", "DOUBLE"},
	{"currency", "TEXT"},
	{"quantity", "DOUBLE"},
	{"customer_id", "TEXT"},
	{"price_usd", "DOUBLE"},
	{"total_sale_usd", "DOUBLE"},
}

// CreateTableSQL returns the CREATE TABLE IF NOT EXISTS statement for the
// configured table.
func (r *Repository) CreateTableSQL() string {
	cols := make([]string, len(columnTypes))
	for i, c := range columnTypes {
		cols[i] = myIdent(c.name) + " " + c.typ
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		myIdent(r.cfg.Table), strings.Join(cols, ", "))
}

// EnsureTable creates the destination table when it does not exist.
func (r *Repository) EnsureTable(ctx context.Context) error {
	if err := r.Exec(ctx, r.CreateTableSQL()); err != nil {
		return fmt.Errorf("ensure table %s: %w", r.cfg.Table, err)
	}
	return nil
}

// CopyFrom inserts the given rows into the configured table using a single
// transaction and a prepared INSERT statement. It returns the number of rows
// inserted; time.Time cells are bound as ISO dates.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = myIdent(c)
		placeholders[i] = "?"
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		myIdent(r.cfg.Table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mysql: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("mysql: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return 0, fmt.Errorf("mysql: CopyFrom: row length %d != columns length %d", len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, bindValues(row)...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("mysql: insert: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mysql: commit: %w", err)
	}
	return inserted, nil
}

// Exec executes an arbitrary SQL statement (typically DDL).
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("mysql: exec: %w", err)
	}
	return nil
}

// bindValues converts cells to driver-friendly binds: dates become ISO text,
// everything else passes through.
func bindValues(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		if t, ok := v.(time.Time); ok {
			out[i] = t.Format("2006-01-02")
			continue
		}
		out[i] = v
	}
	return out
}

// myIdent safely quotes an identifier for MySQL using backticks.
func myIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }
