package sqlite

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:sales.db?cache=shared"
	//   "sales.db"
	//   ":memory:"
	DSN string

	// Table is the target table name for inserts, e.g. "cleaned_sales".
	Table string
}
