// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete storage backend to run,
// which in turn register their factories with the storage package. Importing
// it makes the following storage kinds available at runtime:
//
//   - "mssql"    (internal/storage/mssql)
//   - "mysql"    (internal/storage/mysql)
//   - "postgres" (internal/storage/postgres)
//   - "sqlite"   (internal/storage/sqlite)
//
// A binary that needs only a subset of backends can import the required
// backend packages directly instead of this one.
package all

import (
	_ "github.com/rajpat739407/Sales-Data-Processor/internal/storage/mssql"
	_ "github.com/rajpat739407/Sales-Data-Processor/internal/storage/mysql"
	_ "github.com/rajpat739407/Sales-Data-Processor/internal/storage/postgres"
	_ "github.com/rajpat739407/Sales-Data-Processor/internal/storage/sqlite"
)
