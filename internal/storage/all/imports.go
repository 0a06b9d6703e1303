// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each backend, which register their
// factories and database bootstrappers with the storage package. The
// following storage kinds become available:
//
//   - "mysql"    (salesetl/internal/storage/mysql)
//   - "postgres" (salesetl/internal/storage/postgres)
//   - "mssql"    (salesetl/internal/storage/mssql)
//   - "sqlite"   (salesetl/internal/storage/sqlite)
//
// A binary that needs only a subset of backends can import those packages
// directly instead.
package all

import (
	_ "salesetl/internal/storage/mssql"
	_ "salesetl/internal/storage/mysql"
	_ "salesetl/internal/storage/postgres"
	_ "salesetl/internal/storage/sqlite"
)
