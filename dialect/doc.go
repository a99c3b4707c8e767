// Package dialect names the database dialects tablegen can introspect and
// defines the driver abstraction used by the introspection packages.
//
// # Supported Dialects
//
//   - Postgres: PostgreSQL, through github.com/lib/pq
//   - MySQL: MySQL and MariaDB, through github.com/go-sql-driver/mysql
//   - SQLite: SQLite, through modernc.org/sqlite
//   - SQLServer: Microsoft SQL Server, through github.com/microsoft/go-mssqldb
//
// Names are normalized with Normalize, which also accepts common aliases
// such as "postgresql", "mssql" or "sqlite3".
//
// # Sub-packages
//
//   - dialect/sql: lazy shared connections, DSN building and query statistics
//   - dialect/sql/schema: information_schema and atlas based introspection
package dialect
