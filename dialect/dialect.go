package dialect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Database dialects.
const (
	Postgres  = "postgres"
	MySQL     = "mysql"
	SQLite    = "sqlite"
	SQLServer = "sqlserver"
)

// Dialects lists the supported dialects.
var Dialects = []string{Postgres, MySQL, SQLite, SQLServer}

var aliases = map[string]string{
	"postgresql": Postgres,
	"pg":         Postgres,
	"mariadb":    MySQL,
	"sqlite3":    SQLite,
	"mssql":      SQLServer,
}

// Normalize returns the dialect constant of a name or one of its aliases.
func Normalize(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if a, ok := aliases[name]; ok {
		return a, nil
	}
	for _, d := range Dialects {
		if d == name {
			return d, nil
		}
	}
	return "", fmt.Errorf("dialect: unsupported dialect %q", name)
}

// Querier runs read queries against a database.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Driver is a Querier bound to a dialect.
type Driver interface {
	Querier
	// Dialect returns the dialect of the driver.
	Dialect() string
	// Close closes the underlying connection.
	Close() error
}
