package sql

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sync"
	"time"

	// Database drivers of the supported dialects.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"

	"github.com/syssam/tablegen/dialect"
)

// validIdentifierRe validates SQL identifiers (alphanumeric, underscores, dots for schema.name)
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// ValidIdentifier checks if the string is a valid SQL identifier.
func ValidIdentifier(s string) bool {
	return s != "" && len(s) <= 128 && validIdentifierRe.MatchString(s)
}

// driverNames maps dialects to registered database/sql driver names.
var driverNames = map[string]string{
	dialect.Postgres:  "postgres",
	dialect.MySQL:     "mysql",
	dialect.SQLite:    "sqlite",
	dialect.SQLServer: "sqlserver",
}

// DriverName returns the database/sql driver name of a dialect.
func DriverName(name string) (string, error) {
	d, err := dialect.Normalize(name)
	if err != nil {
		return "", err
	}
	return driverNames[d], nil
}

// QueryHook is called after every query.
type QueryHook func(ctx context.Context, query string, args []any, duration time.Duration, err error)

// Driver is a dialect.Driver over database/sql. The connection is opened on
// first use and shared by every caller until Close.
type Driver struct {
	dialect string
	driver  string
	dsn     string

	stats         *tally
	slowThreshold time.Duration
	hook          QueryHook

	once sync.Once
	db   *sql.DB
	err  error
}

// Option configures a Driver.
type Option func(*Driver)

// WithSlowThreshold sets the duration above which a query counts as slow.
// The default is 100ms.
func WithSlowThreshold(d time.Duration) Option {
	return func(drv *Driver) {
		drv.slowThreshold = d
	}
}

// WithQueryHook sets a callback invoked after every query.
func WithQueryHook(hook QueryHook) Option {
	return func(drv *Driver) {
		drv.hook = hook
	}
}

// Open returns a driver for the dialect. No connection is made until the
// first query.
func Open(name, dsn string, opts ...Option) (*Driver, error) {
	d, err := dialect.Normalize(name)
	if err != nil {
		return nil, err
	}
	drv := newDriver(d, opts)
	drv.driver, drv.dsn = driverNames[d], dsn
	return drv, nil
}

// OpenDB wraps an already opened database.
func OpenDB(name string, db *sql.DB, opts ...Option) *Driver {
	drv := newDriver(name, opts)
	drv.once.Do(func() { drv.db = db })
	return drv
}

func newDriver(name string, opts []Option) *Driver {
	drv := &Driver{
		dialect:       name,
		stats:         &tally{},
		slowThreshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(drv)
	}
	return drv
}

// DB returns the underlying *sql.DB, connecting on first use.
func (d *Driver) DB(ctx context.Context) (*sql.DB, error) {
	d.once.Do(func() {
		db, err := sql.Open(d.driver, d.dsn)
		if err != nil {
			d.err = fmt.Errorf("dialect/sql: open %s: %w", d.dialect, err)
			return
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			d.err = fmt.Errorf("dialect/sql: connect %s: %w", d.dialect, err)
			return
		}
		d.db = db
	})
	return d.db, d.err
}

// Dialect implements the dialect.Driver interface.
func (d *Driver) Dialect() string { return d.dialect }

// QueryContext runs a query and records statistics.
func (d *Driver) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	db, err := d.DB(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	rows, err := db.QueryContext(ctx, query, args...)
	duration := time.Since(start)
	d.stats.add(query, duration, d.slowThreshold, err)
	if d.hook != nil {
		d.hook(ctx, query, args, duration, err)
	}
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: query: %w", err)
	}
	return rows, nil
}

// QueryStats returns the statistics of the queries run so far.
func (d *Driver) QueryStats() Stats { return d.stats.snapshot() }

// Close closes the connection, if one was opened.
func (d *Driver) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

var _ dialect.Driver = (*Driver)(nil)
