// Package sql opens the database connections used for introspection.
//
// A Driver is created per run with Open and connects lazily on the first
// query; every inspector shares it until Close:
//
//	dsn, err := sql.DSN(sql.Conn{
//		Dialect:  dialect.Postgres,
//		Host:     "localhost",
//		Database: "app",
//		Username: "app",
//	})
//	if err != nil {
//		return err
//	}
//	drv, err := sql.Open(dialect.Postgres, dsn)
//	if err != nil {
//		return err
//	}
//	defer drv.Close()
//
// Every query is counted in the driver's QueryStats and passed to the
// optional QueryHook, which the CLI uses for debug logging.
package sql
