package sql

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/syssam/tablegen/dialect"
)

// Conn describes a database connection.
type Conn struct {
	Dialect  string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	// Params are appended to the DSN as driver options.
	Params map[string]string
}

// DSN builds the data source name of a connection. For SQLite, Database is
// the file path.
func DSN(c Conn) (string, error) {
	d, err := dialect.Normalize(c.Dialect)
	if err != nil {
		return "", err
	}
	if c.Database == "" {
		return "", fmt.Errorf("dialect/sql: %s connection requires a database", d)
	}
	switch d {
	case dialect.MySQL:
		cfg := mysql.NewConfig()
		cfg.User = c.Username
		cfg.Passwd = c.Password
		cfg.Net = "tcp"
		cfg.Addr = hostPort(c, 3306)
		cfg.DBName = c.Database
		if len(c.Params) > 0 {
			cfg.Params = c.Params
		}
		return cfg.FormatDSN(), nil
	case dialect.Postgres:
		q := query(c.Params)
		if !q.Has("sslmode") {
			q.Set("sslmode", "disable")
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     userinfo(c),
			Host:     hostPort(c, 5432),
			Path:     "/" + c.Database,
			RawQuery: q.Encode(),
		}
		return u.String(), nil
	case dialect.SQLServer:
		q := query(c.Params)
		q.Set("database", c.Database)
		u := url.URL{
			Scheme:   "sqlserver",
			User:     userinfo(c),
			Host:     hostPort(c, 1433),
			RawQuery: q.Encode(),
		}
		return u.String(), nil
	default:
		params := map[string]string{"_pragma": "foreign_keys(1)"}
		for k, v := range c.Params {
			params[k] = v
		}
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, k+"="+params[k])
		}
		return "file:" + c.Database + "?" + strings.Join(pairs, "&"), nil
	}
}

func hostPort(c Conn, port int) string {
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	if c.Port > 0 {
		port = c.Port
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func userinfo(c Conn) *url.Userinfo {
	switch {
	case c.Username == "":
		return nil
	case c.Password == "":
		return url.User(c.Username)
	default:
		return url.UserPassword(c.Username, c.Password)
	}
}

func query(params map[string]string) url.Values {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	return q
}
