// Package schema introspects live databases into the table, column and
// foreign key descriptors consumed by the generator.
package schema

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/syssam/tablegen/compiler/load"
	"github.com/syssam/tablegen/dialect"
	"github.com/syssam/tablegen/dialect/sql"
)

// ExcludedTables are migration bookkeeping tables that are never generated.
var ExcludedTables = []string{
	"sequelizemeta",
	"migrations",
	"schema_migrations",
	"goose_db_version",
	"atlas_schema_revisions",
}

// Excluded reports if a table is migration bookkeeping.
func Excluded(table string) bool {
	return slices.Contains(ExcludedTables, strings.ToLower(table))
}

// queries holds the information_schema queries of a dialect. Every query
// takes the schema as its first argument.
type queries struct {
	tables      string
	columns     string
	foreignKeys string
	// fkArgs returns the arguments of the foreign keys query.
	fkArgs func(schema, table string) []any
}

var dialectQueries = map[string]queries{
	dialect.Postgres: {
		tables: `SELECT t.table_name,
  COALESCE(obj_description(to_regclass(quote_ident(t.table_schema) || '.' || quote_ident(t.table_name)), 'pg_class'), ''),
  t.table_type
FROM information_schema.tables t
WHERE t.table_schema = $1 AND t.table_type IN ('BASE TABLE', 'VIEW')
ORDER BY t.table_name`,
		columns: `SELECT c.column_name,
  COALESCE(col_description(to_regclass(quote_ident(c.table_schema) || '.' || quote_ident(c.table_name)), c.ordinal_position), ''),
  c.data_type,
  c.udt_name,
  COALESCE(c.character_maximum_length, 0),
  c.is_nullable
FROM information_schema.columns c
WHERE c.table_schema = $1 AND c.table_name = $2
ORDER BY c.column_name`,
		foreignKeys: `SELECT DISTINCT kcu.constraint_name, kcu.table_name, kcu.column_name, ccu.table_name, ccu.column_name, rc.update_rule, rc.delete_rule
FROM information_schema.key_column_usage kcu
JOIN information_schema.constraint_column_usage ccu
  ON kcu.constraint_name = ccu.constraint_name AND kcu.constraint_schema = ccu.constraint_schema
JOIN information_schema.referential_constraints rc
  ON kcu.constraint_name = rc.constraint_name AND kcu.constraint_schema = rc.constraint_schema
WHERE kcu.constraint_schema = $1 AND (kcu.table_name = $2 OR ccu.table_name = $2)
ORDER BY kcu.constraint_name, kcu.column_name`,
		fkArgs: func(schema, table string) []any { return []any{schema, table} },
	},
	dialect.MySQL: {
		tables: `SELECT table_name, table_comment, table_type
FROM information_schema.tables
WHERE table_schema = ? AND table_type IN ('BASE TABLE', 'VIEW')
ORDER BY table_name`,
		columns: `SELECT column_name, column_comment, data_type, column_type, COALESCE(character_maximum_length, 0), is_nullable
FROM information_schema.columns
WHERE table_schema = ? AND table_name = ?
ORDER BY column_name`,
		foreignKeys: `SELECT DISTINCT k.constraint_name, k.table_name, k.column_name, k.referenced_table_name, k.referenced_column_name, r.update_rule, r.delete_rule
FROM information_schema.key_column_usage k
JOIN information_schema.referential_constraints r
  ON r.constraint_schema = k.constraint_schema AND r.constraint_name = k.constraint_name
WHERE k.table_schema = ? AND k.referenced_table_name IS NOT NULL AND (k.table_name = ? OR k.referenced_table_name = ?)
ORDER BY k.constraint_name, k.column_name`,
		fkArgs: func(schema, table string) []any { return []any{schema, table, table} },
	},
	dialect.SQLServer: {
		tables: `SELECT t.TABLE_NAME, CAST(COALESCE(ep.value, '') AS NVARCHAR(4000)), t.TABLE_TYPE
FROM INFORMATION_SCHEMA.TABLES t
LEFT JOIN sys.extended_properties ep
  ON ep.major_id = OBJECT_ID(QUOTENAME(t.TABLE_SCHEMA) + '.' + QUOTENAME(t.TABLE_NAME)) AND ep.minor_id = 0 AND ep.name = 'MS_Description'
WHERE t.TABLE_SCHEMA = @p1
ORDER BY t.TABLE_NAME`,
		columns: `SELECT c.COLUMN_NAME, CAST(COALESCE(ep.value, '') AS NVARCHAR(4000)), c.DATA_TYPE, c.DATA_TYPE, COALESCE(c.CHARACTER_MAXIMUM_LENGTH, 0), c.IS_NULLABLE
FROM INFORMATION_SCHEMA.COLUMNS c
LEFT JOIN sys.extended_properties ep
  ON ep.major_id = OBJECT_ID(QUOTENAME(c.TABLE_SCHEMA) + '.' + QUOTENAME(c.TABLE_NAME))
  AND ep.minor_id = COLUMNPROPERTY(ep.major_id, c.COLUMN_NAME, 'ColumnId') AND ep.name = 'MS_Description'
WHERE c.TABLE_SCHEMA = @p1 AND c.TABLE_NAME = @p2
ORDER BY c.COLUMN_NAME`,
		foreignKeys: `SELECT rc.CONSTRAINT_NAME, kcu.TABLE_NAME, kcu.COLUMN_NAME, pk.TABLE_NAME, pk.COLUMN_NAME, rc.UPDATE_RULE, rc.DELETE_RULE
FROM INFORMATION_SCHEMA.REFERENTIAL_CONSTRAINTS rc
JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
  ON kcu.CONSTRAINT_SCHEMA = rc.CONSTRAINT_SCHEMA AND kcu.CONSTRAINT_NAME = rc.CONSTRAINT_NAME
JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE pk
  ON pk.CONSTRAINT_SCHEMA = rc.UNIQUE_CONSTRAINT_SCHEMA AND pk.CONSTRAINT_NAME = rc.UNIQUE_CONSTRAINT_NAME AND pk.ORDINAL_POSITION = kcu.ORDINAL_POSITION
WHERE kcu.TABLE_SCHEMA = @p1 AND (kcu.TABLE_NAME = @p2 OR pk.TABLE_NAME = @p2)
ORDER BY rc.CONSTRAINT_NAME, kcu.COLUMN_NAME`,
		fkArgs: func(schema, table string) []any { return []any{schema, table} },
	},
}

// DefaultSchema returns the schema inspected when none is configured.
func DefaultSchema(d string) string {
	switch d {
	case dialect.Postgres:
		return "public"
	case dialect.SQLServer:
		return "dbo"
	default:
		return ""
	}
}

// Inspector reads a database through information_schema queries. It
// implements load.Source.
type Inspector struct {
	drv    dialect.Driver
	schema string
	q      queries

	mu       sync.Mutex
	comments map[string]string
}

// NewInspector returns an inspector of a schema. For MySQL the schema is
// the database name.
func NewInspector(drv dialect.Driver, schema string) (*Inspector, error) {
	q, ok := dialectQueries[drv.Dialect()]
	if !ok {
		return nil, fmt.Errorf("schema: no information_schema queries for dialect %q", drv.Dialect())
	}
	if schema == "" {
		schema = DefaultSchema(drv.Dialect())
	}
	if !sql.ValidIdentifier(schema) {
		return nil, fmt.Errorf("schema: invalid schema name %q", schema)
	}
	return &Inspector{drv: drv, schema: schema, q: q}, nil
}

// Tables implements load.Source.
func (i *Inspector) Tables(ctx context.Context) ([]load.Table, error) {
	rows, err := i.drv.QueryContext(ctx, i.q.tables, i.schema)
	if err != nil {
		return nil, fmt.Errorf("schema: query tables: %w", err)
	}
	defer rows.Close()
	var (
		tables   []load.Table
		comments = make(map[string]string)
	)
	for rows.Next() {
		var t load.Table
		var typ string
		if err := rows.Scan(&t.Name, &t.Comment, &typ); err != nil {
			return nil, fmt.Errorf("schema: scan table: %w", err)
		}
		comments[t.Name] = t.Comment
		if Excluded(t.Name) {
			continue
		}
		t.Kind = load.KindTable
		if strings.EqualFold(typ, "VIEW") {
			t.Kind = load.KindView
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("schema: read tables: %w", err)
	}
	i.mu.Lock()
	i.comments = comments
	i.mu.Unlock()
	load.SortTables(tables)
	return tables, nil
}

// Columns implements load.Source.
func (i *Inspector) Columns(ctx context.Context, table string) ([]load.Column, error) {
	rows, err := i.drv.QueryContext(ctx, i.q.columns, i.schema, table)
	if err != nil {
		return nil, fmt.Errorf("schema: query columns of %s: %w", table, err)
	}
	defer rows.Close()
	var columns []load.Column
	for rows.Next() {
		c := load.Column{Table: table}
		var nullable string
		if err := rows.Scan(&c.Name, &c.Comment, &c.NativeType, &c.RawType, &c.MaxLength, &nullable); err != nil {
			return nil, fmt.Errorf("schema: scan column of %s: %w", table, err)
		}
		// nvarchar(max) and friends report -1.
		c.MaxLength = max(c.MaxLength, 0)
		c.Nullable = strings.EqualFold(nullable, "YES")
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("schema: read columns of %s: %w", table, err)
	}
	load.SortColumns(columns)
	return columns, nil
}

// ForeignKeys implements load.Source. Keys where the table is either the
// child or the parent are returned.
func (i *Inspector) ForeignKeys(ctx context.Context, table string) ([]load.ForeignKey, error) {
	comments, err := i.tableComments(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := i.drv.QueryContext(ctx, i.q.foreignKeys, i.q.fkArgs(i.schema, table)...)
	if err != nil {
		return nil, fmt.Errorf("schema: query foreign keys of %s: %w", table, err)
	}
	defer rows.Close()
	var fks []load.ForeignKey
	for rows.Next() {
		fk := load.ForeignKey{Schema: i.schema}
		if err := rows.Scan(&fk.Constraint, &fk.Table, &fk.Column, &fk.RefTable, &fk.RefColumn, &fk.OnUpdate, &fk.OnDelete); err != nil {
			return nil, fmt.Errorf("schema: scan foreign key of %s: %w", table, err)
		}
		fk.TableComment = comments[fk.Table]
		fk.RefTableComment = comments[fk.RefTable]
		fks = append(fks, fk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("schema: read foreign keys of %s: %w", table, err)
	}
	load.SortForeignKeys(fks)
	return fks, nil
}

// tableComments returns the comments of every table, listing the tables on
// first use.
func (i *Inspector) tableComments(ctx context.Context) (map[string]string, error) {
	i.mu.Lock()
	comments := i.comments
	i.mu.Unlock()
	if comments != nil {
		return comments, nil
	}
	if _, err := i.Tables(ctx); err != nil {
		return nil, err
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.comments, nil
}

var _ load.Source = (*Inspector)(nil)
