package schema

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/tablegen/compiler/load"
	"github.com/syssam/tablegen/dialect"
	"github.com/syssam/tablegen/dialect/sql"
)

// AtlasInspector reads a database with the atlas schema inspectors. The
// schema is inspected once, on first use. It implements load.Source.
type AtlasInspector struct {
	drv  *sql.Driver
	name string

	once   sync.Once
	result *snapshot
	err    error
}

type snapshot struct {
	tables  []load.Table
	columns map[string][]load.Column
	fks     []load.ForeignKey
}

// NewAtlasInspector returns an inspector of the named schema. An empty name
// inspects the connection's current schema.
func NewAtlasInspector(drv *sql.Driver, name string) (*AtlasInspector, error) {
	switch drv.Dialect() {
	case dialect.SQLite, dialect.Postgres, dialect.MySQL:
	default:
		return nil, fmt.Errorf("schema: atlas inspection does not support dialect %q", drv.Dialect())
	}
	return &AtlasInspector{drv: drv, name: name}, nil
}

// Tables implements load.Source.
func (a *AtlasInspector) Tables(ctx context.Context) ([]load.Table, error) {
	s, err := a.inspect(ctx)
	if err != nil {
		return nil, err
	}
	return append([]load.Table(nil), s.tables...), nil
}

// Columns implements load.Source.
func (a *AtlasInspector) Columns(ctx context.Context, table string) ([]load.Column, error) {
	s, err := a.inspect(ctx)
	if err != nil {
		return nil, err
	}
	return append([]load.Column(nil), s.columns[table]...), nil
}

// ForeignKeys implements load.Source.
func (a *AtlasInspector) ForeignKeys(ctx context.Context, table string) ([]load.ForeignKey, error) {
	s, err := a.inspect(ctx)
	if err != nil {
		return nil, err
	}
	var fks []load.ForeignKey
	for _, fk := range s.fks {
		if fk.Touches(table) {
			fks = append(fks, fk)
		}
	}
	return fks, nil
}

func (a *AtlasInspector) inspect(ctx context.Context) (*snapshot, error) {
	a.once.Do(func() {
		a.result, a.err = a.load(ctx)
	})
	return a.result, a.err
}

func (a *AtlasInspector) load(ctx context.Context) (*snapshot, error) {
	db, err := a.drv.DB(ctx)
	if err != nil {
		return nil, err
	}
	var drv migrate.Driver
	switch a.drv.Dialect() {
	case dialect.SQLite:
		drv, err = sqlite.Open(db)
	case dialect.Postgres:
		drv, err = postgres.Open(db)
	default:
		drv, err = mysql.Open(db)
	}
	if err != nil {
		return nil, fmt.Errorf("schema: open atlas driver: %w", err)
	}
	s, err := drv.InspectSchema(ctx, a.name, nil)
	if err != nil {
		return nil, fmt.Errorf("schema: inspect %q: %w", a.name, err)
	}
	return convert(s), nil
}

// convert turns an atlas schema into load descriptors.
func convert(s *schema.Schema) *snapshot {
	out := &snapshot{columns: make(map[string][]load.Column)}
	for _, t := range s.Tables {
		if Excluded(t.Name) {
			continue
		}
		out.tables = append(out.tables, load.Table{Name: t.Name, Comment: comment(t.Attrs), Kind: load.KindTable})
		columns := make([]load.Column, 0, len(t.Columns))
		for _, c := range t.Columns {
			columns = append(columns, column(t.Name, c))
		}
		load.SortColumns(columns)
		out.columns[t.Name] = columns

		for _, fk := range t.ForeignKeys {
			if fk.RefTable == nil {
				continue
			}
			for i, c := range fk.Columns {
				if i >= len(fk.RefColumns) {
					break
				}
				out.fks = append(out.fks, load.ForeignKey{
					Schema:          s.Name,
					Table:           t.Name,
					Column:          c.Name,
					RefTable:        fk.RefTable.Name,
					RefColumn:       fk.RefColumns[i].Name,
					Constraint:      constraintName(t.Name, fk),
					TableComment:    comment(t.Attrs),
					RefTableComment: comment(fk.RefTable.Attrs),
					OnUpdate:        string(fk.OnUpdate),
					OnDelete:        string(fk.OnDelete),
				})
			}
		}
	}
	load.SortTables(out.tables)
	load.SortForeignKeys(out.fks)
	return out
}

func column(table string, c *schema.Column) load.Column {
	col := load.Column{Table: table, Name: c.Name, Comment: comment(c.Attrs)}
	if c.Type == nil {
		return col
	}
	col.RawType = strings.ToLower(c.Type.Raw)
	col.Nullable = c.Type.Null
	switch t := c.Type.Type.(type) {
	case *schema.StringType:
		col.NativeType, col.MaxLength = t.T, t.Size
	case *schema.IntegerType:
		col.NativeType = t.T
	case *schema.DecimalType:
		col.NativeType = t.T
	case *schema.FloatType:
		col.NativeType = t.T
	case *schema.TimeType:
		col.NativeType = t.T
	case *schema.BoolType:
		col.NativeType = t.T
	case *schema.JSONType:
		col.NativeType = t.T
	case *schema.BinaryType:
		col.NativeType = t.T
	case *schema.UUIDType:
		col.NativeType = t.T
	case *schema.UnsupportedType:
		col.NativeType = t.T
	}
	if col.RawType == "" {
		col.RawType = col.NativeType
	}
	return col
}

// constraintName returns the symbol of a foreign key. SQLite keys are
// usually unnamed and get a postgres style name.
func constraintName(table string, fk *schema.ForeignKey) string {
	if fk.Symbol != "" {
		return fk.Symbol
	}
	names := make([]string, 0, len(fk.Columns))
	for _, c := range fk.Columns {
		names = append(names, c.Name)
	}
	return table + "_" + strings.Join(names, "_") + "_fkey"
}

func comment(attrs []schema.Attr) string {
	for _, a := range attrs {
		if c, ok := a.(*schema.Comment); ok {
			return c.Text
		}
	}
	return ""
}

var _ load.Source = (*AtlasInspector)(nil)
