// Package load holds the relational metadata that tablegen consumes: tables,
// columns and foreign keys, as read from a live database or a snapshot.
package load

import (
	"context"
	"sort"
)

// Table kinds reported by information_schema.
const (
	KindTable = "BASE TABLE"
	KindView  = "VIEW"
)

// Table describes one relational table or view.
type Table struct {
	Name    string `json:"name" yaml:"name" msgpack:"name"`
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty" msgpack:"comment,omitempty"`
	Kind    string `json:"kind,omitempty" yaml:"kind,omitempty" msgpack:"kind,omitempty"`
}

// View reports if the table is a view.
func (t Table) View() bool { return t.Kind == KindView }

// Column describes one column of a table.
type Column struct {
	Table   string `json:"table" yaml:"table" msgpack:"table"`
	Name    string `json:"name" yaml:"name" msgpack:"name"`
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty" msgpack:"comment,omitempty"`
	// RawType is the dialect specific column type, e.g. int4 or varchar(50).
	RawType string `json:"raw_type,omitempty" yaml:"raw_type,omitempty" msgpack:"raw_type,omitempty"`
	// NativeType is the information_schema data type, e.g. integer.
	NativeType string `json:"native_type,omitempty" yaml:"native_type,omitempty" msgpack:"native_type,omitempty"`
	// MaxLength is the character maximum length, 0 when unknown.
	MaxLength int  `json:"max_length,omitempty" yaml:"max_length,omitempty" msgpack:"max_length,omitempty"`
	Nullable  bool `json:"nullable,omitempty" yaml:"nullable,omitempty" msgpack:"nullable,omitempty"`
}

// ForeignKey is a directed reference from a child column to a parent column.
type ForeignKey struct {
	Schema          string `json:"schema,omitempty" yaml:"schema,omitempty" msgpack:"schema,omitempty"`
	Table           string `json:"table" yaml:"table" msgpack:"table"`
	Column          string `json:"column" yaml:"column" msgpack:"column"`
	RefTable        string `json:"ref_table" yaml:"ref_table" msgpack:"ref_table"`
	RefColumn       string `json:"ref_column" yaml:"ref_column" msgpack:"ref_column"`
	Constraint      string `json:"constraint,omitempty" yaml:"constraint,omitempty" msgpack:"constraint,omitempty"`
	TableComment    string `json:"table_comment,omitempty" yaml:"table_comment,omitempty" msgpack:"table_comment,omitempty"`
	RefTableComment string `json:"ref_table_comment,omitempty" yaml:"ref_table_comment,omitempty" msgpack:"ref_table_comment,omitempty"`
	OnUpdate        string `json:"on_update,omitempty" yaml:"on_update,omitempty" msgpack:"on_update,omitempty"`
	OnDelete        string `json:"on_delete,omitempty" yaml:"on_delete,omitempty" msgpack:"on_delete,omitempty"`
}

// Touches reports if the table is either side of the foreign key.
func (fk ForeignKey) Touches(table string) bool {
	return fk.Table == table || fk.RefTable == table
}

// SelfReference reports if the foreign key points back to its own table.
func (fk ForeignKey) SelfReference() bool { return fk.Table == fk.RefTable }

// Source provides the schema metadata of one generation run.
type Source interface {
	// Tables returns the generatable tables ordered by name.
	Tables(context.Context) ([]Table, error)
	// Columns returns the columns of a table ordered by name.
	Columns(ctx context.Context, table string) ([]Column, error)
	// ForeignKeys returns the foreign keys where the table is child or parent,
	// ordered by constraint name.
	ForeignKeys(ctx context.Context, table string) ([]ForeignKey, error)
}

// SortColumns orders columns by name, the order fields are emitted in.
func SortColumns(columns []Column) {
	sort.SliceStable(columns, func(i, j int) bool { return columns[i].Name < columns[j].Name })
}

// SortForeignKeys orders foreign keys by constraint name, then by child column.
func SortForeignKeys(fks []ForeignKey) {
	sort.SliceStable(fks, func(i, j int) bool {
		if fks[i].Constraint != fks[j].Constraint {
			return fks[i].Constraint < fks[j].Constraint
		}
		return fks[i].Column < fks[j].Column
	})
}

// SortTables orders tables by name.
func SortTables(tables []Table) {
	sort.SliceStable(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
}
