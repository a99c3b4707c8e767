package schema

import (
	"fmt"

	"github.com/syssam/tablegen/compiler/load"
	"github.com/syssam/tablegen/dialect"
	"github.com/syssam/tablegen/dialect/sql"
)

// Inspector kinds.
const (
	InformationSchema = "information_schema"
	Atlas             = "atlas"
)

// NewSource returns the load.Source reading a database. An empty kind picks
// atlas for SQLite, which has no information_schema, and information_schema
// queries otherwise.
func NewSource(drv *sql.Driver, kind, schemaName string) (load.Source, error) {
	if kind == "" {
		kind = InformationSchema
		if drv.Dialect() == dialect.SQLite {
			kind = Atlas
		}
	}
	switch kind {
	case InformationSchema:
		return NewInspector(drv, schemaName)
	case Atlas:
		return NewAtlasInspector(drv, schemaName)
	default:
		return nil, fmt.Errorf("schema: unknown inspector %q", kind)
	}
}
