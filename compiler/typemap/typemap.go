// Package typemap maps native column types to host value types and API
// schema scalars, and knows which columns belong to the shared base type.
package typemap

import (
	"slices"
	"strings"

	"github.com/syssam/tablegen/compiler/load"
)

// Host is the host-language value kind of a column.
type Host uint8

// Host kinds.
const (
	String Host = iota
	Time
	Number
	Bool
	Object
)

// String returns the host kind name.
func (h Host) String() string {
	switch h {
	case Time:
		return "time"
	case Number:
		return "number"
	case Bool:
		return "boolean"
	case Object:
		return "object"
	default:
		return "string"
	}
}

// API schema scalars.
const (
	ScalarString  = "String"
	ScalarDate    = "Date"
	ScalarInt     = "Int"
	ScalarFloat   = "Float"
	ScalarBoolean = "Boolean"
	ScalarJSON    = "JSON"
)

// Mapping is the result of a type lookup.
type Mapping struct {
	Host   Host
	Scalar string
}

// Integral reports if a number mapping holds whole numbers.
func (m Mapping) Integral() bool { return m.Host == Number && m.Scalar == ScalarInt }

// Default is returned for unknown types.
var Default = Mapping{Host: String, Scalar: ScalarString}

var types = map[string]Mapping{
	"bigint":    {String, ScalarString},
	"nvarchar":  {String, ScalarString},
	"varchar":   {String, ScalarString},
	"timestamp": {Time, ScalarDate},
	"datetime":  {Time, ScalarDate},
	"int":       {Number, ScalarInt},
	"integer":   {Number, ScalarInt},
	"decimal":   {Number, ScalarFloat},
	"double":    {Number, ScalarFloat},
	"boolean":   {Bool, ScalarBoolean},
	"tinyint":   {Bool, ScalarBoolean},
	"json":      {Object, ScalarJSON},
}

// Lookup maps a raw type tag. Unknown tags fall back to Default.
func Lookup(tag string) Mapping {
	m, _ := lookup(tag)
	return m
}

func lookup(tag string) (Mapping, bool) {
	m, ok := types[normalize(tag)]
	if !ok {
		return Default, false
	}
	return m, true
}

// For maps a column, trying its native type before its raw type.
func For(c load.Column) Mapping {
	if m, ok := lookup(c.NativeType); ok {
		return m
	}
	if m, ok := lookup(c.RawType); ok {
		return m
	}
	return Default
}

// normalize lower-cases a tag and strips length or precision arguments:
// VARCHAR(50) => varchar.
func normalize(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexByte(tag, '('); i >= 0 {
		tag = strings.TrimSpace(tag[:i])
	}
	return tag
}

// SystemColumns are supplied by the shared base type and never emitted per column.
var SystemColumns = []string{
	"id",
	"created_at",
	"updated_at",
	"deleted_at",
	"created_user",
	"updated_user",
	"created_id",
	"updated_id",
	"deleted_id",
	"i18n",
	"enable_flag",
	"enable_at",
}

// IsSystemColumn reports if the column belongs to the base type.
func IsSystemColumn(name string) bool {
	return slices.Contains(SystemColumns, name)
}

// BusinessColumns filters out system columns, keeping order.
func BusinessColumns(columns []load.Column) []load.Column {
	out := make([]load.Column, 0, len(columns))
	for _, c := range columns {
		if !IsSystemColumn(c.Name) {
			out = append(out, c)
		}
	}
	return out
}
