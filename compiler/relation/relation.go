// Package relation classifies the foreign keys touching a table into owning
// (many-to-one) and inverse (one-to-many) relations, and names them so every
// artifact generated for the table agrees on the accessor.
package relation

import (
	"strconv"

	"github.com/syssam/tablegen/compiler/load"
	"github.com/syssam/tablegen/compiler/naming"
)

// Direction of a relation, relative to the table it was resolved for.
type Direction uint8

const (
	// Owning is the many-to-one side: the table holds the foreign-key column.
	Owning Direction = iota
	// Inverse is the one-to-many side: the table is referenced by the foreign key.
	Inverse
)

// String returns the relation kind name.
func (d Direction) String() string {
	if d == Inverse {
		return "O2M"
	}
	return "M2O"
}

// Import describes the artifacts of the table a relation points to.
// Emitters derive the remote type and package paths from it.
type Import struct {
	Table    string
	TypeName string
	FileSlug string
}

// ImportOf returns the Import of table.
func ImportOf(table string) Import {
	return Import{Table: table, TypeName: naming.TypeName(table), FileSlug: naming.FileSlug(table)}
}

// Relation is a foreign key classified relative to one table.
type Relation struct {
	Direction Direction
	// Table is the table the relation was resolved for.
	Table string
	// LocalColumn and RemoteColumn are the columns on Table and RemoteTable.
	LocalColumn  string
	RemoteTable  string
	RemoteColumn string
	// ChildColumn is the foreign-key column, whichever side holds it.
	ChildColumn string
	// Accessor is the member name of the relation on the table's artifacts.
	Accessor   string
	RemoteType string
	Import     Import
	Constraint string
	OnUpdate   string
	OnDelete   string
	// Comment is the remote table's comment.
	Comment string
	// Orphan is set when the remote table is not among the known tables.
	Orphan bool
}

// Owning reports if the relation is many-to-one.
func (r Relation) Owning() bool { return r.Direction == Owning }

// SelfReference reports if both sides are the same table.
func (r Relation) SelfReference() bool { return r.Table == r.RemoteTable }

// Field returns the exported struct field name of the accessor.
func (r Relation) Field() string { return naming.Exported(r.Accessor) }

// Set holds the relations of one table.
type Set struct {
	Owning  []Relation
	Inverse []Relation
}

// All returns owning relations followed by inverse ones.
func (s Set) All() []Relation {
	all := make([]Relation, 0, len(s.Owning)+len(s.Inverse))
	all = append(all, s.Owning...)
	return append(all, s.Inverse...)
}

// Len returns the number of relations.
func (s Set) Len() int { return len(s.Owning) + len(s.Inverse) }

// Imports returns the imports of the distinct remote tables, excluding the
// table itself, in order of first appearance.
func (s Set) Imports() []Import {
	var (
		imports []Import
		seen    = make(map[string]bool)
	)
	for _, r := range s.All() {
		if r.SelfReference() || seen[r.Import.Table] {
			continue
		}
		seen[r.Import.Table] = true
		imports = append(imports, r.Import)
	}
	return imports
}

// Orphans returns the relations pointing at unknown tables.
func (s Set) Orphans() []Relation {
	var orphans []Relation
	for _, r := range s.All() {
		if r.Orphan {
			orphans = append(orphans, r)
		}
	}
	return orphans
}

type options struct {
	known map[string]bool
}

// Option configures Resolve.
type Option func(*options)

// WithKnownTables marks relations to any other table as orphans.
func WithKnownTables(names ...string) Option {
	return func(o *options) {
		if o.known == nil {
			o.known = make(map[string]bool, len(names))
		}
		for _, n := range names {
			o.known[n] = true
		}
	}
}

// Resolve classifies the edges touching table. Edges not touching it are
// ignored and exact duplicates are dropped. A self-referencing edge yields
// both an inverse and an owning relation.
func Resolve(table string, edges []load.ForeignKey, opts ...Option) Set {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	var (
		set  Set
		seen = make(map[load.ForeignKey]bool)
	)
	for _, e := range edges {
		if !e.Touches(table) {
			continue
		}
		key := load.ForeignKey{Table: e.Table, Column: e.Column, RefTable: e.RefTable, RefColumn: e.RefColumn, Constraint: e.Constraint}
		if seen[key] {
			continue
		}
		seen[key] = true
		if e.Table != table || e.RefTable == table {
			set.Inverse = append(set.Inverse, inverse(table, e))
		}
		if e.Table == table {
			set.Owning = append(set.Owning, owning(table, e))
		}
	}
	if o.known != nil {
		mark := func(rs []Relation) {
			for i := range rs {
				rs[i].Orphan = !o.known[rs[i].RemoteTable]
			}
		}
		mark(set.Owning)
		mark(set.Inverse)
	}
	dedupe(&set)
	return set
}

func owning(table string, e load.ForeignKey) Relation {
	remote := naming.TypeName(e.RefTable)
	return Relation{
		Direction:    Owning,
		Table:        table,
		LocalColumn:  e.Column,
		RemoteTable:  e.RefTable,
		RemoteColumn: e.RefColumn,
		ChildColumn:  e.Column,
		Accessor:     naming.MemberName(e.Column) + remote,
		RemoteType:   remote,
		Import:       ImportOf(e.RefTable),
		Constraint:   e.Constraint,
		OnUpdate:     e.OnUpdate,
		OnDelete:     e.OnDelete,
		Comment:      e.RefTableComment,
	}
}

func inverse(table string, e load.ForeignKey) Relation {
	remote := naming.TypeName(e.Table)
	return Relation{
		Direction:    Inverse,
		Table:        table,
		LocalColumn:  e.RefColumn,
		RemoteTable:  e.Table,
		RemoteColumn: e.Column,
		ChildColumn:  e.Column,
		Accessor:     naming.MemberName(e.Column) + naming.Plural(remote),
		RemoteType:   remote,
		Import:       ImportOf(e.Table),
		Constraint:   e.Constraint,
		OnUpdate:     e.OnUpdate,
		OnDelete:     e.OnDelete,
		Comment:      e.TableComment,
	}
}

// dedupe keeps accessors unique across the whole set. A colliding accessor
// gets the constraint name appended, then a counter as last resort.
func dedupe(set *Set) {
	used := make(map[string]bool, set.Len())
	fix := func(rs []Relation) {
		for i := range rs {
			name := rs[i].Accessor
			if used[name] && rs[i].Constraint != "" {
				name += naming.TypeName(rs[i].Constraint)
			}
			for n := 2; used[name]; n++ {
				name = rs[i].Accessor + naming.TypeName(rs[i].Constraint) + strconv.Itoa(n)
			}
			used[name] = true
			rs[i].Accessor = name
		}
	}
	fix(set.Owning)
	fix(set.Inverse)
}
