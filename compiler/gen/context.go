package gen

import (
	"sort"

	"github.com/syssam/tablegen/compiler/load"
	"github.com/syssam/tablegen/compiler/naming"
	"github.com/syssam/tablegen/compiler/relation"
	"github.com/syssam/tablegen/compiler/typemap"
)

// Request is the unit of work handed to every emitter for one table.
type Request struct {
	Table       load.Table
	Columns     []load.Column
	ForeignKeys []load.ForeignKey
}

// Names holds the normalized names of a table.
type Names struct {
	Table   string
	Type    string
	Member  string
	Slug    string
	Package string
}

// NamesOf normalizes a table name.
func NamesOf(table string) Names {
	return Names{
		Table:   table,
		Type:    naming.TypeName(table),
		Member:  naming.MemberName(table),
		Slug:    naming.FileSlug(table),
		Package: naming.PackageName(table),
	}
}

// Import is a reference from one artifact to a symbol of another generated
// artifact.
type Import struct {
	Kind  Kind
	Table string
	// Path is the Go import path, or the schema file for GraphQL references.
	Path string
	Name string
}

// ImportSet collects the imports of one emitter invocation without duplicates.
type ImportSet struct {
	items []Import
	seen  map[Import]bool
}

// NewImportSet returns an empty set.
func NewImportSet() *ImportSet {
	return &ImportSet{seen: make(map[Import]bool)}
}

// Add records an import. It reports false if the import was already present.
func (s *ImportSet) Add(imp Import) bool {
	if s.seen[imp] {
		return false
	}
	s.seen[imp] = true
	s.items = append(s.items, imp)
	return true
}

// Has reports if a symbol of the given path was imported.
func (s *ImportSet) Has(path, name string) bool {
	for _, imp := range s.items {
		if imp.Path == path && imp.Name == name {
			return true
		}
	}
	return false
}

// Len returns the number of imports.
func (s *ImportSet) Len() int { return len(s.items) }

// List returns the imports ordered by path and name.
func (s *ImportSet) List() []Import {
	out := make([]Import, len(s.items))
	copy(out, s.items)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Context is the state of a single emitter invocation. A new context is
// created for every (table, kind) pair, so nothing accumulated while emitting
// one artifact can leak into another.
type Context struct {
	Config  *Config
	Request Request
	Names   Names
	// Fields are the business columns, ordered by name.
	Fields    []load.Column
	Relations relation.Set
	Imports   *ImportSet
	columns   map[string]load.Column
	// aliases holds package names of imported per-table packages.
	aliases map[string]string
}

// NewContext prepares an emitter invocation. Relations are resolved fresh.
func NewContext(cfg *Config, req Request, opts ...relation.Option) *Context {
	columns := make([]load.Column, len(req.Columns))
	copy(columns, req.Columns)
	load.SortColumns(columns)
	req.Columns = columns

	ctx := &Context{
		Config:    cfg,
		Request:   req,
		Names:     NamesOf(req.Table.Name),
		Fields:    typemap.BusinessColumns(columns),
		Relations: relation.Resolve(req.Table.Name, req.ForeignKeys, opts...),
		Imports:   NewImportSet(),
		columns:   make(map[string]load.Column, len(columns)),
		aliases:   make(map[string]string),
	}
	for _, c := range columns {
		ctx.columns[c.Name] = c
	}
	return ctx
}

// Column returns a column of the table by name.
func (c *Context) Column(name string) (load.Column, bool) {
	col, ok := c.columns[name]
	return col, ok
}

// Empty reports if the table has nothing to emit.
func (c *Context) Empty() bool { return len(c.Request.Columns) == 0 }

// Doc returns the table comment, or a title derived from its name.
func (c *Context) Doc() string {
	if s := oneLine(c.Request.Table.Comment); s != "" {
		return s
	}
	return naming.Title(c.Names.Table)
}

// artifact starts an artifact of the given kind and hands it the import set.
func (c *Context) artifact(kind Kind, b body) *Artifact {
	return &Artifact{Kind: kind, Table: c.Names.Table, Imports: c.Imports.List(), body: b}
}
