package gen

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/tablegen/compiler/load"
	"github.com/syssam/tablegen/compiler/naming"
	"github.com/syssam/tablegen/compiler/relation"
	"github.com/syssam/tablegen/compiler/typemap"
)

const (
	gormPkg    = "gorm.io/gorm"
	contextPkg = "context"
)

// Input DTO variants.
const (
	inputCreate = "Create"
	inputUpdate = "Update"
	inputSave   = "Save"
)

// goFile starts a Go artifact in the package of dir.
func (c *Context) goFile(dir, pkg string) *GoFile {
	return &GoFile{
		PkgPath: c.Config.ImportPath(dir),
		PkgName: pkg,
		Header:  c.Config.Header,
		Aliases: c.aliases,
	}
}

// base returns a symbol of the base runtime package.
func (c *Context) base(name string) *jen.Statement {
	return jen.Qual(c.Config.BaseImport(), name)
}

func (c *Context) ref(kind Kind, table, dir, name string) *jen.Statement {
	p := c.Config.ImportPath(dir)
	c.Imports.Add(Import{Kind: kind, Table: table, Path: p, Name: name})
	return jen.Qual(p, name)
}

// self returns the Import of the table being emitted.
func (c *Context) self() relation.Import { return relation.ImportOf(c.Names.Table) }

// entity returns the entity type of imp.
func (c *Context) entity(imp relation.Import) *jen.Statement {
	return c.ref(KindEntity, imp.Table, entitiesDir(imp.Table), imp.TypeName)
}

// service returns the service type of imp. Service packages live in the
// table's slug directory.
func (c *Context) service(imp relation.Import) *jen.Statement {
	c.aliases[c.Config.ImportPath(imp.FileSlug)] = naming.PackageName(imp.Table)
	return c.ref(KindService, imp.Table, imp.FileSlug, imp.TypeName+"Service")
}

// newService returns the service constructor of imp.
func (c *Context) newService(imp relation.Import) *jen.Statement {
	c.aliases[c.Config.ImportPath(imp.FileSlug)] = naming.PackageName(imp.Table)
	return c.ref(KindService, imp.Table, imp.FileSlug, "New"+imp.TypeName+"Service")
}

// input returns an input DTO type of imp.
func (c *Context) input(variant string, imp relation.Import) *jen.Statement {
	return c.ref(KindInput, imp.Table, dtoDir(imp.Table), variant+imp.TypeName+"Input")
}

// resolver returns the resolver type of a table.
func (c *Context) resolver(table string) *jen.Statement {
	return c.ref(KindResolver, table, resolversDir(table), resolverName(table))
}

// newResolver returns the resolver constructor of a table.
func (c *Context) newResolver(table string) *jen.Statement {
	return c.ref(KindResolver, table, resolversDir(table), "New"+resolverName(table))
}

func serviceName(table string) string {
	return naming.TypeName(table) + "Service"
}

func resolverName(table string) string {
	return naming.TypeName(table) + "Resolver"
}

func moduleName(table string) string {
	return naming.TypeName(table) + "Module"
}

func inputName(variant, table string) string {
	return variant + naming.TypeName(table) + "Input"
}

// serviceField is the struct field holding the service of a table.
func serviceField(table string) string { return serviceName(table) }

// serviceVar is the variable or parameter holding the service of a table.
func serviceVar(table string) string { return naming.Unexported(serviceName(table)) }

// goType returns the Go type of a column mapping.
func goType(m typemap.Mapping) *jen.Statement {
	switch m.Host {
	case typemap.Time:
		return jen.Qual("time", "Time")
	case typemap.Number:
		if m.Integral() {
			return jen.Int64()
		}
		return jen.Float64()
	case typemap.Bool:
		return jen.Bool()
	case typemap.Object:
		return jen.Map(jen.String()).Id("any")
	default:
		return jen.String()
	}
}

// optionalType returns the Go type of a column that may be omitted.
func optionalType(m typemap.Mapping) *jen.Statement {
	if m.Host == typemap.Object {
		return goType(m)
	}
	return jen.Op("*").Add(goType(m))
}

// fieldName is the Go struct field of a column.
func fieldName(column string) string { return naming.StructField(column) }

// jsonName is the serialized member name of a column.
func jsonName(column string) string { return naming.MemberNameWithDigits(column) }

// columnDoc returns the doc line of a column field.
func columnDoc(c load.Column) string {
	if s := oneLine(c.Comment); s != "" {
		return fieldName(c.Name) + " " + s
	}
	return fieldName(c.Name) + " holds the " + c.Name + " column."
}

// serviceTables returns the tables whose services a resolver depends on:
// the table itself followed by every related table.
func (c *Context) serviceTables() []relation.Import {
	return append([]relation.Import{c.self()}, c.Relations.Imports()...)
}
