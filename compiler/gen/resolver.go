package gen

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/tablegen/compiler/naming"
	"github.com/syssam/tablegen/compiler/relation"
	"github.com/syssam/tablegen/compiler/typemap"
)

// Verb identifies a resolver operation.
type Verb string

// Resolver operations.
const (
	VerbFindAll     Verb = "find-all"
	VerbCount       Verb = "count"
	VerbFindByID    Verb = "find-by-id"
	VerbCreate      Verb = "create"
	VerbUpdate      Verb = "update"
	VerbRemove      Verb = "remove"
	VerbSave        Verb = "save"
	VerbBatchRemove Verb = "batch-remove"
)

// Operation is a top-level query or mutation of a table.
type Operation struct {
	Verb Verb
	// Method is the resolver method, Field the API field.
	Method   string
	Field    string
	Mutation bool
	// CRUD is unset for the auxiliary count and save operations.
	CRUD bool
}

// Operations returns the operations of a table, in declaration order.
func Operations(table string) []Operation {
	t := naming.TypeName(table)
	op := func(v Verb, method string, mutation, crud bool) Operation {
		return Operation{Verb: v, Method: method, Field: naming.Unexported(method), Mutation: mutation, CRUD: crud}
	}
	return []Operation{
		op(VerbFindAll, "Find"+t, false, true),
		op(VerbCount, "Find"+t+"Count", false, false),
		op(VerbFindByID, "Find"+t+"ByPk", false, true),
		op(VerbCreate, "Create"+t, true, true),
		op(VerbUpdate, "Update"+t, true, true),
		op(VerbRemove, "Remove"+t, true, true),
		op(VerbSave, "Save"+t, true, false),
		op(VerbBatchRemove, "Remove"+t+"ByIds", true, true),
	}
}

// emitResolver emits the resolver of a table: its operations, one field
// resolver per relation and the child synchronization used by save.
func emitResolver(c *Context) *Artifact {
	if c.Empty() {
		return c.artifact(KindResolver, nil)
	}
	n := c.Names
	name := resolverName(n.Table)
	f := c.goFile(resolversDir(n.Table), "resolvers")

	var (
		fields []jen.Code
		params []jen.Code
		values = jen.Dict{}
	)
	for _, imp := range c.serviceTables() {
		fields = append(fields, jen.Id(serviceField(imp.Table)).Op("*").Add(c.service(imp)))
		params = append(params, jen.Id(serviceVar(imp.Table)).Op("*").Add(c.service(imp)))
		values[jen.Id(serviceField(imp.Table))] = jen.Id(serviceVar(imp.Table))
	}
	f.Types = append(f.Types,
		doc(fmt.Sprintf("%s resolves the %s operations and relation fields.", name, n.Type)).
			Type().Id(name).Struct(fields...),
	)
	f.Funcs = append(f.Funcs,
		doc(fmt.Sprintf("New%s returns a %s using the given services.", name, name)).
			Func().Id("New"+name).Params(params...).Op("*").Id(name).Block(
			jen.Return(jen.Op("&").Id(name).Values(values)),
		),
	)
	for _, op := range Operations(n.Table) {
		f.Funcs = append(f.Funcs, c.operation(op))
	}
	for _, r := range c.Relations.Owning {
		f.Funcs = append(f.Funcs, c.owningResolver(r))
	}
	for _, r := range c.Relations.Inverse {
		f.Funcs = append(f.Funcs, c.inverseResolver(r))
	}
	for _, r := range c.Relations.Inverse {
		f.Funcs = append(f.Funcs, c.syncChildren(r))
	}
	return c.artifact(KindResolver, f)
}

func (c *Context) receiver() *jen.Statement {
	return jen.Func().Params(jen.Id("r").Op("*").Id(resolverName(c.Names.Table)))
}

func ctxParam() *jen.Statement {
	return jen.Id("ctx").Qual(contextPkg, "Context")
}

func (c *Context) own() *jen.Statement {
	return jen.Id("r").Dot(serviceField(c.Names.Table))
}

// operation emits the resolver method of a top-level operation.
func (c *Context) operation(op Operation) jen.Code {
	var (
		n        = c.Names
		entity   = func() *jen.Statement { return jen.Op("*").Add(c.entity(c.self())) }
		opts     = jen.Id("queryBuilderOptions").Op("*").Add(c.base("QueryBuilderOptions"))
		inputArg = func(variant string) (string, *jen.Statement) {
			arg := naming.Unexported(inputName(variant, n.Table))
			return arg, jen.Id(arg).Add(c.input(variant, c.self()))
		}
		sig  = c.receiver().Id(op.Method)
		body []jen.Code
	)
	switch op.Verb {
	case VerbFindAll:
		sig.Params(ctxParam(), opts).Params(jen.Index().Add(entity()), jen.Error())
		body = append(body, jen.Return(c.own().Dot("FindEntity").Call(jen.Id("ctx"), jen.Id("queryBuilderOptions"))))
	case VerbCount:
		sig.Params(ctxParam(), opts).Params(jen.Int(), jen.Error())
		body = append(body, jen.Return(c.own().Dot("Count").Call(jen.Id("ctx"), jen.Id("queryBuilderOptions"))))
	case VerbFindByID:
		sig.Params(ctxParam(), jen.Id("id").String()).Params(entity(), jen.Error())
		body = append(body, jen.Return(c.own().Dot("FindByPk").Call(jen.Id("ctx"), jen.Id("id"))))
	case VerbCreate:
		arg, param := inputArg(inputCreate)
		sig.Params(ctxParam(), param).Params(entity(), jen.Error())
		body = append(body, jen.Return(c.own().Dot("Create").Call(jen.Id("ctx"), jen.Id(arg))))
	case VerbUpdate:
		arg, param := inputArg(inputUpdate)
		sig.Params(ctxParam(), param).Params(entity(), jen.Error())
		body = append(body, jen.Return(c.own().Dot("Update").Call(jen.Id("ctx"), jen.Id(arg).Dot("ID"), jen.Id(arg))))
	case VerbRemove:
		sig.Params(ctxParam(), jen.Id("id").String()).Params(jen.Int(), jen.Error())
		body = append(body, jen.Return(c.own().Dot("Remove").Call(jen.Id("ctx"), jen.Id("id"))))
	case VerbBatchRemove:
		sig.Params(ctxParam(), jen.Id("ids").Index().String()).Params(jen.Int(), jen.Error())
		body = append(body, jen.Return(c.own().Dot("RemoveByIds").Call(jen.Id("ctx"), jen.Id("ids"))))
	case VerbSave:
		arg, param := inputArg(inputSave)
		sig.Params(ctxParam(), param).Params(entity(), jen.Error())
		body = append(body,
			jen.List(jen.Id("saved"), jen.Err()).Op(":=").Add(c.own().Dot("Save").Call(jen.Id("ctx"), jen.Id(arg))),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		)
		for _, r := range c.Relations.Inverse {
			body = append(body,
				jen.If(
					jen.Err().Op(":=").Id("r").Dot(syncName(r)).Call(jen.Id("ctx"), jen.Id("saved"), jen.Id(arg).Dot(r.Field())),
					jen.Err().Op("!=").Nil(),
				).Block(jen.Return(jen.Nil(), jen.Err())),
			)
		}
		body = append(body, jen.Return(jen.Id("saved"), jen.Nil()))
	}
	return doc(operationDoc(op, n.Type)).Add(sig.Block(body...))
}

func operationDoc(op Operation, typ string) string {
	switch op.Verb {
	case VerbFindAll:
		return op.Method + " returns the " + typ + " entities matching the query options."
	case VerbCount:
		return op.Method + " counts the " + typ + " entities matching the query options."
	case VerbFindByID:
		return op.Method + " returns the " + typ + " with the given id."
	case VerbCreate:
		return op.Method + " creates a " + typ + "."
	case VerbUpdate:
		return op.Method + " updates a " + typ + "."
	case VerbRemove:
		return op.Method + " removes a " + typ + " and returns the number of removed rows."
	case VerbSave:
		return op.Method + " upserts a " + typ + " and synchronizes the given child lists."
	default:
		return op.Method + " removes the " + typ + " entities with the given ids."
	}
}

// owningResolver emits the field resolver loading the referenced row.
func (c *Context) owningResolver(r relation.Relation) jen.Code {
	zero, key := c.foreignKey(jen.Id("obj").Dot(fieldName(r.LocalColumn)), r.LocalColumn)
	return doc(fmt.Sprintf("%s returns the %s referenced by %s.", r.Field(), r.RemoteType, r.LocalColumn)).
		Add(c.receiver().Id(r.Field()).
			Params(ctxParam(), jen.Id("obj").Op("*").Add(c.entity(c.self()))).
			Params(jen.Op("*").Add(c.entity(r.Import)), jen.Error()).
			Block(
				jen.If(zero).Block(jen.Return(jen.Nil(), jen.Nil())),
				jen.Return(jen.Id("r").Dot(serviceField(r.RemoteTable)).Dot("FindByPk").Call(jen.Id("ctx"), key)),
			))
}

// foreignKey returns the zero test of a key field and its string form.
// Keys of unknown or base columns are strings.
func (c *Context) foreignKey(v *jen.Statement, column string) (zero, key jen.Code) {
	col, ok := c.Column(column)
	if !ok || typemap.IsSystemColumn(column) {
		return jen.Add(v).Op("==").Lit(""), v
	}
	m := typemap.For(col)
	switch {
	case m.Host == typemap.String:
		return jen.Add(v).Op("==").Lit(""), v
	case m.Integral():
		return jen.Add(v).Op("==").Lit(0), jen.Qual("strconv", "FormatInt").Call(v, jen.Lit(10))
	case m.Host == typemap.Number:
		return jen.Add(v).Op("==").Lit(0), jen.Qual("fmt", "Sprint").Call(v)
	case m.Host == typemap.Time:
		return jen.Add(v).Dot("IsZero").Call(), jen.Qual("fmt", "Sprint").Call(v)
	case m.Host == typemap.Bool:
		return jen.Op("!").Add(v), jen.Qual("fmt", "Sprint").Call(v)
	default:
		return jen.Len(v).Op("==").Lit(0), jen.Qual("fmt", "Sprint").Call(v)
	}
}

// inverseResolver emits the field resolver listing the referencing rows.
func (c *Context) inverseResolver(r relation.Relation) jen.Code {
	return doc(fmt.Sprintf("%s returns the %s rows whose %s references this %s.", r.Field(), r.RemoteType, r.RemoteColumn, c.Names.Type)).
		Add(c.receiver().Id(r.Field()).
			Params(
				ctxParam(),
				jen.Id("obj").Op("*").Add(c.entity(c.self())),
				jen.Id("param").Op("*").Add(c.base("QueryBuilderOptions")),
			).
			Params(jen.Index().Op("*").Add(c.entity(r.Import)), jen.Error()).
			Block(
				jen.Return(jen.Id("r").Dot(serviceField(r.RemoteTable)).Dot("FindEntity").Call(
					jen.Id("ctx"),
					c.base("MergeWhere").Call(jen.Id("param"), whereMap(r.RemoteColumn, jen.Id("obj").Dot(fieldName(r.LocalColumn)))),
				)),
			))
}

// whereMap returns a single-entry map[string]any literal.
func whereMap(column string, v jen.Code) *jen.Statement {
	return jen.Map(jen.String()).Id("any").Values(jen.Lit(column).Op(":").Add(v))
}

func syncName(r relation.Relation) string {
	return "sync" + r.Field()
}

// syncChildren emits the save synchronization of an inverse relation. A nil
// list is left untouched, children missing from a given list are removed.
func (c *Context) syncChildren(r relation.Relation) jen.Code {
	svc := jen.Id("r").Dot(serviceField(r.RemoteTable))
	where := func() *jen.Statement {
		return whereMap(r.RemoteColumn, jen.Id("parent").Dot(fieldName(r.LocalColumn)))
	}
	fixed := where()
	if typemap.IsSystemColumn(r.RemoteColumn) {
		fixed = jen.Nil()
	}
	return doc(fmt.Sprintf("%s makes the %s children of parent match the given list.", syncName(r), r.RemoteType)).
		Add(c.receiver().Id(syncName(r)).
			Params(
				ctxParam(),
				jen.Id("parent").Op("*").Add(c.entity(c.self())),
				jen.Id("children").Index().Op("*").Add(c.input(inputSave, r.Import)),
			).
			Error().
			Block(
				jen.If(jen.Id("children").Op("==").Nil()).Block(jen.Return(jen.Nil())),
				jen.List(jen.Id("existing"), jen.Err()).Op(":=").Add(svc.Clone().Dot("FindIDs").Call(jen.Id("ctx"), where())),
				jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
				jen.Id("kept").Op(":=").Make(jen.Map(jen.String()).Bool(), jen.Len(jen.Id("children"))),
				jen.For(jen.List(jen.Id("_"), jen.Id("child")).Op(":=").Range().Id("children")).Block(
					jen.List(jen.Id("saved"), jen.Err()).Op(":=").Add(svc.Clone().Dot("SaveWith").Call(jen.Id("ctx"), jen.Id("child"), fixed)),
					jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
					jen.Id("kept").Index(jen.Id("saved").Dot("ID")).Op("=").True(),
				),
				jen.Var().Id("stale").Index().String(),
				jen.For(jen.List(jen.Id("_"), jen.Id("id")).Op(":=").Range().Id("existing")).Block(
					jen.If(jen.Op("!").Id("kept").Index(jen.Id("id"))).Block(
						jen.Id("stale").Op("=").Append(jen.Id("stale"), jen.Id("id")),
					),
				),
				jen.If(jen.Len(jen.Id("stale")).Op("==").Lit(0)).Block(jen.Return(jen.Nil())),
				jen.List(jen.Id("_"), jen.Err()).Op("=").Add(svc.Clone().Dot("RemoveByIds").Call(jen.Id("ctx"), jen.Id("stale"))),
				jen.Return(jen.Err()),
			))
}
