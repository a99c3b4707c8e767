package gen

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/tablegen/compiler/load"
	"github.com/syssam/tablegen/compiler/naming"
	"github.com/syssam/tablegen/compiler/relation"
	"github.com/syssam/tablegen/compiler/typemap"
)

// Names of the shared schema types declared by the base schema.
const (
	queryType        = "Query"
	mutationType     = "Mutation"
	queryOptionsType = "QueryBuilderOptionsInput"
)

// emitObject emits the API schema of a table: its object type, the input
// types and the query and mutation fields.
func emitObject(c *Context) *Artifact {
	if c.Empty() {
		return c.artifact(KindObject, nil)
	}
	n := c.Names
	schema := &ast.SchemaDocument{}

	obj := &ast.Definition{
		Kind:        ast.Object,
		Name:        n.Type,
		Description: c.Doc(),
		Fields:      ast.FieldList{{Name: "id", Type: ast.NonNullNamedType("ID", nil)}},
	}
	for _, col := range c.Fields {
		obj.Fields = append(obj.Fields, &ast.FieldDefinition{
			Name:        jsonName(col.Name),
			Description: oneLine(col.Comment),
			Type:        scalarType(col, !col.Nullable),
		})
	}
	for _, r := range c.Relations.Owning {
		obj.Fields = append(obj.Fields, &ast.FieldDefinition{
			Name: r.Accessor,
			Type: ast.NamedType(c.object(r.Import), nil),
		})
	}
	for _, r := range c.Relations.Inverse {
		obj.Fields = append(obj.Fields, &ast.FieldDefinition{
			Name:      r.Accessor,
			Arguments: ast.ArgumentDefinitionList{{Name: "param", Type: ast.NamedType(queryOptionsType, nil)}},
			Type:      ast.ListType(ast.NonNullNamedType(c.object(r.Import), nil), nil),
		})
	}
	schema.Definitions = append(schema.Definitions, obj, c.inputObject(inputCreate), c.inputObject(inputUpdate), c.inputObject(inputSave))

	query := &ast.Definition{Kind: ast.Object, Name: queryType}
	mutation := &ast.Definition{Kind: ast.Object, Name: mutationType}
	for _, op := range Operations(n.Table) {
		if op.Mutation {
			mutation.Fields = append(mutation.Fields, operationField(op, n.Table))
		} else {
			query.Fields = append(query.Fields, operationField(op, n.Table))
		}
	}
	schema.Extensions = append(schema.Extensions, query, mutation)
	return c.artifact(KindObject, &SchemaFile{Header: c.Config.Header, Doc: schema})
}

// object records a reference to the object type of imp.
func (c *Context) object(imp relation.Import) string {
	c.Imports.Add(Import{
		Kind:  KindObject,
		Table: imp.Table,
		Path:  c.Config.OutputPath(objectDir(imp.Table), imp.FileSlug+".object.graphqls"),
		Name:  imp.TypeName,
	})
	return imp.TypeName
}

// inputObject returns the schema of an input DTO variant.
func (c *Context) inputObject(variant string) *ast.Definition {
	def := &ast.Definition{Kind: ast.InputObject, Name: inputName(variant, c.Names.Table)}
	switch variant {
	case inputUpdate:
		def.Fields = append(def.Fields, &ast.FieldDefinition{Name: "id", Type: ast.NonNullNamedType("ID", nil)})
	case inputSave:
		def.Fields = append(def.Fields, &ast.FieldDefinition{Name: "id", Type: ast.NamedType("ID", nil)})
	}
	for _, col := range c.Fields {
		def.Fields = append(def.Fields, &ast.FieldDefinition{
			Name: jsonName(col.Name),
			Type: scalarType(col, variant == inputCreate && !col.Nullable),
		})
	}
	if variant == inputSave {
		for _, r := range c.Relations.Inverse {
			def.Fields = append(def.Fields, &ast.FieldDefinition{
				Name: r.Accessor,
				Type: ast.ListType(ast.NonNullNamedType(inputName(inputSave, r.RemoteTable), nil), nil),
			})
		}
	}
	return def
}

func scalarType(col load.Column, nonNull bool) *ast.Type {
	s := typemap.For(col).Scalar
	if nonNull {
		return ast.NonNullNamedType(s, nil)
	}
	return ast.NamedType(s, nil)
}

// operationField returns the query or mutation field of an operation.
func operationField(op Operation, table string) *ast.FieldDefinition {
	var (
		t   = naming.TypeName(table)
		def = &ast.FieldDefinition{Name: op.Field}
		arg = func(name string, typ *ast.Type) {
			def.Arguments = append(def.Arguments, &ast.ArgumentDefinition{Name: name, Type: typ})
		}
		input = func(variant string) {
			name := inputName(variant, table)
			arg(naming.Unexported(name), ast.NonNullNamedType(name, nil))
		}
	)
	switch op.Verb {
	case VerbFindAll:
		arg("queryBuilderOptions", ast.NamedType(queryOptionsType, nil))
		def.Type = ast.NonNullListType(ast.NonNullNamedType(t, nil), nil)
	case VerbCount:
		arg("queryBuilderOptions", ast.NamedType(queryOptionsType, nil))
		def.Type = ast.NonNullNamedType(typemap.ScalarInt, nil)
	case VerbFindByID:
		arg("id", ast.NonNullNamedType("ID", nil))
		def.Type = ast.NamedType(t, nil)
	case VerbCreate:
		input(inputCreate)
		def.Type = ast.NonNullNamedType(t, nil)
	case VerbUpdate:
		input(inputUpdate)
		def.Type = ast.NonNullNamedType(t, nil)
	case VerbSave:
		input(inputSave)
		def.Type = ast.NonNullNamedType(t, nil)
	case VerbRemove:
		arg("id", ast.NonNullNamedType("ID", nil))
		def.Type = ast.NonNullNamedType(typemap.ScalarInt, nil)
	case VerbBatchRemove:
		arg("ids", ast.NonNullListType(ast.NonNullNamedType("ID", nil), nil))
		def.Type = ast.NonNullNamedType(typemap.ScalarInt, nil)
	default:
		panic(fmt.Sprintf("gen: unknown operation verb %q", op.Verb))
	}
	return def
}
