package gen

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/tablegen/compiler/typemap"
)

// emitInput emits the create, update and save payloads of a table.
func emitInput(c *Context) *Artifact {
	if c.Empty() {
		return c.artifact(KindInput, nil)
	}
	n := c.Names
	f := c.goFile(dtoDir(n.Table), "dto")

	create := make([]jen.Code, 0, len(c.Fields))
	for _, col := range c.Fields {
		m := typemap.For(col)
		if col.Nullable {
			create = append(create, jen.Id(fieldName(col.Name)).Add(optionalType(m)).Tag(jsonTag(col.Name, true)))
		} else {
			create = append(create, jen.Id(fieldName(col.Name)).Add(goType(m)).Tag(jsonTag(col.Name, false)))
		}
	}

	update := []jen.Code{jen.Id("ID").String().Tag(jsonTag("id", false))}
	update = append(update, c.optionalFields()...)

	save := []jen.Code{jen.Id("ID").Op("*").String().Tag(jsonTag("id", true))}
	save = append(save, c.optionalFields()...)
	for _, r := range c.Relations.Inverse {
		save = append(save,
			jen.Id(r.Field()).Index().Op("*").Add(c.input(inputSave, r.Import)).Tag(map[string]string{
				"json": r.Accessor + ",omitempty",
			}),
		)
	}

	f.Types = append(f.Types,
		doc(fmt.Sprintf("%s is the payload creating a %s.", inputName(inputCreate, n.Table), n.Type)).
			Type().Id(inputName(inputCreate, n.Table)).Struct(create...),
		doc(fmt.Sprintf("%s is the payload updating a %s. Nil fields are left unchanged.", inputName(inputUpdate, n.Table), n.Type)).
			Type().Id(inputName(inputUpdate, n.Table)).Struct(update...),
		doc(
			fmt.Sprintf("%s creates a %s when ID is nil and updates it otherwise.", inputName(inputSave, n.Table), n.Type),
			"Nil child lists leave the stored children untouched.",
		).Type().Id(inputName(inputSave, n.Table)).Struct(save...),
	)
	return c.artifact(KindInput, f)
}

// optionalFields returns a pointer field per business column.
func (c *Context) optionalFields() []jen.Code {
	fields := make([]jen.Code, 0, len(c.Fields))
	for _, col := range c.Fields {
		fields = append(fields, jen.Id(fieldName(col.Name)).Add(optionalType(typemap.For(col))).Tag(jsonTag(col.Name, true)))
	}
	return fields
}

func jsonTag(column string, omitempty bool) map[string]string {
	name := jsonName(column)
	if omitempty {
		name += ",omitempty"
	}
	return map[string]string{"json": name}
}
