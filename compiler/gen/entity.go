package gen

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/tablegen/compiler/load"
	"github.com/syssam/tablegen/compiler/relation"
	"github.com/syssam/tablegen/compiler/typemap"
)

// defaultSize is the gorm size of character columns without a known length.
const defaultSize = 50

// emitEntity emits the gorm model of a table. System columns come from the
// embedded ContentEntity.
func emitEntity(c *Context) *Artifact {
	if c.Empty() {
		return c.artifact(KindEntity, nil)
	}
	n := c.Names
	fields := []jen.Code{c.base("ContentEntity")}
	for _, col := range c.Fields {
		m := typemap.For(col)
		fields = append(fields,
			jen.Line().Comment(columnDoc(col)),
			jen.Id(fieldName(col.Name)).Add(goType(m)).Tag(map[string]string{
				"gorm": gormColumnTag(col, m),
				"json": jsonName(col.Name),
			}),
		)
	}
	for _, r := range c.Relations.Owning {
		fields = append(fields,
			jen.Line().Comment(relationDoc(r)),
			jen.Id(r.Field()).Op("*").Add(c.entity(r.Import)).Tag(map[string]string{
				"gorm": gormOwningTag(r),
				"json": r.Accessor + ",omitempty",
			}),
		)
	}
	for _, r := range c.Relations.Inverse {
		fields = append(fields,
			jen.Line().Comment(relationDoc(r)),
			jen.Id(r.Field()).Index().Op("*").Add(c.entity(r.Import)).Tag(map[string]string{
				"gorm": gormInverseTag(r),
				"json": r.Accessor + ",omitempty",
			}),
		)
	}

	f := c.goFile(entitiesDir(n.Table), "entities")
	f.Types = append(f.Types,
		doc(fmt.Sprintf("%s is the model entity of the %s table.", n.Type, n.Table), c.Doc()).
			Type().Id(n.Type).Struct(fields...),
	)
	f.Funcs = append(f.Funcs,
		doc("TableName returns the table name of "+n.Type+".").
			Func().Params(jen.Id(n.Type)).Id("TableName").Params().String().Block(
			jen.Return(jen.Lit(n.Table)),
		),
	)
	return c.artifact(KindEntity, f)
}

// gormColumnTag describes a business column to gorm.
func gormColumnTag(col load.Column, m typemap.Mapping) string {
	parts := []string{"column:" + col.Name}
	switch {
	case m.Host == typemap.Object:
		parts = append(parts, "serializer:json")
	case m.Host != typemap.String:
	case col.MaxLength > 0:
		parts = append(parts, fmt.Sprintf("size:%d", col.MaxLength))
	case strings.Contains(strings.ToLower(col.NativeType+" "+col.RawType), "char"):
		parts = append(parts, fmt.Sprintf("size:%d", defaultSize))
	}
	if !col.Nullable {
		parts = append(parts, "not null")
	}
	if s := tagText(col.Comment); s != "" {
		parts = append(parts, "comment:"+s)
	}
	return strings.Join(parts, ";")
}

// gormOwningTag describes a many-to-one relation, including its referential actions.
func gormOwningTag(r relation.Relation) string {
	parts := []string{
		"foreignKey:" + fieldName(r.LocalColumn),
		"references:" + fieldName(r.RemoteColumn),
	}
	var actions []string
	if r.OnUpdate != "" {
		actions = append(actions, "OnUpdate:"+strings.ToUpper(r.OnUpdate))
	}
	if r.OnDelete != "" {
		actions = append(actions, "OnDelete:"+strings.ToUpper(r.OnDelete))
	}
	if len(actions) > 0 {
		parts = append(parts, "constraint:"+strings.Join(actions, ","))
	}
	return strings.Join(parts, ";")
}

// gormInverseTag describes a one-to-many relation.
func gormInverseTag(r relation.Relation) string {
	return "foreignKey:" + fieldName(r.RemoteColumn) + ";references:" + fieldName(r.LocalColumn)
}

func relationDoc(r relation.Relation) string {
	what := "the " + r.RemoteType + " referenced by " + r.LocalColumn
	if !r.Owning() {
		what = "the " + r.RemoteType + " rows referencing it through " + r.RemoteColumn
	}
	if s := oneLine(r.Comment); s != "" {
		what += " (" + s + ")"
	}
	return r.Field() + " holds " + what + "."
}

// tagText makes free text safe inside a gorm tag value.
func tagText(s string) string {
	return strings.NewReplacer(";", ",", ":", " ", "`", "'").Replace(oneLine(s))
}
