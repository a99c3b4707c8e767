package gen

import (
	"fmt"

	"github.com/dave/jennifer/jen"
)

// emitService emits the data access service of a table. All behavior comes
// from the generic ContentService of the base package.
func emitService(c *Context) *Artifact {
	if c.Empty() {
		return c.artifact(KindService, nil)
	}
	n := c.Names
	name := serviceName(n.Table)
	f := c.goFile(serviceDir(n.Table), n.Package)
	f.Types = append(f.Types,
		doc(fmt.Sprintf("%s provides data access to %s entities.", name, n.Type)).
			Type().Id(name).Struct(
			jen.Op("*").Add(c.base("ContentService")).Types(c.entity(c.self())),
		),
	)
	f.Funcs = append(f.Funcs,
		doc(fmt.Sprintf("New%s returns a %s bound to db.", name, name)).
			Func().Id("New"+name).Params(jen.Id("db").Op("*").Qual(gormPkg, "DB")).Op("*").Id(name).Block(
			jen.Return(jen.Op("&").Id(name).Values(jen.Dict{
				jen.Id("ContentService"): c.base("NewContentService").Types(c.entity(c.self())).Call(jen.Id("db")),
			})),
		),
	)
	return c.artifact(KindService, f)
}
