package gen

import (
	"fmt"

	"github.com/dave/jennifer/jen"
)

// emitModule emits the module of a table, wiring its services and resolver.
func emitModule(c *Context) *Artifact {
	if c.Empty() {
		return c.artifact(KindModule, nil)
	}
	n := c.Names
	name := moduleName(n.Table)
	f := c.goFile(modulesDir(n.Table), "modules")

	f.Types = append(f.Types,
		doc(fmt.Sprintf("%s bundles the %s service and resolver.", name, n.Type)).
			Type().Id(name).Struct(
			jen.Id("Service").Op("*").Add(c.service(c.self())),
			jen.Id("Resolver").Op("*").Add(c.resolver(n.Table)),
		),
	)

	var (
		body []jen.Code
		args []jen.Code
	)
	for _, imp := range c.serviceTables() {
		body = append(body, jen.Id(serviceVar(imp.Table)).Op(":=").Add(c.newService(imp)).Call(jen.Id("db")))
		args = append(args, jen.Id(serviceVar(imp.Table)))
	}
	body = append(body, jen.Return(jen.Op("&").Id(name).Values(jen.Dict{
		jen.Id("Service"):  jen.Id(serviceVar(n.Table)),
		jen.Id("Resolver"): c.newResolver(n.Table).Call(args...),
	})))

	entities := []jen.Code{jen.Op("&").Add(c.entity(c.self())).Values()}
	for _, imp := range c.Relations.Imports() {
		entities = append(entities, jen.Op("&").Add(c.entity(imp)).Values())
	}

	f.Funcs = append(f.Funcs,
		doc(fmt.Sprintf("New%s builds the %s services and resolver on db.", name, n.Type)).
			Func().Id("New"+name).Params(jen.Id("db").Op("*").Qual(gormPkg, "DB")).Op("*").Id(name).Block(body...),
		doc("Entities returns the entity types the module reads and writes.").
			Func().Params(jen.Id("m").Op("*").Id(name)).Id("Entities").Params().Index().Id("any").Block(
			jen.Return(jen.Index().Id("any").Values(entities...)),
		),
	)
	return c.artifact(KindModule, f)
}
