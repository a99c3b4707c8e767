package gen

import (
	"io"
	"path"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/tablegen/compiler/naming"
	"github.com/syssam/tablegen/compiler/typemap"
	"github.com/syssam/tablegen/contrib/graphql"
)

// Go models of the shared schema types.
const (
	gqlgenTime = "github.com/99designs/gqlgen/graphql.Time"
	gqlgenMap  = "github.com/99designs/gqlgen/graphql.Map"
)

// BaseSchema returns the schema every object artifact extends: the custom
// scalars, the query options input and the root operation types.
func BaseSchema(cfg *Config) *Artifact {
	optional := func(name string) *ast.Type { return ast.NamedType(name, nil) }
	placeholder := ast.FieldList{{Name: "_empty", Type: optional(typemap.ScalarBoolean)}}
	schema := &ast.SchemaDocument{
		Definitions: ast.DefinitionList{
			{Kind: ast.Scalar, Name: typemap.ScalarDate},
			{Kind: ast.Scalar, Name: typemap.ScalarJSON},
			{
				Kind:        ast.InputObject,
				Name:        queryOptionsType,
				Description: "Filtering, ordering and paging of list queries.",
				Fields: ast.FieldList{
					{Name: "where", Type: optional(typemap.ScalarJSON)},
					{Name: "order", Type: optional(typemap.ScalarJSON)},
					{Name: "skip", Type: optional(typemap.ScalarInt)},
					{Name: "take", Type: optional(typemap.ScalarInt)},
				},
			},
			{Kind: ast.Object, Name: queryType, Fields: placeholder},
			{Kind: ast.Object, Name: mutationType, Fields: placeholder},
		},
	}
	return &Artifact{
		Kind: KindSchema,
		Path: cfg.OutputPath(graphqlDir(""), "schema.graphqls"),
		body: &SchemaFile{Header: cfg.Header, Doc: schema},
	}
}

// TypeBinding returns the gqlgen binding of a table's object type. Relation
// fields are served by resolver methods.
func TypeBinding(cfg *Config, table string, rels []string) graphql.TypeBinding {
	return graphql.TypeBinding{
		Name:      naming.TypeName(table),
		Model:     cfg.ImportPath(entitiesDir(table)) + "." + naming.TypeName(table),
		Resolvers: rels,
	}
}

// Bindings returns the gqlgen configuration kept in sync with the generated code.
func Bindings(cfg *Config, types []graphql.TypeBinding) graphql.Bindings {
	return graphql.Bindings{
		SchemaGlob: cfg.SchemaGlob(),
		Autobind:   []string{cfg.ImportPath(entitiesDir("")), cfg.ImportPath(dtoDir(""))},
		Scalars: map[string]string{
			typemap.ScalarDate: gqlgenTime,
			typemap.ScalarJSON: gqlgenMap,
			queryOptionsType:   cfg.BaseImport() + "." + "QueryBuilderOptions",
		},
		Types: types,
	}
}

// GQLGenArtifact merges the bindings into an existing gqlgen configuration.
// A nil configuration starts an empty one.
func GQLGenArtifact(cfg *Config, existing *graphql.Document, types []graphql.TypeBinding) *Artifact {
	if existing == nil {
		existing, _ = graphql.Parse(nil)
	}
	existing.Inject(Bindings(cfg, types))
	return &Artifact{
		Kind: KindGQLGen,
		Path: path.Clean(cfg.GQLGen),
		body: &yamlFile{cfg: existing},
	}
}

type yamlFile struct {
	cfg *graphql.Document
}

func (y *yamlFile) render(w io.Writer) error {
	data, err := y.cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
