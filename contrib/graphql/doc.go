// Package graphql keeps gqlgen.yml in sync with the GraphQL schema files
// emitted by tablegen, binding them to the generated Go entities, inputs and
// resolvers.
//
// # Usage
//
//	doc, err := graphql.Load("gqlgen.yml")
//	if err != nil {
//	    return err
//	}
//	doc.Inject(graphql.Bindings{
//	    SchemaGlob: "src/**/*.graphqls",
//	    Autobind:   []string{"example.com/app/src/entities", "example.com/app/src/dto"},
//	    Scalars: map[string]string{
//	        "Date": "github.com/99designs/gqlgen/graphql.Time",
//	        "JSON": "github.com/99designs/gqlgen/graphql.Map",
//	    },
//	    Types: []graphql.TypeBinding{{
//	        Name:      "Order",
//	        Model:     "example.com/app/src/entities.Order",
//	        Resolvers: []string{"createdByUser"},
//	    }},
//	})
//	data, err := doc.Marshal()
//
// The file is edited as a node tree. Keys tablegen does not manage keep
// their position and comments, and hand-written model bindings stay next to
// the generated ones.
package graphql
