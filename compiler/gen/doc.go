// Package gen generates the code artifacts of relational tables.
//
// For every selected table and emitter kind the generator builds a fresh
// Context, asks the emitter for an Artifact and writes the rendered result.
//
// # Pipeline
//
//	load.Source (database or snapshot)
//	        ↓
//	   Request (table, columns, foreign keys)
//	        ↓
//	   Context (names, business columns, relations, imports)
//	        ↓
//	   EmitFunc → Artifact (GoFile via jennifer, SchemaFile via gqlparser)
//	        ↓
//	   Writer (goimports formatting, file system)
//
// # Kinds
//
// The built-in emitters are:
//
//   - entity: gorm model embedding the base ContentEntity
//   - service: data access service embedding ContentService
//   - input: create, update and save payloads
//   - object: GraphQL object type, input types and operations
//   - resolver: operations, relation field resolvers and save synchronization
//   - module: constructor wiring services and resolver
//
// When the object kind is selected, the run ends with the base schema and an
// updated gqlgen.yml.
//
// # Errors
//
// Unknown kinds and failing sources abort a run. Invalid identifiers, render
// and write failures are collected in the Report, orphan relations are
// reported as warnings:
//
//	report, err := g.Run(ctx, nil, nil)
//	if err != nil {
//		return err
//	}
//	for _, err := range report.Failed {
//		if gen.IsGenerationError(err) {
//			// ...
//		}
//	}
package gen
