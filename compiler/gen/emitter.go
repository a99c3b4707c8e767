package gen

import (
	"path"
	"strings"

	"github.com/syssam/tablegen/compiler/naming"
)

// Kind identifies an emitter.
type Kind string

// Built-in emitter kinds.
const (
	KindEntity   Kind = "entity"
	KindService  Kind = "service"
	KindInput    Kind = "input"
	KindObject   Kind = "object"
	KindResolver Kind = "resolver"
	KindModule   Kind = "module"
	// KindSchema and KindGQLGen are graph-level artifacts written once per run.
	KindSchema Kind = "schema"
	KindGQLGen Kind = "gqlgen"
)

// EmitFunc produces the artifact of one table. It returns an empty artifact
// when the table has nothing to emit.
type EmitFunc func(*Context) *Artifact

// Descriptor describes an emitter and where its artifacts go.
type Descriptor struct {
	Kind        Kind
	Description string
	Emit        EmitFunc
	// Dir returns the artifact directory of a table, relative to the source root.
	Dir func(table string) string
	// FileName returns the artifact base name of a table.
	FileName func(table string) string
	Suffix   string
	// Extension defaults to "go".
	Extension string
}

// Path returns the output path of a table's artifact:
// {source}/{dir}/{file}.{suffix}.{ext}.
func (d *Descriptor) Path(cfg *Config, table string) string {
	ext := d.Extension
	if ext == "" {
		ext = "go"
	}
	name := strings.ReplaceAll(d.FileName(table)+"."+d.Suffix+"."+ext, "..", ".")
	return cfg.OutputPath(d.Dir(table), name)
}

// Registry maps kinds to emitters, keeping registration order.
type Registry struct {
	kinds []Kind
	descs map[Kind]*Descriptor
}

// NewRegistry returns a registry holding the given descriptors.
func NewRegistry(descs ...*Descriptor) (*Registry, error) {
	r := &Registry{descs: make(map[Kind]*Descriptor)}
	for _, d := range descs {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry returns a registry with the built-in emitters.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(Builtin()...)
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds an emitter. Kinds must be unique and all functions set.
func (r *Registry) Register(d *Descriptor) error {
	switch {
	case d == nil || d.Kind == "":
		return NewConfigError("Descriptor", nil, "descriptor kind cannot be empty")
	case d.Emit == nil || d.Dir == nil || d.FileName == nil:
		return NewConfigError("Descriptor", d.Kind, "emit, dir and file name functions are required")
	case r.descs[d.Kind] != nil:
		return NewConfigError("Descriptor", d.Kind, "kind already registered")
	}
	r.descs[d.Kind] = d
	r.kinds = append(r.kinds, d.Kind)
	return nil
}

// Lookup returns the emitter of a kind.
func (r *Registry) Lookup(k Kind) (*Descriptor, bool) {
	d, ok := r.descs[k]
	return d, ok
}

// Kinds returns the registered kinds in registration order.
func (r *Registry) Kinds() []Kind {
	return append([]Kind(nil), r.kinds...)
}

// Descriptors resolves kinds to descriptors. An empty list selects every
// registered kind.
func (r *Registry) Descriptors(kinds ...Kind) ([]*Descriptor, error) {
	if len(kinds) == 0 {
		kinds = r.kinds
	}
	descs := make([]*Descriptor, 0, len(kinds))
	seen := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		d, ok := r.descs[k]
		if !ok {
			return nil, NewConfigError("Kinds", string(k), "unknown emitter kind")
		}
		if !seen[k] {
			seen[k] = true
			descs = append(descs, d)
		}
	}
	return descs, nil
}

// Artifact directories, relative to the source root.
func entitiesDir(string) string {
	return "entities"
}

func serviceDir(table string) string {
	return naming.FileSlug(table)
}

func dtoDir(string) string {
	return "dto"
}

func objectDir(table string) string {
	return path.Join(naming.FileSlug(table), "model")
}

func resolversDir(string) string {
	return "resolvers"
}

func modulesDir(string) string {
	return "modules"
}

func graphqlDir(string) string {
	return "graphql"
}

// Builtin returns the built-in emitter descriptors.
func Builtin() []*Descriptor {
	return []*Descriptor{
		{
			Kind:        KindEntity,
			Description: "gorm entity struct",
			Emit:        emitEntity,
			Dir:         entitiesDir,
			FileName:    naming.FileSlug,
			Suffix:      "entity",
		},
		{
			Kind:        KindService,
			Description: "data access service",
			Emit:        emitService,
			Dir:         serviceDir,
			FileName:    naming.FileSlug,
			Suffix:      "service",
		},
		{
			Kind:        KindInput,
			Description: "create, update and save input DTOs",
			Emit:        emitInput,
			Dir:         dtoDir,
			FileName:    naming.FileSlug,
			Suffix:      "input",
		},
		{
			Kind:        KindObject,
			Description: "GraphQL object type, inputs and operations",
			Emit:        emitObject,
			Dir:         objectDir,
			FileName:    naming.FileSlug,
			Suffix:      "object",
			Extension:   "graphqls",
		},
		{
			Kind:        KindResolver,
			Description: "GraphQL resolver",
			Emit:        emitResolver,
			Dir:         resolversDir,
			FileName:    naming.FileSlug,
			Suffix:      "resolver",
		},
		{
			Kind:        KindModule,
			Description: "module wiring service and resolver",
			Emit:        emitModule,
			Dir:         modulesDir,
			FileName:    naming.FileSlug,
			Suffix:      "module",
		},
	}
}
