package gen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/tablegen/compiler/load"
	"github.com/syssam/tablegen/compiler/naming"
	"github.com/syssam/tablegen/compiler/relation"
	"github.com/syssam/tablegen/contrib/graphql"
)

// Logger is the structured logger used by the generator.
// *github.com/charmbracelet/log.Logger satisfies it.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Info(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
	Error(msg any, keyvals ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(any, ...any) {}
func (nopLogger) Info(any, ...any)  {}
func (nopLogger) Warn(any, ...any)  {}
func (nopLogger) Error(any, ...any) {}

// Generator walks the selected tables and writes the artifacts of the
// selected kinds.
type Generator struct {
	cfg      *Config
	src      load.Source
	w        Writer
	registry *Registry
	log      Logger
	workers  int
}

// NewGenerator creates a generator reading the schema from src and writing
// through w. Tables are processed one at a time unless WithWorkers is used.
//
// Example:
//
//	g := gen.NewGenerator(cfg, snapshot, gen.NewFileWriter(cfg.Target, true))
//	report, err := g.Run(ctx, nil, nil)
func NewGenerator(cfg *Config, src load.Source, w Writer) *Generator {
	return &Generator{
		cfg:      cfg,
		src:      src,
		w:        w,
		registry: DefaultRegistry(),
		log:      nopLogger{},
		workers:  1,
	}
}

// WithRegistry replaces the built-in emitters.
func (g *Generator) WithRegistry(r *Registry) *Generator {
	if r != nil {
		g.registry = r
	}
	return g
}

// WithLogger sets the logger.
func (g *Generator) WithLogger(l Logger) *Generator {
	if l != nil {
		g.log = l
	}
	return g
}

// WithWorkers sets the number of tables processed concurrently.
func (g *Generator) WithWorkers(n int) *Generator {
	if n > 0 {
		g.workers = n
	}
	return g
}

// Skip is an artifact that had nothing to write.
type Skip struct {
	Table string
	Kind  Kind
}

// Report summarizes a run.
type Report struct {
	mu sync.Mutex
	// Written lists the paths written, relative to the writer root.
	Written []string
	Skipped []Skip
	// Failed holds the schema and generation errors that skipped a table or
	// an artifact.
	Failed []error
	// Warnings holds the edge errors of orphan relations.
	Warnings []error
}

func (r *Report) written(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Written = append(r.Written, path)
}

func (r *Report) skipped(table string, kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Skipped = append(r.Skipped, Skip{Table: table, Kind: kind})
}

func (r *Report) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failed = append(r.Failed, err)
}

func (r *Report) warn(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Warnings = append(r.Warnings, err)
}

// Err joins the failures of the run, or returns nil.
func (r *Report) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return errors.Join(r.Failed...)
}

// Run generates the artifacts of the given kinds for the given tables. Nil
// tables select every table of the source and nil kinds every registered
// emitter. Per-artifact failures are collected in the report; an unknown
// kind or a failing source aborts the run.
func (g *Generator) Run(ctx context.Context, tables []string, kinds []Kind) (*Report, error) {
	descs, err := g.registry.Descriptors(kinds...)
	if err != nil {
		return nil, err
	}
	selected, err := g.selectTables(ctx, tables)
	if err != nil {
		return nil, err
	}
	report := &Report{}
	known := make([]string, 0, len(selected))
	for _, t := range selected {
		known = append(known, t.Name)
	}

	var (
		bindings = make([]*graphql.TypeBinding, len(selected))
		eg, gctx = errgroup.WithContext(ctx)
	)
	eg.SetLimit(g.workers)
	for i, t := range selected {
		eg.Go(func() error {
			b, err := g.table(gctx, t, descs, known, report)
			bindings[i] = b
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return report, err
	}

	if slices.ContainsFunc(descs, func(d *Descriptor) bool { return d.Kind == KindObject }) {
		var types []graphql.TypeBinding
		for _, b := range bindings {
			if b != nil {
				types = append(types, *b)
			}
		}
		if err := g.graph(ctx, types, report); err != nil {
			return report, err
		}
	}
	g.log.Info("generation finished",
		"written", len(report.Written),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
		"warnings", len(report.Warnings),
	)
	return report, nil
}

// selectTables resolves table names against the source. Names the source
// does not list are still generated, with an empty comment.
func (g *Generator) selectTables(ctx context.Context, names []string) ([]load.Table, error) {
	all, err := g.src.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]load.Table, len(all))
	for _, t := range all {
		byName[t.Name] = t
	}
	selected := make([]load.Table, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		t, ok := byName[n]
		if !ok {
			t = load.Table{Name: n, Kind: load.KindTable}
		}
		selected = append(selected, t)
	}
	return selected, nil
}

// table emits every selected kind of one table. It returns the gqlgen
// binding of the table's object type, if one was emitted.
func (g *Generator) table(ctx context.Context, t load.Table, descs []*Descriptor, known []string, report *Report) (*graphql.TypeBinding, error) {
	if err := naming.Validate(t.Name); err != nil {
		g.schemaError(report, NewSchemaError(t.Name, "", "invalid table name", err))
		return nil, nil
	}
	columns, err := g.src.Columns(ctx, t.Name)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", t.Name, err)
	}
	for _, c := range columns {
		if err := naming.Validate(c.Name); err != nil {
			g.schemaError(report, NewSchemaError(t.Name, c.Name, "invalid column name", err))
			return nil, nil
		}
	}
	fks, err := g.src.ForeignKeys(ctx, t.Name)
	if err != nil {
		return nil, fmt.Errorf("foreign keys of %s: %w", t.Name, err)
	}
	req := Request{Table: t, Columns: columns, ForeignKeys: fks}

	rels := relation.Resolve(t.Name, fks, relation.WithKnownTables(known...))
	for _, r := range rels.Orphans() {
		warning := NewEdgeError(t.Name, r.RemoteTable, r.Constraint, "referenced table is not generated", nil)
		report.warn(warning)
		g.log.Warn("orphan relation", "table", t.Name, "accessor", r.Accessor, "remote", r.RemoteTable)
	}

	var binding *graphql.TypeBinding
	for _, d := range descs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c := NewContext(g.cfg, req, relation.WithKnownTables(known...))
		a := d.Emit(c)
		if a.Empty() {
			g.log.Debug("nothing to emit", "table", t.Name, "kind", d.Kind)
			report.skipped(t.Name, d.Kind)
			continue
		}
		a.Path = d.Path(g.cfg, t.Name)
		if err := g.write(ctx, a, report); err != nil {
			return nil, err
		}
		if d.Kind == KindObject {
			var fields []string
			for _, r := range rels.All() {
				fields = append(fields, r.Accessor)
			}
			b := TypeBinding(g.cfg, t.Name, fields)
			binding = &b
		}
	}
	return binding, nil
}

func (g *Generator) schemaError(report *Report, err *SchemaError) {
	report.fail(err)
	g.log.Error("skipping table", "table", err.Table, "column", err.Column, "err", err.Cause)
}

// write renders and writes one artifact. Failures are recorded in the
// report; only cancellation is returned.
func (g *Generator) write(ctx context.Context, a *Artifact, report *Report) error {
	content, err := a.Render()
	if err != nil {
		report.fail(NewGenerationError(a.Kind, a.Path, "render failed", err))
		g.log.Error("render failed", "path", a.Path, "err", err)
		return nil
	}
	if len(bytes.TrimSpace(content)) == 0 {
		g.log.Debug("empty artifact", "table", a.Table, "kind", a.Kind)
		report.skipped(a.Table, a.Kind)
		return nil
	}
	if err := g.w.Write(ctx, a.Path, content); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		report.fail(NewGenerationError(a.Kind, a.Path, "write failed", err))
		g.log.Error("write failed", "path", a.Path, "err", err)
		return nil
	}
	g.log.Debug("wrote artifact", "path", a.Path, "bytes", len(content))
	report.written(a.Path)
	return nil
}

// graph writes the base schema and the gqlgen configuration.
func (g *Generator) graph(ctx context.Context, types []graphql.TypeBinding, report *Report) error {
	if err := g.write(ctx, BaseSchema(g.cfg), report); err != nil {
		return err
	}
	if g.cfg.GQLGen == "" {
		return nil
	}
	existing, err := graphql.Load(filepath.Join(g.cfg.Target, filepath.FromSlash(g.cfg.GQLGen)))
	if err != nil {
		report.fail(NewGenerationError(KindGQLGen, g.cfg.GQLGen, "load existing configuration", err))
		g.log.Error("gqlgen configuration", "path", g.cfg.GQLGen, "err", err)
		return nil
	}
	return g.write(ctx, GQLGenArtifact(g.cfg, existing, types), report)
}
