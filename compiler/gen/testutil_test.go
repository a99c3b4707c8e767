package gen

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/tablegen/compiler/load"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := NewConfig(WithPackage("example.com/app"))
	require.NoError(t, err)
	return cfg
}

func column(table, name, typ string, nullable bool) load.Column {
	return load.Column{Table: table, Name: name, RawType: typ, NativeType: typ, Nullable: nullable}
}

func systemColumns(table string) []load.Column {
	return []load.Column{
		column(table, "id", "varchar", false),
		column(table, "created_at", "timestamp", false),
		column(table, "updated_at", "timestamp", true),
	}
}

// testSnapshot returns a schema of four tables: users, orders referencing
// users twice, self-referencing categories, and user_profile.
func testSnapshot() *load.Snapshot {
	users := append(systemColumns("user"),
		load.Column{Table: "user", Name: "name", RawType: "varchar", NativeType: "varchar", MaxLength: 100, Comment: "Display name"},
		column("user", "email", "varchar", true),
		column("user", "age", "int", true),
	)
	orders := append(systemColumns("order"),
		column("order", "created_by", "bigint", false),
		column("order", "approved_by", "bigint", true),
		column("order", "amount", "decimal", false),
		column("order", "paid", "tinyint", false),
		column("order", "meta", "json", true),
	)
	categories := append(systemColumns("category"),
		column("category", "parent_id", "varchar", true),
		column("category", "name", "varchar", false),
	)
	profiles := append(systemColumns("user_profile"),
		column("user_profile", "display_name", "varchar", true),
	)
	return &load.Snapshot{
		Dialect:  "mysql",
		Database: "app",
		TableList: []load.Table{
			{Name: "category", Kind: load.KindTable},
			{Name: "order", Comment: "Customer orders", Kind: load.KindTable},
			{Name: "user", Comment: "Application users", Kind: load.KindTable},
			{Name: "user_profile", Kind: load.KindTable},
		},
		ColumnMap: map[string][]load.Column{
			"category":     categories,
			"order":        orders,
			"user":         users,
			"user_profile": profiles,
		},
		EdgeMap: map[string][]load.ForeignKey{
			"order": {
				{Table: "order", Column: "created_by", RefTable: "user", RefColumn: "id", Constraint: "order_created_by_fk", OnDelete: "cascade"},
				{Table: "order", Column: "approved_by", RefTable: "user", RefColumn: "id", Constraint: "order_approved_by_fk"},
			},
			"category": {
				{Table: "category", Column: "parent_id", RefTable: "category", RefColumn: "id", Constraint: "category_parent_fk"},
			},
		},
	}
}

// testContext prepares an emitter invocation for a table of testSnapshot.
func testContext(t *testing.T, table string) *Context {
	t.Helper()
	s := testSnapshot()
	ctx := context.Background()
	columns, err := s.Columns(ctx, table)
	require.NoError(t, err)
	fks, err := s.ForeignKeys(ctx, table)
	require.NoError(t, err)
	var tbl load.Table
	for _, tt := range s.TableList {
		if tt.Name == table {
			tbl = tt
		}
	}
	return NewContext(testConfig(t), Request{Table: tbl, Columns: columns, ForeignKeys: fks})
}

// render renders an artifact and fails the test on error.
func render(t *testing.T, a *Artifact) string {
	t.Helper()
	require.False(t, a.Empty())
	b, err := a.Render()
	require.NoError(t, err)
	return string(b)
}

// memWriter records written artifacts. Paths listed in fail return an error.
type memWriter struct {
	mu    sync.Mutex
	files map[string][]byte
	order []string
	fail  map[string]bool
}

func newMemWriter(fail ...string) *memWriter {
	w := &memWriter{files: make(map[string][]byte), fail: make(map[string]bool)}
	for _, p := range fail {
		w.fail[p] = true
	}
	return w
}

func (w *memWriter) Write(_ context.Context, path string, content []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail[path] {
		return errors.New("disk full")
	}
	w.files[path] = content
	w.order = append(w.order, path)
	return nil
}

// failingSource fails every column query.
type failingSource struct {
	load.Source
}

func (failingSource) Columns(context.Context, string) ([]load.Column, error) {
	return nil, errors.New("connection reset")
}

// recordingLogger keeps warning messages.
type recordingLogger struct {
	nopLogger
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Warn(msg any, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg.(string))
}
