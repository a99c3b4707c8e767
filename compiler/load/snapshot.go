package load

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Snapshot formats.
const (
	FormatYAML    = "yaml"
	FormatMsgpack = "msgpack"
)

// Snapshot is an offline image of a database schema. It implements Source,
// which allows generating without a live connection.
type Snapshot struct {
	Dialect   string                  `yaml:"dialect,omitempty" msgpack:"dialect,omitempty"`
	Database  string                  `yaml:"database,omitempty" msgpack:"database,omitempty"`
	TableList []Table                 `yaml:"tables" msgpack:"tables"`
	ColumnMap map[string][]Column     `yaml:"columns" msgpack:"columns"`
	EdgeMap   map[string][]ForeignKey `yaml:"foreign_keys,omitempty" msgpack:"foreign_keys,omitempty"`
}

var _ Source = (*Snapshot)(nil)

// Capture reads every table of src into a snapshot.
func Capture(ctx context.Context, src Source) (*Snapshot, error) {
	tables, err := src.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	s := &Snapshot{
		TableList: tables,
		ColumnMap: make(map[string][]Column, len(tables)),
		EdgeMap:   make(map[string][]ForeignKey, len(tables)),
	}
	for _, t := range tables {
		columns, err := src.Columns(ctx, t.Name)
		if err != nil {
			return nil, fmt.Errorf("query columns of %s: %w", t.Name, err)
		}
		fks, err := src.ForeignKeys(ctx, t.Name)
		if err != nil {
			return nil, fmt.Errorf("query foreign keys of %s: %w", t.Name, err)
		}
		s.ColumnMap[t.Name] = columns
		if len(fks) > 0 {
			s.EdgeMap[t.Name] = fks
		}
	}
	return s, nil
}

// Tables implements Source.
func (s *Snapshot) Tables(context.Context) ([]Table, error) {
	tables := slices.Clone(s.TableList)
	SortTables(tables)
	return tables, nil
}

// Columns implements Source.
func (s *Snapshot) Columns(_ context.Context, table string) ([]Column, error) {
	columns, ok := s.ColumnMap[table]
	if !ok && !s.hasTable(table) {
		return nil, fmt.Errorf("load: table %q not in snapshot", table)
	}
	columns = slices.Clone(columns)
	SortColumns(columns)
	return columns, nil
}

// ForeignKeys implements Source. Edges recorded under other tables that
// reference the given table are included, so a snapshot written by hand only
// needs to list each edge once.
func (s *Snapshot) ForeignKeys(_ context.Context, table string) ([]ForeignKey, error) {
	if !s.hasTable(table) {
		return nil, fmt.Errorf("load: table %q not in snapshot", table)
	}
	seen := make(map[ForeignKey]bool)
	var fks []ForeignKey
	for _, name := range s.tableNames() {
		for _, fk := range s.EdgeMap[name] {
			if fk.Touches(table) && !seen[fk] {
				seen[fk] = true
				fks = append(fks, fk)
			}
		}
	}
	SortForeignKeys(fks)
	return fks, nil
}

func (s *Snapshot) hasTable(name string) bool {
	return slices.ContainsFunc(s.TableList, func(t Table) bool { return t.Name == name })
}

// tableNames returns the keys of the edge map in a stable order.
func (s *Snapshot) tableNames() []string {
	names := make([]string, 0, len(s.EdgeMap))
	for name := range s.EdgeMap {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// FormatOf returns the snapshot format implied by the file extension.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".msgpack", ".mp":
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("load: unsupported snapshot extension %q", filepath.Ext(path))
	}
}

// Marshal encodes the snapshot in the given format.
func (s *Snapshot) Marshal(format string) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(s)
	case FormatMsgpack:
		return msgpack.Marshal(s)
	default:
		return nil, fmt.Errorf("load: unsupported snapshot format %q", format)
	}
}

// UnmarshalSnapshot decodes a snapshot in the given format.
func UnmarshalSnapshot(format string, data []byte) (*Snapshot, error) {
	s := &Snapshot{}
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, s)
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, s)
	default:
		return nil, fmt.Errorf("load: unsupported snapshot format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s snapshot: %w", format, err)
	}
	if s.ColumnMap == nil {
		s.ColumnMap = make(map[string][]Column)
	}
	return s, nil
}

// ReadSnapshot loads a snapshot file.
func ReadSnapshot(path string) (*Snapshot, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return UnmarshalSnapshot(format, data)
}

// WriteSnapshot stores a snapshot file, creating its directory if needed.
func WriteSnapshot(path string, s *Snapshot) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := s.Marshal(format)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
