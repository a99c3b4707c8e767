package graphql

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Document is a gqlgen.yml file edited as a YAML node tree. Keys tablegen
// does not manage, their order and their comments are written back as read.
type Document struct {
	doc yaml.Node
}

// Parse reads gqlgen.yml content. Empty input yields an empty document.
func Parse(data []byte) (*Document, error) {
	d := &Document{}
	if err := yaml.Unmarshal(data, &d.doc); err != nil {
		return nil, fmt.Errorf("parse gqlgen config: %w", err)
	}
	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

// Load reads the gqlgen.yml at path. A missing file yields an empty document.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Parse(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("read gqlgen config: %w", err)
	}
	return Parse(data)
}

func (d *Document) init() error {
	if d.doc.Kind == 0 || len(d.doc.Content) == 0 {
		d.doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{mapping()}}
		return nil
	}
	root := d.doc.Content[0]
	switch {
	case root.Kind == yaml.MappingNode:
	case root.Kind == yaml.ScalarNode && root.Tag == "!!null":
		d.doc.Content[0] = mapping()
	default:
		return fmt.Errorf("parse gqlgen config: top level must be a mapping, got %s", root.ShortTag())
	}
	return nil
}

func (d *Document) root() *yaml.Node { return d.doc.Content[0] }

// Marshal encodes the document with a two space indent.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&d.doc); err != nil {
		return nil, fmt.Errorf("marshal gqlgen config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal gqlgen config: %w", err)
	}
	return buf.Bytes(), nil
}

// Settings is the typed view of the keys tablegen manages.
type Settings struct {
	Schema    StringList       `yaml:"schema"`
	Exec      Target           `yaml:"exec"`
	Model     Target           `yaml:"model"`
	Resolver  Target           `yaml:"resolver"`
	Autobind  []string         `yaml:"autobind"`
	StructTag string           `yaml:"struct_tag"`
	Models    map[string]Model `yaml:"models"`
}

// Target is the output section of a gqlgen generated package.
type Target struct {
	Filename string `yaml:"filename"`
	Package  string `yaml:"package"`
}

// Model binds a GraphQL type to one or more Go types.
type Model struct {
	Model  StringList       `yaml:"model"`
	Fields map[string]Field `yaml:"fields"`
}

// Field marks a GraphQL field as served by a resolver method.
type Field struct {
	Resolver  bool   `yaml:"resolver"`
	FieldName string `yaml:"fieldName"`
}

// Settings decodes the managed keys of the document.
func (d *Document) Settings() (*Settings, error) {
	var s Settings
	if err := d.root().Decode(&s); err != nil {
		return nil, fmt.Errorf("decode gqlgen config: %w", err)
	}
	return &s, nil
}

// StringList is a gqlgen value written either as a string or a list.
type StringList []string

// UnmarshalYAML accepts a scalar or a sequence.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = StringList{node.Value}
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
	default:
		return fmt.Errorf("expected string or list, got %s", node.ShortTag())
	}
	return nil
}

// TypeBinding binds one generated GraphQL type to its Go model.
type TypeBinding struct {
	// Name is the GraphQL type name.
	Name string
	// Model is the fully qualified Go type, e.g. example.com/app/src/entities.User.
	Model string
	// Resolvers lists the fields served by resolver methods.
	Resolvers []string
}

// Bindings is the configuration tablegen keeps in sync in gqlgen.yml.
type Bindings struct {
	SchemaGlob string
	Autobind   []string
	// Scalars maps scalar and shared input names to Go models.
	Scalars map[string]string
	Types   []TypeBinding
}

// Inject merges the bindings into the document. Values already present are
// left alone, so injecting twice is a no-op and hand-written models stay
// bound next to the generated ones.
func (d *Document) Inject(b Bindings) {
	root := d.root()
	if b.SchemaGlob != "" {
		appendValue(root, "schema", b.SchemaGlob, true)
	}
	for _, pkg := range b.Autobind {
		appendValue(root, "autobind", pkg, false)
	}
	if value(root, "struct_tag") == nil {
		set(root, "struct_tag", scalar("json"))
	}
	models := child(root, "models")
	names := make([]string, 0, len(b.Scalars))
	for name := range b.Scalars {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		appendValue(child(models, name), "model", b.Scalars[name], true)
	}
	for _, t := range b.Types {
		entry := child(models, t.Name)
		if t.Model != "" {
			appendValue(entry, "model", t.Model, true)
		}
		for _, f := range t.Resolvers {
			if field := child(child(entry, "fields"), f); value(field, "resolver") == nil {
				set(field, "resolver", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"})
			}
		}
	}
}

func mapping() *yaml.Node { return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"} }

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

// value returns the node stored under key in mapping m.
func value(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// set stores v under key, replacing any previous value.
func set(m *yaml.Node, key string, v *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = v
			return
		}
	}
	m.Content = append(m.Content, scalar(key), v)
}

// child returns the mapping under key, creating it when missing or null.
func child(m *yaml.Node, key string) *yaml.Node {
	if v := value(m, key); v != nil && v.Kind == yaml.MappingNode {
		return v
	}
	v := mapping()
	set(m, key, v)
	return v
}

// appendValue adds s to the list under key unless it is already there. With
// single set, a lone value is written as a plain string the way gqlgen
// examples do.
func appendValue(m *yaml.Node, key, s string, single bool) {
	v := value(m, key)
	switch {
	case v == nil || (v.Kind == yaml.ScalarNode && v.Tag == "!!null"):
		if single {
			set(m, key, scalar(s))
		} else {
			set(m, key, &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: []*yaml.Node{scalar(s)}})
		}
	case v.Kind == yaml.ScalarNode:
		if v.Value != s {
			set(m, key, &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: []*yaml.Node{v, scalar(s)}})
		}
	case v.Kind == yaml.SequenceNode:
		if !slices.ContainsFunc(v.Content, func(n *yaml.Node) bool { return n.Value == s }) {
			v.Content = append(v.Content, scalar(s))
		}
	}
}
