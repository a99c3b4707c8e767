package gen

import (
	"path"
	"strings"
)

// Defaults applied by NewConfig.
const (
	DefaultPackage = "app"
	DefaultSource  = "src"
	DefaultHeader  = "Code generated by tablegen. DO NOT EDIT."
	DefaultGQLGen  = "gqlgen.yml"
)

// Config holds the global generation configuration.
type Config struct {
	// Package is the Go import path of the project that receives the
	// generated code, e.g. github.com/org/api.
	Package string
	// Target is the project directory. Artifact paths are relative to it.
	Target string
	// Source is the source root inside the project, "src" by default.
	Source string
	// BasePackage is the import path of the hand-written runtime that
	// provides ContentEntity and ContentService. Defaults to {Package}/{Source}/utils.
	BasePackage string
	// Header is written at the top of generated Go files.
	Header string
	// GQLGen is the gqlgen.yml path relative to Target. Empty disables the update.
	GQLGen string
}

// NewConfig creates a configuration with defaults and applies the options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Package: DefaultPackage,
		Target:  ".",
		Source:  DefaultSource,
		Header:  DefaultHeader,
		GQLGen:  DefaultGQLGen,
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig is like NewConfig but panics on error.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// ImportPath returns the Go import path of an artifact directory.
func (c *Config) ImportPath(dir string) string {
	return path.Join(c.Package, c.Source, dir)
}

// OutputPath returns the slash-separated path of an artifact, relative to Target.
func (c *Config) OutputPath(dir, file string) string {
	return path.Join(c.Source, dir, file)
}

// BaseImport returns the import path of the base runtime package.
func (c *Config) BaseImport() string {
	if c.BasePackage != "" {
		return c.BasePackage
	}
	return c.ImportPath("utils")
}

// SchemaGlob returns the glob that matches every emitted GraphQL schema file.
func (c *Config) SchemaGlob() string {
	return strings.TrimPrefix(path.Join(c.Source, "**", "*.graphqls"), "./")
}
