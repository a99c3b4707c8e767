package gen

import (
	"path"
	"strings"
)

// Option mutates a Config. Options that validate their argument return a
// *ConfigError.
type Option func(*Config) error

// WithHeader replaces the comment written at the top of every Go artifact.
// An empty header drops the comment.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithPackage sets the import path of the project receiving the artifacts,
// e.g. "github.com/org/api". A trailing slash is dropped.
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		switch {
		case pkg == "":
			return NewConfigError("Package", nil, "package cannot be empty")
		case strings.ContainsAny(pkg, " \\"):
			return NewConfigError("Package", pkg, "package must be a slash separated import path")
		}
		c.Package = strings.TrimSuffix(pkg, "/")
		return nil
	}
}

// WithTarget sets the project directory artifacts are written under.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithSource sets the source root, relative to the target. Artifact
// directories and import paths are both derived from it.
func WithSource(dir string) Option {
	return func(c *Config) error {
		dir = path.Clean(dir)
		if path.IsAbs(dir) || dir == ".." || strings.HasPrefix(dir, "../") {
			return NewConfigError("Source", dir, "source must be a relative directory inside the target")
		}
		c.Source = dir
		return nil
	}
}

// WithBasePackage points generated code at a runtime package other than
// {Package}/{Source}/utils.
func WithBasePackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("BasePackage", nil, "base package cannot be empty")
		}
		c.BasePackage = pkg
		return nil
	}
}

// WithGQLGen sets the gqlgen.yml path, relative to the target. An empty path
// turns the gqlgen update off.
func WithGQLGen(file string) Option {
	return func(c *Config) error {
		c.GQLGen = file
		return nil
	}
}

// Apply runs opts in order and stops at the first rejected option.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}
