// Package config loads the connection and output settings of a tablegen run.
//
// The config file holds either a single section or a map of environment
// name to section:
//
//	local:
//	  dialect: postgres
//	  host: localhost
//	  database: app_dev
//	  output:
//	    package: github.com/org/api
//
// Values from the environment override the file. A .env file next to the
// working directory is loaded first.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/syssam/tablegen/compiler/gen"
	"github.com/syssam/tablegen/dialect"
	"github.com/syssam/tablegen/dialect/sql"
)

// Defaults.
const (
	DefaultPath = "codegen/config.yaml"
	DefaultEnv  = "local"
	// EnvVar selects the environment section when --env is not given.
	EnvVar = "TABLEGEN_ENV"
)

// ErrNotFound is returned when the config file does not exist.
var ErrNotFound = errors.New("config: file not found")

// Config is one environment section.
type Config struct {
	Dialect  string `yaml:"dialect" env:"TABLEGEN_DB_DIALECT" env-default:"postgres"`
	Host     string `yaml:"host" env:"TABLEGEN_DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"TABLEGEN_DB_PORT"`
	Database string `yaml:"database" env:"TABLEGEN_DB_NAME"`
	Username string `yaml:"username" env:"TABLEGEN_DB_USER"`
	Password string `yaml:"password" env:"TABLEGEN_DB_PASSWORD"`
	// Schema is the inspected schema. Empty picks the dialect default.
	Schema string `yaml:"schema" env:"TABLEGEN_DB_SCHEMA"`
	// Inspector is information_schema or atlas. Empty picks by dialect.
	Inspector string            `yaml:"inspector" env:"TABLEGEN_INSPECTOR"`
	Params    map[string]string `yaml:"params"`
	Output    Output            `yaml:"output"`

	// Env is the selected section name, set at load time.
	Env string `yaml:"-"`
}

// Output configures the generated project.
type Output struct {
	Package     string `yaml:"package" env:"TABLEGEN_PACKAGE" env-default:"app"`
	Target      string `yaml:"target" env:"TABLEGEN_TARGET" env-default:"."`
	Source      string `yaml:"source" env:"TABLEGEN_SOURCE" env-default:"src"`
	BasePackage string `yaml:"base_package" env:"TABLEGEN_BASE_PACKAGE"`
	GQLGen      string `yaml:"gqlgen" env:"TABLEGEN_GQLGEN" env-default:"gqlgen.yml"`
	// Format runs goimports on generated Go files, true when unset.
	Format  *bool `yaml:"format"`
	Workers int   `yaml:"workers" env:"TABLEGEN_WORKERS"`
}

// Load reads the env section of the file at path, applies environment
// overrides and validates the result. An empty env falls back to
// TABLEGEN_ENV, then to "local".
func Load(path, env string) (*Config, error) {
	if err := loadDotEnv(filepath.Dir(path)); err != nil {
		return nil, err
	}
	if env == "" {
		env = os.Getenv(EnvVar)
	}
	if env == "" {
		env = DefaultEnv
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data, env)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes the env section of a YAML or JSON document and applies
// environment overrides.
func Parse(data []byte, env string) (*Config, error) {
	var sections map[string]yaml.Node
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	cfg := &Config{}
	if node, ok := sections[env]; ok && node.Kind == yaml.MappingNode {
		if err := node.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode section %q: %w", env, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	cfg.Env = env
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns a section holding only defaults and environment values.
// It is used when generating from a snapshot without a config file.
func Defaults(env string) (*Config, error) {
	cfg := &Config{Env: env}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}
	return cfg, nil
}

// Validate checks the section and normalizes the dialect.
func (c *Config) Validate() error {
	d, err := dialect.Normalize(c.Dialect)
	if err != nil {
		return err
	}
	c.Dialect = d
	if c.Database == "" {
		return errors.New("config: database is required")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	if c.Output.Workers < 0 {
		return fmt.Errorf("config: invalid workers %d", c.Output.Workers)
	}
	return nil
}

// Conn returns the connection parameters of the section.
func (c *Config) Conn() sql.Conn {
	return sql.Conn{
		Dialect:  c.Dialect,
		Host:     c.Host,
		Port:     c.Port,
		Database: c.Database,
		Username: c.Username,
		Password: c.Password,
		Params:   c.Params,
	}
}

// SchemaName returns the inspected schema. MySQL schemas are databases.
func (c *Config) SchemaName() string {
	if c.Schema == "" && c.Dialect == dialect.MySQL {
		return c.Database
	}
	return c.Schema
}

// Formatted reports if generated Go files are formatted.
func (o Output) Formatted() bool {
	return o.Format == nil || *o.Format
}

// GenOptions returns the generator options of the output section.
func (o Output) GenOptions() []gen.Option {
	opts := []gen.Option{
		gen.WithPackage(o.Package),
		gen.WithTarget(o.Target),
		gen.WithSource(o.Source),
		gen.WithGQLGen(o.GQLGen),
	}
	if o.BasePackage != "" {
		opts = append(opts, gen.WithBasePackage(o.BasePackage))
	}
	return opts
}

// Address returns host/database, the form shown when confirming a run.
func (c *Config) Address() string {
	if c.Dialect == dialect.SQLite {
		return c.Database
	}
	return c.Host + "/" + c.Database
}

// loadDotEnv loads .env from the working directory and the config
// directory. Variables already set win.
func loadDotEnv(dirs ...string) error {
	for _, dir := range append([]string{"."}, dirs...) {
		file := filepath.Join(dir, ".env")
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("config: load %s: %w", file, err)
		}
	}
	return nil
}
