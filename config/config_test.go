package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/tablegen/compiler/gen"
	"github.com/syssam/tablegen/dialect"
)

const keyed = `
local:
  dialect: pg
  host: db.local
  port: 5433
  database: app_dev
  username: dev
  output:
    package: github.com/org/api
    format: false
    workers: 4
prod:
  dialect: mysql
  host: db.prod
  database: app
`

func TestParse_Sections(t *testing.T) {
	cfg, err := Parse([]byte(keyed), "local")
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, dialect.Postgres, cfg.Dialect)
	assert.Equal(t, "db.local", cfg.Host)
	assert.Equal(t, 5433, cfg.Port)
	assert.Equal(t, "app_dev", cfg.Database)
	assert.Equal(t, "github.com/org/api", cfg.Output.Package)
	assert.Equal(t, "src", cfg.Output.Source)
	assert.Equal(t, "gqlgen.yml", cfg.Output.GQLGen)
	assert.False(t, cfg.Output.Formatted())
	assert.Equal(t, 4, cfg.Output.Workers)
	assert.Equal(t, "db.local/app_dev", cfg.Address())

	cfg, err = Parse([]byte(keyed), "prod")
	require.NoError(t, err)
	assert.Equal(t, dialect.MySQL, cfg.Dialect)
	assert.Equal(t, "app", cfg.Output.Package)
	assert.True(t, cfg.Output.Formatted())
}

func TestParse_SingleSection(t *testing.T) {
	cfg, err := Parse([]byte(`{"dialect": "postgres", "host": "localhost", "database": "ecp_dev", "schema": "public"}`), "local")
	require.NoError(t, err)
	assert.Equal(t, "ecp_dev", cfg.Database)
	assert.Equal(t, "public", cfg.Schema)

	conn := cfg.Conn()
	assert.Equal(t, dialect.Postgres, conn.Dialect)
	assert.Equal(t, "ecp_dev", conn.Database)
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("TABLEGEN_DB_HOST", "override")
	t.Setenv("TABLEGEN_DB_PASSWORD", "secret")
	t.Setenv("TABLEGEN_PACKAGE", "example.com/app")
	cfg, err := Parse([]byte(keyed), "local")
	require.NoError(t, err)
	assert.Equal(t, "override", cfg.Host)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, "example.com/app", cfg.Output.Package)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing database", "dialect: postgres\nhost: localhost\n"},
		{"unknown dialect", "dialect: oracle\ndatabase: app\n"},
		{"bad port", "database: app\nport: 70000\n"},
		{"bad workers", "database: app\noutput:\n  workers: -1\n"},
		{"malformed", "database: [app\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "local")
			require.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(keyed), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TABLEGEN_DB_USER=from_dotenv\n"), 0o644))
	t.Setenv("TABLEGEN_DB_USER", "")
	os.Unsetenv("TABLEGEN_DB_USER")
	t.Setenv(EnvVar, "prod")

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "db.prod", cfg.Host)
	assert.Equal(t, "from_dotenv", cfg.Username)

	cfg, err = Load(path, "local")
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Env)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOutput_GenOptions(t *testing.T) {
	out := Output{Package: "github.com/org/api", Target: "out", Source: "src", GQLGen: "", BasePackage: "github.com/org/base"}
	cfg, err := gen.NewConfig(out.GenOptions()...)
	require.NoError(t, err)
	assert.Equal(t, "github.com/org/api", cfg.Package)
	assert.Equal(t, "out", cfg.Target)
	assert.Empty(t, cfg.GQLGen)
	assert.Equal(t, "github.com/org/base", cfg.BaseImport())
}

func TestDefaults(t *testing.T) {
	t.Setenv("TABLEGEN_TARGET", "/tmp/out")
	cfg, err := Defaults("local")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out", cfg.Output.Target)
	assert.Equal(t, "app", cfg.Output.Package)
	assert.Equal(t, "postgres", cfg.Dialect)
}

func TestSchemaName(t *testing.T) {
	cfg := &Config{Dialect: dialect.MySQL, Database: "app"}
	assert.Equal(t, "app", cfg.SchemaName())
	cfg = &Config{Dialect: dialect.Postgres, Database: "app"}
	assert.Empty(t, cfg.SchemaName())
	cfg.Schema = "billing"
	assert.Equal(t, "billing", cfg.SchemaName())
}
