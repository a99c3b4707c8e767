package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/syssam/tablegen/compiler/load"
	"github.com/syssam/tablegen/config"
	"github.com/syssam/tablegen/dialect/sql"
	"github.com/syssam/tablegen/dialect/sql/schema"
)

type app struct {
	stdout io.Writer
	stderr io.Writer
	prompt prompter
	log    *log.Logger

	configPath string
	env        string
	logLevel   string
	logJSON    bool
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout: stdout,
		stderr: stderr,
		prompt: huhPrompter{},
		log:    log.New(stderr),
	}
}

func (a *app) rootCmd() *cobra.Command {
	opts := &generateOptions{}
	root := &cobra.Command{
		Use:           "tablegen",
		Short:         "Generate entities, services and GraphQL resolvers from database tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setupLogger()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.generate(cmd.Context(), opts)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.DefaultPath, "path to the config file")
	flags.StringVar(&a.env, "env", "", "config section, defaults to $"+config.EnvVar+" or "+config.DefaultEnv)
	flags.StringVar(&a.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.BoolVar(&a.logJSON, "log-json", false, "log as JSON")
	opts.bind(root)

	root.AddCommand(a.generateCmd(), a.snapshotCmd(), a.kindsCmd())
	return root
}

func (a *app) setupLogger() error {
	level, err := log.ParseLevel(a.logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q", a.logLevel)
	}
	a.log = log.NewWithOptions(a.stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	})
	if a.logJSON {
		a.log.SetFormatter(log.JSONFormatter)
	}
	return nil
}

// loadConfig reads the selected config section. When allowMissing is set a
// missing file yields defaults.
func (a *app) loadConfig(allowMissing bool) (*config.Config, error) {
	cfg, err := config.Load(a.configPath, a.env)
	if allowMissing && errors.Is(err, config.ErrNotFound) {
		a.log.Debug("config not found, using defaults", "path", a.configPath)
		return config.Defaults(a.env)
	}
	if err != nil {
		return nil, err
	}
	a.log.Info("config loaded", "env", cfg.Env, "dialect", cfg.Dialect, "database", cfg.Database)
	return cfg, nil
}

// openSource connects to the configured database.
func (a *app) openSource(cfg *config.Config) (load.Source, *sql.Driver, error) {
	dsn, err := sql.DSN(cfg.Conn())
	if err != nil {
		return nil, nil, err
	}
	drv, err := sql.Open(cfg.Dialect, dsn, sql.WithQueryHook(a.queryHook))
	if err != nil {
		return nil, nil, err
	}
	src, err := schema.NewSource(drv, cfg.Inspector, cfg.SchemaName())
	if err != nil {
		drv.Close()
		return nil, nil, err
	}
	return src, drv, nil
}

func (a *app) queryHook(_ context.Context, query string, args []any, d time.Duration, err error) {
	a.log.Debug("query", "sql", strings.Join(strings.Fields(query), " "), "args", args, "duration", d, "err", err)
}
