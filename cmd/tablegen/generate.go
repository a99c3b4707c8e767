package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/tablegen/compiler/gen"
	"github.com/syssam/tablegen/compiler/load"
	"github.com/syssam/tablegen/config"
)

// errAborted is returned when the run is declined at the confirmation.
var errAborted = errors.New("aborted")

type generateOptions struct {
	tables   []string
	kinds    []string
	yes      bool
	dryRun   bool
	snapshot string
	workers  int
	noFormat bool
	watch    bool
}

func (o *generateOptions) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringSliceVarP(&o.tables, "tables", "t", nil, "tables to generate, prompts when empty")
	flags.StringSliceVarP(&o.kinds, "kinds", "k", nil, "artifact kinds to generate, prompts when empty")
	flags.BoolVarP(&o.yes, "yes", "y", false, "skip prompts, generating every table and kind not given by flags")
	flags.BoolVar(&o.dryRun, "dry-run", false, "log the artifacts instead of writing them")
	flags.StringVar(&o.snapshot, "snapshot", "", "generate from a schema snapshot instead of a database")
	flags.IntVar(&o.workers, "workers", 0, "tables generated in parallel")
	flags.BoolVar(&o.noFormat, "no-format", false, "write generated Go files without goimports")
	flags.BoolVar(&o.watch, "watch", false, "with --snapshot, regenerate when the snapshot changes")
}

func (a *app) generateCmd() *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate artifacts for the selected tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.generate(cmd.Context(), opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

func (a *app) generate(ctx context.Context, opts *generateOptions) error {
	if opts.watch && opts.snapshot == "" {
		return errors.New("--watch requires --snapshot")
	}
	cfg, err := a.loadConfig(opts.snapshot != "")
	if err != nil {
		return err
	}
	src, closer, err := a.source(cfg, opts)
	if err != nil {
		return err
	}
	defer closer()

	if !opts.yes {
		ok, err := a.prompt.Confirm(a.sourceName(cfg, opts))
		if err != nil {
			return err
		}
		if !ok {
			return errAborted
		}
	}
	genCfg, err := gen.NewConfig(cfg.Output.GenOptions()...)
	if err != nil {
		return err
	}
	registry := gen.DefaultRegistry()
	tables, kinds, err := a.selection(ctx, src, registry, opts)
	if err != nil {
		return err
	}
	if err := a.run(ctx, genCfg, src, cfg.Output, opts, tables, kinds); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}
	return watch(ctx, opts.snapshot, a.log, func(ctx context.Context) error {
		snap, err := load.ReadSnapshot(opts.snapshot)
		if err != nil {
			return err
		}
		return a.run(ctx, genCfg, snap, cfg.Output, opts, tables, kinds)
	})
}

// source returns the snapshot or the database of the run, and a func that
// releases it.
func (a *app) source(cfg *config.Config, opts *generateOptions) (load.Source, func(), error) {
	if opts.snapshot != "" {
		snap, err := load.ReadSnapshot(opts.snapshot)
		if err != nil {
			return nil, nil, err
		}
		return snap, func() {}, nil
	}
	src, drv, err := a.openSource(cfg)
	if err != nil {
		return nil, nil, err
	}
	return src, func() {
		stats := drv.QueryStats()
		a.log.Debug("database queries", "stats", stats.String(), "slowest", stats.Slowest, "slowest_took", stats.SlowestDuration)
		if err := drv.Close(); err != nil {
			a.log.Warn("close database", "err", err)
		}
	}, nil
}

func (a *app) sourceName(cfg *config.Config, opts *generateOptions) string {
	if opts.snapshot != "" {
		return opts.snapshot
	}
	return cfg.Address()
}

// selection resolves the tables and kinds of the run from flags, prompting
// for the ones not given unless --yes is set.
func (a *app) selection(ctx context.Context, src load.Source, registry *gen.Registry, opts *generateOptions) ([]string, []gen.Kind, error) {
	tables := opts.tables
	if len(tables) == 0 && !opts.yes {
		all, err := src.Tables(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("list tables: %w", err)
		}
		if len(all) == 0 {
			return nil, nil, errors.New("no tables found")
		}
		if tables, err = a.prompt.Tables(all); err != nil {
			return nil, nil, err
		}
	}
	kinds := make([]gen.Kind, 0, len(opts.kinds))
	for _, k := range opts.kinds {
		kinds = append(kinds, gen.Kind(k))
	}
	if len(kinds) == 0 && !opts.yes {
		descs, err := registry.Descriptors()
		if err != nil {
			return nil, nil, err
		}
		if kinds, err = a.prompt.Kinds(descs); err != nil {
			return nil, nil, err
		}
	}
	return tables, kinds, nil
}

func (a *app) run(ctx context.Context, cfg *gen.Config, src load.Source, out config.Output, opts *generateOptions, tables []string, kinds []gen.Kind) error {
	var w gen.Writer
	if opts.dryRun {
		w = gen.DryRunWriter{Logger: a.log}
	} else {
		w = gen.NewFileWriter(cfg.Target, out.Formatted() && !opts.noFormat)
	}
	workers := out.Workers
	if opts.workers > 0 {
		workers = opts.workers
	}
	report, err := gen.NewGenerator(cfg, src, w).
		WithLogger(a.log).
		WithWorkers(workers).
		Run(ctx, tables, kinds)
	if err != nil {
		return err
	}
	a.summarize(report)
	if fw, ok := w.(*gen.FileWriter); ok {
		m := fw.Metrics()
		a.log.Debug("writer", "files", m.FilesWritten, "bytes", m.TotalBytes, "format", m.Formatting, "write", m.Writing)
	}
	return nil
}

func (a *app) summarize(report *gen.Report) {
	for _, err := range report.Warnings {
		a.log.Warn(err.Error())
	}
	for _, err := range report.Failed {
		a.log.Error(err.Error())
	}
	fmt.Fprintf(a.stdout, "written %d, skipped %d, failed %d, warnings %d\n",
		len(report.Written), len(report.Skipped), len(report.Failed), len(report.Warnings))
}
