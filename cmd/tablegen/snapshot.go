package main

import (
	"github.com/spf13/cobra"

	"github.com/syssam/tablegen/compiler/load"
)

func (a *app) snapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot <file>",
		Short: "Write the database schema to a yaml or msgpack snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := load.FormatOf(args[0]); err != nil {
				return err
			}
			cfg, err := a.loadConfig(false)
			if err != nil {
				return err
			}
			src, drv, err := a.openSource(cfg)
			if err != nil {
				return err
			}
			defer drv.Close()
			snap, err := load.Capture(cmd.Context(), src)
			if err != nil {
				return err
			}
			snap.Dialect, snap.Database = cfg.Dialect, cfg.Database
			if err := load.WriteSnapshot(args[0], snap); err != nil {
				return err
			}
			a.log.Info("snapshot written", "path", args[0], "tables", len(snap.TableList))
			return nil
		},
	}
}
