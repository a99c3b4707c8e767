package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/syssam/tablegen/compiler/gen"
)

func (a *app) kindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the artifact kinds",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			descs, err := gen.DefaultRegistry().Descriptors()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			for _, d := range descs {
				fmt.Fprintf(tw, "%s\t%s\n", d.Kind, d.Description)
			}
			return tw.Flush()
		},
	}
}
