package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/2x3systems/hexpack/molecule"
	"github.com/spf13/cobra"
)

func newShapesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shapes",
		Short: "List the built-in molecule shapes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, def := range molecule.Shapes().Defs() {
				fmt.Fprintf(tw, "%d\t%s\t%v\t%s\n", def.Num, def.Name, def.Orient, def.Expr)
			}
			return tw.Flush()
		},
	}
}
