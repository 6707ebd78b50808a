package main

import (
	"fmt"

	"github.com/2x3systems/hexpack/batch"
	"github.com/2x3systems/hexpack/hexpack"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "run <config.toml>",
		Short: "Tile every lattice named in a batch config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := batch.LoadConfig(args[0])
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Workers = workers
			}

			catCtx := hexpack.NewCatalogContext()
			defer func() {
				catCtx.Close()
				<-catCtx.Done()
			}()

			summary, err := batch.Run(cmd.Context(), cfg, catCtx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, key := range summary.Written {
				fmt.Fprintln(out, key)
			}
			fmt.Fprintf(out, "%d written, %d failed, %d solutions, %d canonical\n",
				len(summary.Written), len(summary.Failed), summary.Solutions, summary.Canonical)
			if len(summary.Failed) > 0 {
				return fmt.Errorf("%d lattice(s) failed", len(summary.Failed))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "override the configured worker count")
	return cmd
}
