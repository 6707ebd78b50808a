package main

import (
	"context"
	"flag"
	"os"

	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"
)

func main() {
	err := newRootCmd().ExecuteContext(context.Background())
	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "hexpack",
		Short:        "hexpack enumerates exact tilings of hexagonal lattices by molecule shapes",
		SilenceUsage: true,
	}

	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "1")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})
	root.PersistentFlags().AddGoFlagSet(fset)

	root.AddCommand(newRunCmd())
	root.AddCommand(newScriptCmd())
	root.AddCommand(newShapesCmd())
	return root
}
