package main

import (
	"fmt"
	"io"
	"time"

	"github.com/go-python/gpython/py"
	"github.com/go-python/gpython/repl"
	"github.com/go-python/gpython/repl/cli"
	"github.com/spf13/cobra"

	_ "github.com/2x3systems/hexpack/pyhexpack"
	_ "github.com/go-python/gpython/stdlib"
)

func newScriptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "script [file.py]",
		Short: "Run a python script against the _hexpack module, or start a REPL",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pathname := ""
			if len(args) > 0 {
				pathname = args[0]
			}
			return runScript(pathname, cmd.OutOrStdout())
		},
	}
}

func runScript(pathname string, out io.Writer) error {
	ctx := py.NewContext(py.DefaultContextOpts())

	var err error
	if len(pathname) == 0 {
		cli.RunREPL(repl.New(ctx))
	} else {
		startTime := time.Now()
		fmt.Fprintf(out, "<<<>>>   executing '%s'   <<<>>>\n", pathname)

		_, err = py.RunFile(ctx, pathname, py.CompileOpts{}, nil)
		if err == nil {
			fmt.Fprintf(out, "<<<>>>   execution complete: %v   <<<>>>\n", time.Since(startTime))
		}
	}

	ctx.Close()
	<-ctx.Done()

	if err != nil {
		py.TracebackDump(err)
	}
	return err
}
