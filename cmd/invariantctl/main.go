// Command invariantctl is a thin composition root: it wires a registry with
// the bundled example operations, builds a store from configuration, runs a
// programmatically-assembled graph, and prints the resulting artifacts and
// cache statistics. It contains no graph-engine logic of its own;
// construction of graphs from a textual format is out of scope.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// buildVersion is overridden at build time via -ldflags.
var buildVersion = "dev"

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "invariantctl",
		Short:         "Run example graphs against the invariant execution engine",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newVersionCmd())
	return root
}
