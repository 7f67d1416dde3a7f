package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wajiha787/repolens/internal/observability"
	"github.com/wajiha787/repolens/internal/service"
)

// newToolsCmd creates the `tools` command listing the registered analyzers.
func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the registered analysis tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, err := service.Build(appConfig, observability.GetLogger())
			if err != nil {
				return err
			}
			defer comps.Shutdown()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDESCRIPTION")
			for _, d := range comps.Registry.List() {
				fmt.Fprintf(w, "%s\t%s\n", d.Name, d.Description)
			}
			return w.Flush()
		},
	}
}
