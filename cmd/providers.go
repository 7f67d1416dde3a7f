package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wajiha787/repolens/internal/llmclient"
)

// newProvidersCmd creates the `providers` command showing AI configuration
// state. It never touches the network: "ready" means configured, not proven
// reachable.
func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "Show AI provider configuration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tACTIVE\tREADY\tMODEL\tAPI KEY")
			for _, s := range llmclient.Statuses(appConfig.AI) {
				key := s.MaskedKey
				if key == "" {
					key = "-"
				}
				fmt.Fprintf(w, "%s\t%v\t%v\t%s\t%s\n", s.Provider, s.Active, s.Ready, s.Model, key)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if !appConfig.AI.Enabled() {
				fmt.Fprintln(cmd.OutOrStdout(), "\nNo provider is active; answers use the deterministic templates.")
				fmt.Fprintln(cmd.OutOrStdout(), "Set ai.provider (or REPOLENS_AI_PROVIDER) to enable AI synthesis.")
			}
			return nil
		},
	}
}
