package cmd

import (
	"fmt"
	"os"

	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wajiha787/repolens/internal/observability"
	"github.com/wajiha787/repolens/internal/service"
)

// newReportCmd creates the `report` command: run every registered tool and
// render the combined summary, optionally dumping the raw reports as JSON.
func newReportCmd() *cobra.Command {
	var outFile string

	reportCmd := &cobra.Command{
		Use:   "report [target]",
		Short: "Run every analysis tool and print a full project report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()
			target := "."
			if len(args) > 0 {
				target = args[0]
			}

			comps, err := service.Build(appConfig, logger)
			if err != nil {
				return err
			}
			defer comps.Shutdown()

			session, err := comps.Loader.Load(cmd.Context(), target)
			if err != nil {
				return fmt.Errorf("loading project: %w", err)
			}
			logger.Info("Generating full report",
				zap.String("name", session.Name),
				zap.Int("tools", len(comps.Registry.Names())),
			)

			reports, err := comps.Engine.FullReport(cmd.Context(), session)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# Project report: %s\n\n", session.Name)
			fmt.Fprintln(out, comps.Synth.Summary(reports))

			if outFile != "" {
				payload, err := json.MarshalIndent(reports, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding report: %w", err)
				}
				if err := os.WriteFile(outFile, payload, 0o644); err != nil {
					return fmt.Errorf("writing report file: %w", err)
				}
				fmt.Fprintf(out, "\nRaw reports written to %s\n", outFile)
			}
			return nil
		},
	}

	reportCmd.Flags().StringVarP(&outFile, "output", "o", "", "write raw reports as JSON to this file")
	return reportCmd
}
