package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wajiha787/repolens/internal/explorer"
	"github.com/wajiha787/repolens/internal/observability"
	"github.com/wajiha787/repolens/internal/service"
	"github.com/wajiha787/repolens/internal/workspace"
)

// newAskCmd creates the `ask` command: one-shot with a question argument, an
// interactive loop without one.
func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [target] [question...]",
		Short: "Ask a natural-language question about a codebase",
		Long: `Ask loads the target project (a local directory or a git URL, default ".")
and answers the question. With no question it enters an interactive loop
reading questions from stdin until EOF or "exit".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()
			target, question := splitTargetArgs(args)

			comps, err := service.Build(appConfig, logger)
			if err != nil {
				return err
			}
			defer comps.Shutdown()

			session, err := comps.Loader.Load(cmd.Context(), target)
			if err != nil {
				return fmt.Errorf("loading project: %w", err)
			}
			if err := comps.WatchSession(session); err != nil {
				logger.Warn("Project watching unavailable", zap.Error(err))
			}
			logger.Info("Project loaded",
				zap.String("name", session.Name), zap.String("root", session.Root))

			out := cmd.OutOrStdout()
			if question != "" {
				env, err := comps.Engine.Ask(cmd.Context(), session, question)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, env.Answer)
				return nil
			}

			// Interactive loop over one session. "tree" and "search" are
			// builtins; every other line is a question.
			fmt.Fprintf(out, "Loaded %s. Ask away (tree, search <terms>, exit or Ctrl-D to quit).\n", session.Name)
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "repolens> ")
				if !scanner.Scan() {
					fmt.Fprintln(out)
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}

				switch {
				case line == "tree":
					fmt.Fprintln(out, comps.Explorer.Render(session, explorer.Options{}))
					continue
				case strings.HasPrefix(line, "search "):
					hits, err := comps.Searcher.Search(cmd.Context(), session, strings.TrimPrefix(line, "search "))
					if err != nil {
						return err
					}
					if len(hits) == 0 {
						fmt.Fprintln(out, "No matches.")
					}
					for _, h := range hits {
						fmt.Fprintf(out, "%s:%d: %s\n", h.File, h.Line, h.Content)
					}
					fmt.Fprintln(out)
					continue
				}

				env, err := comps.Engine.Ask(cmd.Context(), session, line)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, env.Answer)
				fmt.Fprintln(out)
			}
		},
	}
}

// splitTargetArgs decides which arguments name the project and which form the
// question. The first argument is the target only when it is a URL or an
// existing directory; everything else reads as question text.
func splitTargetArgs(args []string) (target, question string) {
	target = "."
	if len(args) == 0 {
		return target, ""
	}

	rest := args
	if workspace.IsRemote(args[0]) {
		target = args[0]
		rest = args[1:]
	} else if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
		target = args[0]
		rest = args[1:]
	}
	return target, strings.Join(rest, " ")
}
