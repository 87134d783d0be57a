package main

import (
	"errors"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"envcheck/internal/checks"
	"envcheck/internal/tui"
)

func newTUICmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the checks in an interactive progress view",
		Long: `Run the same checks as the root command, one at a time, in a terminal UI.
When stdout is not a terminal the plain console report is printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !isTerminal(cmd.OutOrStdout()) {
				return runValidate(cmd, opts)
			}
			return runTUI(cmd, opts)
		},
	}
}

func runTUI(cmd *cobra.Command, opts *options) error {
	s, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.close()

	list := checks.EnvironmentChecks(newDependencies(s.cfg, s.logger), s.cfg)
	summary, err := tui.Run(cmd.Context(), list, s.logger)
	if errors.Is(err, tui.ErrAborted) {
		return &exitError{code: 1, message: err.Error()}
	}
	if err != nil {
		s.logger.Error("app.error", "Application error", map[string]interface{}{
			"error": err.Error(),
		})
		return &exitError{code: 1, message: err.Error()}
	}
	return exitFor(summary)
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
