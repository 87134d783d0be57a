package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"envcheck/internal/config"
	"envcheck/internal/logging"
)

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect envcheck configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "test [path]",
		Short: "Test configuration file for validity",
		Long: `Validate a configuration file, or the system + user merge when no path
is given, and print the effective settings.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configPath
			if len(args) == 1 {
				path = args[0]
			}
			return runConfigTest(cmd, path)
		},
	})
	return cmd
}

func runConfigTest(cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()
	logger := logging.NewWriterLogger(logging.LevelWarn, logging.FormatJSON, cmd.ErrOrStderr())

	var (
		cfg config.Config
		err error
	)
	if path != "" {
		fmt.Fprintf(out, "Testing configuration file: %s\n", path)
		cfg, err = config.LoadFrom(path)
	} else {
		fmt.Fprintln(out, "Testing configuration (system + user merge):")
		fmt.Fprintf(out, "  System config: %s\n", config.SystemConfigPath())
		if userPath := config.UserConfigPath(); userPath != "" {
			fmt.Fprintf(out, "  User config:   %s\n", userPath)
		}
		fmt.Fprintln(out)
		cfg, err = config.Load()
	}

	if err != nil {
		fmt.Fprintln(out, "✗ Configuration validation FAILED:")
		fmt.Fprintf(out, "   %v\n", err)
		logger.Error("config.validation.error", "Configuration validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return &exitError{code: 1}
	}

	fmt.Fprintln(out, "✓ Configuration is VALID")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Configuration Summary:")
	fmt.Fprintf(out, "  Python Interpreter:   %s\n", cfg.Python.Interpreter)
	fmt.Fprintf(out, "  Expected Python:      %s.x\n", cfg.Python.ExpectedVersion)
	fmt.Fprintf(out, "  Probe Timeout:        %s\n", cfg.ProbeTimeout())
	for _, name := range []string{"transformers", "spacy"} {
		exp := cfg.Expectation(name)
		fmt.Fprintf(out, "  %-21s %s (%s)\n", name+":", exp.Expected, exp.Match)
	}
	fmt.Fprintf(out, "  nvidia-smi:           %s (timeout %s)\n", cfg.GPU.SMIPath, cfg.SMITimeout())
	fmt.Fprintf(out, "  Log Level:            %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "  Log Format:           %s\n", cfg.Logging.Format)
	return nil
}
