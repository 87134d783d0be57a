package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"envcheck/internal/checks"
	"envcheck/internal/config"
	"envcheck/internal/gpu"
	"envcheck/internal/logging"
	"envcheck/internal/python"
)

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	python     string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "envcheck",
		Short: "Validate the 3D-LLM Python/GPU environment",
		Long: `envcheck probes the Python interpreter, the required packages and the
NVIDIA stack, prints a diagnostic line per check and exits 0 only when every
check passed.`,
		Example: `  # Validate with the default interpreter
  envcheck

  # Validate a specific virtualenv
  envcheck --python ./venv/bin/python

  # Watch the checks in an interactive view
  envcheck tui`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, opts)
		},
	}
	cmd.SetVersionTemplate("envcheck version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Load configuration from this file instead of the system/user merge")
	cmd.PersistentFlags().StringVar(&opts.python, "python", "", "Python interpreter to validate (overrides configuration)")

	cmd.AddCommand(
		newGPUCmd(opts),
		newConfigCmd(opts),
		newTUICmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// session is the configuration and logger a command runs with.
type session struct {
	cfg    config.Config
	logger *logging.Logger
}

func (s *session) close() {
	s.logger.Info("app.exited", "Application exited", map[string]interface{}{
		"ts": time.Now().UTC().Format(time.RFC3339),
	})
	_ = s.logger.Close()
}

func openSession(cmd *cobra.Command, opts *options) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, &exitError{code: 1, message: err.Error()}
	}

	logger, err := newLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, &exitError{code: 1, message: err.Error()}
	}

	logger.Info("app.started", "Application started", map[string]interface{}{
		"version":     version,
		"command":     cmd.Name(),
		"interpreter": cfg.Python.Interpreter,
	})
	return &session{cfg: cfg, logger: logger}, nil
}

func loadConfig(opts *options) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFrom(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return cfg, err
	}

	if opts.python != "" {
		cfg.Python.Interpreter = opts.python
	}
	return cfg, nil
}

// newLogger builds the event logger described by the logging section: a file
// when one is configured, stderr otherwise.
func newLogger(lc config.LoggingConfig, stderr io.Writer) (*logging.Logger, error) {
	level, err := logging.ParseLevel(lc.Level)
	if err != nil {
		return nil, err
	}

	if lc.File == "" {
		return logging.NewWriterLogger(level, logging.Format(lc.Format), stderr), nil
	}

	logger, err := logging.NewFileLogger(level, lc.File)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger.SetFormat(logging.Format(lc.Format))
	return logger, nil
}

// newDependencies wires the real interpreter, nvidia-smi and NVML probes.
func newDependencies(cfg config.Config, logger *logging.Logger) checks.Dependencies {
	return checks.Dependencies{
		Interpreter: python.NewProber(cfg.Python.Interpreter, cfg.ProbeTimeout(), logger),
		SMI:         gpu.NewSMIProbe(cfg.GPU.SMIPath, cfg.SMITimeout(), logger),
		NVML:        gpu.NewDetector(logger),
		Logger:      logger,
	}
}

func runValidate(cmd *cobra.Command, opts *options) error {
	s, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.close()

	list := checks.EnvironmentChecks(newDependencies(s.cfg, s.logger), s.cfg)
	summary := checks.NewRunner(list, cmd.OutOrStdout(), s.logger).Run(cmd.Context())
	return exitFor(summary)
}

func exitFor(summary checks.Summary) error {
	if code := summary.ExitCode(); code != 0 {
		return &exitError{code: code}
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "envcheck version %s\n", version)
		},
	}
}
