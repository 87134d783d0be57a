package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"envcheck/internal/configdir"
)

const (
	systemConfigFile = "config.yaml"
	userConfigDir    = ".envcheck"
	userConfigFile   = "config.yaml"
)

// Load loads and merges configuration from system and user files
// Priority: defaults < system config < user config
func Load() (Config, error) {
	cfg := DefaultConfig()

	systemPath := SystemConfigPath()
	if err := mergeConfigFile(&cfg, systemPath); err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to load system config: %w", err)
	}

	if userPath := UserConfigPath(); userPath != "" {
		if err := mergeConfigFile(&cfg, userPath); err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to load user config: %w", err)
		}
	}

	if validationErrors := cfg.Validate(); len(validationErrors) > 0 {
		return cfg, fmt.Errorf("config.validation.error: %v", formatValidationErrors(validationErrors))
	}

	return cfg, nil
}

// LoadFrom loads configuration from a specific file path on top of the defaults
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := mergeConfigFile(&cfg, path); err != nil {
		return cfg, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	if validationErrors := cfg.Validate(); len(validationErrors) > 0 {
		return cfg, fmt.Errorf("config.validation.error: %v", formatValidationErrors(validationErrors))
	}

	return cfg, nil
}

// mergeConfigFile reads a YAML file and merges it into the existing config
func mergeConfigFile(cfg *Config, path string) error {
	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 -- path is constructed from trusted sources
	if err != nil {
		return err
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	mergeConfig(cfg, &overlay)
	return nil
}

// mergeConfig merges non-zero values from src into dst
func mergeConfig(dst, src *Config) {
	if src.Python.Interpreter != "" {
		dst.Python.Interpreter = src.Python.Interpreter
	}
	if src.Python.ExpectedVersion != "" {
		dst.Python.ExpectedVersion = src.Python.ExpectedVersion
	}
	if src.Python.ProbeTimeoutSeconds != 0 {
		dst.Python.ProbeTimeoutSeconds = src.Python.ProbeTimeoutSeconds
	}

	// Package entries replace the default entry of the same name wholesale.
	if len(src.Packages) > 0 && dst.Packages == nil {
		dst.Packages = make(map[string]PackageExpectation, len(src.Packages))
	}
	for name, exp := range src.Packages {
		dst.Packages[name] = exp
	}

	if src.GPU.SMIPath != "" {
		dst.GPU.SMIPath = src.GPU.SMIPath
	}
	if src.GPU.SMITimeoutSeconds != 0 {
		dst.GPU.SMITimeoutSeconds = src.GPU.SMITimeoutSeconds
	}

	if src.Logging.Level != "" {
		dst.Logging.Level = src.Logging.Level
	}
	if src.Logging.Format != "" {
		dst.Logging.Format = src.Logging.Format
	}
	if src.Logging.File != "" {
		dst.Logging.File = src.Logging.File
	}
}

// ProbeTimeout returns the interpreter probe timeout
func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Python.ProbeTimeoutSeconds) * time.Second
}

// SMITimeout returns the nvidia-smi timeout
func (c Config) SMITimeout() time.Duration {
	return time.Duration(c.GPU.SMITimeoutSeconds) * time.Second
}

// formatValidationErrors formats validation errors for display
func formatValidationErrors(errors []ValidationError) string {
	if len(errors) == 0 {
		return ""
	}
	if len(errors) == 1 {
		return errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:\n", len(errors))
	for _, err := range errors {
		b.WriteString("  - " + err.Error() + "\n")
	}
	return b.String()
}

// SystemConfigPath returns the path to the system configuration file
func SystemConfigPath() string {
	return filepath.Join(configdir.ConfigDir(), systemConfigFile)
}

// UserConfigPath returns the path to the user configuration file
func UserConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, userConfigDir, userConfigFile)
}
