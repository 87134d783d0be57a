package config

import (
	"fmt"
	"regexp"
	"sort"
)

var majorMinorPattern = regexp.MustCompile(`^\d+\.\d+$`)

// Validate checks if the configuration is valid
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validatePython()...)
	errors = append(errors, c.validatePackages()...)
	errors = append(errors, c.validateGPU()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validatePython() []ValidationError {
	var errors []ValidationError

	if c.Python.Interpreter == "" {
		errors = append(errors, ValidationError{
			Path:    "python.interpreter",
			Message: "must not be empty",
		})
	}

	if !majorMinorPattern.MatchString(c.Python.ExpectedVersion) {
		errors = append(errors, ValidationError{
			Path:    "python.expected_version",
			Message: fmt.Sprintf("must be MAJOR.MINOR (e.g. 3.8), got '%s'", c.Python.ExpectedVersion),
		})
	}

	if c.Python.ProbeTimeoutSeconds < 1 {
		errors = append(errors, ValidationError{
			Path:    "python.probe_timeout_seconds",
			Message: fmt.Sprintf("must be at least 1, got %d", c.Python.ProbeTimeoutSeconds),
		})
	}

	return errors
}

func (c *Config) validatePackages() []ValidationError {
	var errors []ValidationError
	validModes := []string{MatchExact, MatchPrefix, MatchNone}

	names := make([]string, 0, len(c.Packages))
	for name := range c.Packages {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !contains(VersionedPackages, name) {
			errors = append(errors, ValidationError{
				Path:    "packages." + name,
				Message: fmt.Sprintf("no check reads an expectation for this package; must be one of %v", VersionedPackages),
			})
			continue
		}

		exp := c.Packages[name]
		if exp.Match != "" && !contains(validModes, exp.Match) {
			errors = append(errors, ValidationError{
				Path:    "packages." + name + ".match",
				Message: fmt.Sprintf("must be one of %v, got '%s'", validModes, exp.Match),
			})
		}
		if (exp.Match == MatchExact || exp.Match == MatchPrefix) && exp.Expected == "" {
			errors = append(errors, ValidationError{
				Path:    "packages." + name + ".expected",
				Message: fmt.Sprintf("required when match is '%s'", exp.Match),
			})
		}
	}

	return errors
}

func (c *Config) validateGPU() []ValidationError {
	var errors []ValidationError

	if c.GPU.SMIPath == "" {
		errors = append(errors, ValidationError{
			Path:    "gpu.smi_path",
			Message: "must not be empty",
		})
	}

	if c.GPU.SMITimeoutSeconds < 1 {
		errors = append(errors, ValidationError{
			Path:    "gpu.smi_timeout_seconds",
			Message: fmt.Sprintf("must be at least 1, got %d", c.GPU.SMITimeoutSeconds),
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, c.Logging.Level) {
		errors = append(errors, ValidationError{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got '%s'", validLevels, c.Logging.Level),
		})
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, c.Logging.Format) {
		errors = append(errors, ValidationError{
			Path:    "logging.format",
			Message: fmt.Sprintf("must be one of %v, got '%s'", validFormats, c.Logging.Format),
		})
	}

	return errors
}

// contains checks if a string is in a slice
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
