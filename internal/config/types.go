package config

// Config represents the complete envcheck configuration
type Config struct {
	Python   PythonConfig                  `yaml:"python"`
	Packages map[string]PackageExpectation `yaml:"packages"`
	GPU      GPUConfig                     `yaml:"gpu"`
	Logging  LoggingConfig                 `yaml:"logging"`
}

// PythonConfig describes the interpreter under validation
type PythonConfig struct {
	Interpreter         string `yaml:"interpreter"`
	ExpectedVersion     string `yaml:"expected_version"`
	ProbeTimeoutSeconds int    `yaml:"probe_timeout_seconds"`
}

// PackageExpectation is the version a package is expected to report.
// Match is one of "exact", "prefix" or "none".
type PackageExpectation struct {
	Expected string `yaml:"expected"`
	Match    string `yaml:"match"`
}

// GPUConfig configures the nvidia-smi probe
type GPUConfig struct {
	SMIPath           string `yaml:"smi_path"`
	SMITimeoutSeconds int    `yaml:"smi_timeout_seconds"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	return e.Path + ": " + e.Message
}
