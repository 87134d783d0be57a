package config

const (
	// MatchExact requires the reported version to equal the expectation.
	MatchExact = "exact"
	// MatchPrefix requires the reported version to start with the expectation.
	MatchPrefix = "prefix"
	// MatchNone skips the version comparison.
	MatchNone = "none"
)

// VersionedPackages are the packages whose checks compare a version and may
// therefore carry an entry under packages.
var VersionedPackages = []string{"transformers", "timm", "spacy", "positional_encodings"}

// DefaultConfig returns the expectations of the 3D-LLM environment
func DefaultConfig() Config {
	return Config{
		Python: PythonConfig{
			Interpreter:         "python3",
			ExpectedVersion:     "3.8",
			ProbeTimeoutSeconds: 60, // importing torch and LAVIS is slow on cold caches
		},
		Packages: map[string]PackageExpectation{
			"transformers": {Expected: "4.33.2", Match: MatchExact},
			"spacy":        {Expected: "3.5", Match: MatchPrefix},
		},
		GPU: GPUConfig{
			SMIPath:           "nvidia-smi",
			SMITimeoutSeconds: 5,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "json",
		},
	}
}

// Expectation returns the configured expectation for a package, or a
// MatchNone expectation when the package has none.
func (c Config) Expectation(pkg string) PackageExpectation {
	if exp, ok := c.Packages[pkg]; ok {
		switch {
		case exp.Expected == "":
			exp.Match = MatchNone
		case exp.Match == "":
			exp.Match = MatchExact
		}
		return exp
	}
	return PackageExpectation{Match: MatchNone}
}
