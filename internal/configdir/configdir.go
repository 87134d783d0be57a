package configdir

import (
	"os"
	"path/filepath"
)

const defaultConfigDir = "/etc/envcheck"

// EnvVar overrides the system configuration directory.
const EnvVar = "ENVCHECK_CONFIG_DIR"

// ConfigDir resolves the system configuration directory respecting overrides
func ConfigDir() string {
	if env := os.Getenv(EnvVar); env != "" {
		if abs, err := filepath.Abs(env); err == nil {
			return abs
		}
	}
	return defaultConfigDir
}
