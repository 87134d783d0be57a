package python

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInterpreterNotFound means the configured interpreter could not be started.
	ErrInterpreterNotFound = errors.New("python interpreter not found")
	// ErrModuleNotFound means the probed import raised ImportError.
	ErrModuleNotFound = errors.New("module not importable")
	// ErrBadProbeOutput means the interpreter ran but did not answer with a probe result.
	ErrBadProbeOutput = errors.New("unexpected probe output")
)

// ImportError carries the interpreter's ImportError text for a module.
type ImportError struct {
	Module string
	Reason string
}

func (e *ImportError) Error() string {
	return e.Reason
}

// Unwrap lets callers match ErrModuleNotFound.
func (e *ImportError) Unwrap() error {
	return ErrModuleNotFound
}

// Version is an interpreter version triple.
type Version struct {
	Major int
	Minor int
	Micro int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Micro)
}

// MajorMinor parses "MAJOR.MINOR" into a Version with Micro set to zero.
func MajorMinor(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 2 {
		return Version{}, fmt.Errorf("invalid version %q: want MAJOR.MINOR", s)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Version{}, fmt.Errorf("invalid major version in %q: %w", s, err)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return Version{}, fmt.Errorf("invalid minor version in %q: %w", s, err)
	}
	return Version{Major: major, Minor: minor}, nil
}

// SameMajorMinor reports whether v has the major/minor pair of other.
func (v Version) SameMajorMinor(other Version) bool {
	return v.Major == other.Major && v.Minor == other.Minor
}

// ModuleInfo describes a successfully imported module.
type ModuleInfo struct {
	Name    string
	Version string // empty when the module has no __version__
}

// TorchInfo is what torch reports about itself and its CUDA runtime.
type TorchInfo struct {
	Version       string
	CUDAAvailable bool
	CUDAVersion   string
	DeviceName    string
	TotalMemory   uint64 // bytes
}

// MemoryGB returns the device memory in decimal gigabytes.
func (t TorchInfo) MemoryGB() float64 {
	return float64(t.TotalMemory) / 1e9
}
