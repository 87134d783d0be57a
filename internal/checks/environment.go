package checks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"envcheck/internal/cmdexec"
	"envcheck/internal/config"
	"envcheck/internal/gpu"
	"envcheck/internal/logging"
	"envcheck/internal/python"
)

// Interpreter answers questions about the Python environment under validation.
type Interpreter interface {
	RuntimeVersion(ctx context.Context) (python.Version, error)
	Import(ctx context.Context, module string) (python.ModuleInfo, error)
	ImportFrom(ctx context.Context, module, name string) error
	Torch(ctx context.Context) (python.TorchInfo, error)
}

// GPUQuerier lists GPUs through nvidia-smi.
type GPUQuerier interface {
	Query(ctx context.Context) (gpu.SMIResult, error)
}

// GPUDetector reports what NVML can see.
type GPUDetector interface {
	DetectGPUs() gpu.GPUReport
}

// Dependencies are the probes the environment checks run against.
type Dependencies struct {
	Interpreter Interpreter
	SMI         GPUQuerier
	NVML        GPUDetector // optional; only used for the CUDA hint
	Logger      *logging.Logger
}

const (
	lavisModule    = "lavis"
	lavisSubmodule = "lavis.models"
	lavisEntry     = "load_model_and_preprocess"
	lavisFixHint   = "Try: cd SalesForce-LAVIS && pip install -e ."
)

// EnvironmentChecks returns the eight checks of the 3D-LLM environment in
// their fixed order.
func EnvironmentChecks(deps Dependencies, cfg config.Config) []Check {
	return []Check{
		PythonVersionCheck(deps, cfg.Python.ExpectedVersion),
		TorchCheck(deps),
		PackageCheck(deps, "Transformers", "transformers", cfg.Expectation("transformers")),
		PackageCheck(deps, "timm", "timm", cfg.Expectation("timm")),
		PackageCheck(deps, "spacy", "spacy", cfg.Expectation("spacy")),
		PackageCheck(deps, "positional_encodings", "positional_encodings", cfg.Expectation("positional_encodings")),
		LAVISCheck(deps),
		SMICheck(deps),
	}
}

// PythonVersionCheck requires the interpreter's major/minor pair to equal expected.
func PythonVersionCheck(deps Dependencies, expected string) Check {
	return CheckFunc{Label: "Python version", Fn: func(ctx context.Context) Result {
		r := newResult("Python version")

		want, err := python.MajorMinor(expected)
		if err != nil {
			return r.fail("Invalid expected Python version: %v", err).missing()
		}

		got, err := deps.Interpreter.RuntimeVersion(ctx)
		if err != nil {
			deps.Logger.Warn("check.python.failed", "Could not read interpreter version", map[string]interface{}{
				"error": err.Error(),
			})
			return r.fail("Python not usable: %v", err).
				detail("Expected: Python %s.x", expected).
				missing()
		}

		deps.Logger.Info("check.python.version", "Interpreter version read", map[string]interface{}{
			"version":  got.String(),
			"expected": expected,
		})

		if !got.SameMajorMinor(want) {
			return r.fail("Python %s", got).
				detail("Expected: Python %s.x", expected).
				missing()
		}
		return r.pass("Python %s", got).good()
	}}
}

// TorchCheck imports torch and requires CUDA to be available. A CPU-only
// torch is a warning that fails the check.
func TorchCheck(deps Dependencies) Check {
	return CheckFunc{Label: "PyTorch", Fn: func(ctx context.Context) Result {
		r := newResult("PyTorch")

		info, err := deps.Interpreter.Torch(ctx)
		if err != nil {
			return r.fail("PyTorch not found: %v", err).missing()
		}

		r.pass("PyTorch version: %s", info.Version)

		if !info.CUDAAvailable {
			r.warn("CUDA available: No").detail("GPU acceleration will not be available!")
			if hint := nvmlHint(deps.NVML); hint != "" {
				r.detail(hint)
			}
			deps.Logger.Warn("check.torch.no_cuda", "torch reports no CUDA device", map[string]interface{}{
				"torch_version": info.Version,
			})
			return r.degraded(false)
		}

		return r.pass("CUDA available: Yes").
			detail("CUDA version: %s", info.CUDAVersion).
			detail("GPU device: %s", info.DeviceName).
			detail("GPU memory: %.1f GB", info.MemoryGB()).
			good()
	}}
}

// nvmlHint explains a CPU-only torch using what the driver library sees.
func nvmlHint(detector GPUDetector) string {
	if detector == nil {
		return ""
	}
	report := detector.DetectGPUs()
	switch {
	case !report.NVMLOk:
		return "NVML: " + report.ErrorMessage
	case len(report.GPUs) > 0:
		return fmt.Sprintf("NVML sees %d GPU(s): torch may be a CPU-only build", len(report.GPUs))
	default:
		return "NVML sees no GPUs"
	}
}

// PackageCheck imports module and compares its version against exp. A
// version mismatch is a warning; only a failed import fails the check.
func PackageCheck(deps Dependencies, display, module string, exp config.PackageExpectation) Check {
	return CheckFunc{Label: display, Fn: func(ctx context.Context) Result {
		r := newResult(display)

		info, err := deps.Interpreter.Import(ctx, module)
		if err != nil {
			return r.fail("%s not found: %v", display, err).missing()
		}

		if exp.Match == config.MatchNone {
			return r.pass("%s installed", display).good()
		}

		if info.Version == "" {
			return r.pass("%s installed", display).
				detail("Warning: version unknown, expected %s", describeExpectation(exp)).
				degraded(true)
		}

		r.pass("%s version: %s", display, info.Version)
		if !VersionMatches(info.Version, exp) {
			deps.Logger.Warn("check.package.version_mismatch", "Package version differs from expectation", map[string]interface{}{
				"package":  module,
				"version":  info.Version,
				"expected": exp.Expected,
				"match":    exp.Match,
			})
			return r.detail("Warning: Expected %s", describeExpectation(exp)).degraded(true)
		}

		if exp.Match == config.MatchPrefix {
			return r.detail("Compatible version").good()
		}
		return r.detail("Expected version match").good()
	}}
}

// VersionMatches compares a reported version against an expectation.
func VersionMatches(version string, exp config.PackageExpectation) bool {
	switch exp.Match {
	case config.MatchNone:
		return true
	case config.MatchPrefix:
		return strings.HasPrefix(version, exp.Expected)
	default:
		return version == exp.Expected
	}
}

func describeExpectation(exp config.PackageExpectation) string {
	if exp.Match == config.MatchPrefix {
		return exp.Expected + ".x"
	}
	return exp.Expected
}

// LAVISCheck imports lavis and then load_model_and_preprocess from
// lavis.models; an install missing the entry point fails.
func LAVISCheck(deps Dependencies) Check {
	return CheckFunc{Label: "LAVIS", Fn: func(ctx context.Context) Result {
		r := newResult("LAVIS")

		if _, err := deps.Interpreter.Import(ctx, lavisModule); err != nil {
			return r.fail("LAVIS not found or incomplete: %v", err).detail(lavisFixHint).missing()
		}
		r.pass("LAVIS installed")

		if err := deps.Interpreter.ImportFrom(ctx, lavisSubmodule, lavisEntry); err != nil {
			return r.fail("LAVIS not found or incomplete: %v", err).detail(lavisFixHint).missing()
		}
		return r.detail("Core components accessible").good()
	}}
}

// SMICheck runs nvidia-smi and passes only when it lists at least one GPU.
func SMICheck(deps Dependencies) Check {
	return CheckFunc{Label: "GPU via nvidia-smi", Fn: func(ctx context.Context) Result {
		r := newResult("GPU via nvidia-smi")

		result, err := deps.SMI.Query(ctx)
		switch {
		case err == nil:
		case errors.Is(err, gpu.ErrSMINotFound):
			return r.fail("nvidia-smi not found (NVIDIA drivers may not be installed)").missing()
		case errors.Is(err, gpu.ErrSMIFailed):
			return r.fail("nvidia-smi failed").missing()
		case errors.Is(err, gpu.ErrNoDevices):
			return r.fail("nvidia-smi reported no GPUs").missing()
		case errors.Is(err, cmdexec.ErrTimeout):
			return r.warn("Could not run nvidia-smi: timed out").missing()
		default:
			return r.warn("Could not run nvidia-smi: %v", err).missing()
		}

		r.pass("GPU detected: %s", result.Lines[0])
		for _, line := range result.Lines[1:] {
			r.detail("Also detected: %s", line)
		}
		return r.good()
	}}
}
