// Package python probes an external Python interpreter for its version and
// for the importability of named modules.
package python

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"envcheck/internal/cmdexec"
	"envcheck/internal/logging"
)

// Prober runs probe programs in a Python interpreter
type Prober struct {
	interpreter string
	timeout     time.Duration
	runner      cmdexec.Runner
	logger      *logging.Logger
}

// NewProber creates a prober for the given interpreter using os/exec
func NewProber(interpreter string, timeout time.Duration, logger *logging.Logger) *Prober {
	return NewProberWithRunner(interpreter, timeout, cmdexec.NewExecRunner(), logger)
}

// NewProberWithRunner creates a prober with a custom command runner (for testing)
func NewProberWithRunner(interpreter string, timeout time.Duration, runner cmdexec.Runner, logger *logging.Logger) *Prober {
	return &Prober{
		interpreter: interpreter,
		timeout:     timeout,
		runner:      runner,
		logger:      logger,
	}
}

type probeResult struct {
	OK            bool    `json:"ok"`
	Error         string  `json:"error"`
	Version       *string `json:"version"`
	VersionInfo   []int   `json:"version_info"`
	CUDAAvailable bool    `json:"cuda_available"`
	CUDAVersion   *string `json:"cuda_version"`
	DeviceName    string  `json:"device_name"`
	TotalMemory   uint64  `json:"total_memory"`
}

// RuntimeVersion returns the interpreter's version triple
func (p *Prober) RuntimeVersion(ctx context.Context) (Version, error) {
	res, err := p.probe(ctx, "runtime", runtimeScript)
	if err != nil {
		return Version{}, err
	}
	if len(res.VersionInfo) != 3 {
		return Version{}, fmt.Errorf("%w: version_info %v", ErrBadProbeOutput, res.VersionInfo)
	}
	return Version{Major: res.VersionInfo[0], Minor: res.VersionInfo[1], Micro: res.VersionInfo[2]}, nil
}

// Import imports module and reports its __version__ when it has one
func (p *Prober) Import(ctx context.Context, module string) (ModuleInfo, error) {
	res, err := p.probe(ctx, module, importScript, module)
	if err != nil {
		return ModuleInfo{}, err
	}
	if !res.OK {
		return ModuleInfo{}, &ImportError{Module: module, Reason: res.Error}
	}

	info := ModuleInfo{Name: module}
	if res.Version != nil {
		info.Version = *res.Version
	}
	return info, nil
}

// ImportFrom performs the equivalent of "from module import name"
func (p *Prober) ImportFrom(ctx context.Context, module, name string) error {
	res, err := p.probe(ctx, module+"."+name, importFromScript, module, name)
	if err != nil {
		return err
	}
	if !res.OK {
		return &ImportError{Module: module, Reason: res.Error}
	}
	return nil
}

// Torch imports torch and queries its CUDA runtime for device 0
func (p *Prober) Torch(ctx context.Context) (TorchInfo, error) {
	res, err := p.probe(ctx, "torch", torchScript)
	if err != nil {
		return TorchInfo{}, err
	}
	if !res.OK {
		return TorchInfo{}, &ImportError{Module: "torch", Reason: res.Error}
	}

	info := TorchInfo{
		CUDAAvailable: res.CUDAAvailable,
		DeviceName:    res.DeviceName,
		TotalMemory:   res.TotalMemory,
	}
	if res.Version != nil {
		info.Version = *res.Version
	}
	if res.CUDAVersion != nil {
		info.CUDAVersion = *res.CUDAVersion
	}
	return info, nil
}

func (p *Prober) probe(ctx context.Context, target, script string, args ...string) (probeResult, error) {
	argv := append([]string{"-c", script}, args...)

	p.logger.Debug("python.probe.start", "Running interpreter probe", map[string]interface{}{
		"interpreter": p.interpreter,
		"target":      target,
	})

	out, err := cmdexec.RunWithTimeout(ctx, p.runner, p.timeout, p.interpreter, argv...)
	if err != nil {
		if errors.Is(err, cmdexec.ErrNotFound) {
			err = fmt.Errorf("%w: %s", ErrInterpreterNotFound, p.interpreter)
		}
		p.logger.Warn("python.probe.failed", "Interpreter probe failed", map[string]interface{}{
			"interpreter": p.interpreter,
			"target":      target,
			"error":       err.Error(),
		})
		return probeResult{}, err
	}

	res, err := decodeProbe(out.Stdout)
	if err != nil {
		p.logger.Warn("python.probe.decode_failed", "Interpreter answered with unexpected output", map[string]interface{}{
			"target": target,
			"stdout": out.Stdout,
		})
		return probeResult{}, err
	}

	p.logger.Debug("python.probe.done", "Interpreter probe finished", map[string]interface{}{
		"target": target,
		"ok":     res.OK,
	})
	return res, nil
}

// decodeProbe decodes the payload following the last result marker on stdout.
func decodeProbe(stdout string) (probeResult, error) {
	idx := strings.LastIndex(stdout, resultMarker)
	if idx < 0 {
		return probeResult{}, fmt.Errorf("%w: no result in stdout", ErrBadProbeOutput)
	}
	payload := stdout[idx+len(resultMarker):]
	if end := strings.IndexByte(payload, '\n'); end >= 0 {
		payload = payload[:end]
	}

	var res probeResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &res); err != nil {
		return probeResult{}, fmt.Errorf("%w: %v", ErrBadProbeOutput, err)
	}
	return res, nil
}
