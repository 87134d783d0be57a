package gpu

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"envcheck/internal/cmdexec"
	"envcheck/internal/logging"
)

// SMIQueryArgs are the fixed nvidia-smi arguments: one CSV row per GPU, no header.
var SMIQueryArgs = []string{"--query-gpu=name,driver_version,memory.total", "--format=csv,noheader"}

var (
	// ErrSMINotFound means nvidia-smi is not installed or not on PATH.
	ErrSMINotFound = errors.New("nvidia-smi not found")
	// ErrSMIFailed means nvidia-smi ran and exited non-zero.
	ErrSMIFailed = errors.New("nvidia-smi failed")
	// ErrNoDevices means nvidia-smi succeeded but listed no GPUs.
	ErrNoDevices = errors.New("nvidia-smi listed no GPUs")
)

// SMIResult holds the parsed rows. Lines[i] renders Devices[i].
type SMIResult struct {
	Devices []SMIDevice
	Lines   []string
	Ignored []string
}

// SMIProbe queries GPUs through the nvidia-smi command line tool
type SMIProbe struct {
	binary  string
	timeout time.Duration
	runner  cmdexec.Runner
	logger  *logging.Logger
}

// NewSMIProbe creates a probe that runs binary with the given timeout
func NewSMIProbe(binary string, timeout time.Duration, logger *logging.Logger) *SMIProbe {
	return NewSMIProbeWithRunner(binary, timeout, cmdexec.NewExecRunner(), logger)
}

// NewSMIProbeWithRunner creates a probe with a custom command runner (for testing)
func NewSMIProbeWithRunner(binary string, timeout time.Duration, runner cmdexec.Runner, logger *logging.Logger) *SMIProbe {
	return &SMIProbe{
		binary:  binary,
		timeout: timeout,
		runner:  runner,
		logger:  logger,
	}
}

// Query runs nvidia-smi and parses its CSV output. Errors wrap ErrSMINotFound,
// ErrSMIFailed, ErrNoDevices or cmdexec.ErrTimeout.
func (p *SMIProbe) Query(ctx context.Context) (SMIResult, error) {
	p.logger.Debug("gpu.smi.start", "Running nvidia-smi", map[string]interface{}{
		"binary":  p.binary,
		"timeout": p.timeout.String(),
	})

	out, err := cmdexec.RunWithTimeout(ctx, p.runner, p.timeout, p.binary, SMIQueryArgs...)
	if err != nil {
		var exitErr *cmdexec.ExitError
		switch {
		case errors.Is(err, cmdexec.ErrNotFound):
			err = fmt.Errorf("%w: %s", ErrSMINotFound, p.binary)
		case errors.As(err, &exitErr):
			err = fmt.Errorf("%w: %v", ErrSMIFailed, exitErr)
		case errors.Is(err, cmdexec.ErrTimeout):
			p.logger.Warn("gpu.smi.timeout", "nvidia-smi timed out", map[string]interface{}{
				"timeout": p.timeout.String(),
			})
		}
		p.logger.Warn("gpu.smi.failed", "nvidia-smi query failed", map[string]interface{}{
			"error": err.Error(),
		})
		return SMIResult{}, err
	}

	result, err := ParseSMIOutput(out.Stdout)
	for _, line := range result.Ignored {
		p.logger.Debug("gpu.smi.line_skipped", "Skipped nvidia-smi line that is not a device row", map[string]interface{}{
			"line": line,
		})
	}
	if err != nil {
		p.logger.Warn("gpu.smi.parse_failed", "Failed to parse nvidia-smi output", map[string]interface{}{
			"error":  err.Error(),
			"stdout": out.Stdout,
		})
		return SMIResult{}, err
	}

	p.logger.Info("gpu.smi.detected", "nvidia-smi reported GPUs", map[string]interface{}{
		"count": len(result.Devices),
	})
	return result, nil
}

// ParseSMIOutput parses "name, driver_version, memory.total" rows. Lines
// without exactly three fields, such as driver warnings, are collected in
// Ignored; ErrNoDevices is returned when no row remains.
func ParseSMIOutput(stdout string) (SMIResult, error) {
	reader := csv.NewReader(strings.NewReader(stdout))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var result SMIResult
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return SMIResult{}, fmt.Errorf("failed to parse nvidia-smi csv: %w", err)
		}
		if len(record) != 3 {
			result.Ignored = append(result.Ignored, strings.Join(record, ","))
			continue
		}

		device := SMIDevice{
			Name:          strings.TrimSpace(record[0]),
			DriverVersion: strings.TrimSpace(record[1]),
			MemoryTotal:   strings.TrimSpace(record[2]),
		}
		result.Devices = append(result.Devices, device)
		result.Lines = append(result.Lines, device.String())
	}

	if len(result.Devices) == 0 {
		return result, ErrNoDevices
	}
	return result, nil
}
