// Package cmdexec runs external programs with a deadline and classifies the
// ways they can fail.
package cmdexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when the executable cannot be located or started.
	ErrNotFound = errors.New("executable not found")
	// ErrTimeout is returned when the command outlives its context deadline.
	ErrTimeout = errors.New("command timed out")
)

// waitDelay bounds how long Run waits for orphaned children holding the
// output pipes after the process itself was killed.
const waitDelay = 500 * time.Millisecond

// Output holds what a finished command wrote.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ExitError reports a command that ran but exited with a non-zero status.
type ExitError struct {
	Name   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Name, e.Code)
	if tail := lastLine(e.Stderr); tail != "" {
		msg += ": " + tail
	}
	return msg
}

// Runner executes a command and returns its captured output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Output, error)
}

// ExecRunner implements Runner with os/exec.
type ExecRunner struct{}

// NewExecRunner creates a runner backed by os/exec
func NewExecRunner() ExecRunner {
	return ExecRunner{}
}

// Run executes name with args. The returned error wraps ErrNotFound,
// ErrTimeout or is an *ExitError; Output is populated whenever the process ran.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (Output, error) {
	// #nosec G204 -- binaries come from configuration, arguments are fixed probes
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return out, nil
	}

	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return out, fmt.Errorf("%s: %w", name, ErrNotFound)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return out, fmt.Errorf("%s: %w", name, ErrTimeout)
		}
		return out, fmt.Errorf("%s: %w", name, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, &ExitError{Name: name, Code: out.ExitCode, Stderr: out.Stderr}
	}

	return out, fmt.Errorf("failed to run %s: %w", name, err)
}

// RunWithTimeout runs the command under a derived context with the given timeout.
func RunWithTimeout(ctx context.Context, r Runner, timeout time.Duration, name string, args ...string) (Output, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return r.Run(ctx, name, args...)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
