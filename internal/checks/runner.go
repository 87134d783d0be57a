// Package checks validates a machine learning environment: it runs a fixed
// sequence of independent dependency probes, prints their diagnostics and
// classifies the pass count into a ready, mostly-configured or incomplete tier.
//
// Typical use:
//
//	runner := checks.NewRunner(checks.EnvironmentChecks(deps, cfg), os.Stdout, logger)
//	summary := runner.Run(ctx)
//	os.Exit(summary.ExitCode())
package checks

import (
	"context"
	"fmt"
	"io"

	"envcheck/internal/logging"
)

// Project names the environment being validated in banners.
const Project = "3D-LLM"

// Runner runs every check in order and prints the outcome.
type Runner struct {
	checks  []Check
	printer *Printer
	policy  Policy
	logger  *logging.Logger
}

// NewRunner creates a runner with the default six-of-eight policy
func NewRunner(checks []Check, out io.Writer, logger *logging.Logger) *Runner {
	return &Runner{
		checks:  checks,
		printer: NewPrinter(out),
		policy:  DefaultPolicy(),
		logger:  logger,
	}
}

// WithPolicy replaces the outcome policy.
func (r *Runner) WithPolicy(p Policy) *Runner {
	r.policy = p
	return r
}

// Run executes all checks without short-circuiting, prints banner, per-check
// diagnostics and the summary, and returns the summary.
func (r *Runner) Run(ctx context.Context) Summary {
	r.printer.Header(fmt.Sprintf("%s Environment Validation", Project))
	r.printer.Intro(Project)

	results := make([]Result, 0, len(r.checks))
	for i, check := range r.checks {
		r.printer.Step(i+1, len(r.checks), check.Name())
		res := RunCheck(ctx, i+1, check, r.logger)
		r.printer.Result(res)
		results = append(results, res)
	}

	summary := r.policy.Summarize(results)
	r.printer.Summary(summary)

	r.logger.Info("validation.complete", "Environment validation finished", map[string]interface{}{
		"passed": summary.Passed,
		"total":  summary.Total,
		"tier":   summary.Tier.String(),
	})
	return summary
}

// RunCheck runs one check, numbering it and converting a panic into a failed result.
func RunCheck(ctx context.Context, index int, check Check, logger *logging.Logger) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("check.panic", "Check panicked", map[string]interface{}{
				"check": check.Name(),
				"panic": fmt.Sprint(rec),
			})
			res = newResult(check.Name()).fail("%s check crashed: %v", check.Name(), rec).missing()
		}
		res.Index = index
		if res.Name == "" {
			res.Name = check.Name()
		}
	}()

	res = check.Run(ctx)
	logger.Debug("check.done", "Check finished", map[string]interface{}{
		"check":  check.Name(),
		"state":  res.State.String(),
		"passed": res.Passed,
	})
	return res
}
