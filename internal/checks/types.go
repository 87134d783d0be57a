package checks

import (
	"context"
	"fmt"
)

// State is the tri-state outcome of probing one dependency.
type State int

const (
	// StateMissing means the dependency or capability is absent or unusable.
	StateMissing State = iota
	// StateWarning means the dependency is present but not as expected.
	StateWarning
	// StateGood means the dependency is present and as expected.
	StateGood
)

// String returns the string representation of a State.
func (s State) String() string {
	switch s {
	case StateMissing:
		return "missing"
	case StateWarning:
		return "warning"
	case StateGood:
		return "good"
	default:
		return "unknown"
	}
}

// Mark is the symbol prefix of an output line.
type Mark int

const (
	// MarkNone renders an indented detail line without a symbol.
	MarkNone Mark = iota
	// MarkPass renders "✓".
	MarkPass
	// MarkWarn renders "⚠".
	MarkWarn
	// MarkFail renders "✗".
	MarkFail
)

// Symbol returns the console symbol for the mark.
func (m Mark) Symbol() string {
	switch m {
	case MarkPass:
		return "✓"
	case MarkWarn:
		return "⚠"
	case MarkFail:
		return "✗"
	default:
		return ""
	}
}

// Line is one diagnostic line printed for a check.
type Line struct {
	Mark Mark
	Text string
}

// Result is the outcome of a single check.
type Result struct {
	Index  int
	Name   string
	State  State
	Passed bool
	Lines  []Line
}

// Check is one independent probe.
type Check interface {
	Name() string
	Run(ctx context.Context) Result
}

// CheckFunc adapts a function to the Check interface.
type CheckFunc struct {
	Label string
	Fn    func(ctx context.Context) Result
}

// Name returns the display name of the check.
func (c CheckFunc) Name() string {
	return c.Label
}

// Run runs the wrapped function.
func (c CheckFunc) Run(ctx context.Context) Result {
	return c.Fn(ctx)
}

func newResult(name string) *Result {
	return &Result{Name: name}
}

func (r *Result) pass(format string, args ...interface{}) *Result {
	return r.add(MarkPass, format, args...)
}

func (r *Result) warn(format string, args ...interface{}) *Result {
	return r.add(MarkWarn, format, args...)
}

func (r *Result) fail(format string, args ...interface{}) *Result {
	return r.add(MarkFail, format, args...)
}

func (r *Result) detail(format string, args ...interface{}) *Result {
	return r.add(MarkNone, format, args...)
}

func (r *Result) add(mark Mark, format string, args ...interface{}) *Result {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	r.Lines = append(r.Lines, Line{Mark: mark, Text: text})
	return r
}

// good, degraded and missing finish a result with its state and tally value.
func (r *Result) good() Result {
	r.State, r.Passed = StateGood, true
	return *r
}

func (r *Result) degraded(passed bool) Result {
	r.State, r.Passed = StateWarning, passed
	return *r
}

func (r *Result) missing() Result {
	r.State, r.Passed = StateMissing, false
	return *r
}
