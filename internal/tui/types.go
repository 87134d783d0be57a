package tui

import "envcheck/internal/checks"

// Phase is the lifecycle stage of the progress view.
type Phase string

const (
	// PhaseRunning means checks are still being executed.
	PhaseRunning Phase = "running"
	// PhaseDone means every check has a result and the summary is shown.
	PhaseDone Phase = "done"
	// PhaseAborted means the user quit before the last check finished.
	PhaseAborted Phase = "aborted"
)

// checkDoneMsg carries the result of the check at position index.
type checkDoneMsg struct {
	index  int
	result checks.Result
}

// KeyHelp is one entry of the footer hint line.
type KeyHelp struct {
	Keys   string
	Action string
}

// DefaultKeyHelp returns the footer hints shown once the run has finished.
func DefaultKeyHelp() []KeyHelp {
	return []KeyHelp{
		{Keys: "↑/↓", Action: "Select"},
		{Keys: "Enter/Space", Action: "Details"},
		{Keys: "q", Action: "Quit"},
	}
}
