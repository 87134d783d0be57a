package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"envcheck/internal/checks"
	"envcheck/internal/logging"
)

// ErrAborted is returned by Run when the user quits before all checks finish.
var ErrAborted = errors.New("validation aborted")

const down = "down"

// Model is the bubbletea model of the validation progress view. Checks run
// one at a time; each result arrives as a message and the next check is
// scheduled from Update.
type Model struct {
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
	logger    *logging.Logger

	checks  []checks.Check
	results []checks.Result
	policy  checks.Policy
	summary checks.Summary

	phase     Phase
	selection int
	expanded  bool
	elapsed   time.Duration
}

// NewModel creates a progress model for the given checks. Quitting cancels
// the context the checks run with.
func NewModel(ctx context.Context, list []checks.Check, logger *logging.Logger) Model {
	ctx, cancel := context.WithCancel(ctx)
	return Model{
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
		logger:    logger,
		checks:    list,
		results:   make([]checks.Result, 0, len(list)),
		policy:    checks.DefaultPolicy(),
		phase:     PhaseRunning,
	}
}

// Init starts the first check.
func (m Model) Init() tea.Cmd {
	return m.runCheck(0)
}

func (m Model) runCheck(index int) tea.Cmd {
	if index >= len(m.checks) {
		return nil
	}
	check, ctx, logger := m.checks[index], m.ctx, m.logger
	return func() tea.Msg {
		return checkDoneMsg{
			index:  index,
			result: checks.RunCheck(ctx, index+1, check, logger),
		}
	}
}

// Update handles check results and key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case checkDoneMsg:
		return m.handleResult(msg)
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m Model) handleResult(msg checkDoneMsg) (tea.Model, tea.Cmd) {
	if m.phase != PhaseRunning || msg.index != len(m.results) {
		return m, nil
	}

	m.results = append(m.results, msg.result)
	m.selection = len(m.results) - 1

	if len(m.results) < len(m.checks) {
		return m, m.runCheck(len(m.results))
	}

	m.phase = PhaseDone
	m.elapsed = time.Since(m.startTime)
	m.summary = m.policy.Summarize(m.results)
	m.logger.Info("tui.validation.complete", "Interactive validation finished", map[string]interface{}{
		"passed":   m.summary.Passed,
		"total":    m.summary.Total,
		"tier":     m.summary.Tier.String(),
		"duration": m.elapsed.String(),
	})
	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", "q", "esc":
		if m.phase == PhaseRunning {
			m.phase = PhaseAborted
		}
		m.cancel()
		return m, tea.Quit
	case "up", "k":
		if m.selection > 0 {
			m.selection--
		}
	case down, "j":
		if m.selection < len(m.results)-1 {
			m.selection++
		}
	case "enter", " ":
		m.expanded = !m.expanded
	}
	return m, nil
}

// Phase returns the current lifecycle stage.
func (m Model) Phase() Phase {
	return m.phase
}

// Results returns the results collected so far.
func (m Model) Results() []checks.Result {
	return m.results
}

// Summary returns the tally; it is only meaningful in PhaseDone.
func (m Model) Summary() checks.Summary {
	return m.summary
}

// Run shows the progress view until the user quits and returns the summary.
// Quitting before every check has finished yields ErrAborted.
func Run(ctx context.Context, list []checks.Check, logger *logging.Logger) (checks.Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(NewModel(ctx, list, logger), tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil {
		return checks.Summary{}, fmt.Errorf("tui failed: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return checks.Summary{}, fmt.Errorf("tui returned unexpected model %T", final)
	}
	if m.phase != PhaseDone {
		return checks.DefaultPolicy().Summarize(m.results), ErrAborted
	}
	return m.summary, nil
}
