package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"envcheck/internal/checks"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00d7ff")).MarginBottom(1)
	itemStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#00d7ff")).Bold(true)
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	detailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080")).PaddingLeft(4)
	passStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#87d787"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffd700"))
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f")).Bold(true)
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#5fafff")).MarginTop(1)
)

// View renders the check list, the selected check's lines and, once the run
// is over, the summary.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s Environment Validation", checks.Project)))
	b.WriteString("\n\n")

	for i, check := range m.checks {
		b.WriteString(m.renderRow(i, check.Name()))
		b.WriteString("\n")
		if m.expanded && i == m.selection && i < len(m.results) {
			b.WriteString(renderLines(m.results[i]))
		}
	}

	switch m.phase {
	case PhaseDone:
		b.WriteString("\n")
		b.WriteString(renderSummary(m.summary))
		b.WriteString(hintStyle.Render(renderHelp(DefaultKeyHelp())))
	case PhaseAborted:
		b.WriteString("\n")
		b.WriteString(failStyle.Render("Validation aborted"))
	default:
		b.WriteString(hintStyle.Render(fmt.Sprintf("Running %d/%d... | Quit: q", len(m.results)+1, len(m.checks))))
	}
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderRow(i int, name string) string {
	label := fmt.Sprintf("[%d/%d] %s", i+1, len(m.checks), name)

	if i >= len(m.results) {
		marker := "·"
		if i == len(m.results) && m.phase == PhaseRunning {
			marker = "…"
		}
		return pendingStyle.Render(marker + " " + label)
	}

	text := itemStyle.Render(label)
	if i == m.selection {
		text = selectedStyle.Render(label)
	}
	return stateSymbol(m.results[i]) + " " + text
}

// stateSymbol marks a result by its tally outcome, warning when it passed
// with a caveat or failed without being absent.
func stateSymbol(r checks.Result) string {
	switch {
	case r.Passed && r.State == checks.StateGood:
		return passStyle.Render(checks.MarkPass.Symbol())
	case r.State == checks.StateWarning:
		return warnStyle.Render(checks.MarkWarn.Symbol())
	default:
		return failStyle.Render(checks.MarkFail.Symbol())
	}
}

func renderLines(r checks.Result) string {
	var b strings.Builder
	for _, line := range r.Lines {
		text := line.Text
		if sym := line.Mark.Symbol(); sym != "" {
			text = sym + " " + text
		}
		b.WriteString(detailStyle.Render(text))
		b.WriteString("\n")
	}
	return b.String()
}

func renderSummary(s checks.Summary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Passed: %d/%d checks\n\n", s.Passed, s.Total))

	style := failStyle
	switch s.Tier {
	case checks.TierReady:
		style = passStyle
	case checks.TierMostly:
		style = warnStyle
	}
	for i, line := range checks.TierMessage(s.Tier) {
		if i == 0 {
			line = style.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func renderHelp(keys []KeyHelp) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k.Action+": "+k.Keys)
	}
	return strings.Join(parts, " | ")
}
