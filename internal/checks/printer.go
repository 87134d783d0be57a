package checks

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const bannerWidth = 70

// Printer renders validation progress as console text. Colours are applied
// only when the writer is a terminal.
type Printer struct {
	out    io.Writer
	title  lipgloss.Style
	pass   lipgloss.Style
	warn   lipgloss.Style
	fail   lipgloss.Style
	detail lipgloss.Style
}

// NewPrinter creates a printer writing to out
func NewPrinter(out io.Writer) *Printer {
	renderer := lipgloss.NewRenderer(out)
	return &Printer{
		out:    out,
		title:  renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("#00d7ff")),
		pass:   renderer.NewStyle().Foreground(lipgloss.Color("#87d787")),
		warn:   renderer.NewStyle().Foreground(lipgloss.Color("#ffd700")),
		fail:   renderer.NewStyle().Foreground(lipgloss.Color("#ff5f5f")).Bold(true),
		detail: renderer.NewStyle().Foreground(lipgloss.Color("#808080")),
	}
}

// Header prints a banner framed by two rules of '='.
func (p *Printer) Header(text string) {
	rule := strings.Repeat("=", bannerWidth)
	fmt.Fprintf(p.out, "\n%s\n  %s\n%s\n", rule, p.title.Render(text), rule)
}

// Intro prints the sentence introducing the run.
func (p *Printer) Intro(project string) {
	fmt.Fprintf(p.out, "\nValidating environment setup for %s project...\n", project)
}

// Step announces check index of total.
func (p *Printer) Step(index, total int, name string) {
	fmt.Fprintf(p.out, "\n[%d/%d] Checking %s...\n", index, total, name)
}

// Result prints the diagnostic lines of one check.
func (p *Printer) Result(r Result) {
	for _, line := range r.Lines {
		fmt.Fprintln(p.out, p.FormatLine(line))
	}
}

// FormatLine renders a line with its symbol and indentation.
func (p *Printer) FormatLine(line Line) string {
	switch line.Mark {
	case MarkPass:
		return "  " + p.pass.Render(line.Mark.Symbol()) + " " + line.Text
	case MarkWarn:
		return "  " + p.warn.Render(line.Mark.Symbol()) + " " + line.Text
	case MarkFail:
		return "  " + p.fail.Render(line.Mark.Symbol()) + " " + line.Text
	default:
		return "     " + p.detail.Render(line.Text)
	}
}

// Summary prints the tally and the message of the tier.
func (p *Printer) Summary(s Summary) {
	p.Header("Validation Summary")
	fmt.Fprintf(p.out, "\nPassed: %d/%d checks\n", s.Passed, s.Total)

	for i, line := range TierMessage(s.Tier) {
		if i == 0 {
			fmt.Fprintln(p.out)
		}
		fmt.Fprintln(p.out, line)
	}
}

// TierMessage returns the closing message lines for a tier.
func TierMessage(t Tier) []string {
	switch t {
	case TierReady:
		return []string{
			"✓ Environment is fully configured and ready to use!",
			"",
			"Next steps:",
			"  1. Download checkpoints (see README.md)",
			"  2. Run inference: python inference.py",
		}
	case TierMostly:
		return []string{
			"⚠ Environment is mostly configured but has some issues.",
			"  Review the warnings above and fix as needed.",
			"  See INSTALLATION_GUIDE.md for troubleshooting.",
		}
	default:
		return []string{
			"✗ Environment setup is incomplete.",
			"  Please review the errors above.",
			"  See INSTALLATION_GUIDE.md for installation instructions.",
		}
	}
}
