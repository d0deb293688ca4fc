package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/shinji-kodama/gitdup/internal/model"
)

// progressPrinter renders duplication events as one line each.
type progressPrinter struct {
	w io.Writer

	startStyle lipgloss.Style
	doneStyle  lipgloss.Style
	skipStyle  lipgloss.Style
	finalStyle lipgloss.Style
	pathStyle  lipgloss.Style
}

// newProgressPrinter styles output for w. Colors are dropped automatically
// when w is not a terminal.
func newProgressPrinter(w io.Writer) *progressPrinter {
	r := lipgloss.NewRenderer(w)
	return &progressPrinter{
		w:          w,
		startStyle: r.NewStyle().Foreground(lipgloss.Color("241")),
		doneStyle:  r.NewStyle().Foreground(lipgloss.Color("2")),
		skipStyle:  r.NewStyle().Foreground(lipgloss.Color("3")),
		finalStyle: r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		pathStyle:  r.NewStyle().Foreground(lipgloss.Color("141")),
	}
}

// Handle is a model.EventFunc.
func (p *progressPrinter) Handle(e model.Event) {
	symbol, style := p.decoration(e.Kind)
	_, _ = fmt.Fprintf(p.w, "%s %s\n", style.Render(symbol), p.describe(e))
}

func (p *progressPrinter) decoration(kind model.EventKind) (string, lipgloss.Style) {
	switch kind {
	case model.EventCopyStart, model.EventResetStart, model.EventCleanStart,
		model.EventBranchStart, model.EventPRStart, model.EventInstallStart:
		return "→", p.startStyle
	case model.EventSkipNotice, model.EventInstallSkip:
		return "-", p.skipStyle
	case model.EventDone:
		return "✔", p.finalStyle
	default:
		return "✓", p.doneStyle
	}
}

// describe returns the human-readable text for e.
func (p *progressPrinter) describe(e model.Event) string {
	switch e.Kind {
	case model.EventCopyStart:
		return fmt.Sprintf("Copying files to %s", p.pathStyle.Render(e.Destination))
	case model.EventSkipNotice:
		return fmt.Sprintf("Skipping %s (dependencies are re-installed)", e.Reason)
	case model.EventCopyDone:
		return "Files copied"
	case model.EventResetStart:
		return "Resetting tracked changes"
	case model.EventResetDone:
		return "Tracked changes reset"
	case model.EventCleanStart:
		return "Removing untracked files"
	case model.EventCleanDone:
		return "Untracked files removed"
	case model.EventBranchStart:
		return fmt.Sprintf("Checking out branch %s", e.Branch)
	case model.EventBranchDone:
		return fmt.Sprintf("Checked out branch %s", e.Branch)
	case model.EventPRStart:
		return fmt.Sprintf("Fetching pull request #%d from %s", e.PR, e.Remote)
	case model.EventPRDone:
		return fmt.Sprintf("Checked out pull request #%d as %s", e.PR, e.Branch)
	case model.EventInstallStart:
		return fmt.Sprintf("Installing dependencies with %s", e.Manager)
	case model.EventInstallDone:
		return fmt.Sprintf("Dependencies installed with %s", e.Manager)
	case model.EventInstallSkip:
		return fmt.Sprintf("Skipping dependency install: %s", e.Reason)
	case model.EventDone:
		return fmt.Sprintf("Duplicate ready at %s", p.pathStyle.Render(e.Destination))
	}
	return string(e.Kind)
}
