package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/podcheck/podcheck/internal/domain"
)

// ── warm palette ──
var (
	accent    = lipgloss.Color("#D97706") // amber
	fg        = lipgloss.Color("#E8E6E3") // warm light gray
	dim       = lipgloss.Color("#6B7280") // muted gray
	faint     = lipgloss.Color("#3F3F46") // very dim
	success   = lipgloss.Color("#22C55E") // green
	danger    = lipgloss.Color("#EF4444") // red
	warning   = lipgloss.Color("#F59E0B") // amber-yellow
	skipColor = lipgloss.Color("#4B5563") // dark gray
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	skipStyle     = lipgloss.NewStyle().Foreground(skipColor)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
)

// Status markers shared by both reports.
const (
	MarkPassed = "✓ PASSED"
	MarkFailed = "✗ FAILED"
	MarkNotRun = "- NOT RUN"
)

// RenderTrackerReport renders the tracker summary:
//
//	Error: <msg>            (only when the run failed before or after the checks)
//	=== Test Results ===
//	Token Configuration: ✓ PASSED
//	...
func RenderTrackerReport(report domain.Report) string {
	var b strings.Builder

	if report.Error != "" {
		b.WriteString(errorTagStyle.Render("Error:") + " " + report.Error + "\n")
	}

	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("=== %s ===", report.Title)))
	b.WriteString("\n")

	for _, r := range report.Results {
		fmt.Fprintf(&b, "%s: %s\n", r.Name, statusMark(r.Status))
	}

	passed, failed, notRun := report.Counts()
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d passed, %d failed, %d not run", passed, failed, notRun)))
	b.WriteString("\n")
	return b.String()
}

// ProgressLine formats one completed check for progressive output while the
// pipeline is still running.
func ProgressLine(r domain.CheckResult) string {
	switch r.Status {
	case domain.StatusPassed:
		return passStyle.Render("✓") + " " + r.Detail
	case domain.StatusFailed:
		return failStyle.Render("✗") + " " + fmt.Sprintf("%s error: %s", r.Name, r.Detail)
	default:
		return skipStyle.Render("-") + " " + r.Name + " " + dimStyle.Render("skipped")
	}
}

func statusMark(s domain.CheckStatus) string {
	switch s {
	case domain.StatusPassed:
		return passStyle.Render(MarkPassed)
	case domain.StatusFailed:
		return failStyle.Render(MarkFailed)
	default:
		return skipStyle.Render(MarkNotRun)
	}
}

func separator(width int) string {
	return faintStyle.Render(strings.Repeat("─", width))
}
