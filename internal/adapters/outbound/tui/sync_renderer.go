package tui

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/podcheck/podcheck/internal/domain"
)

// ModifiedLayout is the timestamp layout used for config modification times.
const ModifiedLayout = "2006-01-02 15:04:05"

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	cellStyle          = lipgloss.NewStyle().Padding(0, 1)
	headerCellStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	hintStyle          = lipgloss.NewStyle().Foreground(dim).Italic(true)
)

// RenderSyncReport renders the config status table, the functionality table
// and either the issue list with recommendations or a success line.
func RenderSyncReport(report domain.SyncReport) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(sectionHeaderStyle.Render("Rclone Configuration Status"))
	b.WriteString("\n")
	b.WriteString(newTable("Location", "Status", "Details").Rows(configRows(report)...).String())
	b.WriteString("\n\n")

	b.WriteString(sectionHeaderStyle.Render(report.Functionality.Title))
	b.WriteString("\n")
	b.WriteString(newTable("Test", "Status", "Details").Rows(functionalityRows(report)...).String())
	b.WriteString("\n\n")

	if report.OK() {
		b.WriteString(passStyle.Render("All checks passed!"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(titleStyle.Render("Issues Found"))
	b.WriteString("  ")
	b.WriteString(errorTagStyle.Render(fmt.Sprintf("%d", len(report.Issues))))
	b.WriteString("\n")
	for _, issue := range report.Issues {
		fmt.Fprintf(&b, "  %s %s\n", failStyle.Render("●"), issue)
	}

	if len(report.Recommendations) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Recommendations"))
		b.WriteString("\n")
		for i, rec := range report.Recommendations {
			fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render(fmt.Sprintf("%d.", i+1)), rec)
		}
	}

	b.WriteString("\n")
	b.WriteString(separator(48))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("Re-run `podcheck sync` after fixing the issues above."))
	b.WriteString("\n")
	return b.String()
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(faint)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCellStyle
			}
			return cellStyle
		})
}

func configRows(report domain.SyncReport) [][]string {
	rows := make([][]string, 0, len(report.Probes))
	for _, p := range report.Probes {
		rows = append(rows, []string{titleCase(p.Location), probeStatus(p, report.RequiredMode), probeDetails(p)})
	}
	return rows
}

func probeStatus(p domain.ConfigProbe, requiredMode string) string {
	if p.Err != "" {
		return failStyle.Render("✗ Cannot inspect")
	}
	if !p.Exists {
		return failStyle.Render("✗ Missing")
	}

	lines := []string{passStyle.Render("✓ Exists")}
	if p.HasContent {
		lines = append(lines, passStyle.Render("✓ Has content"))
	} else {
		lines = append(lines, warnStyle.Render("⚠ Empty file"))
	}
	if p.PermissionsOK {
		lines = append(lines, passStyle.Render("✓ Permissions OK"))
	} else {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("⚠ Incorrect permissions (want %s)", requiredMode)))
	}
	return strings.Join(lines, "\n")
}

func probeDetails(p domain.ConfigProbe) string {
	lines := []string{"Path: " + p.Path}
	if p.Err != "" {
		lines = append(lines, "Error: "+p.Err)
	}
	if !p.Exists {
		return strings.Join(lines, "\n")
	}
	lines = append(lines,
		"Permissions: "+p.Permissions,
		"Modified: "+p.Modified.Local().Format(ModifiedLayout),
		fmt.Sprintf("Size: %d bytes", p.Size),
	)
	return strings.Join(lines, "\n")
}

func functionalityRows(report domain.SyncReport) [][]string {
	var rows [][]string

	if report.Listing.OK {
		details := "No remotes found"
		if len(report.Listing.Remotes) > 0 {
			details = strings.Join(report.Listing.Remotes, "\n")
		}
		rows = append(rows, []string{"List Remotes", passStyle.Render("✓ Working"), details})
	} else {
		details := report.Listing.Error
		for _, r := range report.Functionality.Results {
			if r.Status == domain.StatusFailed && r.Detail != "" {
				details += "\n" + r.Detail
				break
			}
		}
		rows = append(rows, []string{"List Remotes", failStyle.Render("✗ Failed"), details})
		return rows
	}

	label := report.RequiredRemote + " Remote"
	if report.Listing.HasRequired {
		rows = append(rows, []string{label, passStyle.Render("✓ Found"), "Remote is configured"})
	} else {
		rows = append(rows, []string{label, failStyle.Render("✗ Not Found"), "Remote is not configured"})
	}
	return rows
}

func titleCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
