package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/modsync/pkg/reconcile"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
	StyleError     = lipgloss.NewStyle().Foreground(colorRed)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconRemoved = "-"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printKeyValue prints a labeled value.
func printKeyValue(w io.Writer, key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(w, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// =============================================================================
// Report
// =============================================================================

// printReport renders a run report grouped by category. Empty categories
// are omitted; a run without changes prints a single line.
func printReport(w io.Writer, rep *reconcile.Report) {
	section := func(icon string, style lipgloss.Style, title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		fmt.Fprintln(w, style.Render(icon)+" "+StyleTitle.Render(title))
		for _, l := range lines {
			fmt.Fprintln(w, "  "+l)
		}
	}

	var lines []string
	for _, it := range rep.UpToDate {
		lines = append(lines, modLine(it.Title, it.ID))
	}
	section(iconSuccess, styleIconSuccess, "Up to date", lines)

	lines = nil
	for _, c := range rep.Installed {
		lines = append(lines, modLine(c.Title, c.ID)+" "+StyleHighlight.Render(c.To))
	}
	section(iconSuccess, styleIconSuccess, "Installed", lines)

	lines = nil
	for _, c := range rep.Updated {
		line := modLine(c.Title, c.ID) + " " + StyleDim.Render(c.From) + " " + iconArrow + " " + StyleHighlight.Render(c.To)
		if c.Changelog != "" {
			for _, l := range strings.Split(c.Changelog, "\n") {
				line += "\n    " + StyleDim.Render(l)
			}
		}
		lines = append(lines, line)
	}
	section(iconSuccess, styleIconSuccess, "Updated", lines)

	lines = nil
	for _, it := range rep.Uninstalled {
		lines = append(lines, modLine(it.Title, it.ID))
	}
	section(iconRemoved, styleIconInfo, "Uninstalled (disabled)", lines)

	lines = nil
	for _, id := range rep.Deleted {
		lines = append(lines, StyleValue.Render(id))
	}
	section(iconRemoved, styleIconInfo, "Deleted (no longer required)", lines)

	lines = nil
	for _, m := range rep.Mismatched {
		lines = append(lines, modLine(m.Title, m.ID)+" "+StyleWarning.Render(m.Version+" supports "+m.Supported))
	}
	section(iconWarning, styleIconWarning, "Not declared for "+rep.GameVersion, lines)

	lines = nil
	for _, s := range rep.Skipped {
		lines = append(lines, modLine(s.Title, s.ID)+" "+StyleError.Render(s.Reason))
	}
	section(iconError, styleIconError, "Skipped", lines)

	summary := fmt.Sprintf("%d up to date, %d cached", len(rep.UpToDate), len(rep.Cached))
	if !rep.Changed() {
		summary = "Nothing changed · " + summary
	}
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+StyleDim.Render(summary+fmt.Sprintf(" · %s", rep.Duration().Round(1e6))))
}

func modLine(title, id string) string {
	if title == "" || title == id {
		return StyleValue.Render(id)
	}
	return StyleValue.Render(title) + " " + StyleDim.Render("("+id+")")
}

// newTable returns a rounded table in the CLI palette.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...)
}
