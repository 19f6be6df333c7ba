package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/archlog/pkg/changelog"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleLink      = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
	StyleError     = lipgloss.NewStyle().Foreground(colorRed)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleMajor = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	styleMinor = lipgloss.NewStyle().Foreground(colorGray)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// out is where status lines go; tests replace it.
var out io.Writer = os.Stdout

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Fprintln(out, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	fmt.Fprintln(out, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	fmt.Fprintln(out, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Fprintln(out, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(out, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// =============================================================================
// Changelog Output
// =============================================================================

// printEntry prints the status line of one finished package.
func printEntry(done, total int, e changelog.Entry) {
	counter := StyleDim.Render(fmt.Sprintf("[%*d/%d]", len(strconv.Itoa(total)), done, total))
	versions := StyleDim.Render(e.CurrentVersion + " " + iconArrow + " " + e.NewVersion)

	switch e.Status {
	case changelog.StatusResolved:
		major := 0
		for _, s := range e.Steps {
			if s.ReleaseType == changelog.Major {
				major++
			}
		}
		detail := fmt.Sprintf("%d releases", len(e.Steps))
		if major > 0 {
			detail += ", " + styleMajor.Render(fmt.Sprintf("%d major", major))
		}
		fmt.Fprintf(out, "%s %s %s %s  %s\n", counter, styleIconSuccess.Render(iconSuccess), e.Name, versions, StyleDim.Render(detail))
	case changelog.StatusUnresolved:
		fmt.Fprintf(out, "%s %s %s %s  %s\n", counter, styleIconWarning.Render(iconWarning), e.Name, versions, StyleWarning.Render("no upstream repository"))
	default:
		fmt.Fprintf(out, "%s %s %s %s  %s\n", counter, styleIconError.Render(iconError), e.Name, versions, StyleError.Render(errorLine(e.Err)))
	}
}

func errorLine(err error) string {
	if err == nil {
		return "failed"
	}
	return err.Error()
}

// printSummary prints the run summary as a table.
func printSummary(sum changelog.Summary) {
	rows := [][]string{
		{"resolved", strconv.Itoa(len(sum.Resolved)), ""},
		{"unresolved", strconv.Itoa(len(sum.Unresolved)), joinShort(sum.Unresolved)},
		{"failed", strconv.Itoa(len(sum.Failed)), joinShort(sum.Failed)},
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Status", "Packages", "Names").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case col != 0:
				return base.Foreground(colorWhite)
			case row == 0:
				return base.Foreground(colorGreen)
			case row == 1:
				return base.Foreground(colorYellow)
			}
			return base.Foreground(colorRed)
		})
	fmt.Fprintln(out, t.Render())
}

// joinShort lists up to five names.
func joinShort(names []string) string {
	const limit = 5
	s := ""
	for i, n := range names {
		if i == limit {
			return s + fmt.Sprintf(" (+%d)", len(names)-limit)
		}
		if i > 0 {
			s += ", "
		}
		s += n
	}
	return s
}

// printStep prints one release step of a package, used by --print.
func printStep(s changelog.Step) {
	kind := styleMinor.Render(string(s.ReleaseType))
	if s.ReleaseType == changelog.Major {
		kind = styleMajor.Render(string(s.ReleaseType))
	}
	fmt.Fprintf(out, "  %s %s  %s\n", StyleValue.Render(s.VersionTag), kind, StyleLink.Render(s.CompareURLArch))
	for _, c := range s.ArchCommits {
		printDetail("arch: %s", c.Message)
	}
	for _, c := range s.OriginCommits {
		printDetail("%s", c.Message)
	}
}
